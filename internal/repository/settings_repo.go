package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"vocabdrill/internal/database"
)

// ErrSettingNotFound is returned when a key has never been written
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository is a string key/value store backed by the settings table
type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertSettings(), key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting so readers fall back to defaults
func (r *SettingsRepository) DeleteSetting(key string) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE setting_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
