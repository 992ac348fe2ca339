package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

// KeyValueStore is the string store settings are persisted in
type KeyValueStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// SettingsService persists practice settings as one JSON document under a single key
type SettingsService struct {
	store KeyValueStore
	key   string
	debug bool
}

// NewSettingsService creates a settings service storing under key
func NewSettingsService(store KeyValueStore, key string, debug bool) *SettingsService {
	return &SettingsService{store: store, key: key, debug: debug}
}

// Load returns the stored settings. Missing fields keep their defaults and an
// unknown mode falls back to the default mode; read failures yield the defaults.
func (s *SettingsService) Load() models.Settings {
	settings := models.DefaultSettings()

	value, err := s.store.GetSetting(s.key)
	if errors.Is(err, repository.ErrSettingNotFound) {
		if s.debug {
			log.Printf("[DEBUG] No stored settings under %s, using defaults", s.key)
		}
		return settings
	}
	if err != nil {
		log.Printf("Failed to read settings, using defaults: %v", err)
		return settings
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		log.Printf("Ignoring malformed settings %q: %v", value, err)
		return models.DefaultSettings()
	}

	if err := validation.ValidateSettings(settings); err != nil {
		log.Printf("Ignoring stored mode: %v", err)
		settings.Mode = models.DefaultSettings().Mode
	}

	return settings
}

// Save validates and stores the settings
func (s *SettingsService) Save(settings models.Settings) error {
	if err := validation.ValidateSettings(settings); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := s.store.SetSetting(s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if s.debug {
		log.Printf("[DEBUG] Saved settings: %s", data)
	}
	return nil
}
