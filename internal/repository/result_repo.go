package repository

import (
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// ResultRepository handles persistence of completed practice sessions
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveSession stores a session and its outcomes in presentation order
func (r *ResultRepository) SaveSession(record *models.SessionRecord) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		query := `
			INSERT INTO session_results
				(id, lesson_id, mode, score, total_words, correct_words, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query,
			record.ID,
			record.LessonID,
			string(record.Mode),
			record.Score,
			record.TotalWords,
			record.CorrectWords,
			record.StartedAt.UTC(),
			record.CompletedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		for i, outcome := range record.Outcomes {
			_, err := tx.Exec(
				"INSERT INTO answer_outcomes (session_id, item_id, quality, position) VALUES (?, ?, ?, ?)",
				record.ID, outcome.ItemID, outcome.Quality.String(), i,
			)
			if err != nil {
				return fmt.Errorf("failed to save outcome: %w", err)
			}
		}

		return nil
	})
}

// SessionExists reports whether a session with the given ID is stored
func (r *ResultRepository) SessionExists(sessionID string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM session_results WHERE id = ?", sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return count > 0, nil
}

// GetRecentSessions retrieves up to limit sessions of a lesson, most recent
// first. A limit of zero or less returns every session.
func (r *ResultRepository) GetRecentSessions(lessonID int64, limit int) ([]models.SessionRecord, error) {
	query := `
		SELECT id, lesson_id, mode, score, total_words, correct_words, started_at, completed_at
		FROM session_results
		WHERE lesson_id = ?
		ORDER BY completed_at DESC
	`
	args := []interface{}{lessonID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	var records []models.SessionRecord
	for rows.Next() {
		var record models.SessionRecord
		var mode string
		if err := rows.Scan(
			&record.ID,
			&record.LessonID,
			&mode,
			&record.Score,
			&record.TotalWords,
			&record.CorrectWords,
			&record.StartedAt,
			&record.CompletedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		record.Mode = models.Mode(mode)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	rows.Close()

	// Outcomes are loaded after the session rows are released; SQLite runs on one connection
	for i := range records {
		outcomes, err := r.GetSessionOutcomes(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Outcomes = outcomes
	}

	return records, nil
}

// GetSessionOutcomes retrieves the outcomes of a session in presentation order
func (r *ResultRepository) GetSessionOutcomes(sessionID string) ([]models.AnswerOutcome, error) {
	query := `
		SELECT item_id, quality
		FROM answer_outcomes
		WHERE session_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.AnswerOutcome
	for rows.Next() {
		var outcome models.AnswerOutcome
		var quality string
		if err := rows.Scan(&outcome.ItemID, &quality); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if outcome.Quality, err = models.ParseQuality(quality); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}
