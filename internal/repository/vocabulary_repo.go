package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/utils"
)

// encodeExamples stores an item's example sentences as a JSON array, so
// sentences may contain line breaks. No examples is stored as ''.
func encodeExamples(examples []string) (string, error) {
	if len(examples) == 0 {
		return "", nil
	}
	data, err := json.Marshal(examples)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeExamples(column string) ([]string, error) {
	if column == "" {
		return nil, nil
	}
	var examples []string
	if err := json.Unmarshal([]byte(column), &examples); err != nil {
		return nil, err
	}
	return examples, nil
}

// wordKey matches a re-imported word with the item already stored for it
func wordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// VocabularyRepository handles database operations for lessons and their items
type VocabularyRepository struct {
	db *database.DB
}

// NewVocabularyRepository creates a new vocabulary repository
func NewVocabularyRepository(db *database.DB) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// CreateLesson creates a new lesson
func (r *VocabularyRepository) CreateLesson(name, description, sourceFile string) (*models.Lesson, error) {
	query := "INSERT INTO lessons (name, description, source_file) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, description, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	now := time.Now()
	return &models.Lesson{
		ID:          id,
		Name:        name,
		Description: description,
		SourceFile:  sourceFile,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const lessonColumns = "id, name, description, source_file, created_at, updated_at"

func scanLesson(row interface{ Scan(...interface{}) error }) (*models.Lesson, error) {
	lesson := &models.Lesson{}
	err := row.Scan(
		&lesson.ID,
		&lesson.Name,
		&lesson.Description,
		&lesson.SourceFile,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// GetLessonByID retrieves a lesson by ID, or nil when it does not exist
func (r *VocabularyRepository) GetLessonByID(lessonID int64) (*models.Lesson, error) {
	row := r.db.QueryRow("SELECT "+lessonColumns+" FROM lessons WHERE id = ?", lessonID)
	lesson, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

// GetLessonByName retrieves a lesson by its unique name, or nil when it does not exist
func (r *VocabularyRepository) GetLessonByName(name string) (*models.Lesson, error) {
	row := r.db.QueryRow("SELECT "+lessonColumns+" FROM lessons WHERE name = ?", name)
	lesson, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

// ListLessons retrieves every lesson with its item count, newest first
func (r *VocabularyRepository) ListLessons() ([]models.LessonSummary, error) {
	query := `
		SELECT l.id, l.name, l.description, l.source_file, l.created_at, l.updated_at,
			COUNT(v.id) AS item_count
		FROM lessons l
		LEFT JOIN vocabulary_items v ON v.lesson_id = l.id
		GROUP BY l.id, l.name, l.description, l.source_file, l.created_at, l.updated_at
		ORDER BY l.created_at DESC, l.id DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.LessonSummary
	for rows.Next() {
		var summary models.LessonSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Description,
			&summary.SourceFile,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, summary)
	}

	return lessons, rows.Err()
}

// DeleteLesson deletes a lesson with its items and session history
func (r *VocabularyRepository) DeleteLesson(lessonID int64) error {
	if _, err := r.db.Exec("DELETE FROM lessons WHERE id = ?", lessonID); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

// ReplaceItems swaps a lesson's items for items in a single transaction.
// An item without an ID keeps the ID of the stored item with the same word, so
// recorded outcomes and review history still refer to it; other items get a new
// one. Positions follow slice order.
func (r *VocabularyRepository) ReplaceItems(lessonID int64, items []models.VocabularyItem) ([]models.VocabularyItem, error) {
	saved := make([]models.VocabularyItem, len(items))

	err := r.db.WithTx(func(tx *database.Tx) error {
		existing, err := existingItemIDs(tx, lessonID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec("DELETE FROM vocabulary_items WHERE lesson_id = ?", lessonID); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}

		query := `
			INSERT INTO vocabulary_items
				(id, lesson_id, word, meaning, pronunciation, part_of_speech, examples, audio_ref, image_ref, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		for i, item := range items {
			if item.ID == "" {
				key := wordKey(item.Word)
				if id, ok := existing[key]; ok {
					item.ID = id
					delete(existing, key)
				} else {
					item.ID = utils.GenerateItemID()
				}
			}
			item.LessonID = lessonID
			item.Position = i

			examples, err := encodeExamples(item.Examples)
			if err != nil {
				return fmt.Errorf("failed to encode examples of %q: %w", item.Word, err)
			}

			if _, err := tx.Exec(query,
				item.ID,
				item.LessonID,
				item.Word,
				item.Meaning,
				item.Pronunciation,
				item.PartOfSpeech,
				examples,
				item.AudioRef,
				item.ImageRef,
				item.Position,
			); err != nil {
				return fmt.Errorf("failed to insert item %q: %w", item.Word, err)
			}
			saved[i] = item
		}

		_, err = tx.Exec("UPDATE lessons SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", lessonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func existingItemIDs(tx *database.Tx, lessonID int64) (map[string]string, error) {
	rows, err := tx.Query("SELECT id, word FROM vocabulary_items WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing items: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var id, word string
		if err := rows.Scan(&id, &word); err != nil {
			return nil, fmt.Errorf("failed to scan existing item: %w", err)
		}
		ids[wordKey(word)] = id
	}

	return ids, rows.Err()
}

// GetLessonItems retrieves a lesson's items in position order
func (r *VocabularyRepository) GetLessonItems(lessonID int64) ([]models.VocabularyItem, error) {
	query := `
		SELECT id, lesson_id, word, meaning, pronunciation, part_of_speech, examples, audio_ref, image_ref, position
		FROM vocabulary_items
		WHERE lesson_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Query(query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		var item models.VocabularyItem
		var examples string
		if err := rows.Scan(
			&item.ID,
			&item.LessonID,
			&item.Word,
			&item.Meaning,
			&item.Pronunciation,
			&item.PartOfSpeech,
			&examples,
			&item.AudioRef,
			&item.ImageRef,
			&item.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Examples, err = decodeExamples(examples)
		if err != nil {
			return nil, fmt.Errorf("failed to decode examples of %q: %w", item.Word, err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetLessonWithItems retrieves a lesson and its items, or nil when the lesson does not exist
func (r *VocabularyRepository) GetLessonWithItems(lessonID int64) (*models.LessonWithItems, error) {
	lesson, err := r.GetLessonByID(lessonID)
	if err != nil || lesson == nil {
		return nil, err
	}

	items, err := r.GetLessonItems(lessonID)
	if err != nil {
		return nil, err
	}

	return &models.LessonWithItems{Lesson: *lesson, Items: items}, nil
}
