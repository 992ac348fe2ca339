package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"vocabdrill/internal/importer"
	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// LessonRepository is the lesson storage used by LessonService
type LessonRepository interface {
	CreateLesson(name, description, sourceFile string) (*models.Lesson, error)
	GetLessonByName(name string) (*models.Lesson, error)
	ListLessons() ([]models.LessonSummary, error)
	ReplaceItems(lessonID int64, items []models.VocabularyItem) ([]models.VocabularyItem, error)
	DeleteLesson(lessonID int64) error
}

// AudioPrefetcher generates pronunciation audio ahead of practice
type AudioPrefetcher interface {
	Prefetch(ctx context.Context, words []string) (map[string]string, error)
}

// ImportResult describes a completed workbook import
type ImportResult struct {
	Lesson  models.Lesson
	Items   []models.VocabularyItem
	Skipped int
	Created bool
}

// LessonService manages lessons and their vocabulary
type LessonService struct {
	repo  LessonRepository
	audio AudioPrefetcher
	debug bool
}

// NewLessonService creates a new lesson service; audio may be nil
func NewLessonService(repo LessonRepository, audio AudioPrefetcher, debug bool) *LessonService {
	return &LessonService{repo: repo, audio: audio, debug: debug}
}

// ImportWorkbook loads a sheet of a workbook into the lesson called name,
// replacing its items. The lesson is created when missing; an empty name uses
// the sheet name. Items without their own audio get speech generated when a
// prefetcher is configured.
func (s *LessonService) ImportWorkbook(ctx context.Context, path, sheetName, name string) (*ImportResult, error) {
	sheet, err := importer.LoadWorkbook(path, sheetName)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = sheet.Name
	}
	name = strings.TrimSpace(name)

	return s.Import(ctx, name, filepath.Base(path), sheet)
}

// Import stores an already-read sheet as the lesson called name
func (s *LessonService) Import(ctx context.Context, name, source string, sheet *importer.Sheet) (*ImportResult, error) {
	if err := validation.ValidateLessonName(name); err != nil {
		return nil, err
	}
	if len(sheet.Items) == 0 {
		return nil, fmt.Errorf("sheet %q has no vocabulary rows", sheet.Name)
	}
	if err := validation.ValidateItems(sheet.Items); err != nil {
		return nil, fmt.Errorf("invalid vocabulary in sheet %q: %w", sheet.Name, err)
	}

	lesson, err := s.repo.GetLessonByName(name)
	if err != nil {
		return nil, err
	}

	created := false
	if lesson == nil {
		lesson, err = s.repo.CreateLesson(name, fmt.Sprintf("Imported from %s (%s)", source, sheet.Name), source)
		if err != nil {
			return nil, err
		}
		created = true
	}

	items, err := s.repo.ReplaceItems(lesson.ID, sheet.Items)
	if err != nil {
		// A lesson created for this import must not stay behind empty
		if created {
			if delErr := s.repo.DeleteLesson(lesson.ID); delErr != nil {
				log.Printf("Warning: failed to remove lesson %q after failed import: %v", lesson.Name, delErr)
			}
		}
		return nil, err
	}

	log.Printf("Imported %d items into lesson %q (skipped %d rows)", len(items), lesson.Name, sheet.Skipped)

	if s.audio != nil {
		s.prefetch(ctx, items)
	}

	return &ImportResult{
		Lesson:  *lesson,
		Items:   items,
		Skipped: sheet.Skipped,
		Created: created,
	}, nil
}

func (s *LessonService) prefetch(ctx context.Context, items []models.VocabularyItem) {
	var words []string
	for _, item := range items {
		if !item.HasAudio() {
			words = append(words, item.Word)
		}
	}
	if len(words) == 0 {
		return
	}

	generated, err := s.audio.Prefetch(ctx, words)
	if err != nil {
		// Playback falls back to generating on demand
		log.Printf("Warning: audio prefetch stopped after %d of %d words: %v", len(generated), len(words), err)
		return
	}

	if s.debug {
		log.Printf("[DEBUG] Prefetched audio for %d words", len(generated))
	}
}

// ListLessons returns every lesson with its item count
func (s *LessonService) ListLessons() ([]models.LessonSummary, error) {
	return s.repo.ListLessons()
}
