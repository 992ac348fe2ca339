package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vocabdrill/internal/models"
)

const backupVersion = "1.0"

// BackupData represents a complete export of lessons and practice history
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Lessons    []LessonBackup `json:"lessons"`
}

// LessonBackup represents a lesson with its items and sessions
type LessonBackup struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SourceFile  string          `json:"source_file,omitempty"`
	Items       []ItemBackup    `json:"items"`
	Sessions    []SessionBackup `json:"sessions,omitempty"`
}

// ItemBackup represents a vocabulary item
type ItemBackup struct {
	ID            string   `json:"id"`
	Word          string   `json:"word"`
	Meaning       string   `json:"meaning"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	PartOfSpeech  string   `json:"part_of_speech,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	AudioRef      string   `json:"audio_ref,omitempty"`
	ImageRef      string   `json:"image_ref,omitempty"`
}

// SessionBackup represents a finished practice session
type SessionBackup struct {
	ID           string                 `json:"id"`
	Mode         models.Mode            `json:"mode"`
	Score        int                    `json:"score"`
	TotalWords   int                    `json:"total_words"`
	CorrectWords int                    `json:"correct_words"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  time.Time              `json:"completed_at"`
	Outcomes     []models.AnswerOutcome `json:"outcomes"`
}

// BackupLessons is the lesson storage used for backups
type BackupLessons interface {
	LessonRepository
	GetLessonItems(lessonID int64) ([]models.VocabularyItem, error)
}

// BackupResults is the session storage used for backups
type BackupResults interface {
	ResultStore
	SessionExists(sessionID string) (bool, error)
}

// BackupService exports and restores lessons and practice history as JSON
type BackupService struct {
	lessons BackupLessons
	results BackupResults
}

// NewBackupService creates a new backup service
func NewBackupService(lessons BackupLessons, results BackupResults) *BackupService {
	return &BackupService{lessons: lessons, results: results}
}

// Export writes a backup to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	items, sessions := backup.counts()
	log.Printf("Exported %d lessons, %d items, %d sessions to %s", len(backup.Lessons), items, sessions, outputPath)
	return nil
}

// ExportToWriter writes a backup to w and returns what was written
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now(),
	}

	lessons, err := s.lessons.ListLessons()
	if err != nil {
		return nil, fmt.Errorf("failed to export lessons: %w", err)
	}

	for _, lesson := range lessons {
		entry, err := s.exportLesson(lesson.Lesson)
		if err != nil {
			return nil, fmt.Errorf("failed to export lesson %q: %w", lesson.Name, err)
		}
		backup.Lessons = append(backup.Lessons, entry)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	return backup, nil
}

func (s *BackupService) exportLesson(lesson models.Lesson) (LessonBackup, error) {
	entry := LessonBackup{
		Name:        lesson.Name,
		Description: lesson.Description,
		SourceFile:  lesson.SourceFile,
	}

	items, err := s.lessons.GetLessonItems(lesson.ID)
	if err != nil {
		return entry, err
	}
	for _, item := range items {
		entry.Items = append(entry.Items, ItemBackup{
			ID:            item.ID,
			Word:          item.Word,
			Meaning:       item.Meaning,
			Pronunciation: item.Pronunciation,
			PartOfSpeech:  item.PartOfSpeech,
			Examples:      item.Examples,
			AudioRef:      item.AudioRef,
			ImageRef:      item.ImageRef,
		})
	}

	sessions, err := s.results.GetRecentSessions(lesson.ID, 0)
	if err != nil {
		return entry, err
	}
	for _, record := range sessions {
		entry.Sessions = append(entry.Sessions, SessionBackup{
			ID:           record.ID,
			Mode:         record.Mode,
			Score:        record.Score,
			TotalWords:   record.TotalWords,
			CorrectWords: record.CorrectWords,
			StartedAt:    record.StartedAt,
			CompletedAt:  record.CompletedAt,
			Outcomes:     record.Outcomes,
		})
	}

	return entry, nil
}

// Import restores a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup. Lessons are matched by name and their
// items replaced; sessions already present are skipped.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	for _, entry := range backup.Lessons {
		if err := s.importLesson(entry); err != nil {
			return fmt.Errorf("failed to import lesson %q: %w", entry.Name, err)
		}
	}

	items, sessions := backup.counts()
	log.Printf("Import completed: %d lessons, %d items, %d sessions", len(backup.Lessons), items, sessions)
	return nil
}

func (s *BackupService) importLesson(entry LessonBackup) error {
	lesson, err := s.lessons.GetLessonByName(entry.Name)
	if err != nil {
		return err
	}
	if lesson == nil {
		lesson, err = s.lessons.CreateLesson(entry.Name, entry.Description, entry.SourceFile)
		if err != nil {
			return err
		}
	}

	items := make([]models.VocabularyItem, len(entry.Items))
	for i, item := range entry.Items {
		items[i] = models.VocabularyItem{
			ID:            item.ID,
			Word:          item.Word,
			Meaning:       item.Meaning,
			Pronunciation: item.Pronunciation,
			PartOfSpeech:  item.PartOfSpeech,
			Examples:      item.Examples,
			AudioRef:      item.AudioRef,
			ImageRef:      item.ImageRef,
		}
	}
	if _, err := s.lessons.ReplaceItems(lesson.ID, items); err != nil {
		return err
	}

	for _, session := range entry.Sessions {
		exists, err := s.results.SessionExists(session.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := s.results.SaveSession(&models.SessionRecord{
			ID:           session.ID,
			LessonID:     lesson.ID,
			Mode:         session.Mode,
			Score:        session.Score,
			TotalWords:   session.TotalWords,
			CorrectWords: session.CorrectWords,
			StartedAt:    session.StartedAt,
			CompletedAt:  session.CompletedAt,
			Outcomes:     session.Outcomes,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (b *BackupData) counts() (items, sessions int) {
	for _, lesson := range b.Lessons {
		items += len(lesson.Items)
		sessions += len(lesson.Sessions)
	}
	return items, sessions
}
