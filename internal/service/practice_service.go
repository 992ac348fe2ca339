package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"vocabdrill/internal/event"
	"vocabdrill/internal/models"
	"vocabdrill/internal/practice"
	"vocabdrill/internal/utils"
)

const defaultHistoryLimit = 10

// ErrLessonNotFound is returned when a lesson ID does not exist
var ErrLessonNotFound = errors.New("lesson not found")

// LessonStore loads lessons to practice
type LessonStore interface {
	GetLessonWithItems(lessonID int64) (*models.LessonWithItems, error)
}

// ResultStore persists finished sessions
type ResultStore interface {
	SaveSession(record *models.SessionRecord) error
	GetRecentSessions(lessonID int64, limit int) ([]models.SessionRecord, error)
}

// SessionReporter delivers a summary of a finished session
type SessionReporter interface {
	SendSessionReport(ctx context.Context, lesson models.Lesson, record models.SessionRecord, items []models.VocabularyItem) error
}

// Session is a practice session started by the service
type Session struct {
	ID         string
	Lesson     models.Lesson
	Items      []models.VocabularyItem
	StartedAt  time.Time
	Controller *practice.Controller
}

// PracticeService starts practice sessions and records their results
type PracticeService struct {
	lessons   LessonStore
	results   ResultStore
	settings  practice.SettingsGateway
	audio     practice.AudioGateway
	publisher event.Publisher
	reporter  SessionReporter
	debug     bool

	now     func() time.Time
	newRand func() *rand.Rand
}

// NewPracticeService creates a new practice service. publisher and reporter may be nil.
func NewPracticeService(
	lessons LessonStore,
	results ResultStore,
	settings practice.SettingsGateway,
	audio practice.AudioGateway,
	publisher event.Publisher,
	reporter SessionReporter,
	debug bool,
) *PracticeService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &PracticeService{
		lessons:   lessons,
		results:   results,
		settings:  settings,
		audio:     audio,
		publisher: publisher,
		reporter:  reporter,
		debug:     debug,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// StartSession loads the lesson, reads the settings once and starts a
// controller over its items. listener may be nil.
func (s *PracticeService) StartSession(ctx context.Context, lessonID int64, listener practice.Listener) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lesson, err := s.lessons.GetLessonWithItems(lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	settings := s.settings.Load()

	opts := []practice.Option{
		practice.WithRand(s.newRand()),
		practice.WithClock(s.now),
	}
	if listener != nil {
		opts = append(opts, practice.WithListener(listener))
	}
	if s.audio != nil {
		opts = append(opts, practice.WithAudio(s.audio))
	}

	session := &Session{
		ID:         utils.GenerateSessionID(),
		Lesson:     lesson.Lesson,
		Items:      lesson.Items,
		StartedAt:  s.now(),
		Controller: practice.New(settings, opts...),
	}

	if err := session.Controller.Start(lesson.Items); err != nil {
		return nil, err
	}

	if s.debug {
		log.Printf("[DEBUG] Started session %s: lesson=%d mode=%s words=%d",
			session.ID, lessonID, session.Controller.Mode(), len(lesson.Items))
	}

	return session, nil
}

// Finish persists a completed session, then publishes its grades and sends
// the report. Only the persistence error is returned; delivery problems are logged.
func (s *PracticeService) Finish(ctx context.Context, session *Session, result models.SessionResult) (*models.SessionRecord, error) {
	completedAt := s.now()

	record := &models.SessionRecord{
		ID:           session.ID,
		LessonID:     session.Lesson.ID,
		Mode:         session.Controller.Mode(),
		Score:        result.Score,
		TotalWords:   len(session.Items),
		CorrectWords: result.CorrectCount(),
		StartedAt:    session.StartedAt,
		CompletedAt:  completedAt,
		Outcomes:     result.Outcomes,
	}

	if err := s.results.SaveSession(record); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	for _, outcome := range result.Outcomes {
		payload := event.ReviewGraded{
			SessionID:    record.ID,
			LessonID:     record.LessonID,
			ReviewUpdate: models.NewReviewUpdate(outcome, completedAt),
		}
		if err := s.publisher.Publish(ctx, event.TypeReviewGraded, payload); err != nil {
			log.Printf("Failed to publish review for %s: %v", outcome.ItemID, err)
		}
	}

	summary := event.SessionCompleted{
		SessionID:    record.ID,
		LessonID:     record.LessonID,
		Mode:         record.Mode,
		Score:        record.Score,
		TotalWords:   record.TotalWords,
		CorrectWords: record.CorrectWords,
		Answered:     len(record.Outcomes),
	}
	if err := s.publisher.Publish(ctx, event.TypeSessionCompleted, summary); err != nil {
		log.Printf("Failed to publish session %s: %v", record.ID, err)
	}

	if s.reporter != nil {
		if err := s.reporter.SendSessionReport(ctx, session.Lesson, *record, session.Items); err != nil {
			log.Printf("Failed to send report for session %s: %v", record.ID, err)
		}
	}

	log.Printf("Session %s finished: lesson=%s score=%d%% (%d/%d)",
		record.ID, session.Lesson.Name, record.Score, record.CorrectWords, record.TotalWords)

	return record, nil
}

// History lists the most recent sessions of a lesson
func (s *PracticeService) History(ctx context.Context, lessonID int64, limit int) ([]models.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.results.GetRecentSessions(lessonID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}
