package service

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

type memoryStore struct {
	values map[string]string
	getErr error
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) GetSetting(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", repository.ErrSettingNotFound
	}
	return value, nil
}

func (m *memoryStore) SetSetting(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// fakeLessons keeps lessons and items in memory
type fakeLessons struct {
	lessons    []models.Lesson
	items      map[int64][]models.VocabularyItem
	nextID     int64
	replaceErr error
}

func newFakeLessons() *fakeLessons {
	return &fakeLessons{items: make(map[int64][]models.VocabularyItem)}
}

func (f *fakeLessons) add(name string, items ...models.VocabularyItem) models.Lesson {
	lesson, _ := f.CreateLesson(name, "", "")
	f.ReplaceItems(lesson.ID, items)
	return *lesson
}

func (f *fakeLessons) CreateLesson(name, description, sourceFile string) (*models.Lesson, error) {
	f.nextID++
	lesson := models.Lesson{ID: f.nextID, Name: name, Description: description, SourceFile: sourceFile}
	f.lessons = append(f.lessons, lesson)
	return &lesson, nil
}

func (f *fakeLessons) GetLessonByName(name string) (*models.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.Name == name {
			l := lesson
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeLessons) ListLessons() ([]models.LessonSummary, error) {
	var out []models.LessonSummary
	for _, lesson := range f.lessons {
		out = append(out, models.LessonSummary{Lesson: lesson, ItemCount: len(f.items[lesson.ID])})
	}
	return out, nil
}

func (f *fakeLessons) DeleteLesson(lessonID int64) error {
	for i, lesson := range f.lessons {
		if lesson.ID == lessonID {
			f.lessons = append(f.lessons[:i], f.lessons[i+1:]...)
			break
		}
	}
	delete(f.items, lessonID)
	return nil
}

func (f *fakeLessons) ReplaceItems(lessonID int64, items []models.VocabularyItem) ([]models.VocabularyItem, error) {
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	saved := make([]models.VocabularyItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = item.Word
		}
		item.LessonID = lessonID
		item.Position = i
		saved[i] = item
	}
	f.items[lessonID] = saved
	return saved, nil
}

func (f *fakeLessons) GetLessonItems(lessonID int64) ([]models.VocabularyItem, error) {
	return f.items[lessonID], nil
}

func (f *fakeLessons) GetLessonWithItems(lessonID int64) (*models.LessonWithItems, error) {
	for _, lesson := range f.lessons {
		if lesson.ID == lessonID {
			return &models.LessonWithItems{Lesson: lesson, Items: f.items[lessonID]}, nil
		}
	}
	return nil, nil
}

type fakeResults struct {
	records []models.SessionRecord
	saveErr error
	limits  []int
}

func (f *fakeResults) SaveSession(record *models.SessionRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeResults) GetRecentSessions(lessonID int64, limit int) ([]models.SessionRecord, error) {
	f.limits = append(f.limits, limit)
	var out []models.SessionRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].LessonID == lessonID {
			out = append(out, f.records[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeResults) SessionExists(sessionID string) (bool, error) {
	for _, record := range f.records {
		if record.ID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingReporter struct {
	records []models.SessionRecord
	err     error
}

func (r *recordingReporter) SendSessionReport(_ context.Context, _ models.Lesson, record models.SessionRecord, _ []models.VocabularyItem) error {
	r.records = append(r.records, record)
	return r.err
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

type fakePrefetcher struct {
	words []string
	err   error
}

func (f *fakePrefetcher) Prefetch(_ context.Context, words []string) (map[string]string, error) {
	f.words = append(f.words, words...)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(words))
	for _, w := range words {
		out[w] = w + ".mp3"
	}
	return out, nil
}

var errBoom = errors.New("boom")
