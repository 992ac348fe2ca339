package models

import "time"

// Lesson represents a named set of vocabulary items, usually one workbook sheet
type Lesson struct {
	ID          int64
	Name        string
	Description string
	SourceFile  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VocabularyItem represents a word to practice together with its meaning
type VocabularyItem struct {
	ID            string
	LessonID      int64
	Word          string
	Meaning       string
	Pronunciation string   // Optional
	PartOfSpeech  string   // Optional
	AudioRef      string   // Optional: local path or http(s) URL
	ImageRef      string   // Optional
	Examples      []string // Optional, ordered
	Position      int
}

// HasAudio reports whether the item carries its own pronunciation audio
func (v VocabularyItem) HasAudio() bool {
	return v.AudioRef != ""
}

// LessonWithItems combines a lesson with its vocabulary items
type LessonWithItems struct {
	Lesson Lesson
	Items  []VocabularyItem
}

// LessonSummary extends Lesson with its item count
type LessonSummary struct {
	Lesson
	ItemCount int
}
