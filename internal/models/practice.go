package models

import (
	"fmt"
	"time"
)

// Mode is the quiz mode a practice session runs in
type Mode string

const (
	ModeFlashcard       Mode = "flashcard"
	ModeTypedRecall     Mode = "typed-recall"
	ModeMultipleChoice  Mode = "multiple-choice"
	ModeListeningRecall Mode = "listening-recall"
)

// Modes lists every supported mode in menu order
var Modes = []Mode{ModeFlashcard, ModeTypedRecall, ModeMultipleChoice, ModeListeningRecall}

// Valid reports whether m is one of the supported modes
func (m Mode) Valid() bool {
	for _, mode := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ParseMode converts a string into a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown practice mode: %q", s)
	}
	return m, nil
}

// Settings holds the persisted practice preferences
type Settings struct {
	Mode      Mode `json:"mode"`
	AutoCheck bool `json:"autoCheck"`
}

// DefaultSettings returns the settings used when nothing valid is persisted
func DefaultSettings() Settings {
	return Settings{
		Mode:      ModeFlashcard,
		AutoCheck: true,
	}
}

// Quality is the graded outcome of one confirmed answer.
// Values are ordered from worst to best recall.
type Quality int

const (
	QualityIncorrect Quality = iota
	QualityCorrectWithDifficulty
	QualityCorrectWithHesitation
	QualityPerfect
)

func (q Quality) String() string {
	switch q {
	case QualityIncorrect:
		return "INCORRECT"
	case QualityCorrectWithDifficulty:
		return "CORRECT_WITH_DIFFICULTY"
	case QualityCorrectWithHesitation:
		return "CORRECT_WITH_HESITATION"
	case QualityPerfect:
		return "PERFECT"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality converts a grade name back into a Quality
func ParseQuality(s string) (Quality, error) {
	for q := QualityIncorrect; q <= QualityPerfect; q++ {
		if q.String() == s {
			return q, nil
		}
	}
	return QualityIncorrect, fmt.Errorf("unknown quality: %q", s)
}

// MarshalText encodes the grade by name
func (q Quality) MarshalText() ([]byte, error) {
	if q < QualityIncorrect || q > QualityPerfect {
		return nil, fmt.Errorf("invalid quality: %d", int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText decodes a grade name
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Correct reports whether the grade counts towards the session score
func (q Quality) Correct() bool {
	return q > QualityIncorrect && q <= QualityPerfect
}

// SM2 maps the grade onto the 0-5 SuperMemo response scale
func (q Quality) SM2() int {
	switch q {
	case QualityPerfect:
		return 5
	case QualityCorrectWithHesitation:
		return 4
	case QualityCorrectWithDifficulty:
		return 3
	default:
		return 1
	}
}

// Evaluation is what a mode produces when an answer is confirmed
type Evaluation struct {
	IsCorrect bool
	HintsUsed int
}

// AnswerOutcome records the grade of one confirmed answer
type AnswerOutcome struct {
	ItemID  string  `json:"itemId"`
	Quality Quality `json:"quality"`
}

// SessionResult is emitted once when a session completes
type SessionResult struct {
	Score    int             `json:"score"` // 0-100
	Outcomes []AnswerOutcome `json:"outcomes"`
}

// CorrectCount counts outcomes that were answered correctly
func (r SessionResult) CorrectCount() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Quality.Correct() {
			count++
		}
	}
	return count
}

// ReviewUpdate is the contract handed to the external spaced-repetition scheduler
type ReviewUpdate struct {
	ItemID     string    `json:"itemId"`
	Quality    Quality   `json:"quality"`
	SM2        int       `json:"sm2"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// NewReviewUpdate builds the scheduler contract for an outcome
func NewReviewUpdate(outcome AnswerOutcome, reviewedAt time.Time) ReviewUpdate {
	return ReviewUpdate{
		ItemID:     outcome.ItemID,
		Quality:    outcome.Quality,
		SM2:        outcome.Quality.SM2(),
		ReviewedAt: reviewedAt,
	}
}

// SessionRecord represents a completed practice session persisted in the database
type SessionRecord struct {
	ID           string
	LessonID     int64
	Mode         Mode
	Score        int
	TotalWords   int
	CorrectWords int
	StartedAt    time.Time
	CompletedAt  time.Time
	Outcomes     []AnswerOutcome
}
