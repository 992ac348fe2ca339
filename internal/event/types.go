package event

import (
	"encoding/json"
	"time"

	"vocabdrill/internal/models"
)

// Routing keys published on the topic exchange
const (
	TypeReviewGraded     = "review.graded"
	TypeSessionCompleted = "session.completed"
)

// Envelope wraps every published payload
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// ReviewGraded carries one graded word to the spaced-repetition scheduler
type ReviewGraded struct {
	SessionID string `json:"sessionId"`
	LessonID  int64  `json:"lessonId"`
	models.ReviewUpdate
}

// SessionCompleted summarizes a finished session
type SessionCompleted struct {
	SessionID    string      `json:"sessionId"`
	LessonID     int64       `json:"lessonId"`
	Mode         models.Mode `json:"mode"`
	Score        int         `json:"score"`
	TotalWords   int         `json:"totalWords"`
	CorrectWords int         `json:"correctWords"`
	Answered     int         `json:"answered"`
}

// Encode marshals an event envelope
func Encode(eventType string, payload interface{}, at time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    payload,
	})
}
