package utils

import (
	"github.com/google/uuid"
)

// GenerateSessionID returns a time-ordered UUIDv7, so session keys sort by the
// moment a session started.
func GenerateSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateItemID returns a random UUIDv4 for a vocabulary item
func GenerateItemID() string {
	return uuid.NewString()
}
