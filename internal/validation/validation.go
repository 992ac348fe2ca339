package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"vocabdrill/internal/models"
)

const (
	MaxLessonNameLength = 100
	MaxWordLength       = 100
	MaxMeaningLength    = 500
	MaxExampleLength    = 500
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateLessonName checks if a lesson name is valid
func ValidateLessonName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "lesson name is required"}
	}
	if utf8.RuneCountInString(name) > MaxLessonNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("lesson name must be at most %d characters", MaxLessonNameLength)}
	}
	return nil
}

// ValidateItem checks that a vocabulary item can be practiced
func ValidateItem(item models.VocabularyItem) error {
	word := strings.TrimSpace(item.Word)
	if word == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", MaxWordLength)}
	}

	meaning := strings.TrimSpace(item.Meaning)
	if meaning == "" {
		return ValidationError{Field: "meaning", Message: "meaning is required"}
	}
	if utf8.RuneCountInString(meaning) > MaxMeaningLength {
		return ValidationError{Field: "meaning", Message: fmt.Sprintf("meaning must be at most %d characters", MaxMeaningLength)}
	}

	for _, example := range item.Examples {
		if utf8.RuneCountInString(example) > MaxExampleLength {
			return ValidationError{Field: "examples", Message: fmt.Sprintf("examples must be at most %d characters", MaxExampleLength)}
		}
	}

	return nil
}

// ValidateItems checks every item and rejects words that appear twice.
// All problems are reported together, each prefixed with its row.
func ValidateItems(items []models.VocabularyItem) error {
	var errs []error
	seen := make(map[string]int, len(items))

	for i, item := range items {
		if err := ValidateItem(item); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}

		key := strings.ToLower(strings.TrimSpace(item.Word))
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, ValidationError{
				Field:   "word",
				Message: fmt.Sprintf("duplicate of item %d", first),
			}))
			continue
		}
		seen[key] = i + 1
	}

	return errors.Join(errs...)
}

// ValidateSettings checks persisted practice settings
func ValidateSettings(settings models.Settings) error {
	if !settings.Mode.Valid() {
		return ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", settings.Mode)}
	}
	return nil
}
