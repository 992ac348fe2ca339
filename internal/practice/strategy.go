package practice

import (
	"time"

	"vocabdrill/internal/models"
)

// Action is a discrete user command the controller can run against the current word
type Action int

const (
	ActionReveal Action = iota
	ActionKnow
	ActionStillLearning
	ActionType
	ActionSubmit
	ActionHint
	ActionSelect
	ActionPlayAudio
)

func (a Action) String() string {
	switch a {
	case ActionReveal:
		return "reveal"
	case ActionKnow:
		return "know"
	case ActionStillLearning:
		return "still-learning"
	case ActionType:
		return "type"
	case ActionSubmit:
		return "submit"
	case ActionHint:
		return "hint"
	case ActionSelect:
		return "select"
	case ActionPlayAudio:
		return "play-audio"
	default:
		return "unknown"
	}
}

// answers reports whether the action confirms or edits an answer
func (a Action) answers() bool {
	switch a {
	case ActionKnow, ActionStillLearning, ActionType, ActionSubmit, ActionHint, ActionSelect:
		return true
	}
	return false
}

// Scratch is the transient state of the word currently presented
type Scratch struct {
	Input          string    `json:"input"`
	HintsUsed      int       `json:"hintsUsed"`
	HasPlayedAudio bool      `json:"hasPlayedAudio"`
	Revealed       bool      `json:"revealed"`
	Selected       string    `json:"selected"`
	Known          bool      `json:"known"`
	Answered       bool      `json:"answered"`
	PresentedAt    time.Time `json:"presentedAt"`
}

// Prompt is what a mode shows for the current word
type Prompt struct {
	Text      string // Empty when the word is presented by audio only
	Detail    string // Pronunciation or part of speech, when the mode shows it
	Revealed  string // Meaning shown after a flashcard reveal
	AudioOnly bool
}

// Strategy encapsulates how one quiz mode presents and evaluates a word
type Strategy interface {
	Mode() models.Mode

	// Allows reports whether action is available for the scratch state
	Allows(action Action, s Scratch) bool

	// Evaluate judges the answer held in the scratch state
	Evaluate(item models.VocabularyItem, s Scratch) models.Evaluation

	// Expected is the answer shown to the learner after confirmation
	Expected(item models.VocabularyItem) string

	Prompt(item models.VocabularyItem, s Scratch) Prompt

	Retryable() bool
}

// NewStrategy returns the strategy for mode, falling back to flashcards
func NewStrategy(mode models.Mode) Strategy {
	switch mode {
	case models.ModeTypedRecall:
		return TypedRecall{}
	case models.ModeMultipleChoice:
		return MultipleChoice{}
	case models.ModeListeningRecall:
		return ListeningRecall{}
	default:
		return Flashcard{}
	}
}

func detail(item models.VocabularyItem) string {
	switch {
	case item.Pronunciation != "" && item.PartOfSpeech != "":
		return item.Pronunciation + " (" + item.PartOfSpeech + ")"
	case item.Pronunciation != "":
		return item.Pronunciation
	default:
		return item.PartOfSpeech
	}
}

// Flashcard shows the word and lets the learner judge themselves
type Flashcard struct{}

func (Flashcard) Mode() models.Mode { return models.ModeFlashcard }

func (Flashcard) Allows(action Action, _ Scratch) bool {
	switch action {
	case ActionReveal, ActionKnow, ActionStillLearning, ActionPlayAudio:
		return true
	}
	return false
}

// Evaluate never uses hints: "I know this" is always perfect, "still learning" always wrong
func (Flashcard) Evaluate(_ models.VocabularyItem, s Scratch) models.Evaluation {
	return models.Evaluation{IsCorrect: s.Known}
}

func (Flashcard) Expected(item models.VocabularyItem) string { return item.Meaning }

func (Flashcard) Prompt(item models.VocabularyItem, s Scratch) Prompt {
	p := Prompt{Text: item.Word, Detail: detail(item)}
	if s.Revealed {
		p.Revealed = item.Meaning
	}
	return p
}

// Retryable is false: a flashcard has no wrong-answer state to return to
func (Flashcard) Retryable() bool { return false }

// TypedRecall shows the meaning and asks for the word
type TypedRecall struct{}

func (TypedRecall) Mode() models.Mode { return models.ModeTypedRecall }

func (TypedRecall) Allows(action Action, _ Scratch) bool {
	switch action {
	case ActionType, ActionSubmit, ActionHint, ActionPlayAudio:
		return true
	}
	return false
}

func (TypedRecall) Evaluate(item models.VocabularyItem, s Scratch) models.Evaluation {
	return models.Evaluation{
		IsCorrect: Equal(s.Input, item.Word),
		HintsUsed: s.HintsUsed,
	}
}

func (TypedRecall) Expected(item models.VocabularyItem) string { return item.Word }

func (TypedRecall) Prompt(item models.VocabularyItem, _ Scratch) Prompt {
	return Prompt{Text: item.Meaning, Detail: item.PartOfSpeech}
}

func (TypedRecall) Retryable() bool { return true }

// MultipleChoice shows the word and a set of meanings to choose from
type MultipleChoice struct{}

func (MultipleChoice) Mode() models.Mode { return models.ModeMultipleChoice }

func (MultipleChoice) Allows(action Action, _ Scratch) bool {
	return action == ActionSelect || action == ActionPlayAudio
}

// Evaluate compares the selection with the meaning exactly; hints do not exist here
func (MultipleChoice) Evaluate(item models.VocabularyItem, s Scratch) models.Evaluation {
	return models.Evaluation{IsCorrect: s.Selected == item.Meaning}
}

func (MultipleChoice) Expected(item models.VocabularyItem) string { return item.Meaning }

func (MultipleChoice) Prompt(item models.VocabularyItem, _ Scratch) Prompt {
	return Prompt{Text: item.Word, Detail: detail(item)}
}

func (MultipleChoice) Retryable() bool { return true }

// ListeningRecall plays the word and asks for it to be typed.
// Typing, checking and hints stay locked until the audio has played once.
type ListeningRecall struct{}

func (ListeningRecall) Mode() models.Mode { return models.ModeListeningRecall }

func (ListeningRecall) Allows(action Action, s Scratch) bool {
	switch action {
	case ActionPlayAudio:
		return true
	case ActionType, ActionSubmit, ActionHint:
		return s.HasPlayedAudio
	}
	return false
}

func (ListeningRecall) Evaluate(item models.VocabularyItem, s Scratch) models.Evaluation {
	return TypedRecall{}.Evaluate(item, s)
}

func (ListeningRecall) Expected(item models.VocabularyItem) string { return item.Word }

func (ListeningRecall) Prompt(_ models.VocabularyItem, _ Scratch) Prompt {
	return Prompt{AudioOnly: true}
}

func (ListeningRecall) Retryable() bool { return true }
