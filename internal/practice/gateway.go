package practice

import "vocabdrill/internal/models"

// SettingsGateway reads and writes the persisted practice preferences.
// Load never fails: missing or malformed data yields the defaults.
type SettingsGateway interface {
	Load() models.Settings
	Save(settings models.Settings) error
}

// AudioGateway plays pronunciation audio. Play must return without waiting for
// playback and must swallow its own failures.
type AudioGateway interface {
	Play(item models.VocabularyItem)
}

// Listener receives session notifications
type Listener interface {
	OnWordComplete(outcome models.AnswerOutcome)
	OnComplete(result models.SessionResult)
}

// ListenerFuncs adapts plain functions to Listener; nil fields are skipped
type ListenerFuncs struct {
	WordComplete func(models.AnswerOutcome)
	Complete     func(models.SessionResult)
}

func (l ListenerFuncs) OnWordComplete(outcome models.AnswerOutcome) {
	if l.WordComplete != nil {
		l.WordComplete(outcome)
	}
}

func (l ListenerFuncs) OnComplete(result models.SessionResult) {
	if l.Complete != nil {
		l.Complete(result)
	}
}

type silentAudio struct{}

func (silentAudio) Play(models.VocabularyItem) {}
