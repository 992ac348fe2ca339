package practice

import (
	"math"
	"time"

	"vocabdrill/internal/models"
)

// Results accumulates the outcomes of a session in presentation order.
// It is append-only apart from RemoveLast, which backs "try again".
type Results struct {
	totalWords int
	outcomes   []models.AnswerOutcome
	elapsed    []time.Duration
}

// NewResults creates an aggregator for a session of totalWords words
func NewResults(totalWords int) *Results {
	return &Results{
		totalWords: totalWords,
		outcomes:   make([]models.AnswerOutcome, 0, totalWords),
		elapsed:    make([]time.Duration, 0, totalWords),
	}
}

// Record appends a confirmed outcome and the time it took to answer
func (r *Results) Record(outcome models.AnswerOutcome, elapsed time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
	r.elapsed = append(r.elapsed, elapsed)
}

// RemoveLast drops the most recent outcome
func (r *Results) RemoveLast() (models.AnswerOutcome, bool) {
	if len(r.outcomes) == 0 {
		return models.AnswerOutcome{}, false
	}

	last := r.outcomes[len(r.outcomes)-1]
	r.outcomes = r.outcomes[:len(r.outcomes)-1]
	r.elapsed = r.elapsed[:len(r.elapsed)-1]

	return last, true
}

// Len returns the number of recorded outcomes
func (r *Results) Len() int {
	return len(r.outcomes)
}

// TotalWords returns the session size fixed at creation
func (r *Results) TotalWords() int {
	return r.totalWords
}

// Outcomes returns a copy of the recorded outcomes
func (r *Results) Outcomes() []models.AnswerOutcome {
	out := make([]models.AnswerOutcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// CorrectCount counts outcomes graded better than incorrect
func (r *Results) CorrectCount() int {
	count := 0
	for _, outcome := range r.outcomes {
		if outcome.Quality.Correct() {
			count++
		}
	}
	return count
}

// Score returns round(correct / totalWords * 100), or 0 for an empty session
func (r *Results) Score() int {
	if r.totalWords <= 0 {
		return 0
	}
	return int(math.Round(float64(r.CorrectCount()) / float64(r.totalWords) * 100))
}

// AverageElapsed returns the mean answer time over recorded outcomes
func (r *Results) AverageElapsed() time.Duration {
	if len(r.elapsed) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range r.elapsed {
		total += d
	}

	return total / time.Duration(len(r.elapsed))
}

// Result builds the session result from what has been recorded
func (r *Results) Result() models.SessionResult {
	return models.SessionResult{
		Score:    r.Score(),
		Outcomes: r.Outcomes(),
	}
}
