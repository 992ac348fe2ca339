package practice

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"vocabdrill/internal/models"
)

type recordingListener struct {
	words   []models.AnswerOutcome
	results []models.SessionResult
}

func (l *recordingListener) OnWordComplete(outcome models.AnswerOutcome) {
	l.words = append(l.words, outcome)
}

func (l *recordingListener) OnComplete(result models.SessionResult) {
	l.results = append(l.results, result)
}

type recordingAudio struct {
	played []string
}

func (a *recordingAudio) Play(item models.VocabularyItem) {
	a.played = append(a.played, item.ID)
}

// stepClock advances by step every time it is read
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func animals() []models.VocabularyItem {
	return []models.VocabularyItem{
		{ID: "a", Word: "cat", Meaning: "mèo"},
		{ID: "b", Word: "dog", Meaning: "chó"},
		{ID: "c", Word: "bird", Meaning: "chim"},
	}
}

func newController(t *testing.T, mode models.Mode, autoCheck bool) (*Controller, *recordingListener, *recordingAudio) {
	t.Helper()
	listener := &recordingListener{}
	audio := &recordingAudio{}
	c := New(
		models.Settings{Mode: mode, AutoCheck: autoCheck},
		WithListener(listener),
		WithAudio(audio),
		WithRand(rand.New(rand.NewSource(3))),
		WithClock(stepClock(time.Second)),
	)
	return c, listener, audio
}

func TestStartEmptyCompletesImmediately(t *testing.T) {
	c, listener, _ := newController(t, models.ModeTypedRecall, true)

	if err := c.Start(nil); err != nil {
		t.Fatalf("Start(nil) error = %v", err)
	}

	if c.State().Status != StatusCompleted {
		t.Errorf("Status = %v, want %v", c.State().Status, StatusCompleted)
	}
	if len(listener.results) != 1 {
		t.Fatalf("OnComplete called %d times, want 1", len(listener.results))
	}
	if listener.results[0].Score != 0 || len(listener.results[0].Outcomes) != 0 {
		t.Errorf("result = %+v, want score 0 and no outcomes", listener.results[0])
	}

	if err := c.Advance(); err != nil {
		t.Errorf("Advance() after completion error = %v", err)
	}
	if _, err := c.Complete(); err != nil {
		t.Errorf("Complete() after completion error = %v", err)
	}
	if len(listener.results) != 1 {
		t.Errorf("OnComplete called %d times after repeat calls, want 1", len(listener.results))
	}
}

func TestStartTwice(t *testing.T) {
	c, _, _ := newController(t, models.ModeFlashcard, true)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(animals()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want %v", err, ErrAlreadyStarted)
	}
}

func TestQueueIsPermutation(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		items := makePool(7)
		c := New(models.DefaultSettings(), WithRand(rand.New(rand.NewSource(seed))))
		if err := c.Start(items); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		queue := c.Queue()
		if len(queue) != len(items) {
			t.Fatalf("len(Queue()) = %d, want %d", len(queue), len(items))
		}

		got := make([]string, len(queue))
		want := make([]string, len(items))
		for i := range queue {
			got[i] = queue[i].ID
			want[i] = items[i].ID
		}
		sort.Strings(got)
		sort.Strings(want)
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("seed %d: queue ids %v are not a permutation of %v", seed, got, want)
			}
		}
	}
}

func TestIdleMisuse(t *testing.T) {
	c, _, _ := newController(t, models.ModeTypedRecall, true)

	if err := c.Advance(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Advance() error = %v, want %v", err, ErrNotStarted)
	}
	if err := c.TryAgain(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("TryAgain() error = %v, want %v", err, ErrNotStarted)
	}
	if _, err := c.Submit(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Submit() error = %v, want %v", err, ErrNotStarted)
	}
	if _, err := c.Complete(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Complete() error = %v, want %v", err, ErrNotStarted)
	}
}

func TestTypedRecallScenario(t *testing.T) {
	c, listener, _ := newController(t, models.ModeTypedRecall, true)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		item, ok := c.Current()
		if !ok {
			t.Fatalf("no current word at step %d", i)
		}

		switch item.ID {
		case "a":
			feedback, err := c.Type("cat")
			if err != nil || feedback == nil {
				t.Fatalf("Type(cat) = %v, %v, want auto-checked feedback", feedback, err)
			}
		case "b":
			if feedback, err := c.Type("dogg"); err != nil || feedback != nil {
				t.Fatalf("Type(dogg) = %v, %v, want no confirmation", feedback, err)
			}
			hint, err := c.Hint()
			if err != nil || hint != "dog" {
				t.Fatalf("Hint() = %q, %v, want dog", hint, err)
			}
			feedback, err := c.Type("dog")
			if err != nil || feedback == nil {
				t.Fatalf("Type(dog) = %v, %v, want auto-checked feedback", feedback, err)
			}
		case "c":
			if feedback, err := c.Type("fish"); err != nil || feedback != nil {
				t.Fatalf("Type(fish) = %v, %v, want no confirmation", feedback, err)
			}
			feedback, err := c.Submit()
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if feedback.Expected != "bird" {
				t.Errorf("Expected = %q, want bird", feedback.Expected)
			}
		}

		if err := c.Advance(); err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	want := map[string]models.Quality{
		"a": models.QualityPerfect,
		"b": models.QualityCorrectWithHesitation,
		"c": models.QualityIncorrect,
	}

	if len(listener.results) != 1 {
		t.Fatalf("OnComplete called %d times, want 1", len(listener.results))
	}
	result := listener.results[0]
	if result.Score != 67 {
		t.Errorf("Score = %d, want 67", result.Score)
	}

	queue := c.Queue()
	if len(result.Outcomes) != len(queue) {
		t.Fatalf("len(Outcomes) = %d, want %d", len(result.Outcomes), len(queue))
	}
	for i, outcome := range result.Outcomes {
		if outcome.ItemID != queue[i].ID {
			t.Errorf("outcome %d is for %q, want %q (presentation order)", i, outcome.ItemID, queue[i].ID)
		}
		if outcome.Quality != want[outcome.ItemID] {
			t.Errorf("outcome for %q = %v, want %v", outcome.ItemID, outcome.Quality, want[outcome.ItemID])
		}
	}

	if len(listener.words) != 3 {
		t.Errorf("OnWordComplete called %d times, want 3", len(listener.words))
	}
}

func TestTypedRecallWithoutAutoCheck(t *testing.T) {
	c, _, _ := newController(t, models.ModeTypedRecall, false)
	if err := c.Start(animals()[:1]); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if feedback, err := c.Type("cat"); err != nil || feedback != nil {
		t.Fatalf("Type() = %v, %v, want no confirmation without auto-check", feedback, err)
	}

	feedback, err := c.Enter()
	if err != nil || feedback == nil {
		t.Fatalf("Enter() = %v, %v, want submitted feedback", feedback, err)
	}
	if feedback.Outcome.Quality != models.QualityPerfect {
		t.Errorf("Quality = %v, want %v", feedback.Outcome.Quality, models.QualityPerfect)
	}

	if _, err := c.Submit(); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("second Submit() error = %v, want %v", err, ErrAlreadyAnswered)
	}

	if _, err := c.Enter(); err != nil {
		t.Fatalf("Enter() on answered word error = %v", err)
	}
	if c.State().Status != StatusCompleted {
		t.Errorf("Status = %v, want %v", c.State().Status, StatusCompleted)
	}
}

func TestHintsDownGrade(t *testing.T) {
	c, _, _ := newController(t, models.ModeTypedRecall, false)
	if err := c.Start([]models.VocabularyItem{{ID: "h", Word: "hello", Meaning: "xin chào"}}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, want := range []string{"h", "he"} {
		hint, err := c.Hint()
		if err != nil || hint != want {
			t.Fatalf("Hint() = %q, %v, want %q", hint, err, want)
		}
	}
	if _, err := c.Type("hello"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}

	feedback, err := c.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if feedback.Evaluation.HintsUsed != 2 || feedback.Outcome.Quality != models.QualityCorrectWithDifficulty {
		t.Errorf("feedback = %+v, want 2 hints graded with difficulty", feedback)
	}
}

func TestTryAgain(t *testing.T) {
	c, listener, _ := newController(t, models.ModeTypedRecall, false)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := c.TryAgain(); !errors.Is(err, ErrNothingToRetry) {
		t.Fatalf("TryAgain() before answering error = %v, want %v", err, ErrNothingToRetry)
	}

	item, _ := c.Current()
	if _, err := c.Hint(); err != nil {
		t.Fatalf("Hint() error = %v", err)
	}
	if _, err := c.Type("wrong"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if _, err := c.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	before := len(c.Outcomes())
	index := c.State().Index

	if err := c.TryAgain(); err != nil {
		t.Fatalf("TryAgain() error = %v", err)
	}

	if got := len(c.Outcomes()); got != before-1 {
		t.Errorf("len(Outcomes()) = %d, want %d", got, before-1)
	}
	if c.State().Index != index {
		t.Errorf("Index = %d, want unchanged %d", c.State().Index, index)
	}
	scratch := c.State().Scratch
	if scratch.Input != "" || scratch.HintsUsed != 0 || scratch.Answered {
		t.Errorf("scratch after retry = %+v, want cleared", scratch)
	}
	if again, _ := c.Current(); again.ID != item.ID {
		t.Errorf("retried word = %q, want %q", again.ID, item.ID)
	}

	if _, err := c.Type(item.Word); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	feedback, err := c.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if feedback.Outcome.Quality != models.QualityPerfect {
		t.Errorf("Quality after retry = %v, want %v", feedback.Outcome.Quality, models.QualityPerfect)
	}

	if err := c.Advance(); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if len(listener.words) != 1 || listener.words[0].Quality != models.QualityPerfect {
		t.Errorf("OnWordComplete = %+v, want only the retried answer", listener.words)
	}
}

func TestFlashcard(t *testing.T) {
	items := animals()
	items[0].AudioRef = "cat.mp3"

	c, listener, audio := newController(t, models.ModeFlashcard, true)
	if err := c.Start(items); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := c.Type("cat"); !errors.Is(err, ErrActionUnavailable) {
		t.Errorf("Type() in flashcard mode error = %v, want %v", err, ErrActionUnavailable)
	}

	for i := 0; i < 3; i++ {
		item, _ := c.Current()
		if err := c.Reveal(); err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}
		if prompt, _ := c.Prompt(); prompt.Revealed != item.Meaning {
			t.Errorf("revealed prompt = %+v, want meaning %q", prompt, item.Meaning)
		}

		var feedback Feedback
		var err error
		if item.ID == "b" {
			feedback, err = c.StillLearning()
		} else {
			feedback, err = c.Know()
		}
		if err != nil {
			t.Fatalf("judge error = %v", err)
		}

		if item.ID == "b" && feedback.Outcome.Quality != models.QualityIncorrect {
			t.Errorf("still learning graded %v", feedback.Outcome.Quality)
		}
		if item.ID != "b" && feedback.Outcome.Quality != models.QualityPerfect {
			t.Errorf("know graded %v", feedback.Outcome.Quality)
		}

		if err := c.TryAgain(); !errors.Is(err, ErrRetryUnsupported) {
			t.Errorf("TryAgain() error = %v, want %v", err, ErrRetryUnsupported)
		}
		if err := c.Advance(); err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	if len(audio.played) != 1 || audio.played[0] != "a" {
		t.Errorf("played = %v, want autoplay only for the item with audio", audio.played)
	}
	if listener.results[0].Score != 67 {
		t.Errorf("Score = %d, want 67", listener.results[0].Score)
	}
}

func TestMultipleChoice(t *testing.T) {
	items := append(animals(), models.VocabularyItem{ID: "d", Word: "fish", Meaning: "cá"})

	c, listener, _ := newController(t, models.ModeMultipleChoice, true)
	if err := c.Start(items); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := c.Hint(); !errors.Is(err, ErrActionUnavailable) {
		t.Errorf("Hint() in multiple choice error = %v, want %v", err, ErrActionUnavailable)
	}

	options, err := c.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("len(Options()) = %d, want 4", len(options))
	}

	again, _ := c.Options()
	for i := range options {
		if options[i] != again[i] {
			t.Fatalf("options changed between calls: %v vs %v", options, again)
		}
	}

	if _, err := c.Select("not an option"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Select(unknown) error = %v, want %v", err, ErrUnknownOption)
	}

	item, _ := c.Current()
	var wrong string
	for _, o := range options {
		if o != item.Meaning {
			wrong = o
			break
		}
	}

	feedback, err := c.Select(wrong)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if feedback.Outcome.Quality != models.QualityIncorrect || feedback.Expected != item.Meaning {
		t.Errorf("feedback = %+v, want incorrect with expected %q", feedback, item.Meaning)
	}
	if _, err := c.Select(item.Meaning); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("second Select() error = %v, want %v", err, ErrAlreadyAnswered)
	}

	if err := c.TryAgain(); err != nil {
		t.Fatalf("TryAgain() error = %v", err)
	}
	retried, _ := c.Options()
	for i := range options {
		if options[i] != retried[i] {
			t.Fatalf("options changed after retry: %v vs %v", options, retried)
		}
	}

	feedback, err = c.Select(item.Meaning)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if feedback.Outcome.Quality != models.QualityPerfect {
		t.Errorf("Quality = %v, want %v", feedback.Outcome.Quality, models.QualityPerfect)
	}

	result, err := c.Complete()
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Score != 25 || len(result.Outcomes) != 1 {
		t.Errorf("result = %+v, want score 25 with one outcome", result)
	}
	if len(listener.words) != 1 || len(listener.results) != 1 {
		t.Errorf("notifications = %d words, %d completions", len(listener.words), len(listener.results))
	}
}

func TestListeningRecallGate(t *testing.T) {
	c, _, audio := newController(t, models.ModeListeningRecall, true)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, action := range []Action{ActionType, ActionSubmit, ActionHint} {
		if c.Available(action) {
			t.Errorf("%v available before playback", action)
		}
	}
	if _, err := c.Type("cat"); !errors.Is(err, ErrActionUnavailable) {
		t.Errorf("Type() before playback error = %v, want %v", err, ErrActionUnavailable)
	}
	if _, err := c.Hint(); !errors.Is(err, ErrActionUnavailable) {
		t.Errorf("Hint() before playback error = %v, want %v", err, ErrActionUnavailable)
	}

	if err := c.PlayAudio(); err != nil {
		t.Fatalf("PlayAudio() error = %v", err)
	}
	for _, action := range []Action{ActionType, ActionSubmit, ActionHint} {
		if !c.Available(action) {
			t.Errorf("%v unavailable after playback", action)
		}
	}

	if _, err := c.Type("wrong"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if _, err := c.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := c.TryAgain(); err != nil {
		t.Fatalf("TryAgain() error = %v", err)
	}
	if !c.Available(ActionSubmit) {
		t.Error("gate closed again after retrying the same word")
	}
	if err := c.PlayAudio(); err != nil {
		t.Fatalf("replay error = %v", err)
	}

	if err := c.Advance(); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if c.Available(ActionType) {
		t.Error("gate should be closed for the next word")
	}
	if len(audio.played) != 2 {
		t.Errorf("played %d times, want 2", len(audio.played))
	}
}

func TestCompleteEarly(t *testing.T) {
	c, listener, _ := newController(t, models.ModeTypedRecall, true)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	item, _ := c.Current()
	if _, err := c.Type(item.Word); err != nil {
		t.Fatalf("Type() error = %v", err)
	}

	result, err := c.Complete()
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Score != 33 {
		t.Errorf("Score = %d, want 33", result.Score)
	}
	if len(listener.words) != 1 {
		t.Errorf("OnWordComplete called %d times, want 1", len(listener.words))
	}

	second, _ := c.Complete()
	if second.Score != result.Score || len(listener.results) != 1 {
		t.Errorf("second Complete() = %+v with %d notifications", second, len(listener.results))
	}

	if _, ok := c.Current(); ok {
		t.Error("completed session should have no current word")
	}
	if c.State().Index != c.State().Total {
		t.Errorf("Index = %d, want %d", c.State().Index, c.State().Total)
	}
}

func TestSkipWithoutAnswer(t *testing.T) {
	c, listener, _ := newController(t, models.ModeTypedRecall, true)
	if err := c.Start(animals()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := c.Advance(); err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	if len(listener.words) != 0 {
		t.Errorf("OnWordComplete called %d times, want 0", len(listener.words))
	}
	if r := listener.results[0]; r.Score != 0 || len(r.Outcomes) != 0 {
		t.Errorf("result = %+v, want empty", r)
	}
}

func TestFeedbackTiming(t *testing.T) {
	c, _, _ := newController(t, models.ModeTypedRecall, true)
	if err := c.Start(animals()[:1]); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The step clock moves one second for each reading: presentation, then confirmation.
	feedback, err := c.Type("cat")
	if err != nil || feedback == nil {
		t.Fatalf("Type() = %v, %v", feedback, err)
	}
	if feedback.Elapsed != time.Second || feedback.SpeedLabel != "1 sec per word" {
		t.Errorf("timing = %v %q, want 1s", feedback.Elapsed, feedback.SpeedLabel)
	}
	if c.AverageSpeed() != "1 sec per word" {
		t.Errorf("AverageSpeed() = %q", c.AverageSpeed())
	}
}
