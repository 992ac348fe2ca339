package main

import (
	"bytes"
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"vocabdrill/internal/models"
	"vocabdrill/internal/practice"
)

func startController(t *testing.T, mode models.Mode, items ...models.VocabularyItem) *practice.Controller {
	t.Helper()
	return startWithSettings(t, models.Settings{Mode: mode, AutoCheck: true}, items...)
}

func startWithSettings(t *testing.T, settings models.Settings, items ...models.VocabularyItem) *practice.Controller {
	t.Helper()
	ctrl := practice.New(settings, practice.WithRand(rand.New(rand.NewSource(1))))
	if err := ctrl.Start(items); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return ctrl
}

var drillItems = []models.VocabularyItem{
	{ID: "a", Word: "cat", Meaning: "mèo"},
	{ID: "b", Word: "dog", Meaning: "chó"},
}

func TestDrillTypedRecall(t *testing.T) {
	ctrl := startController(t, models.ModeTypedRecall, drillItems...)
	queue := ctrl.Queue()

	input := strings.Join([]string{queue[0].Word, "", "wrong", "", ""}, "\n") + "\n"
	var out bytes.Buffer

	if err := newDrill(ctrl, strings.NewReader(input), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := ctrl.State().Status; got != practice.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
	if got := ctrl.Score(); got != 50 {
		t.Errorf("Score() = %d, want 50", got)
	}
	if !strings.Contains(out.String(), "not quite, the answer is: "+queue[1].Word) {
		t.Errorf("output missing correction:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[1/2] "+queue[0].Meaning) {
		t.Errorf("output missing first prompt:\n%s", out.String())
	}
}

func TestDrillHintAndRetry(t *testing.T) {
	tests := []struct {
		name     string
		item     models.VocabularyItem
		input    string
		want     models.Quality
		wantText string
	}{
		{
			name:     "hint trims a typo then enter submits",
			item:     drillItems[1],
			input:    "dogg\n:hint\n\n\n",
			want:     models.QualityCorrectWithHesitation,
			wantText: "hint: dog",
		},
		{
			name:     "hint extends a typed prefix",
			item:     drillItems[0],
			input:    "c\n:hint\n:hint\n\n\n",
			want:     models.QualityCorrectWithDifficulty,
			wantText: "hint: cat",
		},
		{
			name:     "retry after a wrong submit",
			item:     drillItems[0],
			input:    "cot\n\n:retry\ncat\n\n",
			want:     models.QualityPerfect,
			wantText: "correct: cat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := startController(t, models.ModeTypedRecall, tt.item)
			var out bytes.Buffer

			if err := newDrill(ctrl, strings.NewReader(tt.input), &out).run(context.Background()); err != nil {
				t.Fatalf("run() error = %v", err)
			}

			if got := ctrl.State().Status; got != practice.StatusCompleted {
				t.Fatalf("status = %s, want completed\n%s", got, out.String())
			}
			outcomes := ctrl.Outcomes()
			if len(outcomes) != 1 || outcomes[0].Quality != tt.want {
				t.Errorf("Outcomes() = %+v, want one %s answer", outcomes, tt.want)
			}
			if !strings.Contains(out.String(), tt.wantText) {
				t.Errorf("output missing %q:\n%s", tt.wantText, out.String())
			}
		})
	}
}

func TestDrillTypedLineWaitsForEnterWithoutAutoCheck(t *testing.T) {
	ctrl := startWithSettings(t, models.Settings{Mode: models.ModeTypedRecall}, drillItems[0])

	var out bytes.Buffer
	if err := newDrill(ctrl, strings.NewReader("cat\n"), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := ctrl.State().Scratch.Answered; got {
		t.Fatalf("typed line confirmed the answer with auto-check off:\n%s", out.String())
	}
	if got := ctrl.State().Scratch.Input; got != "cat" {
		t.Errorf("Scratch.Input = %q, want %q", got, "cat")
	}
	if strings.Contains(out.String(), "correct:") {
		t.Errorf("feedback printed before enter:\n%s", out.String())
	}

	if err := newDrill(ctrl, strings.NewReader("\n\n"), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := ctrl.State().Status; got != practice.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
	if got := ctrl.Score(); got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
}

func TestDrillMultipleChoice(t *testing.T) {
	ctrl := startController(t, models.ModeMultipleChoice, drillItems...)
	first, _ := ctrl.Current()

	options, err := ctrl.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	choice := 0
	for i, option := range options {
		if option == first.Meaning {
			choice = i + 1
		}
	}

	input := strconv.Itoa(choice) + "\n\n:quit\n"
	var out bytes.Buffer

	if err := newDrill(ctrl, strings.NewReader(input), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := ctrl.State().Status; got != practice.StatusInProgress {
		t.Errorf("status = %s, want in-progress after quitting", got)
	}
	if !strings.Contains(out.String(), "correct: "+first.Meaning) {
		t.Errorf("output missing confirmation:\n%s", out.String())
	}

	var done bytes.Buffer
	listener := newDrillListener(&done)
	result, err := ctrl.Complete()
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	listener.OnComplete(result)
	if !strings.Contains(done.String(), "Session complete: 50% (1 of 1 words)") {
		t.Errorf("summary = %q", done.String())
	}
}

func TestDrillFlashcard(t *testing.T) {
	ctrl := startController(t, models.ModeFlashcard, drillItems[0])

	input := "cat\n\n:know\n\n"
	var out bytes.Buffer

	if err := newDrill(ctrl, strings.NewReader(input), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := ctrl.Score(); got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
	for _, want := range []string{practice.ErrActionUnavailable.Error(), "= mèo"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDrillListeningNeedsAudio(t *testing.T) {
	ctrl := startController(t, models.ModeListeningRecall, drillItems[0])

	input := "cat\n:play\ncat\n\n"
	var out bytes.Buffer

	if err := newDrill(ctrl, strings.NewReader(input), &out).run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := ctrl.State().Status; got != practice.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
	for _, want := range []string{"Listen first with :play", "Type the word you heard", practice.ErrActionUnavailable.Error()} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
