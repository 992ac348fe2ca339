package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/practice"
)

// drill runs a practice session line by line over a terminal
type drill struct {
	ctrl *practice.Controller
	in   *bufio.Scanner
	out  io.Writer
}

func newDrill(ctrl *practice.Controller, in io.Reader, out io.Writer) *drill {
	return &drill{ctrl: ctrl, in: bufio.NewScanner(in), out: out}
}

func newDrillListener(out io.Writer) practice.Listener {
	return practice.ListenerFuncs{
		Complete: func(result models.SessionResult) {
			fmt.Fprintf(out, "\nSession complete: %d%% (%d of %d words)\n",
				result.Score, result.CorrectCount(), len(result.Outcomes))
		},
	}
}

// run reads commands until the session completes, the input ends or the
// learner quits
func (d *drill) run(ctx context.Context) error {
	for d.ctrl.State().Status == practice.StatusInProgress {
		if err := ctx.Err(); err != nil {
			return err
		}

		d.show()

		if !d.in.Scan() {
			return d.in.Err()
		}

		quit, err := d.handle(strings.TrimSpace(d.in.Text()))
		if err != nil {
			fmt.Fprintf(d.out, "  %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return nil
}

func (d *drill) show() {
	state := d.ctrl.State()

	if state.Scratch.Answered {
		if d.ctrl.Mode() == models.ModeFlashcard {
			fmt.Fprint(d.out, "  <enter> next\n> ")
		} else {
			fmt.Fprint(d.out, "  <enter> next, :retry to answer again\n> ")
		}
		return
	}

	prompt, ok := d.ctrl.Prompt()
	if !ok {
		return
	}

	fmt.Fprintf(d.out, "\n[%d/%d] ", state.Index+1, state.Total)
	switch {
	case prompt.AudioOnly && state.Scratch.HasPlayedAudio:
		fmt.Fprint(d.out, "Type the word you heard")
	case prompt.AudioOnly:
		fmt.Fprint(d.out, "Listen first with :play")
	default:
		fmt.Fprint(d.out, prompt.Text)
	}
	if prompt.Detail != "" {
		fmt.Fprintf(d.out, "  %s", prompt.Detail)
	}
	fmt.Fprintln(d.out)

	if prompt.Revealed != "" {
		fmt.Fprintf(d.out, "  = %s  (:know or :learning)\n", prompt.Revealed)
	}

	if d.ctrl.Mode() == models.ModeMultipleChoice {
		options, err := d.ctrl.Options()
		if err == nil {
			for i, option := range options {
				fmt.Fprintf(d.out, "  %d) %s\n", i+1, option)
			}
		}
	}

	if state.Scratch.Input != "" {
		fmt.Fprintf(d.out, "  input: %s\n", state.Scratch.Input)
	}

	fmt.Fprint(d.out, "> ")
}

// handle runs one line of input and reports whether the learner quit
func (d *drill) handle(line string) (bool, error) {
	switch line {
	case ":quit":
		return true, nil
	case ":hint":
		hint, err := d.ctrl.Hint()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(d.out, "  hint: %s\n", hint)
		return false, nil
	case ":play":
		return false, d.ctrl.PlayAudio()
	case ":reveal":
		return false, d.ctrl.Reveal()
	case ":know":
		return false, d.feedback(d.ctrl.Know())
	case ":learning":
		return false, d.feedback(d.ctrl.StillLearning())
	case ":retry":
		return false, d.ctrl.TryAgain()
	case ":skip":
		return false, d.ctrl.Advance()
	case "":
		feedback, err := d.ctrl.Enter()
		if err != nil || feedback == nil {
			return false, err
		}
		return false, d.feedback(*feedback, nil)
	}

	if d.ctrl.Mode() == models.ModeMultipleChoice {
		return false, d.feedback(d.ctrl.Select(d.option(line)))
	}

	// Typed lines replace the input; only auto-check or an empty line confirms.
	feedback, err := d.ctrl.Type(line)
	if err != nil || feedback == nil {
		return false, err
	}
	return false, d.feedback(*feedback, nil)
}

// option maps an option number onto its text; anything else is taken literally
func (d *drill) option(line string) string {
	n, err := strconv.Atoi(line)
	if err != nil {
		return line
	}

	options, err := d.ctrl.Options()
	if err != nil || n < 1 || n > len(options) {
		return line
	}
	return options[n-1]
}

func (d *drill) feedback(feedback practice.Feedback, err error) error {
	if err != nil {
		return err
	}

	if feedback.Evaluation.IsCorrect {
		fmt.Fprintf(d.out, "  correct: %s [%s, %s]\n", feedback.Expected, feedback.Outcome.Quality, feedback.SpeedLabel)
	} else {
		fmt.Fprintf(d.out, "  not quite, the answer is: %s [%s]\n", feedback.Expected, feedback.SpeedLabel)
	}
	return nil
}
