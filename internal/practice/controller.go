package practice

import (
	"errors"
	"math/rand"
	"time"

	"vocabdrill/internal/models"
)

// Status is the lifecycle stage of a session
type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// State is the serializable snapshot of a session.
// Index equals the queue length once the session is completed.
type State struct {
	Status   Status          `json:"status"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Settings models.Settings `json:"settings"`
	Scratch  Scratch         `json:"scratch"`
}

// Feedback describes a confirmed answer
type Feedback struct {
	Outcome    models.AnswerOutcome
	Evaluation models.Evaluation
	Expected   string
	Elapsed    time.Duration
	SpeedLabel string
}

// Option configures a Controller
type Option func(*Controller)

// WithListener registers the receiver of session notifications
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// WithAudio sets the gateway used to play pronunciation audio
func WithAudio(a AudioGateway) Option {
	return func(c *Controller) { c.audio = a }
}

// WithRand sets the random source used for shuffling and distractors
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithClock sets the time source used for answer timing
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one practice session: it shuffles the queue once, drives
// progression word by word, delegates evaluation to the mode strategy and
// reports outcomes. It is not safe for concurrent use.
type Controller struct {
	state    State
	strategy Strategy

	pool    []models.VocabularyItem
	queue   []models.VocabularyItem
	results *Results
	options map[int][]string // Memoized multiple-choice options per queue index

	// pending is true while the current word's outcome has not been announced
	pending bool
	result  *models.SessionResult

	listener Listener
	audio    AudioGateway
	rng      *rand.Rand
	now      func() time.Time
}

// New creates an idle controller for the given settings
func New(settings models.Settings, opts ...Option) *Controller {
	if !settings.Mode.Valid() {
		settings.Mode = models.DefaultSettings().Mode
	}

	c := &Controller{
		state: State{
			Status:   StatusIdle,
			Settings: settings,
		},
		strategy: NewStrategy(settings.Mode),
		listener: ListenerFuncs{},
		audio:    silentAudio{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return c
}

// Start builds the session queue from items. An empty list completes the
// session immediately with a score of 0.
func (c *Controller) Start(items []models.VocabularyItem) error {
	if c.state.Status != StatusIdle {
		return ErrAlreadyStarted
	}

	c.pool = make([]models.VocabularyItem, len(items))
	copy(c.pool, items)

	c.queue = make([]models.VocabularyItem, len(items))
	copy(c.queue, items)
	c.rng.Shuffle(len(c.queue), func(i, j int) {
		c.queue[i], c.queue[j] = c.queue[j], c.queue[i]
	})

	c.results = NewResults(len(c.queue))
	c.options = make(map[int][]string)
	c.state.Total = len(c.queue)
	c.state.Index = 0

	if len(c.queue) == 0 {
		c.finish()
		return nil
	}

	c.state.Status = StatusInProgress
	c.present()

	return nil
}

// present resets the scratch state for the word at the current index
func (c *Controller) present() {
	c.state.Scratch = Scratch{PresentedAt: c.now()}
	c.pending = false
}

// current returns the word being presented, checking that action may run on it
func (c *Controller) current(action Action) (models.VocabularyItem, error) {
	switch c.state.Status {
	case StatusIdle:
		return models.VocabularyItem{}, ErrNotStarted
	case StatusCompleted:
		return models.VocabularyItem{}, ErrNoCurrentWord
	}

	if !c.strategy.Allows(action, c.state.Scratch) {
		return models.VocabularyItem{}, ErrActionUnavailable
	}

	if action.answers() && c.state.Scratch.Answered {
		return models.VocabularyItem{}, ErrAlreadyAnswered
	}

	return c.queue[c.state.Index], nil
}

// confirm grades the evaluation and records the outcome for the current word
func (c *Controller) confirm(item models.VocabularyItem, eval models.Evaluation) Feedback {
	outcome := models.AnswerOutcome{
		ItemID:  item.ID,
		Quality: GradeEvaluation(eval),
	}

	elapsed := c.now().Sub(c.state.Scratch.PresentedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	c.results.Record(outcome, elapsed)
	c.state.Scratch.Answered = true
	c.pending = true

	return Feedback{
		Outcome:    outcome,
		Evaluation: eval,
		Expected:   c.strategy.Expected(item),
		Elapsed:    elapsed,
		SpeedLabel: SpeedLabel(elapsed),
	}
}

// Reveal shows a flashcard's meaning and autoplays its audio when it has any
func (c *Controller) Reveal() error {
	item, err := c.current(ActionReveal)
	if err != nil {
		return err
	}

	c.state.Scratch.Revealed = true
	if item.HasAudio() {
		c.play(item)
	}

	return nil
}

// Know confirms a flashcard as known
func (c *Controller) Know() (Feedback, error) {
	return c.judge(ActionKnow, true)
}

// StillLearning confirms a flashcard as not yet known
func (c *Controller) StillLearning() (Feedback, error) {
	return c.judge(ActionStillLearning, false)
}

func (c *Controller) judge(action Action, known bool) (Feedback, error) {
	item, err := c.current(action)
	if err != nil {
		return Feedback{}, err
	}

	c.state.Scratch.Known = known

	return c.confirm(item, c.strategy.Evaluate(item, c.state.Scratch)), nil
}

// Type replaces the typed input. With auto-check enabled the answer is confirmed
// as soon as it matches the target, in which case the feedback is returned.
func (c *Controller) Type(input string) (*Feedback, error) {
	item, err := c.current(ActionType)
	if err != nil {
		return nil, err
	}

	c.state.Scratch.Input = input

	if c.state.Settings.AutoCheck && Equal(input, item.Word) {
		feedback := c.confirm(item, c.strategy.Evaluate(item, c.state.Scratch))
		return &feedback, nil
	}

	return nil, nil
}

// Submit confirms the typed input
func (c *Controller) Submit() (Feedback, error) {
	item, err := c.current(ActionSubmit)
	if err != nil {
		return Feedback{}, err
	}

	return c.confirm(item, c.strategy.Evaluate(item, c.state.Scratch)), nil
}

// Hint reveals one more character of the target, places it in the input and
// counts it against the current word
func (c *Controller) Hint() (string, error) {
	item, err := c.current(ActionHint)
	if err != nil {
		return "", err
	}

	hint := NextHint(c.state.Scratch.Input, item.Word)
	c.state.Scratch.HintsUsed++
	c.state.Scratch.Input = hint

	return hint, nil
}

// Options returns the multiple-choice options for the current word. They are
// generated once per word and stay the same until the session moves on.
func (c *Controller) Options() ([]string, error) {
	if _, err := c.current(ActionSelect); err != nil && !errors.Is(err, ErrAlreadyAnswered) {
		return nil, err
	}

	return c.optionsAt(c.state.Index), nil
}

func (c *Controller) optionsAt(index int) []string {
	options, ok := c.options[index]
	if !ok {
		options = Options(c.rng, c.pool, c.queue[index])
		c.options[index] = options
	}

	out := make([]string, len(options))
	copy(out, options)
	return out
}

// Select confirms a multiple-choice option; the first selection is final
func (c *Controller) Select(option string) (Feedback, error) {
	item, err := c.current(ActionSelect)
	if err != nil {
		return Feedback{}, err
	}

	found := false
	for _, o := range c.optionsAt(c.state.Index) {
		if o == option {
			found = true
			break
		}
	}
	if !found {
		return Feedback{}, ErrUnknownOption
	}

	c.state.Scratch.Selected = option

	return c.confirm(item, c.strategy.Evaluate(item, c.state.Scratch)), nil
}

// PlayAudio starts playback of the current word; replaying is always allowed
func (c *Controller) PlayAudio() error {
	item, err := c.current(ActionPlayAudio)
	if err != nil {
		return err
	}

	c.play(item)

	return nil
}

func (c *Controller) play(item models.VocabularyItem) {
	c.state.Scratch.HasPlayedAudio = true
	c.audio.Play(item)
}

// Enter handles the confirm key: it advances past an answered word, submits
// typed input and reveals an unrevealed flashcard
func (c *Controller) Enter() (*Feedback, error) {
	switch c.state.Status {
	case StatusIdle:
		return nil, ErrNotStarted
	case StatusCompleted:
		return nil, nil
	}

	if c.state.Scratch.Answered {
		return nil, c.Advance()
	}

	switch {
	case c.strategy.Allows(ActionSubmit, c.state.Scratch):
		feedback, err := c.Submit()
		if err != nil {
			return nil, err
		}
		return &feedback, nil
	case c.strategy.Allows(ActionReveal, c.state.Scratch) && !c.state.Scratch.Revealed:
		return nil, c.Reveal()
	}

	return nil, ErrActionUnavailable
}

// Advance moves to the next word, completing the session after the last one.
// Advancing a completed session does nothing.
func (c *Controller) Advance() error {
	switch c.state.Status {
	case StatusIdle:
		return ErrNotStarted
	case StatusCompleted:
		return nil
	}

	c.announce()
	c.state.Index++

	if c.state.Index >= len(c.queue) {
		c.finish()
		return nil
	}

	c.present()

	return nil
}

// TryAgain discards the current word's outcome and prompts it again without
// moving on. The input, selection and hint count are cleared.
func (c *Controller) TryAgain() error {
	switch c.state.Status {
	case StatusIdle:
		return ErrNotStarted
	case StatusCompleted:
		return ErrNothingToRetry
	}

	if !c.strategy.Retryable() {
		return ErrRetryUnsupported
	}

	if !c.state.Scratch.Answered {
		return ErrNothingToRetry
	}

	if _, ok := c.results.RemoveLast(); !ok {
		return ErrNothingToRetry
	}

	previous := c.state.Scratch
	c.state.Scratch = Scratch{
		HasPlayedAudio: previous.HasPlayedAudio,
		PresentedAt:    previous.PresentedAt,
	}
	c.pending = false

	return nil
}

// Complete ends the session and returns its result. Calling it again returns
// the same result without notifying twice.
func (c *Controller) Complete() (models.SessionResult, error) {
	switch c.state.Status {
	case StatusIdle:
		return models.SessionResult{}, ErrNotStarted
	case StatusInProgress:
		c.announce()
		c.finish()
	}

	return *c.result, nil
}

// announce reports the current word's outcome once it can no longer be retried
func (c *Controller) announce() {
	if !c.pending {
		return
	}

	c.pending = false
	outcomes := c.results.Outcomes()
	c.listener.OnWordComplete(outcomes[len(outcomes)-1])
}

func (c *Controller) finish() {
	result := c.results.Result()

	c.state.Status = StatusCompleted
	c.state.Index = len(c.queue)
	c.state.Scratch = Scratch{}
	c.result = &result

	c.listener.OnComplete(result)
}

// Available reports whether action can run on the current word right now
func (c *Controller) Available(action Action) bool {
	_, err := c.current(action)
	return err == nil
}

// State returns a snapshot of the session state
func (c *Controller) State() State {
	return c.state
}

// Mode returns the mode the session runs in
func (c *Controller) Mode() models.Mode {
	return c.strategy.Mode()
}

// Current returns the word being presented
func (c *Controller) Current() (models.VocabularyItem, bool) {
	if c.state.Status != StatusInProgress {
		return models.VocabularyItem{}, false
	}
	return c.queue[c.state.Index], true
}

// Prompt returns what the mode shows for the current word
func (c *Controller) Prompt() (Prompt, bool) {
	item, ok := c.Current()
	if !ok {
		return Prompt{}, false
	}
	return c.strategy.Prompt(item, c.state.Scratch), true
}

// Queue returns the session's word order, fixed when the session started
func (c *Controller) Queue() []models.VocabularyItem {
	out := make([]models.VocabularyItem, len(c.queue))
	copy(out, c.queue)
	return out
}

// Outcomes returns the outcomes recorded so far, in queue order
func (c *Controller) Outcomes() []models.AnswerOutcome {
	if c.results == nil {
		return nil
	}
	return c.results.Outcomes()
}

// Score returns the running score
func (c *Controller) Score() int {
	if c.results == nil {
		return 0
	}
	return c.results.Score()
}

// AverageSpeed labels the mean answer time of the session so far
func (c *Controller) AverageSpeed() string {
	if c.results == nil {
		return SpeedLabel(0)
	}
	return SpeedLabel(c.results.AverageElapsed())
}
