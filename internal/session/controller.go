package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/linguaflow/delivery-client/internal/content"
	"github.com/linguaflow/delivery-client/internal/events"
	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/normalize"
	"github.com/linguaflow/delivery-client/internal/qtypes"
	"github.com/linguaflow/delivery-client/internal/review"
	"github.com/linguaflow/delivery-client/internal/store"
	"github.com/linguaflow/delivery-client/internal/utils"
)

// Backend is the slice of the scoring contract the exam controller needs.
// The scoring client satisfies it.
type Backend interface {
	SubmitAnswers(ctx context.Context, req *models.SubmitAnswersRequest) error
	FinishSession(ctx context.Context, sessionID, userID string) (*models.FinishSessionResponse, error)
	GetGradedSession(ctx context.Context, sessionID string) (*models.GradedSession, error)
}

// HistorySink receives graded sessions for the local results history. May be
// nil; saving failures never affect the session outcome.
type HistorySink interface {
	Save(ctx context.Context, session *models.TestSession) error
}

// Controller drives one listening, reading or writing session through
// loading → in-progress → submitting → graded, with review as an orthogonal
// toggle on top of graded. Speaking uses SpeakingController instead.
type Controller struct {
	mu sync.Mutex

	state  models.SessionState
	review bool

	session *models.TestSession
	test    *models.Test
	graded  *review.Result

	activePartID string

	answers  *store.AnswerStore
	registry *qtypes.Registry
	loader   *content.Loader
	backend  Backend

	countdown *Countdown

	// submitting is the single-shot guard shared by the countdown's expiry
	// and manual submission. Checked and set before any submission side
	// effect begins; released only when submission fails.
	submitting bool

	publisher events.EventPublisher
	history   HistorySink
	logger    utils.Logger
}

func NewController(loader *content.Loader, backend Backend, registry *qtypes.Registry, logger utils.Logger) *Controller {
	return &Controller{
		state:    models.StateLoading,
		answers:  store.NewAnswerStore(),
		registry: registry,
		loader:   loader,
		backend:  backend,
		logger:   logger,
	}
}

// WithPublisher attaches a session event publisher.
func (c *Controller) WithPublisher(p events.EventPublisher) *Controller {
	c.publisher = p
	return c
}

// WithHistory attaches a local history sink for graded sessions.
func (c *Controller) WithHistory(h HistorySink) *Controller {
	c.history = h
	return c
}

// ===== LIFECYCLE =====

// Start fetches the test skeleton and transitions out of loading. A session
// that is already finished resumes straight into graded, ready for review;
// an active one arms the countdown at duration times sixty seconds and
// enters in-progress.
func (c *Controller) Start(ctx context.Context, session *models.TestSession) error {
	c.mu.Lock()
	if c.state != models.StateLoading {
		c.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, c.state)
	}
	c.mu.Unlock()

	test, err := c.loader.Fetch(ctx, session.TestID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.test = test

	if session.Finished() {
		c.state = models.StateGraded
		c.logger.Info("Resumed finished session",
			"session_id", session.ID,
			"test_id", session.TestID)
		return nil
	}

	c.state = models.StateInProgress
	c.countdown = NewCountdown(test.Duration*60, nil, func() {
		c.autoSubmit()
	})
	c.countdown.Start()

	c.logger.Info("Session started",
		"session_id", session.ID,
		"test_id", session.TestID,
		"duration_minutes", test.Duration)

	c.publish(events.NewSessionEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID: session.ID,
		TestID:    session.TestID,
		UserID:    session.UserID,
		StartedAt: session.StartedAt,
		Duration:  test.Duration,
	}))
	return nil
}

// SetActivePart loads the part on first visit and merges it into the
// structure. The loader's cache makes repeat visits synchronous no-ops, which
// is also how late duplicate part-change triggers are absorbed.
func (c *Controller) SetActivePart(ctx context.Context, partID string) (*models.Part, error) {
	c.mu.Lock()
	test := c.test
	c.mu.Unlock()
	if test == nil {
		return nil, fmt.Errorf("%w: no structure loaded", ErrInvalidTransition)
	}

	part, err := c.loader.LoadPart(ctx, partID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	merged := false
	for i := range c.test.Parts {
		if c.test.Parts[i].ID == partID {
			c.test.Parts[i] = *part
			merged = true
			break
		}
	}
	if !merged {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, partID)
	}
	c.activePartID = partID
	return part, nil
}

// Collect records one user interaction against a question. Rejected outright
// whenever the session is not in progress; this is the single authorization
// check protecting review-mode immutability.
func (c *Controller) Collect(questionID string, in qtypes.Input) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StateInProgress {
		return ErrNotInProgress
	}

	q, g := c.test.Question(questionID)
	if q == nil {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}
	handler, err := c.registry.ForGroup(g)
	if err != nil {
		return err
	}

	current, _ := c.answers.Get(questionID)
	rec, err := handler.Collect(q, current, in)
	if err != nil {
		return err
	}
	c.answers.Put(&rec)
	return nil
}

// Submit is the manual entry point into submission.
func (c *Controller) Submit(ctx context.Context) error {
	return c.submit(ctx, false)
}

// autoSubmit fires when the countdown hits zero. The shared single-shot
// guard inside submit keeps it from racing a manual submit in the same tick.
func (c *Controller) autoSubmit() {
	if err := c.submit(context.Background(), true); err != nil {
		c.logger.LogError(err, "Auto-submit failed", "session_id", c.SessionID())
	}
}

func (c *Controller) submit(ctx context.Context, auto bool) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrAlreadySubmitting
	}
	if c.state != models.StateInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	c.submitting = true
	c.state = models.StateSubmitting
	if c.countdown != nil {
		c.countdown.Stop()
	}
	session := c.session
	test := c.test
	snapshot := c.answers.All()
	c.mu.Unlock()

	wire, err := normalize.Normalize(snapshot, test, c.registry)
	if err != nil {
		return c.failSubmit(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}

	req := &models.SubmitAnswersRequest{
		UserID:    session.UserID,
		SessionID: session.ID,
		Answers:   wire,
	}
	if err := c.backend.SubmitAnswers(ctx, req); err != nil {
		return c.failSubmit(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}

	result, err := c.backend.FinishSession(ctx, session.ID, session.UserID)
	if err != nil {
		return c.failSubmit(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}

	c.mu.Lock()
	// Patch the local session with the server result, no full reload.
	c.session.Score = &result.Score
	finishedAt := result.FinishedAt
	c.session.FinishedAt = &finishedAt
	c.state = models.StateGraded
	c.mu.Unlock()

	c.logger.Info("Session graded",
		"session_id", session.ID,
		"score", result.Score,
		"auto_submit", auto)

	eventType := events.EventSessionSubmitted
	if auto {
		eventType = events.EventAutoSubmitted
	}
	c.publish(events.NewSessionEvent(eventType, events.SessionSubmittedEvent{
		SessionID:   session.ID,
		UserID:      session.UserID,
		SubmittedAt: time.Now(),
		AnswerCount: len(wire),
		AutoSubmit:  auto,
	}))
	c.publish(events.NewSessionEvent(events.EventSessionGraded, events.SessionGradedEvent{
		SessionID:  session.ID,
		UserID:     session.UserID,
		Score:      result.Score,
		FinishedAt: result.FinishedAt,
	}))

	if c.history != nil {
		if err := c.history.Save(ctx, c.Session()); err != nil {
			c.logger.LogError(err, "Failed to save session history", "session_id", session.ID)
		}
	}
	return nil
}

// failSubmit returns control to in-progress and releases the guard so the
// user can retry without losing in-memory answers.
func (c *Controller) failSubmit(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.state = models.StateInProgress
	if c.countdown != nil && c.countdown.Remaining() > 0 {
		c.countdown = NewCountdown(c.countdown.Remaining(), nil, func() { c.autoSubmit() })
		c.countdown.Start()
	}
	c.logger.LogError(err, "Submission failed, session reverted to in-progress")
	return err
}

// ===== REVIEW =====

// EnterReview fetches the graded payload on first entry and rebuilds the
// read-only view. Review is a toggle over graded, not a terminal transition.
func (c *Controller) EnterReview(ctx context.Context) (*review.Result, error) {
	c.mu.Lock()
	if c.state != models.StateGraded {
		c.mu.Unlock()
		return nil, ErrNotGraded
	}
	graded := c.graded
	session := c.session
	c.mu.Unlock()

	if graded == nil {
		payload, err := c.backend.GetGradedSession(ctx, session.ID)
		if err != nil {
			return nil, &content.LoadError{Resource: "graded session", ID: session.ID, Err: err}
		}
		graded, err = review.Reconstruct(payload, c.registry)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.graded = graded
	c.test = graded.Structure
	c.review = true
	for id := range graded.Records {
		rec := graded.Records[id]
		c.answers.Put(&rec)
	}
	return graded, nil
}

func (c *Controller) ExitReview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.review = false
}

// ===== ACCESSORS =====

func (c *Controller) State() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) InReview() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.review
}

func (c *Controller) Session() *models.TestSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.ID
}

func (c *Controller) Test() *models.Test {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.test
}

func (c *Controller) Answer(questionID string) (models.AnswerRecord, bool) {
	return c.answers.Get(questionID)
}

// Remaining returns the countdown seconds left, or zero when no countdown is
// armed.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countdown == nil {
		return 0
	}
	return c.countdown.Remaining()
}

// Tick advances the countdown by one second. Exposed so tests can drive
// time deterministically.
func (c *Controller) Tick() {
	c.mu.Lock()
	countdown := c.countdown
	c.mu.Unlock()
	if countdown != nil {
		countdown.Tick()
	}
}

func (c *Controller) publish(event *events.SessionEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishSessionEvent(context.Background(), event); err != nil {
		c.logger.LogError(err, "Failed to publish session event", "event_type", event.Type)
	}
}
