package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/linguaflow/delivery-client/internal/events"
	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/utils"
)

// Recorder is the minimal device contract: prepare the input, start
// capturing, stop and hand back the captured bytes. Everything below the
// contract (permissions, codecs, hardware) is the caller's.
type Recorder interface {
	Prepare(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) ([]byte, error)
}

// SpeakingBackend is the scoring contract slice for speaking sessions.
type SpeakingBackend interface {
	FinishSpeaking(ctx context.Context, sessionID, userID string, partAudio map[int][]byte) error
	FinishSession(ctx context.Context, sessionID, userID string) (*models.FinishSessionResponse, error)
}

type bufferKey struct {
	part     int
	question int
}

// SpeakingController runs the speaking variant: per part, an intro, then a
// prep/record cycle per question. Prep expiry auto-starts recording and
// recording expiry auto-stops it, each on its own countdown. Completed
// recordings are buffered keyed by part and question index; a part's buffers
// are concatenated in question order when its last question completes.
type SpeakingController struct {
	mu sync.Mutex

	state models.SpeakingState

	session *models.TestSession
	test    *models.Test

	partIndex     int
	questionIndex int

	prepSeconds   int
	recordSeconds int
	countdown     *Countdown

	recorder Recorder
	backend  SpeakingBackend

	buffers   map[bufferKey][]byte
	partAudio map[int][]byte

	submitting bool

	publisher events.EventPublisher
	logger    utils.Logger
}

func NewSpeakingController(test *models.Test, session *models.TestSession, recorder Recorder, backend SpeakingBackend, prepSeconds, recordSeconds int, logger utils.Logger) *SpeakingController {
	return &SpeakingController{
		state:         models.SpeakingIntroPart,
		session:       session,
		test:          test,
		prepSeconds:   prepSeconds,
		recordSeconds: recordSeconds,
		recorder:      recorder,
		backend:       backend,
		buffers:       make(map[bufferKey][]byte),
		partAudio:     make(map[int][]byte),
		logger:        logger,
	}
}

func (s *SpeakingController) WithPublisher(p events.EventPublisher) *SpeakingController {
	s.publisher = p
	return s
}

// BeginPart leaves the part intro and enters prep for the part's first
// unanswered question.
func (s *SpeakingController) BeginPart(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.SpeakingIntroPart {
		s.mu.Unlock()
		return fmt.Errorf("%w: begin part from %s", ErrInvalidTransition, s.state)
	}
	s.mu.Unlock()

	if err := s.recorder.Prepare(ctx); err != nil {
		s.reportRecordingFailure("prepare", err)
		return &RecordingError{Stage: "prepare", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterPrepLocked()
	return nil
}

// enterPrepLocked arms the prep countdown; its expiry auto-starts recording.
func (s *SpeakingController) enterPrepLocked() {
	s.clearCountdownLocked()
	s.state = models.SpeakingPrep
	s.countdown = NewCountdown(s.prepSeconds, nil, func() {
		if err := s.StartRecording(context.Background()); err != nil {
			s.logger.LogError(err, "Auto-start recording failed")
		}
	})
	s.countdown.Start()
}

// StartRecording begins capture, manually or via prep expiry. A device
// failure returns the machine to prep without touching recorded parts.
func (s *SpeakingController) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.SpeakingPrep {
		s.mu.Unlock()
		return fmt.Errorf("%w: start recording from %s", ErrInvalidTransition, s.state)
	}
	s.clearCountdownLocked()
	s.mu.Unlock()

	if err := s.recorder.Start(ctx); err != nil {
		s.reportRecordingFailure("start", err)
		s.mu.Lock()
		s.enterPrepLocked()
		s.mu.Unlock()
		return &RecordingError{Stage: "start", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.SpeakingRecording
	s.countdown = NewCountdown(s.recordSeconds, nil, func() {
		if err := s.StopRecording(context.Background()); err != nil {
			s.logger.LogError(err, "Auto-stop recording failed")
		}
	})
	s.countdown.Start()
	return nil
}

// StopRecording ends capture, buffers the blob, and advances: next question
// in the part back to prep, next part to its intro, or finished when the
// last part's last question completes.
func (s *SpeakingController) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.SpeakingRecording {
		s.mu.Unlock()
		return fmt.Errorf("%w: stop recording from %s", ErrInvalidTransition, s.state)
	}
	s.clearCountdownLocked()
	s.mu.Unlock()

	blob, err := s.recorder.Stop(ctx)
	if err != nil {
		s.reportRecordingFailure("stop", err)
		s.mu.Lock()
		s.enterPrepLocked()
		s.mu.Unlock()
		return &RecordingError{Stage: "stop", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffers[bufferKey{part: s.partIndex, question: s.questionIndex}] = blob

	questionCount := s.partQuestionCountLocked(s.partIndex)
	if s.questionIndex+1 < questionCount {
		s.questionIndex++
		s.enterPrepLocked()
		return nil
	}

	// Last question of the part: concatenate its buffers in question order
	// into one part-level blob.
	s.partAudio[s.partIndex] = s.concatPartLocked(s.partIndex, questionCount)

	if s.partIndex+1 < len(s.test.Parts) {
		s.partIndex++
		s.questionIndex = 0
		s.state = models.SpeakingIntroPart
		return nil
	}

	s.state = models.SpeakingFinished
	return nil
}

// Finish uploads all part-level blobs as one multipart submission and closes
// the session. Failure reverts to finished so the upload can be retried
// without re-recording.
func (s *SpeakingController) Finish(ctx context.Context) (*models.FinishSessionResponse, error) {
	s.mu.Lock()
	if s.state != models.SpeakingFinished {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: finish from %s", ErrInvalidTransition, s.state)
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrAlreadySubmitting
	}
	if len(s.partAudio) == 0 {
		s.mu.Unlock()
		return nil, ErrNoRecordings
	}
	s.submitting = true
	s.state = models.SpeakingSubmitting
	session := s.session
	audio := s.partAudio
	s.mu.Unlock()

	if err := s.backend.FinishSpeaking(ctx, session.ID, session.UserID, audio); err != nil {
		return nil, s.failFinish(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}
	result, err := s.backend.FinishSession(ctx, session.ID, session.UserID)
	if err != nil {
		return nil, s.failFinish(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}

	s.mu.Lock()
	s.session.Score = &result.Score
	finishedAt := result.FinishedAt
	s.session.FinishedAt = &finishedAt
	s.state = models.SpeakingGraded
	s.mu.Unlock()

	s.logger.Info("Speaking session graded",
		"session_id", session.ID,
		"score", result.Score)

	s.publish(events.NewSessionEvent(events.EventSessionGraded, events.SessionGradedEvent{
		SessionID:  session.ID,
		UserID:     session.UserID,
		Score:      result.Score,
		FinishedAt: result.FinishedAt,
	}))
	return result, nil
}

func (s *SpeakingController) failFinish(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.state = models.SpeakingFinished
	s.logger.LogError(err, "Speaking submission failed, recordings kept for retry")
	return err
}

// ===== ACCESSORS =====

func (s *SpeakingController) State() models.SpeakingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SpeakingController) Position() (partIndex, questionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partIndex, s.questionIndex
}

// PartAudio returns the finished part-level blob, if the part completed.
func (s *SpeakingController) PartAudio(partIndex int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.partAudio[partIndex]
	return blob, ok
}

// Tick advances the active countdown by one second, for deterministic tests.
func (s *SpeakingController) Tick() {
	s.mu.Lock()
	countdown := s.countdown
	s.mu.Unlock()
	if countdown != nil {
		countdown.Tick()
	}
}

func (s *SpeakingController) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdown == nil {
		return 0
	}
	return s.countdown.Remaining()
}

// ===== INTERNAL =====

func (s *SpeakingController) clearCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

func (s *SpeakingController) partQuestionCountLocked(partIndex int) int {
	count := 0
	for _, g := range s.test.Parts[partIndex].Groups {
		count += len(g.Questions)
	}
	if count == 0 {
		count = 1
	}
	return count
}

func (s *SpeakingController) concatPartLocked(partIndex, questionCount int) []byte {
	var blob []byte
	for qi := 0; qi < questionCount; qi++ {
		blob = append(blob, s.buffers[bufferKey{part: partIndex, question: qi}]...)
	}
	return blob
}

func (s *SpeakingController) reportRecordingFailure(stage string, err error) {
	s.mu.Lock()
	partIndex, questionIndex := s.partIndex, s.questionIndex
	sessionID := s.session.ID
	s.mu.Unlock()

	s.logger.LogError(err, "Recording failure",
		"stage", stage,
		"part_index", partIndex,
		"question_index", questionIndex)

	s.publish(events.NewSessionEvent(events.EventRecordingFailed, events.RecordingFailedEvent{
		SessionID:     sessionID,
		PartIndex:     partIndex,
		QuestionIndex: questionIndex,
		Reason:        err.Error(),
	}))
}

func (s *SpeakingController) publish(event *events.SessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(context.Background(), event); err != nil {
		s.logger.LogError(err, "Failed to publish session event", "event_type", event.Type)
	}
}
