package models

import "time"

type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateInProgress SessionState = "in_progress"
	StateSubmitting SessionState = "submitting"
	StateGraded     SessionState = "graded"
)

// Speaking test states. Prep and recording each run their own countdown.
type SpeakingState string

const (
	SpeakingIntroPart  SpeakingState = "intro_part"
	SpeakingPrep       SpeakingState = "prep"
	SpeakingRecording  SpeakingState = "recording"
	SpeakingFinished   SpeakingState = "finished"
	SpeakingSubmitting SpeakingState = "submitting"
	SpeakingGraded     SpeakingState = "graded"
)

// TestSession is one user's run of a test. The server assigns the identifier
// when the session starts. FinishedAt is the active/finished boundary: once
// set, the session is replayable as review only, never re-submitted.
type TestSession struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	TestID     string         `json:"test_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Score      *float64       `json:"score,omitempty"`
	Answers    []StoredAnswer `json:"answers,omitempty"`
}

func (s *TestSession) Finished() bool {
	return s.FinishedAt != nil
}
