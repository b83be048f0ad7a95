package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the session lifecycle events the client publishes.
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionSubmitted EventType = "session.submitted"
	EventSessionGraded    EventType = "session.graded"
	EventAutoSubmitted    EventType = "session.auto_submitted"
	EventRecordingFailed  EventType = "session.recording_failed"
)

// SessionEvent is the base envelope for all published events.
type SessionEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "delivery-client"
	eventVersion = "1.0"
)

// NewSessionEvent builds an envelope with a fresh identifier.
func NewSessionEvent(eventType EventType, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID string    `json:"session_id"`
	TestID    string    `json:"test_id"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  int       `json:"duration"` // minutes
}

type SessionSubmittedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	AnswerCount int       `json:"answer_count"`
	AutoSubmit  bool      `json:"auto_submit"`
}

type SessionGradedEvent struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	Score      float64   `json:"score"`
	FinishedAt time.Time `json:"finished_at"`
}

type RecordingFailedEvent struct {
	SessionID     string `json:"session_id"`
	PartIndex     int    `json:"part_index"`
	QuestionIndex int    `json:"question_index"`
	Reason        string `json:"reason"`
}
