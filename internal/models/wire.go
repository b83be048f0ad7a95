package models

import "time"

// WireAnswer is the flattened request shape the grading backend accepts, one
// entry per selected value. Text is deliberately not omitempty: labeling
// answers must carry the field even when the resolved display text is empty,
// because labeling grading is key-based.
type WireAnswer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Text       string `json:"text"`
	Key        string `json:"key,omitempty"`
	Token      string `json:"token,omitempty"`
}

// StoredAnswer is a wire answer as persisted by the backend, extended with
// the server's correctness verdict for review reconstruction.
type StoredAnswer struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Key        string `json:"key,omitempty"`
	Token      string `json:"token,omitempty"`
	Correct    *bool  `json:"correct,omitempty"`
}

// TestStructure is the skeleton returned by the structure endpoint: part
// identifiers and names only, no questions.
type TestStructure struct {
	TestID   string    `json:"test_id"`
	Title    string    `json:"title"`
	Skill    SkillType `json:"skill"`
	Duration int       `json:"duration"`
	AudioRef string    `json:"audio_ref,omitempty"`
	Parts    []PartRef `json:"parts"`
}

type PartRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PartDetail is the first level of the part enrichment fetch: groups without
// their questions.
type PartDetail struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Passage  string     `json:"passage,omitempty"`
	AudioRef string     `json:"audio_ref,omitempty"`
	ImageRef string     `json:"image_ref,omitempty"`
	Groups   []GroupRef `json:"groups"`
}

type GroupRef struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Title    string       `json:"title"`
	Quantity int          `json:"quantity"`
	ImageRef string       `json:"image_ref,omitempty"`
}

type SubmitAnswersRequest struct {
	UserID    string       `json:"user_id" validate:"required"`
	SessionID string       `json:"session_id" validate:"required"`
	Answers   []WireAnswer `json:"answers" validate:"dive"`
}

type FinishSessionResponse struct {
	Score      float64   `json:"score"`
	FinishedAt time.Time `json:"finished_at"`
}

// GradedSession is the review payload: score, the stored answers, and the
// full structure with review-only correctness markers populated.
type GradedSession struct {
	SessionID  string         `json:"session_id"`
	UserID     string         `json:"user_id"`
	Score      float64        `json:"score"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Answers    []StoredAnswer `json:"answers"`
	Structure  *Test          `json:"structure"`
}
