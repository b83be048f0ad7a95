// Package archive keeps a local history of graded sessions so the results
// screen can list past scores without refetching. Review itself always
// reconstructs from the server; this is a convenience record, not an offline
// copy of the test.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/utils"
)

var ErrRecordNotFound = errors.New("graded session record not found")

type GradedSessionRecord struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SessionID  string         `json:"session_id" gorm:"not null;uniqueIndex;size:64"`
	UserID     string         `json:"user_id" gorm:"not null;index;size:64"`
	TestID     string         `json:"test_id" gorm:"not null;size:64"`
	Score      float64        `json:"score"`
	FinishedAt time.Time      `json:"finished_at"`
	Answers    datatypes.JSON `json:"answers"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (GradedSessionRecord) TableName() string {
	return "graded_sessions"
}

type Archive struct {
	db     *gorm.DB
	logger utils.Logger
}

func New(db *gorm.DB, logger utils.Logger) *Archive {
	return &Archive{db: db, logger: logger}
}

func (a *Archive) AutoMigrate() error {
	return a.db.AutoMigrate(&GradedSessionRecord{})
}

// Save upserts the graded session keyed by its server-assigned identifier.
// Satisfies the controller's history sink.
func (a *Archive) Save(ctx context.Context, session *models.TestSession) error {
	if session.FinishedAt == nil || session.Score == nil {
		return fmt.Errorf("session %s is not graded", session.ID)
	}

	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	record := GradedSessionRecord{
		SessionID:  session.ID,
		UserID:     session.UserID,
		TestID:     session.TestID,
		Score:      *session.Score,
		FinishedAt: *session.FinishedAt,
		Answers:    answers,
	}

	err = a.db.WithContext(ctx).
		Where("session_id = ?", session.ID).
		Assign(record).
		FirstOrCreate(&GradedSessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to save graded session: %w", err)
	}

	a.logger.Info("Graded session archived",
		"session_id", session.ID,
		"score", *session.Score)
	return nil
}

// List returns a user's graded sessions, most recent first.
func (a *Archive) List(ctx context.Context, userID string) ([]GradedSessionRecord, error) {
	var records []GradedSessionRecord
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("finished_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list graded sessions: %w", err)
	}
	return records, nil
}

func (a *Archive) Get(ctx context.Context, sessionID string) (*GradedSessionRecord, error) {
	var record GradedSessionRecord
	err := a.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graded session: %w", err)
	}
	return &record, nil
}

// StoredAnswers decodes the archived wire answers.
func (r *GradedSessionRecord) StoredAnswers() ([]models.StoredAnswer, error) {
	var answers []models.StoredAnswer
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode archived answers: %w", err)
	}
	return answers, nil
}
