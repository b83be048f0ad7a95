// Package client implements the JSON/multipart REST contract with the
// scoring backend. Shapes are the module's only external boundary; the
// grading algorithm behind them is opaque.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/utils"
)

// APIError carries a non-2xx backend response.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

type ScoringClient struct {
	baseURL    string
	httpClient *http.Client
	logger     utils.Logger
	validator  *utils.Validator
}

func NewScoringClient(baseURL string, logger utils.Logger, validator *utils.Validator) *ScoringClient {
	return &ScoringClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		validator: validator,
	}
}

// GetTestStructure fetches the test skeleton: part identifiers and names
// only, no questions.
func (c *ScoringClient) GetTestStructure(ctx context.Context, testID string) (*models.TestStructure, error) {
	var structure models.TestStructure
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/tests/%s/structure", testID), &structure); err != nil {
		return nil, fmt.Errorf("failed to get test structure: %w", err)
	}
	return &structure, nil
}

func (c *ScoringClient) GetPartDetail(ctx context.Context, partID string) (*models.PartDetail, error) {
	var detail models.PartDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/parts/%s", partID), &detail); err != nil {
		return nil, fmt.Errorf("failed to get part detail: %w", err)
	}
	return &detail, nil
}

func (c *ScoringClient) GetGroupQuestions(ctx context.Context, groupID string) ([]models.Question, error) {
	var questions []models.Question
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/groups/%s/questions", groupID), &questions); err != nil {
		return nil, fmt.Errorf("failed to get group questions: %w", err)
	}
	return questions, nil
}

func (c *ScoringClient) GetQuestionOptions(ctx context.Context, questionID string) ([]models.Option, error) {
	var options []models.Option
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/questions/%s/options", questionID), &options); err != nil {
		return nil, fmt.Errorf("failed to get question options: %w", err)
	}
	return options, nil
}

// SubmitAnswers sends the normalized answer set for the session.
func (c *ScoringClient) SubmitAnswers(ctx context.Context, req *models.SubmitAnswersRequest) error {
	if err := c.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	path := fmt.Sprintf("/api/v1/sessions/%s/answers", req.SessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to submit answers: %w", err)
	}
	c.logger.Info("Answers submitted",
		"session_id", req.SessionID,
		"answers_count", len(req.Answers))
	return nil
}

// FinishSession closes the session server-side and returns the computed
// score and finish timestamp.
func (c *ScoringClient) FinishSession(ctx context.Context, sessionID, userID string) (*models.FinishSessionResponse, error) {
	body := map[string]string{"user_id": userID}
	var resp models.FinishSessionResponse
	path := fmt.Sprintf("/api/v1/sessions/%s/finish", sessionID)
	if err := c.doJSON(ctx, http.MethodPatch, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}
	return &resp, nil
}

// GetGradedSession fetches the review payload for a finished session.
func (c *ScoringClient) GetGradedSession(ctx context.Context, sessionID string) (*models.GradedSession, error) {
	var graded models.GradedSession
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/sessions/%s", sessionID), &graded); err != nil {
		return nil, fmt.Errorf("failed to get graded session: %w", err)
	}
	return &graded, nil
}

// FinishSpeaking uploads the per-part audio blobs as one multipart request.
// Field names follow the backend contract: part1Audio, part2Audio, ...
func (c *ScoringClient) FinishSpeaking(ctx context.Context, sessionID, userID string, partAudio map[int][]byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("user_id", userID); err != nil {
		return fmt.Errorf("failed to write user field: %w", err)
	}
	for partIndex, blob := range partAudio {
		field, err := writer.CreateFormFile(fmt.Sprintf("part%dAudio", partIndex+1), fmt.Sprintf("part%d.m4a", partIndex+1))
		if err != nil {
			return fmt.Errorf("failed to create audio field: %w", err)
		}
		if _, err := field.Write(blob); err != nil {
			return fmt.Errorf("failed to write audio blob: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := c.baseURL + fmt.Sprintf("/api/v1/sessions/%s/speaking", sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload speaking audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	c.logger.Info("Speaking audio uploaded",
		"session_id", sessionID,
		"parts", len(partAudio))
	return nil
}

// ===== TRANSPORT HELPERS =====

func (c *ScoringClient) getJSON(ctx context.Context, path string, dest any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, dest)
}

func (c *ScoringClient) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *ScoringClient) apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
