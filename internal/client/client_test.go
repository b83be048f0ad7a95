package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/stub"
	"github.com/linguaflow/delivery-client/internal/utils"
)

func newTestBackend(t *testing.T) (*stub.Server, *ScoringClient) {
	t.Helper()
	backend := stub.NewServer(utils.NewDevelopmentLogger(), stub.SampleReadingTest(), stub.SampleSpeakingTest())
	srv := httptest.NewServer(backend.Engine())
	t.Cleanup(srv.Close)
	return backend, NewScoringClient(srv.URL, utils.NewDevelopmentLogger(), utils.NewValidator())
}

func TestGetTestStructure(t *testing.T) {
	_, c := newTestBackend(t)

	structure, err := c.GetTestStructure(context.Background(), "test-reading-1")
	require.NoError(t, err)
	assert.Equal(t, "test-reading-1", structure.TestID)
	assert.Equal(t, 40, structure.Duration)
	require.Len(t, structure.Parts, 2)
	assert.Equal(t, "part-1", structure.Parts[0].ID)
}

func TestGetTestStructureNotFound(t *testing.T) {
	_, c := newTestBackend(t)

	_, err := c.GetTestStructure(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "test not found", apiErr.Message)
}

func TestContentEndpointsScrubAnswerKeys(t *testing.T) {
	_, c := newTestBackend(t)
	ctx := context.Background()

	detail, err := c.GetPartDetail(ctx, "part-1")
	require.NoError(t, err)
	require.Len(t, detail.Groups, 2)
	assert.Equal(t, models.SingleChoice, detail.Groups[0].Type)

	questions, err := c.GetGroupQuestions(ctx, "group-1")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Empty(t, questions[0].CorrectAnswers)
	assert.Empty(t, questions[0].Options)

	options, err := c.GetQuestionOptions(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, options, 3)
	for _, opt := range options {
		assert.Nil(t, opt.Correct)
	}
}

func TestSubmitAnswersValidatesBeforeSending(t *testing.T) {
	_, c := newTestBackend(t)

	// Missing question_id fails struct validation locally.
	err := c.SubmitAnswers(context.Background(), &models.SubmitAnswersRequest{
		UserID:    "u1",
		SessionID: "s1",
		Answers:   []models.WireAnswer{{Text: "orphan"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestSubmitAndFinishFlow(t *testing.T) {
	backend, c := newTestBackend(t)
	ctx := context.Background()
	session := backend.StartSession("u1", "test-reading-1")

	err := c.SubmitAnswers(ctx, &models.SubmitAnswersRequest{
		UserID:    "u1",
		SessionID: session.ID,
		Answers: []models.WireAnswer{
			{QuestionID: "q1", Key: "A", Text: "the location of food"},
			{QuestionID: "q2", Token: models.TokenTrue},
			{QuestionID: "q3", Token: models.TokenFalse},
		},
	})
	require.NoError(t, err)

	result, err := c.FinishSession(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Score)
	assert.False(t, result.FinishedAt.IsZero())

	// Finishing twice conflicts.
	_, err = c.FinishSession(ctx, session.ID, "u1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestGetGradedSession(t *testing.T) {
	backend, c := newTestBackend(t)
	ctx := context.Background()
	session := backend.StartSession("u1", "test-reading-1")

	// Not finished yet.
	_, err := c.GetGradedSession(ctx, session.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)

	require.NoError(t, c.SubmitAnswers(ctx, &models.SubmitAnswersRequest{
		UserID:    "u1",
		SessionID: session.ID,
		Answers:   []models.WireAnswer{{QuestionID: "q1", Key: "A", Text: "the location of food"}},
	}))
	_, err = c.FinishSession(ctx, session.ID, "u1")
	require.NoError(t, err)

	graded, err := c.GetGradedSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, graded.SessionID)
	assert.Equal(t, 1.0, graded.Score)
	require.Len(t, graded.Answers, 1)
	require.NotNil(t, graded.Answers[0].Correct)
	assert.True(t, *graded.Answers[0].Correct)
	// The graded payload carries the full structure with answer keys.
	require.NotNil(t, graded.Structure)
	q, _ := graded.Structure.Question("q1")
	require.NotNil(t, q)
	assert.Equal(t, []string{"A"}, q.CorrectAnswers)
}

func TestFinishSpeakingUploadsPartAudio(t *testing.T) {
	backend, c := newTestBackend(t)
	session := backend.StartSession("u1", "test-speaking-1")

	err := c.FinishSpeaking(context.Background(), session.ID, "u1", map[int][]byte{
		0: []byte("first-part-audio"),
		1: []byte("second-part-audio"),
	})
	require.NoError(t, err)

	received := backend.ReceivedAudio(session.ID)
	require.Len(t, received, 2)
	assert.Equal(t, []byte("first-part-audio"), received["part1Audio"])
	assert.Equal(t, []byte("second-part-audio"), received["part2Audio"])
}

func TestFinishSpeakingUnknownSession(t *testing.T) {
	_, c := newTestBackend(t)

	err := c.FinishSpeaking(context.Background(), "ghost", "u1", map[int][]byte{0: []byte("x")})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
