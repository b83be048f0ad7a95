package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/qtypes"
)

func boolPtr(v bool) *bool { return &v }

func gradedFixture() *models.GradedSession {
	now := time.Now()
	return &models.GradedSession{
		SessionID:  "s1",
		UserID:     "u1",
		Score:      2,
		FinishedAt: &now,
		Answers: []models.StoredAnswer{
			{QuestionID: "q-single", Key: "A", Text: "apple", Correct: boolPtr(true)},
			{QuestionID: "q-multi", Key: "A", Text: "temperature", Correct: boolPtr(true)},
			{QuestionID: "q-multi", Key: "B", Text: "daylight", Correct: boolPtr(false)},
			{QuestionID: "q-tfng", Token: models.TokenNotGiven, Correct: boolPtr(true)},
			{QuestionID: "q-fill", Text: "mango", Correct: boolPtr(false)},
		},
		Structure: &models.Test{
			ID: "t1",
			Parts: []models.Part{{
				ID: "p1",
				Groups: []models.QuestionGroup{
					{
						ID:   "g-single",
						Type: models.SingleChoice,
						Questions: []models.Question{{
							ID:       "q-single",
							Sequence: 1,
							Options: []models.Option{
								{Key: "A", Text: "apple"},
								{Key: "B", Text: "banana"},
							},
							CorrectAnswers: []string{"A"},
						}},
					},
					{
						ID:   "g-multi",
						Type: models.MultiChoice,
						Questions: []models.Question{{
							ID:       "q-multi",
							Sequence: 2,
							Options: []models.Option{
								{Key: "A", Text: "temperature"},
								{Key: "B", Text: "daylight"},
								{Key: "C", Text: "wind"},
							},
							CorrectAnswers: []string{"A", "C"},
						}},
					},
					{
						ID:   "g-tfng",
						Type: models.TrueFalseNG,
						Questions: []models.Question{{
							ID:             "q-tfng",
							Sequence:       3,
							CorrectAnswers: []string{models.TokenNotGiven},
						}},
					},
					{
						ID:   "g-fill",
						Type: models.FillBlank,
						Questions: []models.Question{
							{ID: "q-fill", Sequence: 4, CorrectAnswers: []string{"nectar"}},
							{ID: "q-blank", Sequence: 5, CorrectAnswers: []string{"movement"}},
						},
					},
				},
			}},
		},
	}
}

func TestReconstructRequiresStructure(t *testing.T) {
	_, err := Reconstruct(&models.GradedSession{SessionID: "s1"}, qtypes.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no structure")
}

func TestReconstructRebuildsRecords(t *testing.T) {
	result, err := Reconstruct(gradedFixture(), qtypes.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, "s1", result.Session.ID)
	require.NotNil(t, result.Session.Score)
	assert.Equal(t, 2.0, *result.Session.Score)

	single := result.Records["q-single"]
	assert.Equal(t, []string{"A"}, single.Keys)
	assert.Equal(t, "apple", single.Display)
	require.NotNil(t, single.Correct)
	assert.True(t, *single.Correct)

	// The two wire entries fold back into one multi-select record; one wrong
	// entry makes the whole question wrong.
	multi := result.Records["q-multi"]
	assert.Equal(t, []string{"A", "B"}, multi.Keys)
	assert.Equal(t, "temperature, daylight", multi.Display)
	require.NotNil(t, multi.Correct)
	assert.False(t, *multi.Correct)

	// The token travels back into the text slot.
	tfng := result.Records["q-tfng"]
	assert.Equal(t, models.TokenNotGiven, tfng.Text)
	assert.Equal(t, models.TokenNotGiven, tfng.Display)

	// Typed text with no option to resolve keeps its literal value.
	fill := result.Records["q-fill"]
	assert.Equal(t, "mango", fill.Text)
	assert.Equal(t, "mango", fill.Display)
	require.NotNil(t, fill.Correct)
	assert.False(t, *fill.Correct)
}

func TestReconstructViewsFollowDisplayOrder(t *testing.T) {
	result, err := Reconstruct(gradedFixture(), qtypes.NewRegistry())
	require.NoError(t, err)

	require.Len(t, result.Questions, 5)
	ids := make([]string, len(result.Questions))
	for i, v := range result.Questions {
		ids[i] = v.Question.ID
	}
	assert.Equal(t, []string{"q-single", "q-multi", "q-tfng", "q-fill", "q-blank"}, ids)

	// The unanswered question still gets a view, with no record or verdict.
	blank := result.Questions[4]
	assert.False(t, blank.Answered)
	assert.Nil(t, blank.Correct)
	assert.True(t, blank.Record.IsEmpty())
}
