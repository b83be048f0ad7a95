package qtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaflow/delivery-client/internal/models"
)

func choiceQuestion() *models.Question {
	return &models.Question{
		ID: "q1",
		Options: []models.Option{
			{ID: "o1", Key: "A", Text: "apple"},
			{ID: "o2", Key: "B", Text: "banana"},
			{ID: "o3", Key: "C", Text: "cherry"},
		},
	}
}

func TestRegistryCoversAllTypes(t *testing.T) {
	r := NewRegistry()
	for _, tag := range []models.QuestionType{
		models.SingleChoice,
		models.MultiChoice,
		models.Matching,
		models.Labeling,
		models.FillBlank,
		models.TrueFalseNG,
		models.YesNoNG,
		models.ShortAnswer,
	} {
		h, err := r.Handler(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, tag, h.Type())
	}

	_, err := r.Handler("essay")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestSingleChoiceCollect(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.SingleChoice)
	q := choiceQuestion()

	rec, err := h.Collect(q, models.AnswerRecord{}, Input{Key: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, rec.Keys)
	assert.Equal(t, "banana", rec.Display)
	assert.Equal(t, models.SourceOptionKey, rec.Source)

	// Selecting again replaces, never appends.
	rec, err = h.Collect(q, rec, Input{Key: "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, rec.Keys)
}

func TestMultiChoiceCollectAccumulates(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.MultiChoice)
	q := choiceQuestion()

	rec, err := h.Collect(q, models.AnswerRecord{}, Input{Key: "A"})
	require.NoError(t, err)
	rec, err = h.Collect(q, rec, Input{Key: "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, rec.Keys)
	assert.Equal(t, "apple, cherry", rec.Display)

	// Toggling an already selected key removes it.
	rec, err = h.Collect(q, rec, Input{Key: "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, rec.Keys)
}

func TestFillBlankCollectDisambiguates(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.FillBlank)
	q := choiceQuestion()

	t.Run("box selection", func(t *testing.T) {
		rec, err := h.Collect(q, models.AnswerRecord{}, Input{Key: "B"})
		require.NoError(t, err)
		assert.Equal(t, models.SourceOptionKey, rec.Source)
		assert.Equal(t, "banana", rec.Display)
	})

	t.Run("typed text", func(t *testing.T) {
		rec, err := h.Collect(q, models.AnswerRecord{}, Input{Text: "mango"})
		require.NoError(t, err)
		assert.Equal(t, models.SourceTyped, rec.Source)
		assert.Empty(t, rec.Keys)
		assert.Equal(t, "mango", rec.Text)
	})

	t.Run("typed text shaped like a key keeps its source", func(t *testing.T) {
		rec, err := h.Collect(q, models.AnswerRecord{}, Input{Text: "A"})
		require.NoError(t, err)
		assert.Equal(t, models.SourceTyped, rec.Source)
		assert.Equal(t, "A", rec.Text)
	})
}

func TestBinaryCollectValidatesTokens(t *testing.T) {
	r := NewRegistry()
	q := &models.Question{ID: "q1"}

	tf, _ := r.Handler(models.TrueFalseNG)
	rec, err := tf.Collect(q, models.AnswerRecord{}, Input{Text: "true"})
	require.NoError(t, err)
	assert.Equal(t, models.TokenTrue, rec.Text)

	_, err = tf.Collect(q, models.AnswerRecord{}, Input{Text: "YES"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	yn, _ := r.Handler(models.YesNoNG)
	rec, err = yn.Collect(q, models.AnswerRecord{}, Input{Text: "not given"})
	require.NoError(t, err)
	assert.Equal(t, models.TokenNotGiven, rec.Text)

	_, err = yn.Collect(q, models.AnswerRecord{}, Input{Text: "FALSE"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveDisplaySkipsUnresolvableKeys(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.Labeling)
	q := choiceQuestion()

	rec := models.AnswerRecord{Keys: []string{"Z"}}
	assert.Equal(t, "", h.ResolveDisplay(q, rec))
}

func TestComputeCorrectnessPrefersServerVerdict(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.SingleChoice)
	q := choiceQuestion()
	q.CorrectAnswers = []string{"A"}

	wrong := false
	rec := models.AnswerRecord{Keys: []string{"A"}}

	// Server verdict wins even when the local comparison disagrees.
	verdict := h.ComputeCorrectness(q, rec, &wrong)
	require.NotNil(t, verdict)
	assert.False(t, *verdict)

	verdict = h.ComputeCorrectness(q, rec, nil)
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
}

func TestMultiSelectNeverComputesLocally(t *testing.T) {
	r := NewRegistry()
	q := choiceQuestion()
	q.CorrectAnswers = []string{"A", "B"}
	rec := models.AnswerRecord{Keys: []string{"A", "B"}}

	for _, tag := range []models.QuestionType{models.MultiChoice, models.Matching} {
		h, _ := r.Handler(tag)
		assert.Nil(t, h.ComputeCorrectness(q, rec, nil), tag)

		right := true
		verdict := h.ComputeCorrectness(q, rec, &right)
		require.NotNil(t, verdict)
		assert.True(t, *verdict)
	}
}

func TestShortAnswerCorrectnessIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Handler(models.ShortAnswer)
	q := &models.Question{ID: "q1", CorrectAnswers: []string{"waggle dance"}}

	rec, err := h.Collect(q, models.AnswerRecord{}, Input{Text: "  Waggle Dance "})
	require.NoError(t, err)

	verdict := h.ComputeCorrectness(q, rec, nil)
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
}
