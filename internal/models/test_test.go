package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionOptionByKey(t *testing.T) {
	q := Question{
		ID: "q1",
		Options: []Option{
			{ID: "o1", Key: "A", Text: "apple"},
			{ID: "o2", Key: "B", Text: "banana"},
		},
	}

	opt := q.OptionByKey("B")
	require.NotNil(t, opt)
	assert.Equal(t, "banana", opt.Text)

	assert.Nil(t, q.OptionByKey("Z"))
}

func TestTestQuestionLookup(t *testing.T) {
	test := &Test{
		Parts: []Part{
			{
				ID: "p1",
				Groups: []QuestionGroup{
					{
						ID:   "g1",
						Type: SingleChoice,
						Questions: []Question{
							{ID: "q1", Sequence: 1},
							{ID: "q2", Sequence: 2},
						},
					},
				},
			},
		},
	}

	q, g := test.Question("q2")
	require.NotNil(t, q)
	require.NotNil(t, g)
	assert.Equal(t, 2, q.Sequence)
	assert.Equal(t, "g1", g.ID)

	q, g = test.Question("missing")
	assert.Nil(t, q)
	assert.Nil(t, g)
}

func TestGroupSplit(t *testing.T) {
	bankOptions := []Option{
		{Key: "A", Text: "Paris"},
		{Key: "B", Text: "Rome"},
	}
	g := QuestionGroup{
		Type: Matching,
		Questions: []Question{
			{ID: "q1", Prompt: "Capital of France", Options: bankOptions},
			{ID: "q2", Prompt: "Capital of Italy", Options: bankOptions},
			{ID: "bank", Prompt: "", Options: bankOptions},
		},
	}

	answerable, bank := g.Split()
	assert.Len(t, answerable, 2)
	require.Len(t, bank, 1)
	assert.Equal(t, "bank", bank[0].ID)
}

func TestGroupSummaryMode(t *testing.T) {
	t.Run("shared prompt across questions", func(t *testing.T) {
		prompt := "Bees communicate through [1] and [2]."
		g := QuestionGroup{
			Type: FillBlank,
			Questions: []Question{
				{ID: "q1", Prompt: prompt},
				{ID: "q2", Prompt: prompt},
			},
		}
		assert.True(t, g.SummaryMode())
	})

	t.Run("distinct prompts", func(t *testing.T) {
		g := QuestionGroup{
			Type: FillBlank,
			Questions: []Question{
				{ID: "q1", Prompt: "First blank: ___"},
				{ID: "q2", Prompt: "Second blank: ___"},
			},
		}
		assert.False(t, g.SummaryMode())
	})

	t.Run("single long prompt", func(t *testing.T) {
		g := QuestionGroup{
			Type: FillBlank,
			Questions: []Question{
				{ID: "q1", Prompt: strings.Repeat("word ", 40)},
			},
		}
		assert.True(t, g.SummaryMode())
	})

	t.Run("single short prompt", func(t *testing.T) {
		g := QuestionGroup{
			Type:      FillBlank,
			Questions: []Question{{ID: "q1", Prompt: "Fill: ___"}},
		}
		assert.False(t, g.SummaryMode())
	})

	t.Run("non fill-blank group", func(t *testing.T) {
		prompt := "Same prompt"
		g := QuestionGroup{
			Type: SingleChoice,
			Questions: []Question{
				{ID: "q1", Prompt: prompt},
				{ID: "q2", Prompt: prompt},
			},
		}
		assert.False(t, g.SummaryMode())
	})
}

func TestAnswerRecordToggleKey(t *testing.T) {
	rec := AnswerRecord{QuestionID: "q1", Type: MultiChoice}

	rec.ToggleKey("A")
	rec.ToggleKey("C")
	assert.Equal(t, []string{"A", "C"}, rec.Keys)

	rec.ToggleKey("A")
	assert.Equal(t, []string{"C"}, rec.Keys)
	assert.True(t, rec.HasKey("C"))
	assert.False(t, rec.HasKey("A"))
}

func TestAnswerRecordIsEmpty(t *testing.T) {
	rec := AnswerRecord{QuestionID: "q1"}
	assert.True(t, rec.IsEmpty())

	rec.Text = "hello"
	assert.False(t, rec.IsEmpty())

	rec = AnswerRecord{QuestionID: "q1", Keys: []string{"A"}}
	assert.False(t, rec.IsEmpty())
}

func TestSessionFinished(t *testing.T) {
	s := TestSession{ID: "s1"}
	assert.False(t, s.Finished())
}
