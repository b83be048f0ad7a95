package qtypes

import "github.com/linguaflow/delivery-client/internal/models"

type singleChoice struct{}

func (singleChoice) Type() models.QuestionType { return models.SingleChoice }

func (h singleChoice) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	rec.Keys = []string{in.Key}
	rec.Text = ""
	rec.Source = models.SourceOptionKey
	rec.Display = h.ResolveDisplay(q, rec)
	return rec, nil
}

func (singleChoice) ResolveDisplay(q *models.Question, rec models.AnswerRecord) string {
	return resolveKeys(q, rec.Keys)
}

func (singleChoice) ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool {
	if server != nil {
		return server
	}
	if len(rec.Keys) != 1 {
		return nil
	}
	return compareLocal(q, rec.Keys[0])
}

type multiChoice struct{}

func (multiChoice) Type() models.QuestionType { return models.MultiChoice }

func (h multiChoice) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	rec.ToggleKey(in.Key)
	rec.Text = ""
	rec.Source = models.SourceOptionKey
	rec.Display = h.ResolveDisplay(q, rec)
	return rec, nil
}

func (multiChoice) ResolveDisplay(q *models.Question, rec models.AnswerRecord) string {
	return resolveKeys(q, rec.Keys)
}

// Multi-select correctness is an all-or-nothing server judgment; there is no
// local fallback.
func (multiChoice) ComputeCorrectness(_ *models.Question, _ models.AnswerRecord, server *bool) *bool {
	return server
}
