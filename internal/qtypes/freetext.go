package qtypes

import "github.com/linguaflow/delivery-client/internal/models"

type shortAnswer struct{}

func (shortAnswer) Type() models.QuestionType { return models.ShortAnswer }

func (h shortAnswer) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	rec.Keys = nil
	rec.Text = in.Text
	rec.Source = models.SourceTyped
	rec.Display = in.Text
	return rec, nil
}

func (shortAnswer) ResolveDisplay(_ *models.Question, rec models.AnswerRecord) string {
	return rec.Text
}

func (shortAnswer) ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool {
	if server != nil {
		return server
	}
	if rec.Text == "" {
		return nil
	}
	return compareLocal(q, rec.Text)
}
