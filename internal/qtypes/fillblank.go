package qtypes

import "github.com/linguaflow/delivery-client/internal/models"

// fillBlank covers both renderings of a blank: box mode, answered by picking
// a key from a word bank, and free mode, answered by typing. The interaction
// shape decides which: a key input selects from the bank, text input is
// literal. The source discriminator is set here so submission never has to
// guess which one happened.
type fillBlank struct{}

func (fillBlank) Type() models.QuestionType { return models.FillBlank }

func (h fillBlank) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	if in.Key != "" {
		rec.Keys = []string{in.Key}
		rec.Text = ""
		rec.Source = models.SourceOptionKey
	} else {
		rec.Keys = nil
		rec.Text = in.Text
		rec.Source = models.SourceTyped
	}
	rec.Display = h.ResolveDisplay(q, rec)
	return rec, nil
}

func (fillBlank) ResolveDisplay(q *models.Question, rec models.AnswerRecord) string {
	if len(rec.Keys) > 0 {
		return resolveKeys(q, rec.Keys)
	}
	return rec.Text
}

func (fillBlank) ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool {
	if server != nil {
		return server
	}
	if len(rec.Keys) == 1 {
		return compareLocal(q, rec.Keys[0])
	}
	if rec.Text != "" {
		return compareLocal(q, rec.Text)
	}
	return nil
}
