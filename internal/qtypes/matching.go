package qtypes

import "github.com/linguaflow/delivery-client/internal/models"

// matching assigns one option key from the group's bank to each answerable
// item. The bank itself (prompt-less questions carrying the shared options)
// is reference material, not an input.
type matching struct{}

func (matching) Type() models.QuestionType { return models.Matching }

func (h matching) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	rec.Keys = []string{in.Key}
	rec.Text = ""
	rec.Source = models.SourceOptionKey
	rec.Display = h.ResolveDisplay(q, rec)
	return rec, nil
}

func (matching) ResolveDisplay(q *models.Question, rec models.AnswerRecord) string {
	return resolveKeys(q, rec.Keys)
}

// Matching correctness is a whole-question server judgment, same as
// multi-select.
func (matching) ComputeCorrectness(_ *models.Question, _ models.AnswerRecord, server *bool) *bool {
	return server
}

// labeling writes an option key against a position in a figure. Grading is
// key-based, so the key is the answer even when no display text resolves.
type labeling struct{}

func (labeling) Type() models.QuestionType { return models.Labeling }

func (h labeling) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	rec := current
	rec.QuestionID = q.ID
	rec.Type = h.Type()
	rec.Keys = []string{in.Key}
	rec.Text = ""
	rec.Source = models.SourceOptionKey
	rec.Display = h.ResolveDisplay(q, rec)
	return rec, nil
}

func (labeling) ResolveDisplay(q *models.Question, rec models.AnswerRecord) string {
	return resolveKeys(q, rec.Keys)
}

func (labeling) ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool {
	if server != nil {
		return server
	}
	if len(rec.Keys) != 1 {
		return nil
	}
	return compareLocal(q, rec.Keys[0])
}
