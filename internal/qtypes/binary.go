package qtypes

import (
	"fmt"
	"strings"

	"github.com/linguaflow/delivery-client/internal/models"
)

// binary covers the two three-token types, true/false/not-given and
// yes/no/not-given. The chosen literal token is the answer value.
type binary struct {
	tag    models.QuestionType
	tokens []string
}

func (b binary) Type() models.QuestionType { return b.tag }

func (b binary) Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error) {
	token := strings.ToUpper(strings.TrimSpace(in.Text))
	if !b.validToken(token) {
		return current, fmt.Errorf("%w: %q for %s", ErrInvalidToken, in.Text, b.tag)
	}
	rec := current
	rec.QuestionID = q.ID
	rec.Type = b.tag
	rec.Keys = nil
	rec.Text = token
	rec.Source = models.SourceTyped
	rec.Display = token
	return rec, nil
}

func (binary) ResolveDisplay(_ *models.Question, rec models.AnswerRecord) string {
	return rec.Text
}

func (binary) ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool {
	if server != nil {
		return server
	}
	if rec.Text == "" {
		return nil
	}
	return compareLocal(q, rec.Text)
}

func (b binary) validToken(token string) bool {
	for _, t := range b.tokens {
		if t == token {
			return true
		}
	}
	return false
}
