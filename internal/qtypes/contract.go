// Package qtypes defines the per-question-type capability contract and its
// eight implementations. Each question group resolves its handler once from
// the registry at load time instead of switching on the type tag at every
// render and submit call site.
package qtypes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linguaflow/delivery-client/internal/models"
)

var (
	ErrUnknownType  = errors.New("unknown question type")
	ErrInvalidToken = errors.New("invalid answer token")
)

// Input is one presentation-agnostic user interaction: an option key press
// or typed text. Exactly one of the two is expected per interaction.
type Input struct {
	Key  string
	Text string
}

// Handler is the capability contract implemented per question type.
type Handler interface {
	Type() models.QuestionType

	// Collect produces the next answer record value from the current record
	// and one user interaction. Multi-select accumulates into and out of a
	// set; key-based types write an option key; free-text and token types
	// write a literal string.
	Collect(q *models.Question, current models.AnswerRecord, in Input) (models.AnswerRecord, error)

	// ResolveDisplay maps a stored value back to human-readable text. For
	// key-based types this scans the question's options by matching key,
	// O(options) per resolution.
	ResolveDisplay(q *models.Question, rec models.AnswerRecord) string

	// ComputeCorrectness returns the review-mode verdict for the record. The
	// server's flag is authoritative whenever present; partial-credit types
	// (multi-select, matching) never fall back to local comparison because
	// their whole-question verdict is an all-or-nothing server judgment.
	ComputeCorrectness(q *models.Question, rec models.AnswerRecord, server *bool) *bool
}

type Registry struct {
	handlers map[models.QuestionType]Handler
}

// NewRegistry builds a registry covering every supported question type.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[models.QuestionType]Handler)}
	for _, h := range []Handler{
		singleChoice{},
		multiChoice{},
		matching{},
		labeling{},
		fillBlank{},
		binary{tag: models.TrueFalseNG, tokens: []string{models.TokenTrue, models.TokenFalse, models.TokenNotGiven}},
		binary{tag: models.YesNoNG, tokens: []string{models.TokenYes, models.TokenNo, models.TokenNotGiven}},
		shortAnswer{},
	} {
		r.handlers[h.Type()] = h
	}
	return r
}

func (r *Registry) Handler(tag models.QuestionType) (Handler, error) {
	h, ok := r.handlers[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}
	return h, nil
}

// ForGroup resolves the handler governing a whole group. The group's type
// tag is immutable, so the result can be held for the group's lifetime.
func (r *Registry) ForGroup(g *models.QuestionGroup) (Handler, error) {
	return r.Handler(g.Type)
}

// resolveKeys joins the display texts of the selected option keys. Keys that
// no longer resolve contribute nothing rather than failing the whole echo.
func resolveKeys(q *models.Question, keys []string) string {
	var texts []string
	for _, k := range keys {
		if opt := q.OptionByKey(k); opt != nil {
			texts = append(texts, opt.Text)
		}
	}
	return strings.Join(texts, ", ")
}

// compareLocal checks a single literal value against the review-only correct
// answers, case-insensitively with trimmed whitespace.
func compareLocal(q *models.Question, value string) *bool {
	if len(q.CorrectAnswers) == 0 {
		return nil
	}
	got := strings.ToUpper(strings.TrimSpace(value))
	for _, want := range q.CorrectAnswers {
		if got == strings.ToUpper(strings.TrimSpace(want)) {
			t := true
			return &t
		}
	}
	f := false
	return &f
}
