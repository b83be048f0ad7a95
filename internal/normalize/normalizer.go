// Package normalize flattens the in-memory answer set into the exact wire
// shape the grading backend expects for each question type.
package normalize

import (
	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/qtypes"
)

// Normalize walks the loaded question graph in display order and emits wire
// entries for every answered question. Unanswered questions are omitted
// entirely; absence, not an empty string, signals "no answer".
func Normalize(answers map[string]models.AnswerRecord, test *models.Test, registry *qtypes.Registry) ([]models.WireAnswer, error) {
	var out []models.WireAnswer
	for pi := range test.Parts {
		for gi := range test.Parts[pi].Groups {
			g := &test.Parts[pi].Groups[gi]
			handler, err := registry.ForGroup(g)
			if err != nil {
				return nil, err
			}
			for qi := range g.Questions {
				q := &g.Questions[qi]
				rec, ok := answers[q.ID]
				if !ok || rec.IsEmpty() {
					continue
				}
				out = append(out, flatten(q, g.Type, handler, rec)...)
			}
		}
	}
	return out, nil
}

func flatten(q *models.Question, tag models.QuestionType, handler qtypes.Handler, rec models.AnswerRecord) []models.WireAnswer {
	switch tag {
	case models.Labeling:
		// The key is mandatory even when no display text resolves, because
		// labeling grading is key-based.
		var entries []models.WireAnswer
		for _, key := range rec.Keys {
			entries = append(entries, models.WireAnswer{
				QuestionID: q.ID,
				Text:       resolveKeyText(q, key),
				Key:        key,
			})
		}
		return entries

	case models.SingleChoice, models.MultiChoice, models.Matching:
		// Multi-valued answers expand into one entry per selected key. A
		// single-valued entry prefers the display string captured at
		// collection time; key resolution is the fallback.
		var entries []models.WireAnswer
		for _, key := range rec.Keys {
			text := rec.Display
			if len(rec.Keys) > 1 || text == "" {
				text = resolveKeyText(q, key)
			}
			entries = append(entries, models.WireAnswer{
				QuestionID: q.ID,
				Text:       text,
				Key:        key,
			})
		}
		return entries

	case models.TrueFalseNG, models.YesNoNG:
		// The literal token travels in its own field, never in text.
		return []models.WireAnswer{{
			QuestionID: q.ID,
			Token:      rec.Text,
		}}

	default:
		return []models.WireAnswer{flattenFreeform(q, handler, rec)}
	}
}

// flattenFreeform handles fill-blank and free-text answers, where the stored
// value is either a word-bank key or hand-typed text. The source
// discriminator captured at collection time decides; records without one
// (rebuilt from stored wire data) fall back to key resolution: a value that
// resolves against the question's option keys is treated as a box selection.
func flattenFreeform(q *models.Question, handler qtypes.Handler, rec models.AnswerRecord) models.WireAnswer {
	value := rec.Text
	if len(rec.Keys) > 0 {
		value = rec.Keys[0]
	}

	boxMode := false
	switch rec.Source {
	case models.SourceOptionKey:
		boxMode = true
	case models.SourceTyped:
		boxMode = false
	default:
		boxMode = q.OptionByKey(value) != nil
	}

	if boxMode {
		return models.WireAnswer{
			QuestionID: q.ID,
			Text:       resolveKeyText(q, value),
			Key:        value,
		}
	}
	return models.WireAnswer{
		QuestionID: q.ID,
		Text:       handler.ResolveDisplay(q, rec),
	}
}

func resolveKeyText(q *models.Question, key string) string {
	if opt := q.OptionByKey(key); opt != nil {
		return opt.Text
	}
	return ""
}
