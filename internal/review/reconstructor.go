// Package review rebuilds a read-only view of a finished session from the
// graded payload: stored wire answers mapped back into display-friendly
// answer records, with the server's per-question correctness merged in.
package review

import (
	"fmt"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/qtypes"
)

// QuestionView is one reviewable question: the given answer alongside the
// expected one.
type QuestionView struct {
	Question *models.Question
	Group    *models.QuestionGroup
	Record   models.AnswerRecord
	Answered bool
	Correct  *bool
}

// Result is the reconstructed review: the full structure, answer records
// keyed by question identifier, and per-question views in display order.
type Result struct {
	Session   models.TestSession
	Structure *models.Test
	Records   map[string]models.AnswerRecord
	Questions []QuestionView
}

// Reconstruct maps the graded session back into the internal answer shape.
// Correctness comes from the server verdict carried on each stored answer;
// the client never re-derives grading truth.
func Reconstruct(graded *models.GradedSession, registry *qtypes.Registry) (*Result, error) {
	if graded.Structure == nil {
		return nil, fmt.Errorf("graded session %s has no structure", graded.SessionID)
	}

	byQuestion := make(map[string][]models.StoredAnswer)
	for _, stored := range graded.Answers {
		byQuestion[stored.QuestionID] = append(byQuestion[stored.QuestionID], stored)
	}

	result := &Result{
		Session: models.TestSession{
			ID:         graded.SessionID,
			UserID:     graded.UserID,
			TestID:     graded.Structure.ID,
			Score:      &graded.Score,
			FinishedAt: graded.FinishedAt,
			Answers:    graded.Answers,
		},
		Structure: graded.Structure,
		Records:   make(map[string]models.AnswerRecord),
	}

	for pi := range graded.Structure.Parts {
		for gi := range graded.Structure.Parts[pi].Groups {
			g := &graded.Structure.Parts[pi].Groups[gi]
			handler, err := registry.ForGroup(g)
			if err != nil {
				return nil, err
			}
			for qi := range g.Questions {
				q := &g.Questions[qi]
				view := QuestionView{Question: q, Group: g}

				stored, ok := byQuestion[q.ID]
				if ok {
					rec := rebuildRecord(q, g.Type, stored)
					rec.Display = handler.ResolveDisplay(q, rec)
					if rec.Display == "" {
						rec.Display = stored[0].Text
					}
					rec.Correct = handler.ComputeCorrectness(q, rec, serverVerdict(stored))
					result.Records[q.ID] = rec
					view.Record = rec
					view.Answered = true
					view.Correct = rec.Correct
				}
				result.Questions = append(result.Questions, view)
			}
		}
	}

	return result, nil
}

// rebuildRecord folds the stored wire entries for one question back into a
// single answer record. Records rebuilt here carry no collection-time source
// discriminator, so downstream consumers fall back to key resolution.
func rebuildRecord(q *models.Question, tag models.QuestionType, stored []models.StoredAnswer) models.AnswerRecord {
	rec := models.AnswerRecord{
		QuestionID: q.ID,
		Type:       tag,
		Source:     models.SourceUnknown,
	}
	for _, s := range stored {
		switch {
		case s.Token != "":
			rec.Text = s.Token
		case s.Key != "":
			rec.Keys = append(rec.Keys, s.Key)
		default:
			rec.Text = s.Text
		}
	}
	return rec
}

// serverVerdict collapses the per-entry flags into the whole-question
// verdict: all entries must be marked correct, and at least one flag must be
// present.
func serverVerdict(stored []models.StoredAnswer) *bool {
	var verdict *bool
	for _, s := range stored {
		if s.Correct == nil {
			continue
		}
		if !*s.Correct {
			f := false
			return &f
		}
		t := true
		verdict = &t
	}
	return verdict
}
