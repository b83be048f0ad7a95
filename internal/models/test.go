package models

import "unicode/utf8"

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Matching     QuestionType = "matching"
	Labeling     QuestionType = "labeling"
	FillBlank    QuestionType = "fill_blank"
	TrueFalseNG  QuestionType = "true_false_ng"
	YesNoNG      QuestionType = "yes_no_ng"
	ShortAnswer  QuestionType = "short_answer"
)

type SkillType string

const (
	SkillListening SkillType = "listening"
	SkillReading   SkillType = "reading"
	SkillWriting   SkillType = "writing"
	SkillSpeaking  SkillType = "speaking"
)

// Test is the fully loaded structure of one assessment: an ordered sequence
// of parts, each carrying its question groups once the part has been loaded.
type Test struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Skill    SkillType `json:"skill" validate:"omitempty,oneof=listening reading writing speaking"`
	Duration int       `json:"duration"` // minutes
	AudioRef string    `json:"audio_ref,omitempty"`
	Parts    []Part    `json:"parts"`
}

type Part struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Passage  string          `json:"passage,omitempty"`
	AudioRef string          `json:"audio_ref,omitempty"`
	ImageRef string          `json:"image_ref,omitempty"`
	Groups   []QuestionGroup `json:"groups"`
}

// QuestionGroup is a titled cluster of questions sharing one interaction
// type. Type is immutable once created; it selects the qtypes handler that
// governs every question in the group.
type QuestionGroup struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type" validate:"required"`
	Title     string       `json:"title"`
	Quantity  int          `json:"quantity"`
	ImageRef  string       `json:"image_ref,omitempty"`
	Questions []Question   `json:"questions"`
}

type Question struct {
	ID       string   `json:"id"`
	Sequence int      `json:"sequence"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options,omitempty"`

	// CorrectAnswers is only populated in review data returned by the
	// backend, never during an active attempt.
	CorrectAnswers []string `json:"correct_answers,omitempty"`
}

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Key  string `json:"key,omitempty"`

	// Correct is present only in review data.
	Correct *bool `json:"correct,omitempty"`
}

// OptionByKey scans the question's options for a matching key. Linear, but
// option counts are small (typically under 10).
func (q *Question) OptionByKey(key string) *Option {
	for i := range q.Options {
		if q.Options[i].Key == key {
			return &q.Options[i]
		}
	}
	return nil
}

// Question looks a question up by identifier across the whole loaded tree.
func (t *Test) Question(questionID string) (*Question, *QuestionGroup) {
	for pi := range t.Parts {
		for gi := range t.Parts[pi].Groups {
			g := &t.Parts[pi].Groups[gi]
			for qi := range g.Questions {
				if g.Questions[qi].ID == questionID {
					return &g.Questions[qi], g
				}
			}
		}
	}
	return nil, nil
}

// Split divides a matching or labeling group into answerable items and the
// option bank. Bank entries carry the shared option list but no prompt of
// their own; they are rendered as a reference list, not an input.
func (g *QuestionGroup) Split() (answerable, bank []Question) {
	for _, q := range g.Questions {
		if q.Prompt == "" && len(q.Options) > 0 {
			bank = append(bank, q)
			continue
		}
		answerable = append(answerable, q)
	}
	return answerable, bank
}

// summaryPromptRunes is the prompt length beyond which a lone fill-blank
// question is treated as running prose rather than a discrete box.
const summaryPromptRunes = 120

// SummaryMode reports whether a fill-blank group renders as inline markers
// spliced into prose instead of discrete input boxes. The detection is
// structural: several questions sharing one prompt, or a single long prompt.
func (g *QuestionGroup) SummaryMode() bool {
	if g.Type != FillBlank {
		return false
	}
	if len(g.Questions) == 0 {
		return false
	}
	if len(g.Questions) == 1 {
		return utf8.RuneCountInString(g.Questions[0].Prompt) > summaryPromptRunes
	}
	first := g.Questions[0].Prompt
	for _, q := range g.Questions[1:] {
		if q.Prompt != first {
			return false
		}
	}
	return true
}
