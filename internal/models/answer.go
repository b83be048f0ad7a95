package models

// True/false/not-given and yes/no/not-given literal tokens. These travel in
// the wire answer's token field, never in the text field.
const (
	TokenTrue     = "TRUE"
	TokenFalse    = "FALSE"
	TokenYes      = "YES"
	TokenNo       = "NO"
	TokenNotGiven = "NOT GIVEN"
)

// AnswerSource records how an answer value was captured. The submission
// normalizer uses it to decide whether the value is an option key to resolve
// or literal text; records rebuilt from stored wire data may lack a source,
// in which case resolution falls back to a key-lookup heuristic.
type AnswerSource string

const (
	SourceUnknown   AnswerSource = ""
	SourceOptionKey AnswerSource = "key"
	SourceTyped     AnswerSource = "typed"
)

// AnswerRecord is the single in-memory answer shape shared by every question
// type. Keys holds selected option keys (one for single-valued types, a set
// for multi-select); Text holds literal input for free-text and token types.
type AnswerRecord struct {
	QuestionID string       `json:"question_id"`
	Type       QuestionType `json:"type"`
	Keys       []string     `json:"keys,omitempty"`
	Text       string       `json:"text,omitempty"`

	// Display is a human-readable echo captured at collection time so render
	// paths need not re-resolve keys.
	Display string       `json:"display,omitempty"`
	Source  AnswerSource `json:"source,omitempty"`

	// Correct is the server's verdict, merged in during review only.
	Correct *bool `json:"correct,omitempty"`
}

// IsEmpty reports whether the record carries no user input at all. Empty
// records are omitted from submission.
func (r *AnswerRecord) IsEmpty() bool {
	return len(r.Keys) == 0 && r.Text == ""
}

func (r *AnswerRecord) HasKey(key string) bool {
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// ToggleKey adds the key to the selection set, or removes it when already
// present. Used by multi-select collection.
func (r *AnswerRecord) ToggleKey(key string) {
	for i, k := range r.Keys {
		if k == key {
			r.Keys = append(r.Keys[:i], r.Keys[i+1:]...)
			return
		}
	}
	r.Keys = append(r.Keys, key)
}
