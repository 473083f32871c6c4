package domain

// ExpectedBehavior is the intended correct response class for a
// generated evaluation query.
type ExpectedBehavior string

const (
	BehaviorAnswer           ExpectedBehavior = "answer"
	BehaviorPartial          ExpectedBehavior = "partial"
	BehaviorRefuse           ExpectedBehavior = "refuse"
	BehaviorAskClarification ExpectedBehavior = "ask_clarification"
)

// IsValid reports whether b is a recognised behavior class.
func (b ExpectedBehavior) IsValid() bool {
	switch b {
	case BehaviorAnswer, BehaviorPartial, BehaviorRefuse, BehaviorAskClarification:
		return true
	}
	return false
}

// DocAnnotation is the subset of a DocumentProfile embedded in each
// query record, enough to interpret the query without the full profile.
type DocAnnotation struct {
	DocID        string        `json:"doc_id"`
	FileType     FileType      `json:"file_type"`
	Layout       Layout        `json:"layout"`
	TableProfile *TableProfile `json:"table_profile,omitempty"`
}

// AnswerConstraints bound what a correct answer must and must not say.
type AnswerConstraints struct {
	MustMention    []string `json:"must_mention"`
	MustNotMention []string `json:"must_not_mention"`
}

// QueryRecord is one generated evaluation query. Immutable once
// written to the output set.
type QueryRecord struct {
	// ID is assigned in emission order, q_000001 upward.
	ID string `json:"id"`

	Query string `json:"query"`

	// Domain is the evaluation domain, an open string ("hr" by default).
	Domain string `json:"domain"`

	ExpectedBehavior ExpectedBehavior `json:"expected_behavior"`

	DocAnnotation DocAnnotation `json:"doc_annotation"`

	// Stressors are derived from the source bucket, never authored.
	Stressors []string `json:"stressors"`

	RequiredChunks  []string `json:"required_chunks"`
	OptionalChunks  []string `json:"optional_chunks"`
	ForbiddenChunks []string `json:"forbidden_chunks"`

	AnswerConstraints AnswerConstraints `json:"answer_constraints"`
}
