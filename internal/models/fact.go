package models

import "time"

// Fact is an atomic, subject-explicit statement extracted from
// conversational text. A Fact is immutable once extracted; validation may
// reclassify it but never rewrites Text.
type Fact struct {
	Text            string `json:"text"`
	TemporalContext string `json:"temporal_context,omitempty"`
	Language        string `json:"language,omitempty"`
	SourceExcerpt   string `json:"source_excerpt,omitempty"`
}

// InvalidFact pairs a rejected fact with the reason it was rejected.
type InvalidFact struct {
	Fact   Fact   `json:"fact"`
	Reason string `json:"reason"`
}

// ValidationResult is the exhaustive partition produced by the validator:
// every candidate fact lands in exactly one of ValidFacts or InvalidFacts.
type ValidationResult struct {
	ValidFacts   []Fact        `json:"valid_facts"`
	InvalidFacts []InvalidFact `json:"invalid_facts"`
	Suggestions  []string      `json:"suggestions,omitempty"`
}

// MemoryRecord is a validated fact bound to a user and persisted in the
// vector store. Records are append-only; contradiction resolution against
// already-stored records is not handled here.
type MemoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	Vector    []float32 `json:"vector,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
