package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityCluster is an ephemeral, read-only group of near-duplicate entities
// produced by similarity clustering. Unlike a Group it is never persisted and
// entities keep no back-reference to it.
type EntityCluster struct {
	ID             uuid.UUID `json:"id"`
	Representative *Entity   `json:"representative"`
	Entities       []*Entity `json:"entities"`
	Similarity     float64   `json:"similarity"`
}

// SearchMode selects how a text query is interpreted.
type SearchMode string

const (
	SearchModeText  SearchMode = "text"
	SearchModeRegex SearchMode = "regex"
)

// SearchConfig represents configuration for a text search over a session's
// document.
type SearchConfig struct {
	Mode          SearchMode `json:"mode"`
	CaseSensitive bool       `json:"case_sensitive"`
	MaxResults    int        `json:"max_results"`
	ContextChars  int        `json:"context_chars"`
}

// DefaultSearchConfig returns a sensible default configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Mode:          SearchModeText,
		CaseSensitive: false,
		MaxResults:    50,
		ContextChars:  100,
	}
}

// SearchResult is one match of a text search, with surrounding context.
type SearchResult struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	Page          int    `json:"page"`
	Context       string `json:"context"`
	BeforeContext string `json:"before_context"`
	AfterContext  string `json:"after_context"`
}

// Passage is a slice of the document indexed for semantic search.
type Passage struct {
	ID        int64     `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Content   string    `json:"content"`
	Page      int       `json:"page"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PassageMatch is a passage returned by a semantic search with its
// cosine similarity to the query.
type PassageMatch struct {
	ID         int64     `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Content    string    `json:"content"`
	Page       int       `json:"page"`
	Similarity float64   `json:"similarity"`
}
