package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Bookmark represents one saved URL together with everything the
// ingestion pipeline derived from it. The embedding column backs
// similarity search and clustering; the record is created once per
// successful save and afterwards only changed by direct user edits.
type Bookmark struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	URL           string    `db:"url" json:"url"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Summary       string    `db:"summary" json:"summary"`
	BiggerSummary string    `db:"bigger_summary" json:"bigger_summary"`
	Tags          []string  `db:"tags" json:"tags"`
	ReadingTime   int       `db:"reading_time" json:"reading_time"` // minutes
	ContentType   string    `db:"content_type" json:"content_type"` // video | audio | blog
	Embedding     []float32 `db:"embedding" json:"-"`               // pgvector column
	SnapshotURL   string    `db:"snapshot_url" json:"snapshot_url,omitempty"`
	SharedWith    []string  `db:"shared_with" json:"shared_with"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SearchResult is one ranked hit from the external web search API.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

