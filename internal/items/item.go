// Package items implements the transcript item domain for Tally.
// It provides types, data access, and business logic for transcript
// upload, registration, metadata management, and blob storage integration.
package items

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a registered transcript with its metadata and blob storage reference.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new
// transcript. Data holds the raw transcript bytes.
type CreateCommand struct {
	Data        []byte
	Name        string
	Source      string
	ContentType string
}
