package model

import "time"

// Mapping is a stored short-code to original-URL pair. Both fields are
// immutable once the mapping has been persisted.
type Mapping struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// MappingRecord is the journal envelope used by the file storage backend.
type MappingRecord struct {
	UUID string `json:"uuid"`
	Mapping
}
