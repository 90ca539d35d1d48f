package models

import "time"

// Image is metadata for a property photo stored in S3. The object bytes
// live under StorageKey; the database only keeps this record.
type Image struct {
	ID          string
	PropertyID  string
	UploaderID  string
	StorageKey  string
	URL         string
	Description string
	SortOrder   int
	Approved    bool
	CreatedAt   time.Time
}
