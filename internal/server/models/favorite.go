package models

import "time"

// Favorite marks a property saved by a user. (UserID, PropertyID) is unique.
type Favorite struct {
	ID         string
	UserID     string
	PropertyID string
	AddedAt    time.Time
}
