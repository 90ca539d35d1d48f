package models

import "time"

// RefreshToken is an opaque single-use credential persisted per user.
// A token is usable iff Revoked is false and Expires is in the future.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	Revoked   bool
	CreatedAt time.Time
}
