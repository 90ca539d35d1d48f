// Package models holds the persistent entities of the Estately server.
package models

import "time"

// User is an account identified by its phone number. PasswordHash is a
// bcrypt hash; the plaintext password never leaves the service layer.
type User struct {
	ID                string
	FullName          string
	Phone             string
	Email             string
	PasswordHash      []byte
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
