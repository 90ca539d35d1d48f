package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCompleted = "completed"
	BookingStatusCanceled  = "canceled"
)

// ValidBookingStatus reports whether s is one of the known booking statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCanceled:
		return true
	}
	return false
}

// Booking is a visit request made by a user against a property.
type Booking struct {
	ID           string
	PropertyID   string
	UserID       string
	Status       string
	VisitDate    time.Time
	Message      string
	ContactPhone string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
