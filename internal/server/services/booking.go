package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// BookingInput carries the fields for a new visit request.
type BookingInput struct {
	PropertyID   string
	VisitDate    time.Time
	Message      string
	ContactPhone string
}

// BookingService implements visit bookings: a user requests a visit to a
// listing, the listing's owner approves or rejects it, either side can move
// it to completed or canceled.
type BookingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBookingService(db *sql.DB, m repomanager.RepositoryManager) *BookingService {
	return &BookingService{db: db, repomanager: m}
}

// Create files a pending visit request for the property. Booking one's own
// listing is rejected.
func (s *BookingService) Create(ctx context.Context, userID string, in BookingInput) (*models.Booking, error) {
	if in.VisitDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: visit date must be in the future", common.ErrorValidation)
	}

	var created *models.Booking

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		property, err := s.repomanager.Properties(tx).GetByID(ctx, in.PropertyID)
		if err != nil {
			return err
		}
		if property.OwnerID == userID {
			return fmt.Errorf("%w: cannot book your own listing", common.ErrorValidation)
		}

		created, err = s.repomanager.Bookings(tx).Create(ctx, &models.Booking{
			PropertyID:   in.PropertyID,
			UserID:       userID,
			Status:       models.BookingStatusPending,
			VisitDate:    in.VisitDate,
			Message:      in.Message,
			ContactPhone: in.ContactPhone,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a booking. Only the requester, the listing owner, or an admin
// may see it.
func (s *BookingService) Get(ctx context.Context, actorID string, actorRoles []string, id string) (*models.Booking, error) {
	booking, err := s.repomanager.Bookings(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireBookingAccess(ctx, booking, actorID, actorRoles); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListForUser returns a page of the user's own bookings.
func (s *BookingService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Booking, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repomanager.Bookings(s.db).ListForUser(ctx, userID, page, pageSize)
}

// UpdateStatus moves a booking through its lifecycle. Approve and reject are
// owner (or admin) actions; cancel is for the requester; completed may be set
// by either side once the booking was approved.
func (s *BookingService) UpdateStatus(ctx context.Context, actorID string, actorRoles []string, id string, status string) (*models.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: unknown booking status %q", common.ErrorValidation, status)
	}

	var updated *models.Booking

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Bookings(tx)

		booking, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		property, err := s.repomanager.Properties(tx).GetByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}

		if err := checkStatusTransition(booking, property, actorID, actorRoles, status); err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) requireBookingAccess(ctx context.Context, b *models.Booking, actorID string, actorRoles []string) error {
	if b.UserID == actorID {
		return nil
	}
	property, err := s.repomanager.Properties(s.db).GetByID(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	return requireOwnerOrAdmin(property.OwnerID, actorID, actorRoles)
}

func checkStatusTransition(b *models.Booking, p *models.Property, actorID string, actorRoles []string, status string) error {
	switch status {
	case models.BookingStatusApproved, models.BookingStatusRejected:
		if b.Status != models.BookingStatusPending {
			return fmt.Errorf("%w: only pending bookings can be %s", common.ErrorValidation, status)
		}
		return requireOwnerOrAdmin(p.OwnerID, actorID, actorRoles)
	case models.BookingStatusCanceled:
		if b.Status == models.BookingStatusCompleted {
			return fmt.Errorf("%w: completed bookings cannot be canceled", common.ErrorValidation)
		}
		if b.UserID != actorID {
			return requireOwnerOrAdmin(p.OwnerID, actorID, actorRoles)
		}
		return nil
	case models.BookingStatusCompleted:
		if b.Status != models.BookingStatusApproved {
			return fmt.Errorf("%w: only approved bookings can be completed", common.ErrorValidation)
		}
		return requireOwnerOrAdmin(p.OwnerID, actorID, actorRoles)
	default:
		return fmt.Errorf("%w: bookings cannot return to %s", common.ErrorValidation, status)
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
