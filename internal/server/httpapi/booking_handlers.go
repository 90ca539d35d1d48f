package httpapi

import (
	"net/http"
	"time"

	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/services"
)

type createBookingRequest struct {
	PropertyID   string    `json:"property_id"`
	VisitDate    time.Time `json:"visit_date"`
	Message      string    `json:"message"`
	ContactPhone string    `json:"contact_phone"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

type bookingResponse struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	VisitDate    time.Time `json:"visit_date"`
	Message      string    `json:"message,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type bookingListResponse struct {
	Bookings []bookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

func toBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		PropertyID:   b.PropertyID,
		UserID:       b.UserID,
		Status:       b.Status,
		VisitDate:    b.VisitDate,
		Message:      b.Message,
		ContactPhone: b.ContactPhone,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (a *API) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.bookings.Create(r.Context(), p.UserID, services.BookingInput{
		PropertyID:   req.PropertyID,
		VisitDate:    req.VisitDate,
		Message:      req.Message,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(created))
}

func (a *API) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	booking, err := a.bookings.Get(r.Context(), p.UserID, p.Roles, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (a *API) handleListBookings(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := queryInt(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := queryInt(q.Get("page_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	items, total, err := a.bookings.ListForUser(r.Context(), p.UserID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := bookingListResponse{Bookings: make([]bookingResponse, 0, len(items)), Total: total}
	for _, b := range items {
		resp.Bookings = append(resp.Bookings, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCancelBooking is shorthand for a status update to "canceled", with
// the same actor rules.
func (a *API) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	updated, err := a.bookings.UpdateStatus(r.Context(), p.UserID, p.Roles, r.PathValue("id"), models.BookingStatusCanceled)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(updated))
}

func (a *API) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req updateBookingStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := a.bookings.UpdateStatus(r.Context(), p.UserID, p.Roles, r.PathValue("id"), req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(updated))
}
