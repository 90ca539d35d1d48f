// Package httpapi is the HTTP JSON surface of the Estately server. Handlers
// stay thin: decode, call a service, encode. All authorization decisions
// beyond token validation live in the services.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/estately/estately/internal/logging"
	"github.com/estately/estately/internal/obs"
	"github.com/estately/estately/internal/server/auth"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/services"
)

// AuthService is the account-facing slice of the user service.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, phone, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*models.User, []string, error)
	UpdateProfile(ctx context.Context, userID string, in services.UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// TokenService validates access tokens and rotates refresh tokens.
type TokenService interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
}

// PropertyService manages listings.
type PropertyService interface {
	Create(ctx context.Context, ownerID string, p *models.Property) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Update(ctx context.Context, actorID string, actorRoles []string, p *models.Property) (*models.Property, error)
	Delete(ctx context.Context, actorID string, actorRoles []string, id string) error
	List(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, int, error)
}

// BookingService manages visit requests.
type BookingService interface {
	Create(ctx context.Context, userID string, in services.BookingInput) (*models.Booking, error)
	Get(ctx context.Context, actorID string, actorRoles []string, id string) (*models.Booking, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Booking, int, error)
	UpdateStatus(ctx context.Context, actorID string, actorRoles []string, id string, status string) (*models.Booking, error)
}

// FavoriteService manages saved listings.
type FavoriteService interface {
	Add(ctx context.Context, userID, propertyID string) (*models.Favorite, error)
	Remove(ctx context.Context, userID, propertyID string) error
	List(ctx context.Context, userID string, page, pageSize int) ([]*models.Favorite, int, error)
}

// ImageService manages listing photos and presigned URLs.
type ImageService interface {
	RequestUpload(ctx context.Context, actorID string, actorRoles []string, propertyID, description string, sortOrder int) (*services.ImageUpload, error)
	GetDownloadURL(ctx context.Context, actorID string, actorRoles []string, imageID string) (string, error)
	ListForProperty(ctx context.Context, actorID string, actorRoles []string, propertyID string) ([]*models.Image, error)
	ListMine(ctx context.Context, actorID string) ([]*models.Image, error)
	ListPending(ctx context.Context, actorRoles []string) ([]*models.Image, error)
	Approve(ctx context.Context, actorRoles []string, imageID string) error
	Delete(ctx context.Context, actorID string, actorRoles []string, imageID string) error
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	logger     logging.Logger
	db         *sql.DB
	users      AuthService
	tokens     TokenService
	properties PropertyService
	bookings   BookingService
	favorites  FavoriteService
	images     ImageService
}

// Services groups the dependencies New needs.
type Services struct {
	Users      AuthService
	Tokens     TokenService
	Properties PropertyService
	Bookings   BookingService
	Favorites  FavoriteService
	Images     ImageService
}

// authRateBurst / authRatePerSecond bound credential-endpoint traffic per IP.
const (
	authRateBurst     = 10
	authRatePerSecond = 5
)

func New(logger logging.Logger, db *sql.DB, svc Services) *API {
	a := &API{
		mux:        http.NewServeMux(),
		logger:     logger,
		db:         db,
		users:      svc.Users,
		tokens:     svc.Tokens,
		properties: svc.Properties,
		bookings:   svc.Bookings,
		favorites:  svc.Favorites,
		images:     svc.Images,
	}

	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(h, authRateBurst, authRatePerSecond)
	}

	a.mux.Handle("POST /api/auth/register", limited(a.handleRegister))
	a.mux.Handle("POST /api/auth/login", limited(a.handleLogin))
	a.mux.Handle("POST /api/auth/refresh", limited(a.handleRefresh))
	a.mux.HandleFunc("POST /api/auth/logout", a.handleLogout)

	a.mux.HandleFunc("GET /api/users/profile", a.handleGetProfile)
	a.mux.HandleFunc("PUT /api/users/profile", a.handleUpdateProfile)
	a.mux.HandleFunc("POST /api/users/password", a.handleChangePassword)

	a.mux.HandleFunc("GET /api/properties", a.handleListProperties)
	a.mux.HandleFunc("POST /api/properties", a.handleCreateProperty)
	a.mux.HandleFunc("GET /api/properties/{id}", a.handleGetProperty)
	a.mux.HandleFunc("PUT /api/properties/{id}", a.handleUpdateProperty)
	a.mux.HandleFunc("DELETE /api/properties/{id}", a.handleDeleteProperty)

	a.mux.HandleFunc("GET /api/properties/{id}/images", a.handleListPropertyImages)
	a.mux.HandleFunc("POST /api/properties/{id}/images", a.handleRequestImageUpload)
	a.mux.HandleFunc("GET /api/images/my-uploads", a.handleListMyImages)
	a.mux.HandleFunc("GET /api/images/pending", a.handleListPendingImages)
	a.mux.HandleFunc("GET /api/images/{id}/url", a.handleImageURL)
	a.mux.HandleFunc("POST /api/images/{id}/approve", a.handleApproveImage)
	a.mux.HandleFunc("DELETE /api/images/{id}", a.handleDeleteImage)

	a.mux.HandleFunc("POST /api/bookings", a.handleCreateBooking)
	a.mux.HandleFunc("GET /api/bookings", a.handleListBookings)
	a.mux.HandleFunc("GET /api/bookings/{id}", a.handleGetBooking)
	a.mux.HandleFunc("PUT /api/bookings/{id}/status", a.handleUpdateBookingStatus)
	a.mux.HandleFunc("DELETE /api/bookings/{id}", a.handleCancelBooking)

	a.mux.HandleFunc("GET /api/favorites", a.handleListFavorites)
	a.mux.HandleFunc("POST /api/favorites/{propertyID}", a.handleAddFavorite)
	a.mux.HandleFunc("DELETE /api/favorites/{propertyID}", a.handleRemoveFavorite)

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = Logging(a.logger, h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
