package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/auth"
	"github.com/estately/estately/internal/server/config"
	"github.com/estately/estately/internal/server/models"
	bookingsrepo "github.com/estately/estately/internal/server/repositories/bookings"
	favoritesrepo "github.com/estately/estately/internal/server/repositories/favorites"
	imagesrepo "github.com/estately/estately/internal/server/repositories/images"
	propertiesrepo "github.com/estately/estately/internal/server/repositories/properties"
	refreshtokensrepo "github.com/estately/estately/internal/server/repositories/refreshtokens"
	"github.com/estately/estately/internal/server/repositories/repomanager"
	usersrepo "github.com/estately/estately/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		JWTIssuer:                    "estately",
		JWTAudience:                  "estately-clients",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 7 * 24 * time.Hour,
	}
}

func newTestTokenService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *TokenService {
	t.Helper()
	s, err := NewTokenService(db, rm, testConfig())
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return s
}

func parseAccessClaims(t *testing.T, token string) *auth.Claims {
	t.Helper()
	cfg := testConfig()
	claims, err := auth.ParseToken(token, []byte(cfg.SecretKey), cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	return claims
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- fake users repository ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byID  map[string]*models.User
	byIDE error

	byPhone map[string]*models.User

	roles    map[string][]string
	rolesErr error

	addRoleErr error
	addedRoles []string

	updateProfileErr error
	updatedProfile   *models.User

	updatePasswordErr error
	updatedHash       []byte
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *u
	out.ID = uuid.NewString()
	return &out, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDE != nil {
		return nil, f.byIDE
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	f.updatedProfile = u
	return f.updateProfileErr
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	f.updatedHash = hash
	return f.updatePasswordErr
}

func (f *fakeUsersRepo) GetRoles(ctx context.Context, userID string) ([]string, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles[userID], nil
}

func (f *fakeUsersRepo) AddRole(ctx context.Context, userID string, role string) error {
	if f.addRoleErr != nil {
		return f.addRoleErr
	}
	f.addedRoles = append(f.addedRoles, role)
	return nil
}

// --- in-memory refresh token repository ---

// memRefreshRepo mimics the real conditional-update semantics: Consume
// succeeds at most once per token value, even under concurrency.
type memRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken

	createErr  error
	consumeErr error
	revokeErr  error
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *memRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) (*models.RefreshToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rt := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	f.tokens[token] = rt
	return rt, nil
}

func (f *memRefreshRepo) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[token]
	if !ok || rt.Revoked || !rt.Expires.After(time.Now()) {
		return nil, common.ErrorNotFound
	}
	rt.Revoked = true
	return rt, nil
}

func (f *memRefreshRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

func (f *memRefreshRepo) active(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rt := range f.tokens {
		if rt.UserID == userID && !rt.Revoked && rt.Expires.After(time.Now()) {
			n++
		}
	}
	return n
}

// --- fake properties repository ---

type fakePropertiesRepo struct {
	byID map[string]*models.Property

	createOut *models.Property
	createErr error
	created   *models.Property

	updateErr error
	updated   *models.Property

	deleteErr error
	deletedID string

	listOut   []*models.Property
	listTotal int
	listErr   error
	lastFilt  models.PropertyFilter
}

func (f *fakePropertiesRepo) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = p
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *p
	out.ID = uuid.NewString()
	return &out, nil
}

func (f *fakePropertiesRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePropertiesRepo) Update(ctx context.Context, p *models.Property) error {
	f.updated = p
	return f.updateErr
}

func (f *fakePropertiesRepo) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakePropertiesRepo) List(ctx context.Context, filt models.PropertyFilter) ([]*models.Property, int, error) {
	f.lastFilt = filt
	return f.listOut, f.listTotal, f.listErr
}

// --- fake bookings repository ---

type fakeBookingsRepo struct {
	byID map[string]*models.Booking

	createErr error
	created   *models.Booking

	listOut   []*models.Booking
	listTotal int
	listErr   error

	statusErr error
	statusSet string
}

func (f *fakeBookingsRepo) Create(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *b
	out.ID = uuid.NewString()
	f.created = &out
	if f.byID == nil {
		f.byID = make(map[string]*models.Booking)
	}
	f.byID[out.ID] = &out
	return &out, nil
}

func (f *fakeBookingsRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBookingsRepo) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Booking, int, error) {
	return f.listOut, f.listTotal, f.listErr
}

func (f *fakeBookingsRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusSet = status
	if b, ok := f.byID[id]; ok {
		b.Status = status
	}
	return nil
}

// --- fake favorites repository ---

type fakeFavoritesRepo struct {
	addOut *models.Favorite
	addErr error

	removeErr error
	removed   bool

	listOut   []*models.Favorite
	listTotal int
	listErr   error
}

func (f *fakeFavoritesRepo) Add(ctx context.Context, userID, propertyID string) (*models.Favorite, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	if f.addOut != nil {
		return f.addOut, nil
	}
	return &models.Favorite{ID: uuid.NewString(), UserID: userID, PropertyID: propertyID}, nil
}

func (f *fakeFavoritesRepo) Remove(ctx context.Context, userID, propertyID string) error {
	f.removed = true
	return f.removeErr
}

func (f *fakeFavoritesRepo) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Favorite, int, error) {
	return f.listOut, f.listTotal, f.listErr
}

// --- fake images repository ---

type fakeImagesRepo struct {
	byID map[string]*models.Image

	createOut *models.Image
	createErr error
	created   *models.Image

	listOut []*models.Image
	listErr error

	pendingOut []*models.Image

	approveErr error
	approvedID string

	deleteErr error
	deletedID string
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = img
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *img
	out.ID = uuid.NewString()
	return &out, nil
}

func (f *fakeImagesRepo) GetByID(ctx context.Context, id string) (*models.Image, error) {
	if img, ok := f.byID[id]; ok {
		return img, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeImagesRepo) ListForProperty(ctx context.Context, propertyID string, approvedOnly bool) ([]*models.Image, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if !approvedOnly {
		return f.listOut, nil
	}
	var out []*models.Image
	for _, img := range f.listOut {
		if img.Approved {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImagesRepo) ListForUploader(ctx context.Context, uploaderID string) ([]*models.Image, error) {
	return f.listOut, f.listErr
}

func (f *fakeImagesRepo) ListPending(ctx context.Context) ([]*models.Image, error) {
	return f.pendingOut, f.listErr
}

func (f *fakeImagesRepo) Approve(ctx context.Context, id string) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approvedID = id
	return nil
}

func (f *fakeImagesRepo) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

// --- fake repository manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	rt *memRefreshRepo
	p  *fakePropertiesRepo
	b  *fakeBookingsRepo
	f  *fakeFavoritesRepo
	i  *fakeImagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.rt }

func (m *fakeRepoManager) Properties(db dbx.DBTX) propertiesrepo.Repository { return m.p }

func (m *fakeRepoManager) Bookings(db dbx.DBTX) bookingsrepo.Repository { return m.b }

func (m *fakeRepoManager) Favorites(db dbx.DBTX) favoritesrepo.Repository { return m.f }

func (m *fakeRepoManager) Images(db dbx.DBTX) imagesrepo.Repository { return m.i }
