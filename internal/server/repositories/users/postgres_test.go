package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/server/models"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_ReturnsGeneratedFields(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "+1555", "ada@example.com", []byte("hash"), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("u1", now, now))

	user, err := repo.Create(context.Background(), &models.User{
		FullName: "Ada", Phone: "+1555", Email: "ada@example.com", PasswordHash: []byte("hash"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("id = %q, want u1", user.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetByPhone_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs("+1999").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone", "email", "password_hash", "profile_picture_url", "created_at", "updated_at"}))

	_, err := repo.GetByPhone(context.Background(), "+1999")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Success(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone", "email", "password_hash", "profile_picture_url", "created_at", "updated_at"}).
			AddRow("u1", "Ada", "+1555", "ada@example.com", []byte("hash"), "", now, now))

	user, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if user.Phone != "+1555" {
		t.Errorf("phone = %q", user.Phone)
	}
}

func TestUpdateProfile_MissingRow(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE users`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), &models.User{ID: "ghost"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetRoles_Sorted(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin").AddRow("user"))

	roles, err := repo.GetRoles(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetRoles error: %v", err)
	}
	if len(roles) != 2 || roles[0] != "admin" || roles[1] != "user" {
		t.Errorf("roles = %v", roles)
	}
}

func TestAddRole_Idempotent(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("u1", "user").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddRole(context.Background(), "u1", "user"); err != nil {
		t.Fatalf("AddRole error: %v", err)
	}
}
