package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = "user"

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
}

// UpdateProfileInput carries the editable profile fields. Empty strings mean
// "leave unchanged".
type UpdateProfileInput struct {
	FullName          string
	Email             string
	ProfilePictureURL string
}

// UserService implements account management: registration, login by phone
// number and password, logout, and profile maintenance.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService) *UserService {
	return &UserService{db: db, repomanager: m, tokens: tokens}
}

// Register creates a user with the default role and signs them in, returning
// a token pair. A duplicate phone number yields common.ErrorAlreadyExists.
// Email is optional; when present it must look like an address.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var result *AuthResult

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := s.repomanager.Users(tx)

		user, err := userRepo.Create(ctx, &models.User{
			FullName:     strings.TrimSpace(in.FullName),
			Phone:        strings.TrimSpace(in.Phone),
			Email:        strings.TrimSpace(in.Email),
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		if err := userRepo.AddRole(ctx, user.ID, DefaultRole); err != nil {
			return err
		}

		pair, err := s.tokens.issueTokenPair(ctx, tx, user, []string{DefaultRole})
		if err != nil {
			return err
		}

		result = &AuthResult{TokenPair: *pair, User: user}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error registering user: %v", err)
	}
	return result, nil
}

// Login authenticates by phone number and password. Both an unknown phone
// and a wrong password yield common.ErrorUnauthorized so the two cases are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, phone string, password string) (*AuthResult, error) {
	var result *AuthResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := s.repomanager.Users(tx)

		user, err := userRepo.GetByPhone(ctx, strings.TrimSpace(phone))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
			return common.ErrorUnauthorized
		}

		roles, err := userRepo.GetRoles(ctx, user.ID)
		if err != nil {
			return err
		}

		pair, err := s.tokens.issueTokenPair(ctx, tx, user, roles)
		if err != nil {
			return err
		}

		result = &AuthResult{TokenPair: *pair, User: user}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error logging in: %v", err)
	}
	return result, nil
}

// Logout revokes every refresh token of the user, ending all sessions at
// once. The access token stays formally valid until it expires on its own.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.tokens.RevokeAll(ctx, userID)
}

// GetProfile returns the user's profile together with their assigned roles.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, []string, error) {
	userRepo := s.repomanager.Users(s.db)
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	roles, err := userRepo.GetRoles(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}

// UpdateProfile applies the non-empty fields of in to the user's profile and
// returns the updated record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		user.FullName = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		user.Email = v
	}
	if v := strings.TrimSpace(in.ProfilePictureURL); v != "" {
		user.ProfilePictureURL = v
	}

	if err := userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes all refresh tokens so every other session has to log in again.
func (s *UserService) ChangePassword(ctx context.Context, userID string, current string, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}

	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)); err != nil {
		return common.ErrorUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	if err := userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokens.RevokeAll(ctx, userID)
}

func validateRegisterInput(in RegisterInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return fmt.Errorf("%w: full name is required", common.ErrorValidation)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fmt.Errorf("%w: phone number is required", common.ErrorValidation)
	}
	if email := strings.TrimSpace(in.Email); email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email address", common.ErrorValidation)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}
	return nil
}
