package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/services"
)

type registerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID                string   `json:"id"`
	FullName          string   `json:"full_name"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Roles             []string `json:"roles,omitempty"`
}

type authResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         userResponse `json:"user"`
}

func toUserResponse(u *models.User, roles []string) userResponse {
	return userResponse{
		ID:                u.ID,
		FullName:          u.FullName,
		Phone:             u.Phone,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
		Roles:             roles,
	}
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		User:         toUserResponse(res.User, nil),
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.users.Register(r.Context(), services.RegisterInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.users.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	res, err := a.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// An unusable refresh token is an authentication failure, not a 404.
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.users.Logout(r.Context(), p.UserID); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged out"})
}

// requirePrincipal fetches the authenticated caller or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*Principal, bool) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return p, true
}

// optionalPrincipal returns the caller if authenticated, or an empty
// anonymous principal.
func optionalPrincipal(r *http.Request) *Principal {
	if p, ok := principalFromContext(r.Context()); ok {
		return p
	}
	return &Principal{}
}
