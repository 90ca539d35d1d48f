package httpapi

import (
	"net/http"

	"github.com/estately/estately/internal/server/services"
)

type updateProfileRequest struct {
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	user, roles, err := a.users.GetProfile(r.Context(), p.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user, roles))
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.UpdateProfile(r.Context(), p.UserID, services.UpdateProfileInput{
		FullName:          req.FullName,
		Email:             req.Email,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user, nil))
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.users.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "password changed"})
}
