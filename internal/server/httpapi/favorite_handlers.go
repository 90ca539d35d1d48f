package httpapi

import (
	"net/http"
	"time"

	"github.com/estately/estately/internal/server/models"
)

type favoriteResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	AddedAt    time.Time `json:"added_at"`
}

type favoriteListResponse struct {
	Favorites []favoriteResponse `json:"favorites"`
	Total     int                `json:"total"`
}

func toFavoriteResponse(f *models.Favorite) favoriteResponse {
	return favoriteResponse{ID: f.ID, PropertyID: f.PropertyID, AddedAt: f.AddedAt}
}

func (a *API) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	fav, err := a.favorites.Add(r.Context(), p.UserID, r.PathValue("propertyID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFavoriteResponse(fav))
}

func (a *API) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.favorites.Remove(r.Context(), p.UserID, r.PathValue("propertyID")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListFavorites(w http.ResponseWriter, r *http.Request) {
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

	items, total, err := a.favorites.List(r.Context(), p.UserID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := favoriteListResponse{Favorites: make([]favoriteResponse, 0, len(items)), Total: total}
	for _, f := range items {
		resp.Favorites = append(resp.Favorites, toFavoriteResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}
