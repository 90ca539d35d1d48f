package httpapi

import (
	"net/http"
	"time"

	"github.com/estately/estately/internal/server/models"
)

type requestUploadRequest struct {
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type imageResponse struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	UploaderID  string    `json:"uploader_id"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}

type imageUploadResponse struct {
	Image     imageResponse `json:"image"`
	UploadURL string        `json:"upload_url"`
}

func toImageResponse(img *models.Image) imageResponse {
	return imageResponse{
		ID:          img.ID,
		PropertyID:  img.PropertyID,
		UploaderID:  img.UploaderID,
		Description: img.Description,
		SortOrder:   img.SortOrder,
		Approved:    img.Approved,
		CreatedAt:   img.CreatedAt,
	}
}

func toImageListResponse(items []*models.Image) []imageResponse {
	out := make([]imageResponse, 0, len(items))
	for _, img := range items {
		out = append(out, toImageResponse(img))
	}
	return out
}

func (a *API) handleRequestImageUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req requestUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := a.images.RequestUpload(r.Context(), p.UserID, p.Roles, r.PathValue("id"), req.Description, req.SortOrder)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, imageUploadResponse{
		Image:     toImageResponse(upload.Image),
		UploadURL: upload.UploadURL,
	})
}

func (a *API) handleListPropertyImages(w http.ResponseWriter, r *http.Request) {
	p := optionalPrincipal(r)
	items, err := a.images.ListForProperty(r.Context(), p.UserID, p.Roles, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": toImageListResponse(items)})
}

func (a *API) handleImageURL(w http.ResponseWriter, r *http.Request) {
	p := optionalPrincipal(r)
	url, err := a.images.GetDownloadURL(r.Context(), p.UserID, p.Roles, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (a *API) handleListMyImages(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	items, err := a.images.ListMine(r.Context(), p.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": toImageListResponse(items)})
}

func (a *API) handleListPendingImages(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	items, err := a.images.ListPending(r.Context(), p.Roles)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": toImageListResponse(items)})
}

func (a *API) handleApproveImage(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.images.Approve(r.Context(), p.Roles, r.PathValue("id")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "approved"})
}

func (a *API) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.images.Delete(r.Context(), p.UserID, p.Roles, r.PathValue("id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
