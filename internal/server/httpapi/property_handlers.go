package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/estately/estately/internal/server/models"
)

type propertyRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Area         float64  `json:"area"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	PropertyType string   `json:"property_type"`
	Location     string   `json:"location"`
	Address      string   `json:"address"`
	MainImageURL string   `json:"main_image_url"`
	Features     []string `json:"features"`
	IsForRent    bool     `json:"is_for_rent"`
	IsForSale    bool     `json:"is_for_sale"`
	IsAvailable  bool     `json:"is_available"`
}

type propertyResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Area         float64   `json:"area,omitempty"`
	Bedrooms     int       `json:"bedrooms,omitempty"`
	Bathrooms    int       `json:"bathrooms,omitempty"`
	PropertyType string    `json:"property_type"`
	Location     string    `json:"location,omitempty"`
	Address      string    `json:"address,omitempty"`
	MainImageURL string    `json:"main_image_url,omitempty"`
	Features     []string  `json:"features,omitempty"`
	IsForRent    bool      `json:"is_for_rent"`
	IsForSale    bool      `json:"is_for_sale"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type propertyListResponse struct {
	Properties []propertyResponse `json:"properties"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

func (req propertyRequest) toModel() *models.Property {
	return &models.Property{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Area:         req.Area,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		PropertyType: req.PropertyType,
		Location:     req.Location,
		Address:      req.Address,
		MainImageURL: req.MainImageURL,
		Features:     req.Features,
		IsForRent:    req.IsForRent,
		IsForSale:    req.IsForSale,
		IsAvailable:  req.IsAvailable,
	}
}

func toPropertyResponse(p *models.Property) propertyResponse {
	return propertyResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Area:         p.Area,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		PropertyType: p.PropertyType,
		Location:     p.Location,
		Address:      p.Address,
		MainImageURL: p.MainImageURL,
		Features:     p.Features,
		IsForRent:    p.IsForRent,
		IsForSale:    p.IsForSale,
		IsAvailable:  p.IsAvailable,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (a *API) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req propertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.properties.Create(r.Context(), p.UserID, req.toModel())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyResponse(created))
}

func (a *API) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	property, err := a.properties.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

func (a *API) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req propertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	property := req.toModel()
	property.ID = r.PathValue("id")

	updated, err := a.properties.Update(r.Context(), p.UserID, p.Roles, property)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(updated))
}

func (a *API) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.properties.Delete(r.Context(), p.UserID, p.Roles, r.PathValue("id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePropertyFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := a.properties.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := propertyListResponse{
		Properties: make([]propertyResponse, 0, len(items)),
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	for _, p := range items {
		resp.Properties = append(resp.Properties, toPropertyResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func parsePropertyFilter(r *http.Request) (models.PropertyFilter, error) {
	q := r.URL.Query()
	f := models.PropertyFilter{
		Location:     q.Get("location"),
		PropertyType: q.Get("property_type"),
	}

	var err error
	if f.MinPrice, err = queryFloat(q.Get("min_price")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(q.Get("max_price")); err != nil {
		return f, err
	}
	if f.MinBedrooms, err = queryInt(q.Get("min_bedrooms")); err != nil {
		return f, err
	}
	if f.Page, err = queryInt(q.Get("page")); err != nil {
		return f, err
	}
	if f.PageSize, err = queryInt(q.Get("page_size")); err != nil {
		return f, err
	}
	if f.ForRent, err = queryBool(q.Get("for_rent")); err != nil {
		return f, err
	}
	if f.ForSale, err = queryBool(q.Get("for_sale")); err != nil {
		return f, err
	}
	return f, nil
}

func queryFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func queryBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
