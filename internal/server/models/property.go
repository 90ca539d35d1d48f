package models

import "time"

// Property types mirror the values accepted by the listings API.
const (
	PropertyTypeApartment = "apartment"
	PropertyTypeVilla     = "villa"
	PropertyTypeLand      = "land"
	PropertyTypeOffice    = "office"
	PropertyTypeWarehouse = "warehouse"
	PropertyTypeShop      = "shop"
)

// ValidPropertyType reports whether t is one of the known property types.
func ValidPropertyType(t string) bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeVilla, PropertyTypeLand,
		PropertyTypeOffice, PropertyTypeWarehouse, PropertyTypeShop:
		return true
	}
	return false
}

type Property struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	Price        float64
	Area         float64
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	Location     string
	Address      string
	MainImageURL string
	Features     []string
	IsForRent    bool
	IsForSale    bool
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PropertyFilter describes the attribute filters and paging for listing
// queries. Zero values mean "not set".
type PropertyFilter struct {
	Location     string
	PropertyType string
	MinPrice     float64
	MaxPrice     float64
	MinBedrooms  int
	ForRent      *bool
	ForSale      *bool
	Page         int
	PageSize     int
}

// Normalize clamps paging to sane defaults.
func (f *PropertyFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}
