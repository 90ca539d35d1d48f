package properties

import (
	"reflect"
	"testing"

	"github.com/estately/estately/internal/server/models"
)

func TestBuildFilter_Empty(t *testing.T) {
	where, args := buildFilter(models.PropertyFilter{})
	if where != "" || args != nil {
		t.Fatalf("got %q with args %v, want empty", where, args)
	}
}

func TestBuildFilter_AllFields(t *testing.T) {
	forRent := true
	forSale := false
	f := models.PropertyFilter{
		Location:     "Riverside",
		PropertyType: models.PropertyTypeApartment,
		MinPrice:     500,
		MaxPrice:     2000,
		MinBedrooms:  2,
		ForRent:      &forRent,
		ForSale:      &forSale,
	}

	where, args := buildFilter(f)

	wantWhere := " WHERE location ILIKE $1 AND property_type = $2 AND price >= $3" +
		" AND price <= $4 AND bedrooms >= $5 AND is_for_rent = $6 AND is_for_sale = $7"
	if where != wantWhere {
		t.Errorf("where = %q\nwant    %q", where, wantWhere)
	}

	wantArgs := []any{"%Riverside%", "apartment", 500.0, 2000.0, 2, true, false}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildFilter_SkipsZeroValues(t *testing.T) {
	where, args := buildFilter(models.PropertyFilter{MinBedrooms: 3})

	if where != " WHERE bedrooms >= $1" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 1 || args[0] != 3 {
		t.Errorf("args = %v", args)
	}
}
