// internal/models/property.go
package models

// PropertyTable is the read-only parcel table every search runs against.
const PropertyTable = "properties_unique"

// PropertyColumns is the fixed projection read from PropertyTable, in scan order.
var PropertyColumns = []string{
	"address",
	"owner_name",
	"parcel_id",
	"county",
	"total_appraised_value",
	"land_appraised_value",
	"building_appraised_value",
	"acres",
	"last_sale_year",
	"sqft",
	"bedrooms",
	"bathrooms",
	"coordinates",
}

// Property is one row of PropertyTable. Every column is nullable upstream,
// so every field is a pointer; nil means NULL.
type Property struct {
	Address                *string  `json:"address"`
	OwnerName              *string  `json:"owner_name"`
	ParcelID               *string  `json:"parcel_id"`
	County                 *string  `json:"county"`
	TotalAppraisedValue    *float64 `json:"total_appraised_value"`
	LandAppraisedValue     *float64 `json:"land_appraised_value"`
	BuildingAppraisedValue *float64 `json:"building_appraised_value"`
	Acres                  *float64 `json:"acres"`
	LastSaleYear           *float64 `json:"last_sale_year"`
	Sqft                   *float64 `json:"sqft"`
	Bedrooms               *float64 `json:"bedrooms"`
	Bathrooms              *float64 `json:"bathrooms"`
	Coordinates            *string  `json:"coordinates"`
}

// StringPtr and FloatPtr build nullable column values.
func StringPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }
