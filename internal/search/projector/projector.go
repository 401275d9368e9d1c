// Package projector turns property rows into map-ready GeoJSON features.
package projector

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"property-search/internal/models"
	"property-search/pkg/registry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	notAvailable = "N/A"
	qpublicURL   = "https://qpublic.schneidercorp.com/Application.aspx"
)

// Projector maps rows to features using a county link table.
type Projector struct {
	counties map[string]registry.County
}

// New builds a projector over reg. A nil registry falls back to the
// built-in counties.
func New(reg *registry.CountyRegistry) *Projector {
	if reg == nil {
		reg = registry.Builtin()
	}
	counties := make(map[string]registry.County, len(reg.Counties))
	for _, c := range reg.Counties {
		counties[strings.ToLower(c.ID)] = c
	}
	return &Projector{counties: counties}
}

// Project converts one row. It never fails; bad values fall back to defaults.
func (p *Projector) Project(prop models.Property) *geojson.Feature {
	lat, lon := parseCoordinates(prop.Coordinates)

	address := stringOr(prop.Address, notAvailable)
	parcelID := stringOr(prop.ParcelID, "")
	county := stringOr(prop.County, notAvailable)

	saleYear := notAvailable
	if v := floatOr(prop.LastSaleYear, 0); v != 0 {
		saleYear = strconv.FormatFloat(v, 'f', -1, 64)
	}

	f := geojson.NewFeature(orb.Point{lon, lat})
	f.Properties = geojson.Properties{
		"address":                  address,
		"owner_name":               stringOr(prop.OwnerName, notAvailable),
		"county":                   county,
		"parcel_id":                parcelID,
		"total_appraised_value":    floatOr(prop.TotalAppraisedValue, 0),
		"land_appraised_value":     floatOr(prop.LandAppraisedValue, 0),
		"building_appraised_value": floatOr(prop.BuildingAppraisedValue, 0),
		"acres":                    floatOr(prop.Acres, 0),
		"last_sale_year":           saleYear,
		"sqft":                     floatOr(prop.Sqft, 0),
		"bedrooms":                 floatOr(prop.Bedrooms, 0),
		"bathrooms":                floatOr(prop.Bathrooms, 0),
		"tooltip":                  address,
		"search_text":              address + " (" + parcelID + ")",
		"gis_url":                  p.GISURL(county, parcelID),
		"qpublic_url":              p.QPublicURL(county, parcelID),
	}
	return f
}

// Collection projects every row, keeping input order. The result always
// encodes a features array, even when rows is empty.
func (p *Projector) Collection(rows []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(rows))
	for _, row := range rows {
		fc.Append(p.Project(row))
	}
	return fc
}

// GISURL links to the county's ArcGIS query for one parcel, or "" when the
// county has no GIS endpoint.
func (p *Projector) GISURL(county, parcelID string) string {
	c, ok := p.counties[strings.ToLower(county)]
	if !ok || c.GISBaseURL == "" || c.ParcelIDField == "" {
		return ""
	}
	return c.GISBaseURL + "?where=" + c.ParcelIDField + "%3D%27" + encodeComponent(parcelID) + "%27&outFields=*&f=json"
}

// QPublicURL links to the county's public record page, or "".
func (p *Projector) QPublicURL(county, parcelID string) string {
	c, ok := p.counties[strings.ToLower(county)]
	if !ok || c.QPublicAppID == "" {
		return ""
	}
	return qpublicURL + "?AppID=" + c.QPublicAppID + "&PageTypeID=4&KeyValue=" + strings.ReplaceAll(parcelID, " ", "+")
}

// componentUnescapes restores the characters a browser's encodeURIComponent
// leaves alone but url.QueryEscape escapes.
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a value for use inside a query string the way
// encodeURIComponent does: spaces as %20 and !'()* kept literal.
func encodeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}

// parseCoordinates reads a "lat,lon" string. Anything else yields (0, 0).
func parseCoordinates(raw *string) (lat, lon float64) {
	if raw == nil {
		return 0, 0
	}
	parts := strings.Split(*raw, ",")
	if len(parts) != 2 {
		return 0, 0
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !finite(lat) {
		return 0, 0
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !finite(lon) {
		return 0, 0
	}
	return lat, lon
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// stringOr treats NULL and "" alike.
func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func floatOr(f *float64, fallback float64) float64 {
	if f == nil || *f == 0 || !finite(*f) {
		return fallback
	}
	return *f
}
