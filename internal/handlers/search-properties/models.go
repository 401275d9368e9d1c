// internal/handlers/search-properties/models.go
package searchproperties

import (
	"github.com/paulmach/orb/geojson"
)

const (
	HeaderCache = "X-Cache"
	CacheHit    = "HIT"
	CacheMiss   = "MISS"
)

// Output is the result of one search before it is written out.
type Output struct {
	Collection *geojson.FeatureCollection
	RowCount   int
	Cached     bool
	Mode       string
}
