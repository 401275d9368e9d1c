// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "property-search/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Builtin returns the counties known without a registry file.
func Builtin() *CountyRegistry {
	return &CountyRegistry{
		Version:     "1.0.0",
		LastUpdated: "2025-08-01",
		Counties: []County{
			{
				ID:            "fulton",
				DisplayName:   "Fulton",
				GISBaseURL:    "https://services1.arcgis.com/AQDHTHDrZzfsFsB5/ArcGIS/rest/services/Tax_Parcels_2025/FeatureServer/0/query",
				ParcelIDField: "ParcelID",
				QPublicAppID:  "936",
			},
			{
				ID:            "dekalb",
				DisplayName:   "Dekalb",
				GISBaseURL:    "https://services2.arcgis.com/IxVN2oUE9EYLSnPE/ArcGIS/rest/services/PARCEL_TAX_JOIN/FeatureServer/0/query",
				ParcelIDField: "PARCELID",
				QPublicAppID:  "994",
			},
		},
	}
}

// LoadRegistry reads and validates a county registry file.
func LoadRegistry(path string) (*CountyRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse validates data against the registry schema and decodes it. path is
// only used in error reports.
func Parse(path string, data []byte) (*CountyRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, apperrors.NewRegistryInvalidError(path, []string{err.Error()})
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, apperrors.NewRegistryInvalidError(path, problems)
	}

	var reg CountyRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, apperrors.NewRegistryInvalidError(path, []string{err.Error()})
	}

	seen := make(map[string]bool, len(reg.Counties))
	for _, c := range reg.Counties {
		if seen[c.ID] {
			return nil, apperrors.NewRegistryInvalidError(path, []string{fmt.Sprintf("duplicate county id: %s", c.ID)})
		}
		seen[c.ID] = true
	}

	return &reg, nil
}

// SaveRegistry writes reg as indented JSON after validating it.
func SaveRegistry(reg *CountyRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if _, err := Parse(path, data); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Lookup finds a county by name, ignoring case and surrounding space.
func (r *CountyRegistry) Lookup(name string) (County, bool) {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, c := range r.Counties {
		if c.ID == id {
			return c, true
		}
	}
	return County{}, false
}
