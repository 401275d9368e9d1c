package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "property-search/internal/common/errors"
)

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counties.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "counties.json"))
	require.NoError(t, err)
	assert.Equal(t, Builtin().Counties, reg.Counties)
}

func TestLoadRegistry_Valid(t *testing.T) {
	path := writeRegistry(t, `{
		"version": "2.0.0",
		"counties": [
			{"id": "cobb", "displayName": "Cobb", "qpublicAppId": "1051"},
			{"id": "gwinnett", "displayName": "Gwinnett",
			 "gisBaseUrl": "https://example.com/FeatureServer/0/query", "parcelIdField": "PIN"}
		]
	}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Counties, 2)

	c, ok := reg.Lookup("COBB")
	require.True(t, ok)
	assert.Equal(t, "1051", c.QPublicAppID)
	assert.Empty(t, c.GISBaseURL)
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing counties",
			body: `{"version": "1.0.0"}`,
		},
		{
			name: "uppercase id",
			body: `{"version": "1", "counties": [{"id": "Fulton", "displayName": "Fulton"}]}`,
		},
		{
			name: "where clause injection in field",
			body: `{"version": "1", "counties": [{"id": "x", "displayName": "X",
				"gisBaseUrl": "https://example.com/q", "parcelIdField": "1=1 OR ID"}]}`,
		},
		{
			name: "gis url without field",
			body: `{"version": "1", "counties": [{"id": "x", "displayName": "X",
				"gisBaseUrl": "https://example.com/q"}]}`,
		},
		{
			name: "unknown property",
			body: `{"version": "1", "counties": [{"id": "x", "displayName": "X", "zip": "30303"}]}`,
		},
		{
			name: "duplicate id",
			body: `{"version": "1", "counties": [
				{"id": "x", "displayName": "X"},
				{"id": "x", "displayName": "Y"}]}`,
		},
		{
			name: "not json",
			body: `counties: [fulton]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeRegistry(t, tt.body))
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeRegistryInvalid, stdErr.Code)
		})
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counties.json")

	reg := Builtin()
	reg.Counties = append(reg.Counties, County{ID: "cobb", DisplayName: "Cobb", QPublicAppID: "1051"})
	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg, loaded)

	reg.Counties = append(reg.Counties, County{ID: "Bad Id", DisplayName: "Bad"})
	assert.Error(t, SaveRegistry(reg, path))
}

func TestLookup(t *testing.T) {
	reg := Builtin()

	c, ok := reg.Lookup(" Fulton ")
	require.True(t, ok)
	assert.Equal(t, "ParcelID", c.ParcelIDField)

	_, ok = reg.Lookup("unknown")
	assert.False(t, ok)

	_, ok = reg.Lookup("")
	assert.False(t, ok)
}
