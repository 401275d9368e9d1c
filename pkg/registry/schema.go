// pkg/registry/schema.go
package registry

// CountyRegistry is the on-disk list of counties the projector links to.
type CountyRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Counties    []County `json:"counties"`
}

// County holds the outbound link templates for one county. An empty
// GISBaseURL or QPublicAppID disables the corresponding link.
type County struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	GISBaseURL    string `json:"gisBaseUrl,omitempty"`
	ParcelIDField string `json:"parcelIdField,omitempty"`
	QPublicAppID  string `json:"qpublicAppId,omitempty"`
}

// registrySchema is checked before a registry file is decoded. parcelIdField
// ends up inside a GIS where clause, so it is restricted to identifiers.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "required": ["version", "counties"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "counties": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "displayName"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^[a-z0-9_-]+$"},
          "displayName": {"type": "string", "minLength": 1},
          "gisBaseUrl": {"type": "string", "pattern": "^https?://[^?#]+$"},
          "parcelIdField": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
          "qpublicAppId": {"type": "string", "pattern": "^[0-9]*$"}
        },
        "dependencies": {
          "gisBaseUrl": ["parcelIdField"]
        }
      }
    }
  }
}`
