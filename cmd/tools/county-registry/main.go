// cmd/tools/county-registry/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"property-search/pkg/registry"
)

const defaultPath = "configs/counties.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "help":
		help()
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "County id, lowercase (e.g., cobb)")
	displayName := cmd.String("displayName", "", "Display name (e.g., Cobb)")
	gisBaseURL := cmd.String("gisBaseUrl", "", "ArcGIS FeatureServer query endpoint")
	parcelField := cmd.String("parcelIdField", "", "Parcel id field name in the GIS layer")
	appID := cmd.String("qpublicAppId", "", "qPublic application id")
	cmd.Parse(args)

	if *id == "" || *displayName == "" {
		cmd.Usage()
		return fmt.Errorf("id and displayName are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.CountyRegistry{Version: "1.0.0"}
	}

	county := registry.County{
		ID:            strings.ToLower(*id),
		DisplayName:   *displayName,
		GISBaseURL:    *gisBaseURL,
		ParcelIDField: *parcelField,
		QPublicAppID:  *appID,
	}
	if _, exists := reg.Lookup(county.ID); exists {
		return fmt.Errorf("county %s already exists", county.ID)
	}

	reg.Counties = append(reg.Counties, county)
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added county: %s\n", county.ID)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "County id to update")
	field := cmd.String("field", "", "Field to update (displayName, gisBaseUrl, parcelIdField, qpublicAppId)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" {
		cmd.Usage()
		return fmt.Errorf("id and field are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Counties {
		if reg.Counties[i].ID != strings.ToLower(*id) {
			continue
		}
		found = true
		switch *field {
		case "displayName":
			reg.Counties[i].DisplayName = *value
		case "gisBaseUrl":
			reg.Counties[i].GISBaseURL = *value
		case "parcelIdField":
			reg.Counties[i].ParcelIDField = *value
		case "qpublicAppId":
			reg.Counties[i].QPublicAppID = *value
		default:
			return fmt.Errorf("unknown field: %s", *field)
		}
		break
	}
	if !found {
		return fmt.Errorf("county %s not found", *id)
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated county %s, field %s to %q\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if len(reg.Counties) == 0 {
		return fmt.Errorf("registry contains no counties")
	}

	fmt.Printf("Registry validation passed. Found %d counties.\n", len(reg.Counties))
	return nil
}

// runInit writes the built-in county table as a starting registry.
func runInit(args []string) error {
	cmd := flag.NewFlagSet("init", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	force := cmd.Bool("force", false, "Overwrite an existing file")
	cmd.Parse(args)

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
	}
	if err := save(registry.Builtin(), *path); err != nil {
		return err
	}
	fmt.Printf("Wrote built-in counties to %s\n", *path)
	return nil
}

func save(reg *registry.CountyRegistry, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Print(`
Usage: county-registry <command> [flags]

Commands:
  init      Write the built-in counties to a registry file
  add       Add a county to the registry
  update    Update one field of an existing county
  validate  Validate the registry file against its schema
  help      Show this help message

Examples:
  county-registry init -path configs/counties.json
  county-registry add -id cobb -displayName Cobb -qpublicAppId 1051
  county-registry update -id cobb -field parcelIdField -value PIN
  county-registry validate -path configs/counties.json

Use 'county-registry <command> -h' for more information about a command.
`)
}
