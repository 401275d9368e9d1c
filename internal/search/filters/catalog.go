// Package filters holds the static filter catalog that drives both the query
// compiler and the UI controls served at /api/filters.
package filters

import (
	"fmt"
	"regexp"
)

// Kind is the UI shape of a filter, which also decides how it compiles.
type Kind string

const (
	KindRange     Kind = "range"
	KindSlider    Kind = "slider"
	KindSelection Kind = "selection"
)

// Option is one choice of a selection filter. Value 0 means "Any".
type Option struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Descriptor describes one filterable column. Key doubles as the column
// name, so it must be a plain identifier and never come from a request.
type Descriptor struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Kind    Kind        `json:"type"`
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
	Options []Option    `json:"options,omitempty"`
	Default interface{} `json:"defaultValue"`
}

// IsBounded reports whether the descriptor takes a min/max pair.
func (d Descriptor) IsBounded() bool {
	return d.Kind == KindRange || d.Kind == KindSlider
}

// MinParam and MaxParam name the query parameters for bounded filters.
func (d Descriptor) MinParam() string { return d.Key + "_min" }

func (d Descriptor) MaxParam() string { return d.Key + "_max" }

// Catalog is an ordered list of descriptors.
type Catalog []Descriptor

// Lookup returns the descriptor for key.
func (c Catalog) Lookup(key string) (Descriptor, bool) {
	for _, d := range c {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate checks that every key is a unique plain column identifier and
// every kind is known.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, d := range c {
		if !identifier.MatchString(d.Key) {
			return fmt.Errorf("filter key %q is not a column identifier", d.Key)
		}
		if seen[d.Key] {
			return fmt.Errorf("duplicate filter key %q", d.Key)
		}
		seen[d.Key] = true

		switch d.Kind {
		case KindRange, KindSlider:
			if d.Min > d.Max {
				return fmt.Errorf("filter %q: min %v > max %v", d.Key, d.Min, d.Max)
			}
		case KindSelection:
			if len(d.Options) == 0 {
				return fmt.Errorf("filter %q: selection without options", d.Key)
			}
		default:
			return fmt.Errorf("filter %q: unknown kind %q", d.Key, d.Kind)
		}
	}
	return nil
}

func countOptions() []Option {
	return []Option{
		{Label: "Any", Value: 0},
		{Label: "1+", Value: 1},
		{Label: "2+", Value: 2},
		{Label: "3+", Value: 3},
		{Label: "4+", Value: 4},
		{Label: "5+", Value: 5},
	}
}

func noBounds() [2]*float64 { return [2]*float64{nil, nil} }

func bounds(lo, hi float64) [2]*float64 { return [2]*float64{&lo, &hi} }

// Default returns the property search catalog in display order.
func Default() Catalog {
	return Catalog{
		{
			Key:     "total_appraised_value",
			Label:   "Total Appraised Value",
			Kind:    KindRange,
			Min:     0,
			Max:     100000000,
			Default: noBounds(),
		},
		{
			Key:     "land_appraised_value",
			Label:   "Land Appraised Value",
			Kind:    KindRange,
			Min:     0,
			Max:     100000000,
			Default: noBounds(),
		},
		{
			Key:     "bedrooms",
			Label:   "Bedrooms",
			Kind:    KindSelection,
			Options: countOptions(),
			Default: 0,
		},
		{
			Key:     "bathrooms",
			Label:   "Bathrooms",
			Kind:    KindSelection,
			Options: countOptions(),
			Default: 0,
		},
		{
			Key:     "sqft",
			Label:   "Square Feet",
			Kind:    KindRange,
			Min:     0,
			Max:     10000,
			Default: noBounds(),
		},
		{
			Key:     "acres",
			Label:   "Acreage",
			Kind:    KindRange,
			Min:     0,
			Max:     10,
			Default: noBounds(),
		},
		{
			Key:     "last_sale_year",
			Label:   "Last Sale Year",
			Kind:    KindSlider,
			Min:     1974,
			Max:     2025,
			Default: bounds(1974, 2025),
		},
	}
}
