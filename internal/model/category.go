package model

import (
	"fmt"
	"strings"
)

// Category is a thematic grouping of keywords and coverage results.
type Category int

const (
	// OpenScience groups open access, open data and repository terms.
	OpenScience Category = iota
	// PublicCommunication groups science communication and outreach terms.
	PublicCommunication
	// ScienceDiplomacy groups international scientific cooperation terms.
	ScienceDiplomacy
)

// categoryInfo holds the names used for a category in config files and reports.
type categoryInfo struct {
	key    string
	label  string
	short  string
	legacy string
}

var categories = map[Category]categoryInfo{
	OpenScience: {
		key:    "open_science",
		label:  "Ciencia Abierta",
		short:  "CA",
		legacy: "ciencia_abierta",
	},
	PublicCommunication: {
		key:    "public_communication",
		label:  "Comunicación Pública",
		short:  "CP",
		legacy: "comunicacion_publica",
	},
	ScienceDiplomacy: {
		key:    "science_diplomacy",
		label:  "Diplomacia Científica",
		short:  "DC",
		legacy: "diplomacia_cientifica",
	},
}

// AllCategories returns every category in report order.
func AllCategories() []Category {
	return []Category{OpenScience, PublicCommunication, ScienceDiplomacy}
}

// String returns the machine key used in config files and JSON output.
func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.key
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Label returns the human-readable label used in spreadsheet headers.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return c.String()
}

// Short returns the two-letter prefix used for compact column names.
func (c Category) Short() string {
	if info, ok := categories[c]; ok {
		return info.short
	}
	return c.String()
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	_, ok := categories[c]
	return ok
}

// ParseCategory converts a config key into a Category.
// Both the English keys and the Spanish keys of older survey files are accepted.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, info := range categories {
		if key == info.key || key == info.legacy {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler so categories can be map keys in JSON.
func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
