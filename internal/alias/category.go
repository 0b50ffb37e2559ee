package alias

import (
	"errors"
	"fmt"
	"strings"
)

// Category partitions the alias map and the reference catalogs.
type Category string

const (
	CategoryTeamsFirst Category = "teams_first"
	CategoryTeamsFarm  Category = "teams_farm"
	CategoryStadiums   Category = "stadiums"
	CategoryClubs      Category = "clubs"
)

// Categories lists the known categories in display order.
var Categories = []Category{CategoryTeamsFirst, CategoryTeamsFarm, CategoryStadiums, CategoryClubs}

var (
	// ErrUnknownCategory is returned when a category name is not one of Categories.
	ErrUnknownCategory = errors.New("unknown alias category")
	// ErrEmptyName is returned when a raw or canonical name is blank after cleanup.
	ErrEmptyName = errors.New("empty name")
)

// ParseCategory accepts the canonical category names plus the singular forms
// operators tend to type ("stadium", "club").
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teams_first", "team_first":
		return CategoryTeamsFirst, nil
	case "teams_farm", "team_farm":
		return CategoryTeamsFarm, nil
	case "stadiums", "stadium":
		return CategoryStadiums, nil
	case "clubs", "club":
		return CategoryClubs, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Canonicalize returns the lookup key for a raw name: zero-width characters
// and the BOM are removed, surrounding whitespace is trimmed and internal
// whitespace runs (including ideographic spaces) collapse to one ASCII space.
func Canonicalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
