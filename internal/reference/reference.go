// Package reference holds the team, stadium and club catalogs loaded from
// the dictionary service. Catalogs are read-only for the lifetime of a run.
package reference

import (
	"fmt"
	"strings"
)

// Level is a team's competition level.
type Level string

const (
	LevelFirst Level = "First"
	LevelFarm  Level = "Farm"
)

// ParseLevel accepts "First" or "Farm" in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return LevelFirst, nil
	case "farm":
		return LevelFarm, nil
	default:
		return "", fmt.Errorf("invalid level %q (must be First or Farm)", s)
	}
}

// Team is a first-team or farm-team entry.
type Team struct {
	ID     int    `json:"team_id"`
	Name   string `json:"team_name"`
	League string `json:"league"`
	Level  Level  `json:"level"`
	ClubID int    `json:"club_id"`
}

// Stadium is a ballpark entry.
type Stadium struct {
	ID     int    `json:"stadium_id"`
	Name   string `json:"stadium_name"`
	IsDome bool   `json:"is_dome"`
}

// Club is the organisation owning a first team and a farm team.
type Club struct {
	ID   int    `json:"club_id"`
	Name string `json:"club_name"`
}

// Catalog bundles the three reference lists.
type Catalog struct {
	Teams    []Team    `json:"teams"`
	Stadiums []Stadium `json:"stadiums"`
	Clubs    []Club    `json:"clubs"`
}

// TeamByID returns the team with id, if present.
func (c *Catalog) TeamByID(id int) (Team, bool) {
	for _, t := range c.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}
