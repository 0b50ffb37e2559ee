// Package resolver maps raw scraped names to reference catalog entries.
//
// Teams resolve through three tiers, first success wins: a strict match on
// the cleaned name, a match on the name produced by the alias normalizer for
// the page's competition level, and finally a club-derived match that
// resolves the text as a club and picks that club's team at the requested
// level. Stadiums and clubs use the first two tiers only.
//
// A miss is a normal outcome reported as ok == false, never an error.
package resolver

import (
	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
	"github.com/pfrederiksen/npb-scrape/internal/reference"
)

// Tier names the resolution step that produced a match.
type Tier string

const (
	TierStrict Tier = "strict"
	TierAlias  Tier = "alias"
	TierClub   Tier = "club"
	TierMiss   Tier = "miss"
)

// Resolver is built once per scrape session and is safe for concurrent use.
type Resolver struct {
	catalog *reference.Catalog
	aliases *alias.Normalizer

	teams    map[string]reference.Team
	stadiums map[string]reference.Stadium
	clubs    map[string]reference.Club
}

// New indexes catalog by cleaned name. When two entries clean to the same
// name the first one in catalog order wins. A nil normalizer disables the
// alias tier.
func New(catalog *reference.Catalog, aliases *alias.Normalizer) *Resolver {
	if catalog == nil {
		catalog = &reference.Catalog{}
	}
	if aliases == nil {
		aliases = alias.NewNormalizer(nil)
	}

	r := &Resolver{
		catalog:  catalog,
		aliases:  aliases,
		teams:    make(map[string]reference.Team, len(catalog.Teams)),
		stadiums: make(map[string]reference.Stadium, len(catalog.Stadiums)),
		clubs:    make(map[string]reference.Club, len(catalog.Clubs)),
	}
	for _, t := range catalog.Teams {
		key := alias.Canonicalize(t.Name)
		if _, dup := r.teams[key]; !dup {
			r.teams[key] = t
		}
	}
	for _, s := range catalog.Stadiums {
		key := alias.Canonicalize(s.Name)
		if _, dup := r.stadiums[key]; !dup {
			r.stadiums[key] = s
		}
	}
	for _, c := range catalog.Clubs {
		key := alias.Canonicalize(c.Name)
		if _, dup := r.clubs[key]; !dup {
			r.clubs[key] = c
		}
	}
	return r
}

// TeamCategory returns the alias category used for teams at level.
func TeamCategory(level reference.Level) alias.Category {
	if level == reference.LevelFirst {
		return alias.CategoryTeamsFirst
	}
	return alias.CategoryTeamsFarm
}

// ResolveTeamIDStrict matches name against team names after cleanup.
func (r *Resolver) ResolveTeamIDStrict(name string) (int, bool) {
	t, ok := r.strictTeam(name)
	return t.ID, ok
}

// ResolveStadiumIDStrict matches name against stadium names after cleanup.
func (r *Resolver) ResolveStadiumIDStrict(name string) (int, bool) {
	s, ok := r.strictStadium(name)
	return s.ID, ok
}

// ResolveClubIDStrict matches name against club names after cleanup.
func (r *Resolver) ResolveClubIDStrict(name string) (int, bool) {
	c, ok := r.strictClub(name)
	return c.ID, ok
}

// ResolveTeam runs every team tier for raw at level and reports which tier
// matched.
func (r *Resolver) ResolveTeam(raw string, level reference.Level) (reference.Team, Tier, bool) {
	team, tier, ok := r.resolveTeam(raw, level)
	logger.IncrCounter("resolve.team." + string(tier))
	return team, tier, ok
}

func (r *Resolver) resolveTeam(raw string, level reference.Level) (reference.Team, Tier, bool) {
	if t, ok := r.strictTeam(raw); ok {
		return t, TierStrict, true
	}

	if canonical, ok := r.aliases.Normalize(TeamCategory(level), raw); ok {
		if t, ok := r.strictTeam(canonical); ok {
			return t, TierAlias, true
		}
	}

	if club, _, ok := r.resolveClub(raw); ok {
		if t, ok := r.teamForClub(club.ID, level); ok {
			return t, TierClub, true
		}
	}

	return reference.Team{}, TierMiss, false
}

// ResolveTeamIDFuzzy returns the id of the team raw refers to at level.
func (r *Resolver) ResolveTeamIDFuzzy(raw string, level reference.Level) (int, bool) {
	t, _, ok := r.ResolveTeam(raw, level)
	return t.ID, ok
}

// ResolveTeamNameFuzzy returns the canonical name of the team raw refers to.
func (r *Resolver) ResolveTeamNameFuzzy(raw string, level reference.Level) (string, bool) {
	t, _, ok := r.ResolveTeam(raw, level)
	return t.Name, ok
}

// ResolveStadium runs the strict and alias tiers for a stadium name.
func (r *Resolver) ResolveStadium(raw string) (reference.Stadium, Tier, bool) {
	s, tier, ok := r.resolveStadium(raw)
	logger.IncrCounter("resolve.stadium." + string(tier))
	return s, tier, ok
}

func (r *Resolver) resolveStadium(raw string) (reference.Stadium, Tier, bool) {
	if s, ok := r.strictStadium(raw); ok {
		return s, TierStrict, true
	}
	if canonical, ok := r.aliases.NormalizeStadium(raw); ok {
		if s, ok := r.strictStadium(canonical); ok {
			return s, TierAlias, true
		}
	}
	return reference.Stadium{}, TierMiss, false
}

// ResolveStadiumIDFuzzy returns the id of the stadium raw refers to.
func (r *Resolver) ResolveStadiumIDFuzzy(raw string) (int, bool) {
	s, _, ok := r.ResolveStadium(raw)
	return s.ID, ok
}

// ResolveStadiumNameFuzzy returns the canonical name of the stadium raw refers to.
func (r *Resolver) ResolveStadiumNameFuzzy(raw string) (string, bool) {
	s, _, ok := r.ResolveStadium(raw)
	return s.Name, ok
}

// ResolveClub runs the strict and alias tiers for a club name.
func (r *Resolver) ResolveClub(raw string) (reference.Club, Tier, bool) {
	c, tier, ok := r.resolveClub(raw)
	logger.IncrCounter("resolve.club." + string(tier))
	return c, tier, ok
}

func (r *Resolver) resolveClub(raw string) (reference.Club, Tier, bool) {
	if c, ok := r.strictClub(raw); ok {
		return c, TierStrict, true
	}
	if canonical, ok := r.aliases.NormalizeClub(raw); ok {
		if c, ok := r.strictClub(canonical); ok {
			return c, TierAlias, true
		}
	}
	return reference.Club{}, TierMiss, false
}

// ResolveClubIDFuzzy returns the id of the club raw refers to.
func (r *Resolver) ResolveClubIDFuzzy(raw string) (int, bool) {
	c, _, ok := r.ResolveClub(raw)
	return c.ID, ok
}

func (r *Resolver) strictTeam(name string) (reference.Team, bool) {
	key := alias.Canonicalize(name)
	if key == "" {
		return reference.Team{}, false
	}
	t, ok := r.teams[key]
	return t, ok
}

func (r *Resolver) strictStadium(name string) (reference.Stadium, bool) {
	key := alias.Canonicalize(name)
	if key == "" {
		return reference.Stadium{}, false
	}
	s, ok := r.stadiums[key]
	return s, ok
}

func (r *Resolver) strictClub(name string) (reference.Club, bool) {
	key := alias.Canonicalize(name)
	if key == "" {
		return reference.Club{}, false
	}
	c, ok := r.clubs[key]
	return c, ok
}

// teamForClub returns the single team owned by clubID at level. Zero or
// several candidates are both a miss.
func (r *Resolver) teamForClub(clubID int, level reference.Level) (reference.Team, bool) {
	var found reference.Team
	matches := 0
	for _, t := range r.catalog.Teams {
		if t.ClubID == clubID && t.Level == level {
			found = t
			matches++
		}
	}
	if matches != 1 {
		if matches > 1 {
			logger.Debug("Ambiguous club-derived team", logger.Fields{
				"club_id": clubID,
				"level":   level,
				"matches": matches,
			})
		}
		return reference.Team{}, false
	}
	return found, true
}
