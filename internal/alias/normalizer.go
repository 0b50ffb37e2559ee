package alias

import "sort"

// Normalizer resolves raw names to canonical names through an alias map
// snapshot. It never modifies the map.
type Normalizer struct {
	// index is keyed by category, then by the canonicalized alias key.
	index map[string]map[string]string
}

// NewNormalizer indexes m by canonicalized key. Keys already stored in
// canonical form take precedence over hand-written keys that only become
// equal after cleanup. A nil map yields a Normalizer that never matches.
func NewNormalizer(m Map) *Normalizer {
	index := make(map[string]map[string]string, len(m))
	for cat, entries := range m {
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		inner := make(map[string]string, len(entries))
		for _, k := range keys {
			ck := Canonicalize(k)
			if ck == k {
				continue
			}
			if _, taken := inner[ck]; !taken {
				inner[ck] = entries[k]
			}
		}
		for _, k := range keys {
			if Canonicalize(k) == k {
				inner[k] = entries[k]
			}
		}
		index[cat] = inner
	}
	return &Normalizer{index: index}
}

// Normalize returns the canonical name for raw in category, if any.
func (n *Normalizer) Normalize(category Category, raw string) (string, bool) {
	key := Canonicalize(raw)
	if key == "" {
		return "", false
	}
	v, ok := n.index[string(category)][key]
	return v, ok
}

// NormalizeTeamFirst looks raw up among top-level team aliases.
func (n *Normalizer) NormalizeTeamFirst(raw string) (string, bool) {
	return n.Normalize(CategoryTeamsFirst, raw)
}

// NormalizeTeamFarm looks raw up among farm team aliases.
func (n *Normalizer) NormalizeTeamFarm(raw string) (string, bool) {
	return n.Normalize(CategoryTeamsFarm, raw)
}

// NormalizeStadium looks raw up among stadium aliases.
func (n *Normalizer) NormalizeStadium(raw string) (string, bool) {
	return n.Normalize(CategoryStadiums, raw)
}

// NormalizeClub looks raw up among club aliases.
func (n *Normalizer) NormalizeClub(raw string) (string, bool) {
	return n.Normalize(CategoryClubs, raw)
}
