package cli

import (
	"sort"

	"github.com/pfrederiksen/npb-scrape/internal/pending"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByCount  SortOrder = "count"
	SortByRecent SortOrder = "recent"
	SortByName   SortOrder = "name"
)

// sortSummaries sorts pending summaries based on the specified sort order
func sortSummaries(summaries []pending.Summary, sortOrder SortOrder) {
	switch sortOrder {
	case SortByCount:
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Count > summaries[j].Count
		})
	case SortByRecent:
		sort.SliceStable(summaries, func(i, j int) bool {
			if summaries[i].LastSeen != summaries[j].LastSeen {
				// RFC 3339 timestamps in one zone order lexically
				return summaries[i].LastSeen > summaries[j].LastSeen
			}
			return summaries[i].Count > summaries[j].Count
		})
	case SortByName:
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Raw < summaries[j].Raw
		})
	}
}

// parseSortOrder validates a --sort value
func parseSortOrder(s string) (SortOrder, bool) {
	switch order := SortOrder(s); order {
	case SortByCount, SortByRecent, SortByName:
		return order, true
	default:
		return "", false
	}
}
