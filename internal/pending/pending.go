package pending

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/jsonl"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
)

// MaxExamples bounds the example contexts kept per grouped name.
const MaxExamples = 3

// ResolvedFile is the name of the resolution marker log.
const ResolvedFile = "resolved.jsonl"

// Context is the provenance of a miss.
type Context struct {
	URL      string `json:"url,omitempty"`
	Level    string `json:"level,omitempty"`
	PageDate string `json:"page_date,omitempty"`
	PageHint string `json:"page_hint,omitempty"`
}

// Entry is one recorded miss.
type Entry struct {
	Timestamp string  `json:"ts"`
	Category  string  `json:"category"`
	Raw       string  `json:"raw"`
	Context   Context `json:"context"`
}

// Resolution marks a raw name as curated.
type Resolution struct {
	Timestamp string `json:"ts"`
	Category  string `json:"category"`
	Raw       string `json:"raw"`
	Canonical string `json:"canonical,omitempty"`
}

// Summary groups the entries of one category that share a cleaned name.
type Summary struct {
	Raw       string    `json:"raw"`
	Count     int       `json:"count"`
	FirstSeen string    `json:"first_seen"`
	LastSeen  string    `json:"last_seen"`
	Examples  []Context `json:"examples"`
	Resolved  bool      `json:"resolved"`
}

// Registry appends misses and resolution markers under one directory.
type Registry struct {
	dir string
	now func() time.Time
}

// New creates a Registry rooted at dir, creating the directory.
func New(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating pending directory: %w", err)
	}
	return &Registry{dir: dir, now: time.Now}, nil
}

// Dir returns the registry directory.
func (r *Registry) Dir() string {
	return r.dir
}

// FileKey maps a category, plus the page level for the generic "team"
// category, to the base name of its pending file.
func FileKey(category, level string) string {
	switch category {
	case "stadiums", "stadium":
		return "stadiums"
	case "clubs", "club":
		return "clubs"
	case "team":
		if level == "" {
			return "team"
		}
		return "teams_" + strings.ToLower(level)
	default:
		return category
	}
}

// Path returns the pending file for a category.
func (r *Registry) Path(category, level string) string {
	return filepath.Join(r.dir, FileKey(category, level)+".jsonl")
}

// Record appends one miss. The raw text is stored as scraped.
func (r *Registry) Record(category, raw string, ctx Context) error {
	entry := Entry{
		Timestamp: r.now().Format(time.RFC3339),
		Category:  category,
		Raw:       raw,
		Context:   ctx,
	}
	if err := jsonl.Append(r.Path(category, ctx.Level), entry); err != nil {
		return fmt.Errorf("recording pending %s %q: %w", category, raw, err)
	}

	logger.IncrCounter("pending.record")
	logger.Warn("Unresolved name recorded", logger.Fields{
		"category": category,
		"raw":      raw,
		"url":      ctx.URL,
	})
	return nil
}

// MarkResolved appends a marker so reports stop listing raw as pending.
func (r *Registry) MarkResolved(category, raw, canonical string) error {
	res := Resolution{
		Timestamp: r.now().Format(time.RFC3339),
		Category:  FileKey(category, ""),
		Raw:       alias.Canonicalize(raw),
		Canonical: canonical,
	}
	if err := jsonl.Append(filepath.Join(r.dir, ResolvedFile), res); err != nil {
		return fmt.Errorf("recording resolution for %s %q: %w", category, raw, err)
	}
	return nil
}

// Entries returns every recorded miss for a category file key.
func (r *Registry) Entries(fileKey string) ([]Entry, error) {
	entries, skipped, err := jsonl.Read[Entry](filepath.Join(r.dir, fileKey+".jsonl"))
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("Skipped malformed pending lines", logger.Fields{
			"category": fileKey,
			"skipped":  skipped,
		})
	}
	return entries, nil
}

// resolvedSet returns the cleaned raw names marked resolved for fileKey.
func (r *Registry) resolvedSet(fileKey string) (map[string]bool, error) {
	markers, _, err := jsonl.Read[Resolution](filepath.Join(r.dir, ResolvedFile))
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, m := range markers {
		if m.Category == fileKey {
			set[alias.Canonicalize(m.Raw)] = true
		}
	}
	return set, nil
}

// Summarize groups the entries of fileKey by cleaned raw name, most frequent
// first, flagging groups that have a resolution marker.
func (r *Registry) Summarize(fileKey string) ([]Summary, error) {
	entries, err := r.Entries(fileKey)
	if err != nil {
		return nil, err
	}
	resolved, err := r.resolvedSet(fileKey)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*Summary)
	order := make([]string, 0)
	for _, e := range entries {
		key := alias.Canonicalize(e.Raw)
		if key == "" {
			continue
		}

		s, ok := groups[key]
		if !ok {
			s = &Summary{
				Raw:       key,
				FirstSeen: e.Timestamp,
				Resolved:  resolved[key],
			}
			groups[key] = s
			order = append(order, key)
		}
		s.Count++
		s.LastSeen = e.Timestamp
		if len(s.Examples) < MaxExamples {
			s.Examples = append(s.Examples, e.Context)
		}
	}

	out := make([]Summary, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out, nil
}

// Pending is Summarize without the resolved groups.
func (r *Registry) Pending(fileKey string) ([]Summary, error) {
	all, err := r.Summarize(fileKey)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(all))
	for _, s := range all {
		if !s.Resolved {
			out = append(out, s)
		}
	}
	return out, nil
}
