package alias

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/pfrederiksen/npb-scrape/internal/jsonl"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrInvalidAliasFile is returned when an alias layer exists but is not a
// JSON object of category -> (raw -> canonical) string maps.
var ErrInvalidAliasFile = errors.New("invalid alias file")

// Map is a two-level alias mapping: category -> raw text -> canonical name.
// Maps returned by Store.Load are shared and must not be mutated.
type Map map[string]map[string]string

// Get returns the canonical name stored for raw under category.
func (m Map) Get(category, raw string) (string, bool) {
	v, ok := m[category][raw]
	return v, ok
}

// Set stores raw -> canonical under category, creating the category if needed.
func (m Map) Set(category, raw, canonical string) {
	if m[category] == nil {
		m[category] = make(map[string]string)
	}
	m[category][raw] = canonical
}

// Len returns the number of entries across all categories.
func (m Map) Len() int {
	n := 0
	for _, entries := range m {
		n += len(entries)
	}
	return n
}

// Clone returns a deep copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for cat, entries := range m {
		inner := make(map[string]string, len(entries))
		for k, v := range entries {
			inner[k] = v
		}
		out[cat] = inner
	}
	return out
}

// Merge returns a new map where every entry of local overrides the entry with
// the same category and key in base. Neither input is modified.
func Merge(base, local Map) Map {
	out := base.Clone()
	for cat, entries := range local {
		for k, v := range entries {
			out.Set(cat, k, v)
		}
	}
	return out
}

// Categories returns the category names present in m in collated order.
func (m Map) Categories() []string {
	cats := make([]string, 0, len(m))
	for cat := range m {
		cats = append(cats, cat)
	}
	sortCollated(cats)
	return cats
}

// Keys returns the raw keys of category in collated order.
func (m Map) Keys(category string) []string {
	keys := make([]string, 0, len(m[category]))
	for k := range m[category] {
		keys = append(keys, k)
	}
	sortCollated(keys)
	return keys
}

// sortCollated orders strings the way a Japanese reader expects, with digit
// runs compared numerically. Byte order breaks collation ties so output is
// deterministic.
func sortCollated(ss []string) {
	c := collate.New(language.Japanese, collate.Numeric)
	sort.SliceStable(ss, func(i, j int) bool {
		if r := c.CompareString(ss[i], ss[j]); r != 0 {
			return r < 0
		}
		return ss[i] < ss[j]
	})
}

// parseMap decodes an alias layer.
func parseMap(data []byte) (Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAliasFile, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidAliasFile)
	}
	return m, nil
}

// encode renders m as indented JSON with categories and keys in collated
// order, so rewrites of a layer produce minimal diffs.
func (m Map) encode() ([]byte, error) {
	cats := m.Categories()
	if len(cats) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, cat := range cats {
		name, err := encodeString(cat)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(name)
		buf.WriteString(": {")

		keys := m.Keys(cat)
		if len(keys) > 0 {
			buf.WriteString("\n")
			for j, k := range keys {
				key, err := encodeString(k)
				if err != nil {
					return nil, err
				}
				value, err := encodeString(m[cat][k])
				if err != nil {
					return nil, err
				}
				buf.WriteString("    ")
				buf.Write(key)
				buf.WriteString(": ")
				buf.Write(value)
				if j < len(keys)-1 {
					buf.WriteString(",")
				}
				buf.WriteString("\n")
			}
			buf.WriteString("  ")
		}
		buf.WriteString("}")
		if i < len(cats)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	line, err := jsonl.Encode(s)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\n"), nil
}
