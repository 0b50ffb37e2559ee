package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/jsonl"
	"github.com/pfrederiksen/npb-scrape/internal/pending"
	"github.com/pfrederiksen/npb-scrape/internal/reference"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText   OutputFormat = "text"
	FormatJSON   OutputFormat = "json"
	FormatNDJSON OutputFormat = "ndjson"
)

// outputFormat returns the --format value, or def when the flag is unset
func outputFormat(def OutputFormat) (OutputFormat, error) {
	if flagFormat == "" {
		return def, nil
	}
	format := OutputFormat(strings.ToLower(flagFormat))
	switch format {
	case FormatText, FormatJSON, FormatNDJSON:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ndjson')", flagFormat)
	}
}

// ScrapeResult is the outcome of resolving one game page. IDs are null when
// the name did not resolve.
type ScrapeResult struct {
	URL          string            `json:"url"`
	Level        reference.Level   `json:"level"`
	Date         string            `json:"date,omitempty"`
	Time         string            `json:"time,omitempty"`
	HomeTeamID   *int              `json:"home_team_id"`
	AwayTeamID   *int              `json:"away_team_id"`
	StadiumID    *int              `json:"stadium_id"`
	HomeTeamName string            `json:"home_team_name,omitempty"`
	AwayTeamName string            `json:"away_team_name,omitempty"`
	StadiumName  string            `json:"stadium_name,omitempty"`
	HomeTeamRaw  string            `json:"home_team_raw,omitempty"`
	AwayTeamRaw  string            `json:"away_team_raw,omitempty"`
	StadiumRaw   string            `json:"stadium_raw,omitempty"`
	Unresolved   map[string]string `json:"unresolved"`
}

// RegisterResult is the outcome of one alias registration
type RegisterResult struct {
	Result    alias.Result   `json:"result"`
	Category  alias.Category `json:"category"`
	Raw       string         `json:"raw"`
	Canonical string         `json:"canonical"`
}

// PendingReport lists the unresolved names of one pending file
type PendingReport struct {
	Category string            `json:"category"`
	Names    []pending.Summary `json:"names"`
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeNDJSON outputs v as a single JSON line
func writeNDJSON(w io.Writer, v interface{}) error {
	line, err := jsonl.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}

func writeStructured(w io.Writer, v interface{}, format OutputFormat) error {
	if format == FormatNDJSON {
		return writeNDJSON(w, v)
	}
	return writeJSON(w, v)
}

// WriteScrape writes a scrape result in the specified format
func WriteScrape(w io.Writer, result *ScrapeResult, format OutputFormat) error {
	if format != FormatText {
		return writeStructured(w, result, format)
	}

	fmt.Fprintln(w, "OK")
	fmt.Fprintf(w, "url=%s\n", result.URL)
	fmt.Fprintf(w, "level=%s\n", result.Level)
	fmt.Fprintf(w, "home=%s\n", idText(result.HomeTeamID))
	fmt.Fprintf(w, "away=%s\n", idText(result.AwayTeamID))
	fmt.Fprintf(w, "stadium=%s\n", idText(result.StadiumID))

	if len(result.Unresolved) > 0 {
		line, err := jsonl.Encode(result.Unresolved)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nunresolved=%s", line)
	}
	return nil
}

func idText(id *int) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *id)
}

// WriteRegister writes a registration outcome in the specified format
func WriteRegister(w io.Writer, result *RegisterResult, format OutputFormat) error {
	if format != FormatText {
		return writeStructured(w, result, format)
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s => %s\n", result.Result, result.Category, result.Raw, result.Canonical)
	return err
}

// WritePromotion writes a promotion report in the specified format
func WritePromotion(w io.Writer, report *alias.PromotionReport, format OutputFormat, verbose bool) error {
	if format != FormatText {
		return writeStructured(w, report, format)
	}

	if len(report.Entries) == 0 {
		fmt.Fprintln(w, "Nothing to promote.")
		return nil
	}

	for _, e := range report.Entries {
		fmt.Fprintf(w, "[%s] %s: %s => %s\n", e.Result, e.Category, e.Raw, e.Canonical)
		if verbose && e.Previous != "" && e.Result == alias.ResultUpdated {
			fmt.Fprintf(w, "     was: %s\n", e.Previous)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d promoted (batch %s)\n", len(report.Entries), report.Batch)
	return nil
}

// WritePending writes pending reports in the specified format
func WritePending(w io.Writer, reports []PendingReport, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatNDJSON:
		for _, r := range reports {
			if err := writeNDJSON(w, r); err != nil {
				return err
			}
		}
		return nil
	}

	total := 0
	for _, r := range reports {
		if len(r.Names) == 0 {
			continue
		}
		total += len(r.Names)

		fmt.Fprintf(w, "\n%s (%d pending):\n", r.Category, len(r.Names))
		for _, s := range r.Names {
			fmt.Fprintf(w, "  %s (x%d, last seen %s)\n", s.Raw, s.Count, s.LastSeen)
			if verbose {
				fmt.Fprintf(w, "       First seen: %s\n", s.FirstSeen)
				for _, ex := range s.Examples {
					fmt.Fprintf(w, "       Example: %s\n", exampleText(ex))
				}
			}
		}
	}

	if total == 0 {
		fmt.Fprintln(w, "No pending names.")
		return nil
	}
	fmt.Fprintf(w, "\nTotal: %d pending\n", total)
	return nil
}

func exampleText(ctx pending.Context) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{ctx.PageDate, ctx.Level, ctx.URL, ctx.PageHint} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
