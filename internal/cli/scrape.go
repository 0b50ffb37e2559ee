package cli

import (
	"fmt"

	"github.com/pfrederiksen/npb-scrape/internal/dict"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
	"github.com/pfrederiksen/npb-scrape/internal/pending"
	"github.com/pfrederiksen/npb-scrape/internal/reference"
	"github.com/pfrederiksen/npb-scrape/internal/resolver"
	"github.com/pfrederiksen/npb-scrape/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	flagNDJSON      bool
	flagRefreshDict bool
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <game-url> <First|Farm>",
		Short: "Scrape one game page and resolve its teams and stadium",
		Long: `Fetch one game top page, resolve the stadium and both team names against the
dictionary API and the alias layers, and print the result. Names that do not
resolve are recorded under the pending directory; the command then exits 2.`,
		Args: cobra.ExactArgs(2),
		RunE: runScrape,
	}

	cmd.Flags().BoolVar(&flagNDJSON, "ndjson", false, "Print the result as a single JSON line")
	cmd.Flags().BoolVar(&flagRefreshDict, "refresh-dict", false, "Ignore the cached dictionary and fetch it again")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(FormatJSON)
	if err != nil {
		return err
	}
	if flagNDJSON {
		format = FormatNDJSON
	}

	url := args[0]
	level, err := reference.ParseLevel(args[1])
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	base, err := a.cfg.RequireAPIBase()
	if err != nil {
		return err
	}
	cache, err := dict.LoadCache(a.cfg.DictCache, a.cfg.DictCacheTTL)
	if err != nil {
		return err
	}
	if flagRefreshDict {
		cache.Catalog = nil
	}
	catalog, hit, err := dict.NewClient(base, a.cfg.APITimeout).CachedCatalog(cache)
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}
	logger.Debug("Dictionary loaded", logger.Fields{
		"cached":   hit,
		"teams":    len(catalog.Teams),
		"stadiums": len(catalog.Stadiums),
		"clubs":    len(catalog.Clubs),
	})

	norm, err := a.store.Normalizer()
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}
	res := resolver.New(catalog, norm)

	logger.Debug("Fetching game page", logger.Fields{"url": url, "level": level})
	game, err := scraper.New(a.cfg.UserAgent).FetchGame(url)
	if err != nil {
		logger.Error("Scrape failed", logger.Fields{"url": url}, err)
		return fmt.Errorf("scraping %s: %w", url, err)
	}

	result, err := resolveGame(res, a.pending, game, level)
	if err != nil {
		return err
	}

	if err := WriteScrape(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(result.Unresolved) > 0 {
		return ErrUnresolved
	}
	return nil
}

// resolveGame resolves the raw names of game and records every miss in reg.
func resolveGame(res *resolver.Resolver, reg *pending.Registry, game *scraper.Game, level reference.Level) (*ScrapeResult, error) {
	result := &ScrapeResult{
		URL:         game.URL,
		Level:       level,
		Date:        game.DateLabel,
		Time:        game.Time,
		HomeTeamRaw: game.HomeTeamRaw,
		AwayTeamRaw: game.AwayTeamRaw,
		StadiumRaw:  game.StadiumRaw,
		Unresolved:  map[string]string{},
	}

	if game.StadiumRaw != "" {
		if stadium, _, ok := res.ResolveStadium(game.StadiumRaw); ok {
			id := stadium.ID
			result.StadiumID = &id
			result.StadiumName = stadium.Name
		} else {
			result.Unresolved["stadium"] = game.StadiumRaw
			ctx := pending.Context{URL: game.URL, PageDate: game.DateLabel}
			if err := reg.Record("stadiums", game.StadiumRaw, ctx); err != nil {
				return nil, err
			}
		}
	}

	teams := []struct {
		key  string
		raw  string
		id   **int
		name *string
	}{
		{"home_team", game.HomeTeamRaw, &result.HomeTeamID, &result.HomeTeamName},
		{"away_team", game.AwayTeamRaw, &result.AwayTeamID, &result.AwayTeamName},
	}
	for _, t := range teams {
		if t.raw == "" {
			continue
		}
		if team, _, ok := res.ResolveTeam(t.raw, level); ok {
			id := team.ID
			*t.id = &id
			*t.name = team.Name
			continue
		}
		result.Unresolved[t.key] = t.raw
		ctx := pending.Context{URL: game.URL, Level: string(level), PageDate: game.DateLabel}
		if err := reg.Record("team", t.raw, ctx); err != nil {
			return nil, err
		}
	}

	return result, nil
}
