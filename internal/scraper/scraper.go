package scraper

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultUserAgent = "npb-scrape/1.0"
	Timeout          = 15 * time.Second
)

const (
	gameCardSelector = "#async-gameCard"
	timeSelector     = "#async-gameCard time"
	teamSelector     = "div.bb-gameTeam p.bb-gameTeam__name"
)

// Game is the raw meta block of one game page. Empty fields were absent.
type Game struct {
	URL         string `json:"url"`
	DateLabel   string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	StadiumRaw  string `json:"stadium_raw,omitempty"`
	HomeTeamRaw string `json:"home_team_raw,omitempty"`
	AwayTeamRaw string `json:"away_team_raw,omitempty"`
}

// Scraper fetches game pages
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New creates a Scraper sending userAgent, or DefaultUserAgent when empty.
func New(userAgent string) *Scraper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: userAgent,
	}
}

// FetchGame fetches url and extracts its meta block
func (s *Scraper) FetchGame(url string) (*Game, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseGame(resp.Body, url)
}

// parseGame extracts the meta block from HTML
func parseGame(r io.Reader, sourceURL string) (*Game, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	game := &Game{URL: sourceURL}

	if tokens := strings.Fields(doc.Find(gameCardSelector).First().Text()); len(tokens) > 0 {
		game.DateLabel = tokens[0]
		game.StadiumRaw = tokens[len(tokens)-1]
	}
	game.Time = collapse(doc.Find(timeSelector).First().Text())

	teams := doc.Find(teamSelector)
	if teams.Length() >= 1 {
		game.HomeTeamRaw = collapse(teams.Eq(0).Text())
	}
	if teams.Length() >= 2 {
		game.AwayTeamRaw = collapse(teams.Eq(1).Text())
	}

	return game, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
