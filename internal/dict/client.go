// Package dict fetches the team, stadium and club reference lists from the
// dictionary API.
package dict

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/npb-scrape/internal/reference"
)

// ErrUnexpectedStatus is returned for any non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected status from dictionary API")

// Client is a client for the dictionary API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

// Teams fetches /dict/teams.
func (c *Client) Teams() ([]reference.Team, error) {
	return getList[reference.Team](c, "/dict/teams")
}

// Stadiums fetches /dict/stadiums.
func (c *Client) Stadiums() ([]reference.Stadium, error) {
	return getList[reference.Stadium](c, "/dict/stadiums")
}

// Clubs fetches /dict/clubs.
func (c *Client) Clubs() ([]reference.Club, error) {
	return getList[reference.Club](c, "/dict/clubs")
}

// Catalog fetches all three lists.
func (c *Client) Catalog() (*reference.Catalog, error) {
	teams, err := c.Teams()
	if err != nil {
		return nil, err
	}
	stadiums, err := c.Stadiums()
	if err != nil {
		return nil, err
	}
	clubs, err := c.Clubs()
	if err != nil {
		return nil, err
	}
	return &reference.Catalog{Teams: teams, Stadiums: stadiums, Clubs: clubs}, nil
}

func getList[T any](c *Client, path string) ([]T, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	var result listResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return result.Data, nil
}
