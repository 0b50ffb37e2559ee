package dict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/pfrederiksen/npb-scrape/internal/reference"
)

// Cache is the on-disk copy of the last fetched catalog, valid for TTL.
type Cache struct {
	Catalog  *reference.Catalog `json:"catalog"`
	CachedAt time.Time          `json:"cached_at"`
	TTL      time.Duration      `json:"-"`

	path string
}

// LoadCache reads the cache at path. A missing file yields an empty cache.
func LoadCache(path string, ttl time.Duration) (*Cache, error) {
	c := &Cache{TTL: ttl, path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dictionary cache: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing dictionary cache %s: %w", path, err)
	}
	return c, nil
}

// Get returns the cached catalog, or nil if it is absent or expired.
func (c *Cache) Get() *reference.Catalog {
	if c.Catalog == nil || c.TTL <= 0 {
		return nil
	}
	if time.Since(c.CachedAt) > c.TTL {
		return nil
	}
	return c.Catalog
}

// Set stores catalog and stamps it with the current time.
func (c *Cache) Set(catalog *reference.Catalog) {
	c.Catalog = catalog
	c.CachedAt = time.Now()
}

// Save writes the cache atomically.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding dictionary cache: %w", err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing dictionary cache: %w", err)
	}
	return nil
}

// CachedCatalog returns the cached catalog when fresh and otherwise fetches
// it with c and refreshes the cache. A nil cache always fetches.
func (c *Client) CachedCatalog(cache *Cache) (*reference.Catalog, bool, error) {
	if cache != nil {
		if catalog := cache.Get(); catalog != nil {
			return catalog, true, nil
		}
	}

	catalog, err := c.Catalog()
	if err != nil {
		return nil, false, err
	}
	if cache != nil && cache.TTL > 0 {
		cache.Set(catalog)
		if err := cache.Save(); err != nil {
			return nil, false, err
		}
	}
	return catalog, false, nil
}
