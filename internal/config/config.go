// Package config loads runtime settings from the environment and optional
// .env files in the project root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for settings that are not provided.
const (
	DefaultAliasBaseFile   = "data/aliases.json"
	DefaultAliasLocalFile  = "data/aliases.local.json"
	DefaultPendingDir      = "logs/pending_aliases"
	DefaultAuditLog        = "logs/alias_promotions.log"
	DefaultRegistrationLog = "logs/alias_registrations.log"
	DefaultDictCache       = "data/dict_cache.json"
	DefaultDictCacheTTL    = time.Hour
	DefaultAPITimeout      = 10 * time.Second
	DefaultUserAgent       = "npb-scrape/1.0"
	DefaultLogLevel        = "INFO"
)

// ErrMissingAPIBase is returned by RequireAPIBase when no dictionary API is configured.
var ErrMissingAPIBase = errors.New("APP_API_BASE is not set")

// Config holds the resolved settings. All paths are absolute.
type Config struct {
	Root            string
	AliasBaseFile   string
	AliasLocalFile  string
	PendingDir      string
	AuditLog        string
	RegistrationLog string
	DictCache       string
	APIBase         string
	APITimeout      time.Duration
	DictCacheTTL    time.Duration
	UserAgent       string
	LogLevel        string
}

// Load reads root/.env and root/.env.local (both optional, the latter
// overriding the former) and then the process environment, which always
// wins. An empty root falls back to APP_ROOT, then the working directory.
func Load(root string) (*Config, error) {
	if root == "" {
		root = os.Getenv("APP_ROOT")
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := expandHome(root)
	if err != nil {
		return nil, err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	fileVars, err := readDotEnv(root)
	if err != nil {
		return nil, err
	}
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		if v, ok := fileVars[key]; ok && v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Root:      root,
		APIBase:   strings.TrimRight(get("APP_API_BASE", ""), "/"),
		UserAgent: get("SCRAPER_USER_AGENT", DefaultUserAgent),
		LogLevel:  strings.ToUpper(get("APP_LOG_LEVEL", DefaultLogLevel)),
	}

	paths := []struct {
		dst *string
		key string
		def string
	}{
		{&cfg.AliasBaseFile, "APP_ALIAS_BASE_FILE", DefaultAliasBaseFile},
		{&cfg.AliasLocalFile, "APP_ALIAS_LOCAL_FILE", DefaultAliasLocalFile},
		{&cfg.PendingDir, "APP_PENDING_DIR", DefaultPendingDir},
		{&cfg.AuditLog, "APP_ALIAS_AUDIT_LOG", DefaultAuditLog},
		{&cfg.RegistrationLog, "APP_ALIAS_REG_LOG", DefaultRegistrationLog},
		{&cfg.DictCache, "APP_DICT_CACHE", DefaultDictCache},
	}
	for _, p := range paths {
		resolved, err := cfg.Resolve(get(p.key, p.def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.key, err)
		}
		*p.dst = resolved
	}

	cfg.APITimeout = DefaultAPITimeout
	if raw := get("APP_API_TIMEOUT", ""); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("APP_API_TIMEOUT: invalid number of seconds %q", raw)
		}
		cfg.APITimeout = time.Duration(secs) * time.Second
	}

	// 0 disables the dictionary cache
	cfg.DictCacheTTL = DefaultDictCacheTTL
	if raw := get("APP_DICT_CACHE_TTL", ""); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins < 0 {
			return nil, fmt.Errorf("APP_DICT_CACHE_TTL: invalid number of minutes %q", raw)
		}
		cfg.DictCacheTTL = time.Duration(mins) * time.Minute
	}

	return cfg, nil
}

// Resolve makes path absolute: "~/" is expanded to the home directory and
// relative paths are joined to the root.
func (c *Config) Resolve(path string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(c.Root, path), nil
}

// RequireAPIBase returns the dictionary API base URL or ErrMissingAPIBase.
func (c *Config) RequireAPIBase() (string, error) {
	if c.APIBase == "" {
		return "", ErrMissingAPIBase
	}
	return c.APIBase, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

func readDotEnv(root string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	return vars, nil
}
