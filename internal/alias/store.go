package alias

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// Store loads the base and local alias layers and caches their merge.
//
// A Store is meant to be created once per run and shared by every consumer
// in the process; InvalidateCache on that handle makes the next Load re-read
// both files.
type Store struct {
	basePath  string
	localPath string

	mu         sync.Mutex
	cache      Map
	normalizer *Normalizer

	// writeFile replaces a file atomically. Swapped in tests to simulate
	// write failures.
	writeFile func(path string, r io.Reader) error
}

// NewStore creates a Store over the given layer files. Neither file needs to
// exist yet.
func NewStore(basePath, localPath string) *Store {
	return &Store{
		basePath:  basePath,
		localPath: localPath,
		writeFile: atomic.WriteFile,
	}
}

// BasePath returns the path of the authoritative layer.
func (s *Store) BasePath() string { return s.basePath }

// LocalPath returns the path of the staging layer.
func (s *Store) LocalPath() string { return s.localPath }

// Load returns the merged alias map, reading both layers on the first call
// after creation or invalidation. The result is shared; do not modify it.
func (s *Store) Load() (Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (Map, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	base, err := readLayer(s.basePath)
	if err != nil {
		return nil, err
	}
	local, err := readLayer(s.localPath)
	if err != nil {
		return nil, err
	}

	s.cache = Merge(base, local)
	return s.cache, nil
}

// LoadBase reads the base layer alone, bypassing the cache.
func (s *Store) LoadBase() (Map, error) {
	return readLayer(s.basePath)
}

// LoadLocal reads the local layer alone, bypassing the cache.
func (s *Store) LoadLocal() (Map, error) {
	return readLayer(s.localPath)
}

// Resolve looks raw up verbatim in the merged map. No cleanup is applied;
// use a Normalizer for tolerant lookups.
func (s *Store) Resolve(category Category, raw string) (string, bool, error) {
	m, err := s.Load()
	if err != nil {
		return "", false, err
	}
	v, ok := m.Get(string(category), raw)
	return v, ok, nil
}

// Normalizer returns a Normalizer over the current merged map. The same
// instance is returned until the cache is invalidated.
func (s *Store) Normalizer() (*Normalizer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.normalizer != nil && s.cache != nil {
		return s.normalizer, nil
	}
	m, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	s.normalizer = NewNormalizer(m)
	return s.normalizer, nil
}

// InvalidateCache forces the next Load to re-read both layers from disk.
// Every write to either layer must be followed by a call.
func (s *Store) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.normalizer = nil
}

// writeLayer replaces path with the encoded form of m.
func (s *Store) writeLayer(path string, m Map) error {
	data, err := m.encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := s.writeFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readLayer decodes one layer file. A missing file is an empty layer; a file
// that is present but malformed is an error.
func readLayer(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("reading alias file %s: %w", path, err)
	}

	m, err := parseMap(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
