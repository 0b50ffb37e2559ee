package jsonl

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	N    int    `json:"n"`
	Text string `json:"text"`
}

func TestAppendCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.jsonl")

	require.NoError(t, Append(path, testLine{N: 1, Text: "甲子園"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1,\"text\":\"甲子園\"}\n", string(data))
}

func TestAppendDoesNotEscapeHTML(t *testing.T) {
	line, err := Encode(map[string]string{"url": "https://example.com/a?b=1&c=<2>"})
	require.NoError(t, err)
	assert.Equal(t, "{\"url\":\"https://example.com/a?b=1&c=<2>\"}\n", string(line))
}

func TestAppendConcurrentWritersKeepLinesIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := Append(path, testLine{N: w*perWriter + i, Text: fmt.Sprintf("writer-%d", w)}); err != nil {
					t.Errorf("Append() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	entries, skipped, err := Read[testLine](path)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Len(t, entries, writers*perWriter)

	seen := make(map[int]bool)
	for _, e := range entries {
		seen[e.N] = true
	}
	assert.Len(t, seen, writers*perWriter)
}

func TestReadMissingFile(t *testing.T) {
	entries, skipped, err := Read[testLine](filepath.Join(t.TempDir(), "missing.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, skipped)
}

func TestReadSkipsTornAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torn.jsonl")
	content := "{\"n\":1,\"text\":\"a\"}\n\n{\"n\":2,\"text\":\"b\"}\n{\"n\":3,\"te"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, skipped, err := Read[testLine](path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[1].N)
}

func TestLockIsReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.json")

	unlock, err := Lock(path)
	require.NoError(t, err)
	unlock()

	// A second acquisition must not block once the first is released.
	unlock, err = Lock(path)
	require.NoError(t, err)
	unlock()

	_, err = os.Stat(path + ".lock")
	assert.NoError(t, err)
}
