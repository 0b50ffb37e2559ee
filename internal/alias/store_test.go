package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "data", "aliases.json"), filepath.Join(dir, "data", "aliases.local.json"))
}

func TestStoreLoadMissingFilesIsEmpty(t *testing.T) {
	store := newTestStore(t)

	m, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, m.Len())

	_, ok, err := store.Resolve(CategoryStadiums, "甲子園")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreMergePrecedence(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.BasePath(), `{"teams_first": {"A": "Team A"}, "stadiums": {"甲子園": "阪神甲子園球場"}}`)
	writeFile(t, store.LocalPath(), `{"teams_first": {"A": "Team A2", "B": "Team B"}}`)

	tests := []struct {
		category Category
		raw      string
		want     string
	}{
		{CategoryTeamsFirst, "A", "Team A2"},
		{CategoryTeamsFirst, "B", "Team B"},
		{CategoryStadiums, "甲子園", "阪神甲子園球場"},
	}

	for _, tt := range tests {
		got, ok, err := store.Resolve(tt.category, tt.raw)
		require.NoError(t, err)
		assert.True(t, ok, "Resolve(%s, %q) not found", tt.category, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	base, err := store.LoadBase()
	require.NoError(t, err)
	v, _ := base.Get("teams_first", "A")
	assert.Equal(t, "Team A", v, "LoadBase must not see the local override")

	local, err := store.LoadLocal()
	require.NoError(t, err)
	_, ok := local.Get("stadiums", "甲子園")
	assert.False(t, ok, "LoadLocal must not see base entries")
}

func TestStoreResolveIsExact(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.BasePath(), `{"stadiums": {"甲子園": "阪神甲子園球場"}}`)

	_, ok, err := store.Resolve(CategoryStadiums, " 甲子園")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreCacheUntilInvalidated(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.BasePath(), `{"clubs": {"読売": "読売ジャイアンツ"}}`)

	_, err := store.Load()
	require.NoError(t, err)

	writeFile(t, store.BasePath(), `{"clubs": {"読売": "読売巨人軍"}}`)

	got, _, err := store.Resolve(CategoryClubs, "読売")
	require.NoError(t, err)
	assert.Equal(t, "読売ジャイアンツ", got, "cached value expected before invalidation")

	store.InvalidateCache()

	got, _, err = store.Resolve(CategoryClubs, "読売")
	require.NoError(t, err)
	assert.Equal(t, "読売巨人軍", got)
}

func TestStoreNormalizerFollowsInvalidation(t *testing.T) {
	store := newTestStore(t)
	writeFile(t, store.BasePath(), `{"stadiums": {}}`)

	n1, err := store.Normalizer()
	require.NoError(t, err)
	n2, err := store.Normalizer()
	require.NoError(t, err)
	assert.Same(t, n1, n2)

	writeFile(t, store.BasePath(), `{"stadiums": {"甲子園": "阪神甲子園球場"}}`)
	store.InvalidateCache()

	n3, err := store.Normalizer()
	require.NoError(t, err)
	got, ok := n3.NormalizeStadium("甲子園")
	assert.True(t, ok)
	assert.Equal(t, "阪神甲子園球場", got)
}

func TestStoreMalformedLayerIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"array", `["a", "b"]`},
		{"scalar", `"aliases"`},
		{"null", `null`},
		{"nested non-string", `{"stadiums": {"甲子園": 1}}`},
		{"category not an object", `{"stadiums": "甲子園"}`},
		{"truncated", `{"stadiums": {"甲子園": "阪神`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			writeFile(t, store.LocalPath(), tt.content)

			_, err := store.Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAliasFile)
			assert.Contains(t, err.Error(), store.LocalPath())

			_, err = store.Normalizer()
			assert.ErrorIs(t, err, ErrInvalidAliasFile)
		})
	}
}
