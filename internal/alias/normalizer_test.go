package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "阪神", "阪神"},
		{"trailing space", "阪神 ", "阪神"},
		{"leading space", " 阪神", "阪神"},
		{"ideographic space", "\u3000阪神\u3000", "阪神"},
		{"internal run", "福岡 \t ソフトバンク", "福岡 ソフトバンク"},
		{"zero width space", "阪\u200B神", "阪神"},
		{"joiners and bom", "\uFEFF阪\u200C\u200D神\u2060", "阪神"},
		{"zero width between spaces", "福岡 \u200B ソフトバンク", "福岡 ソフトバンク"},
		{"newlines", "\n阪神\r\n", "阪神"},
		{"only whitespace", " \u3000\u200B ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestNormalizerWhitespaceEquivalence(t *testing.T) {
	n := NewNormalizer(Map{"teams_first": {"阪神": "阪神タイガース"}})

	for _, raw := range []string{"阪神 ", " 阪神", "阪神"} {
		got, ok := n.NormalizeTeamFirst(raw)
		assert.True(t, ok, "NormalizeTeamFirst(%q) not found", raw)
		assert.Equal(t, "阪神タイガース", got)
	}
}

func TestNormalizerCategories(t *testing.T) {
	n := NewNormalizer(Map{
		"teams_first": {"巨人": "読売ジャイアンツ"},
		"teams_farm":  {"巨人": "読売ジャイアンツ（ファーム）"},
		"stadiums":    {"甲子園": "阪神甲子園球場"},
		"clubs":       {"読売": "読売巨人軍"},
	})

	got, ok := n.NormalizeTeamFirst("巨人")
	assert.True(t, ok)
	assert.Equal(t, "読売ジャイアンツ", got)

	got, ok = n.NormalizeTeamFarm("巨人")
	assert.True(t, ok)
	assert.Equal(t, "読売ジャイアンツ（ファーム）", got)

	got, ok = n.NormalizeStadium("甲子園")
	assert.True(t, ok)
	assert.Equal(t, "阪神甲子園球場", got)

	got, ok = n.NormalizeClub("読売")
	assert.True(t, ok)
	assert.Equal(t, "読売巨人軍", got)

	_, ok = n.NormalizeStadium("巨人")
	assert.False(t, ok, "aliases must not leak across categories")
}

func TestNormalizerToleratesRawStoredKeys(t *testing.T) {
	n := NewNormalizer(Map{
		"stadiums": {
			" マツダ  スタジアム ": "MAZDA Zoom-Zoom スタジアム広島",
		},
	})

	got, ok := n.NormalizeStadium("マツダ スタジアム")
	assert.True(t, ok)
	assert.Equal(t, "MAZDA Zoom-Zoom スタジアム広島", got)
}

func TestNormalizerCanonicalKeyWins(t *testing.T) {
	n := NewNormalizer(Map{
		"clubs": {
			"読売 ": "hand-edited",
			"読売":  "読売巨人軍",
		},
	})

	got, ok := n.NormalizeClub("読売")
	assert.True(t, ok)
	assert.Equal(t, "読売巨人軍", got)
}

func TestNormalizerMisses(t *testing.T) {
	n := NewNormalizer(nil)

	_, ok := n.NormalizeTeamFirst("ﾊﾟ")
	assert.False(t, ok)

	n = NewNormalizer(Map{"teams_first": {"阪神": "阪神タイガース"}})
	_, ok = n.NormalizeTeamFirst("")
	assert.False(t, ok)
	_, ok = n.NormalizeTeamFirst("ﾊﾟ")
	assert.False(t, ok)
}
