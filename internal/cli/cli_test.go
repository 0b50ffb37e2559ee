package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/npb-scrape/internal/config"
	"github.com/pfrederiksen/npb-scrape/internal/pending"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		"APP_ROOT", "APP_ALIAS_BASE_FILE", "APP_ALIAS_LOCAL_FILE", "APP_PENDING_DIR",
		"APP_ALIAS_AUDIT_LOG", "APP_ALIAS_REG_LOG", "APP_API_BASE", "APP_API_TIMEOUT",
		"APP_DICT_CACHE", "APP_DICT_CACHE_TTL", "SCRAPER_USER_AGENT", "APP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--root", root}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestAliasRegisterResolvePromote(t *testing.T) {
	root := newTestRoot(t)

	out, err := run(t, root, "alias", "register", "stadium", "甲子園", "阪神甲子園球場", "--source", "https://example.com/game/1/top")
	require.NoError(t, err)
	assert.Equal(t, "[created] stadiums: 甲子園 => 阪神甲子園球場\n", out)

	out, err = run(t, root, "alias", "register", "stadiums", "甲子園", "阪神甲子園球場")
	require.NoError(t, err)
	assert.Equal(t, "[noop] stadiums: 甲子園 => 阪神甲子園球場\n", out)

	out, err = run(t, root, "alias", "register", "stadiums", "甲子園", "甲子園球場")
	require.NoError(t, err)
	assert.Equal(t, "[conflict] stadiums: 甲子園 => 甲子園球場\n", out)

	out, err = run(t, root, "alias", "resolve", "stadium", " 甲子園 ")
	require.NoError(t, err)
	assert.Equal(t, "阪神甲子園球場\n", out)

	out, err = run(t, root, "alias", "resolve", "clubs", "甲子園")
	require.NoError(t, err)
	assert.Equal(t, "(not found)\n", out)

	out, err = run(t, root, "alias", "promote")
	require.NoError(t, err)
	assert.Contains(t, out, "[created] stadiums: 甲子園 => 阪神甲子園球場")

	base, err := os.ReadFile(filepath.Join(root, "data", "aliases.json"))
	require.NoError(t, err)
	assert.Contains(t, string(base), `"甲子園": "阪神甲子園球場"`)

	local, err := os.ReadFile(filepath.Join(root, "data", "aliases.local.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(local))

	out, err = run(t, root, "alias", "promote")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to promote.\n", out)

	out, err = run(t, root, "alias", "resolve", "stadium", "甲子園")
	require.NoError(t, err)
	assert.Equal(t, "阪神甲子園球場\n", out, "promoted alias still resolves")
}

func TestAliasRegisterJSON(t *testing.T) {
	root := newTestRoot(t)

	out, err := run(t, root, "--format", "json", "alias", "register", "teams_farm", "巨人", "読売ジャイアンツ")
	require.NoError(t, err)

	var got RegisterResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, RegisterResult{Result: "created", Category: "teams_farm", Raw: "巨人", Canonical: "読売ジャイアンツ"}, got)
}

func TestAliasRegisterRejectsUnknownCategory(t *testing.T) {
	root := newTestRoot(t)

	_, err := run(t, root, "alias", "register", "umpires", "白井", "白井一行")
	assert.Error(t, err)
}

func TestRegisterClearsPendingName(t *testing.T) {
	root := newTestRoot(t)

	reg, err := pending.New(filepath.Join(root, "logs", "pending_aliases"))
	require.NoError(t, err)
	require.NoError(t, reg.Record("stadiums", "甲子園", pending.Context{URL: "https://example.com/game/1/top"}))
	require.NoError(t, reg.Record("stadiums", "マツダ", pending.Context{}))

	out, err := run(t, root, "pending", "list", "stadium")
	require.NoError(t, err)
	assert.Contains(t, out, "stadiums (2 pending):")
	assert.Contains(t, out, "甲子園 (x1")

	_, err = run(t, root, "alias", "register", "stadium", "甲子園", "阪神甲子園球場")
	require.NoError(t, err)

	out, err = run(t, root, "pending", "list", "stadiums")
	require.NoError(t, err)
	assert.Contains(t, out, "stadiums (1 pending):")
	assert.NotContains(t, out, "甲子園")

	out, err = run(t, root, "pending", "resolve", "stadium", "マツダ")
	require.NoError(t, err)
	assert.Equal(t, "[resolved] stadiums: マツダ\n", out)

	out, err = run(t, root, "pending", "list")
	require.NoError(t, err)
	assert.Equal(t, "No pending names.\n", out)

	out, err = run(t, root, "--format", "json", "pending", "list", "stadiums", "--all")
	require.NoError(t, err)
	var reports []PendingReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].Names, 2)
}

func TestPendingListRejectsBadSort(t *testing.T) {
	root := newTestRoot(t)

	_, err := run(t, root, "pending", "list", "--sort", "random")
	assert.Error(t, err)
}

func newDictAndPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dict/teams", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"team_id":1,"team_name":"阪神タイガース","league":"Central","level":"First","club_id":10},
			{"team_id":2,"team_name":"読売ジャイアンツ","league":"Central","level":"First","club_id":20},
			{"team_id":51,"team_name":"阪神タイガース","league":"Western","level":"Farm","club_id":10}
		]}`)
	})
	mux.HandleFunc("/api/dict/stadiums", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"stadium_id":100,"stadium_name":"阪神甲子園球場","is_dome":false}]}`)
	})
	mux.HandleFunc("/api/dict/clubs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"club_id":10,"club_name":"阪神"},{"club_id":20,"club_name":"読売"}]}`)
	})
	mux.HandleFunc("/game/1/top", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div id="async-gameCard">9/7（日） <time>18:00</time> 甲子園</div>
			<div class="bb-gameTeam"><p class="bb-gameTeam__name">阪神</p></div>
			<div class="bb-gameTeam"><p class="bb-gameTeam__name">ヤクルト</p></div>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrape(t *testing.T) {
	root := newTestRoot(t)
	server := newDictAndPageServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("APP_API_BASE="+server.URL+"/api\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "aliases.json"),
		[]byte(`{"stadiums": {"甲子園": "阪神甲子園球場"}}`), 0644))

	out, err := run(t, root, "scrape", server.URL+"/game/1/top", "First", "--ndjson")
	require.ErrorIs(t, err, ErrUnresolved)

	var result ScrapeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "9/7（日）", result.Date)
	assert.Equal(t, "18:00", result.Time)
	require.NotNil(t, result.StadiumID)
	assert.Equal(t, 100, *result.StadiumID)
	require.NotNil(t, result.HomeTeamID)
	assert.Equal(t, 1, *result.HomeTeamID)
	assert.Equal(t, "阪神タイガース", result.HomeTeamName)
	assert.Nil(t, result.AwayTeamID)
	assert.Equal(t, map[string]string{"away_team": "ヤクルト"}, result.Unresolved)

	reg, err := pending.New(filepath.Join(root, "logs", "pending_aliases"))
	require.NoError(t, err)
	entries, err := reg.Entries("teams_first")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ヤクルト", entries[0].Raw)
	assert.Equal(t, pending.Context{URL: server.URL + "/game/1/top", Level: "First", PageDate: "9/7（日）"}, entries[0].Context)

	// Once the away team is aliased the page resolves cleanly.
	_, err = run(t, root, "alias", "register", "teams_first", "ヤクルト", "読売ジャイアンツ")
	require.NoError(t, err)

	out, err = run(t, root, "--format", "text", "scrape", server.URL+"/game/1/top", "First")
	require.NoError(t, err)
	assert.Equal(t, "OK\nurl="+server.URL+"/game/1/top\nlevel=First\nhome=1\naway=2\nstadium=100\n", out)

	_, err = os.Stat(filepath.Join(root, "data", "dict_cache.json"))
	assert.NoError(t, err, "dictionary is cached between runs")
}

func TestScrapeArguments(t *testing.T) {
	root := newTestRoot(t)

	_, err := run(t, root, "scrape", "https://example.com/game/1/top", "Major")
	assert.Error(t, err)

	_, err = run(t, root, "scrape", "https://example.com/game/1/top", "Farm")
	assert.ErrorIs(t, err, config.ErrMissingAPIBase)
}
