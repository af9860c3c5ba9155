package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/five82/plakview/internal/actions"
	"github.com/five82/plakview/internal/demo"
	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/prefs"
)

type env struct {
	repo       *demo.Repository
	url        string
	configFile string
	stateFile  string
	logFile    string
}

// newEnv starts a demo backend and points the config file at a private
// state file.
func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{"PLAKVIEW_API_URL", "PLAKVIEW_PAGE_SIZE", "PLAKVIEW_LOG_LEVEL", "PLAKVIEW_THEME"} {
		t.Setenv(name, "")
	}

	repo := demo.New("poolp", 23, 1)
	server := httptest.NewServer(repo.Handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	e := &env{
		repo:       repo,
		url:        server.URL,
		configFile: filepath.Join(dir, "config.toml"),
		stateFile:  filepath.Join(dir, "state.toml"),
	}
	e.logFile = filepath.Join(dir, "plakview.log")
	body := "state_file = \"" + e.stateFile + "\"\nlog_file = \"" + e.logFile + "\"\n"
	require.NoError(t, os.WriteFile(e.configFile, []byte(body), 0o644))
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_Structure(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "plakview [route]", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"snapshots", "ls", "cat", "search", "config", "demo", "logs", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "api-url", "page-size", "log-level", "theme"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "/", "/search")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	e := newEnv(t)
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "plakview 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestSnapshotsCmd_NotConfigured(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "snapshots")
	require.ErrorIs(t, err, actions.ErrNotConfigured)
}

func TestSnapshotsCmd_Table(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--api-url", e.url, "snapshots")
	require.NoError(t, err)

	first := e.repo.Snapshots()[0]
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, first.DisplayShortID())
	assert.Contains(t, out, first.Username+"@"+first.Hostname)
	assert.Contains(t, out, "page 1/3 (23 snapshots)")
}

func TestSnapshotsCmd_JSONSecondPage(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--api-url", e.url, "--page-size", "20", "snapshots", "--page", "2", "-o", "json")
	require.NoError(t, err)

	var got snapshotsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 20, got.PageSize)
	assert.Equal(t, 23, got.TotalItems)
	require.Len(t, got.Items, 3)
	assert.Equal(t, e.repo.Snapshots()[20].ID, got.Items[0].ID)
}

func TestSnapshotsCmd_APIURLFromEnvironment(t *testing.T) {
	e := newEnv(t)
	t.Setenv("PLAKVIEW_API_URL", e.url)

	out, err := e.run(t, "snapshots", "-o", "yaml")
	require.NoError(t, err)

	var got snapshotsOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Items, 10)
}

func TestSnapshotsCmd_BadFormat(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "--api-url", e.url, "snapshots", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestLsCmd_Directory(t *testing.T) {
	e := newEnv(t)
	id := e.repo.Snapshots()[0].ID

	out, err := e.run(t, "--api-url", e.url, "ls", id+":/")
	require.NoError(t, err)
	assert.Contains(t, out, "etc/")
	assert.Contains(t, out, "home/")
	assert.Contains(t, out, "page 1/1 (2 entries)")
}

func TestLsCmd_File(t *testing.T) {
	e := newEnv(t)
	snap := e.repo.Snapshots()[0]

	out, err := e.run(t, "--api-url", e.url, "ls", snap.ID+":/home/"+snap.Username+"/Documents/report.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:")
	assert.Contains(t, out, "report.txt")
	assert.Contains(t, out, "text/plain")
}

func TestLsCmd_JSON(t *testing.T) {
	e := newEnv(t)
	snap := e.repo.Snapshots()[0]

	out, err := e.run(t, "--api-url", e.url, "ls", "-o", "json", strings.ToUpper(snap.ID)+":/home/")
	require.NoError(t, err)

	var got pathOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, snap.ID, got.Snapshot, "ids are canonicalised")
	require.Len(t, got.Items, 1)
	assert.Equal(t, snap.Username, got.Items[0].Name)
	assert.True(t, got.Items[0].IsDirectory)
}

func TestLsCmd_Tree(t *testing.T) {
	e := newEnv(t)
	snap := e.repo.Snapshots()[0]

	out, err := e.run(t, "--api-url", e.url, "ls", "--tree", "--depth", "3", snap.ID+":/home")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, plakar.ShortID(snap.ID)+":/home/"))
	assert.Contains(t, out, snap.Username+"/")
	assert.Contains(t, out, "Documents/")
	assert.Contains(t, out, "report.txt")
	assert.NotContains(t, out, "etc/")
}

func TestLsCmd_InvalidTarget(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "--api-url", e.url, "ls", ":/home/")
	require.Error(t, err)
}

func TestCatCmd(t *testing.T) {
	e := newEnv(t)
	snap := e.repo.Snapshots()[0]
	target := snap.ID + ":/home/" + snap.Username + "/Documents/report.txt"

	out, err := e.run(t, "--api-url", e.url, "cat", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Quarterly report for "+snap.Username)

	raw, err := e.run(t, "--api-url", e.url, "cat", "--raw", target)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimRight(out, "\n"), strings.TrimRight(raw, "\n"))
}

func TestCatCmd_RejectsDirectory(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "--api-url", e.url, "cat", e.repo.Snapshots()[0].ID+":/home/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestSearchCmd(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "--api-url", e.url, "search", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "report.txt")
	assert.Contains(t, out, "results")

	out, err = e.run(t, "--api-url", e.url, "search", "-o", "json", "no-such-name")
	require.NoError(t, err)
	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "no-such-name", got.Query)
	assert.Empty(t, got.Items)
}

func TestConfigSetAndShow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "config", "set", e.url)
	require.NoError(t, err)
	assert.Contains(t, out, "Connected to poolp")

	p, err := prefs.Load(e.stateFile)
	require.NoError(t, err)
	assert.Equal(t, e.url, p.Connection.APIURL)
	assert.Equal(t, "poolp", p.Connection.RepositoryName)

	out, err = e.run(t, "config", "show", "-o", "json")
	require.NoError(t, err)
	var shown configOutput
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, e.url, shown.APIURL)
	assert.Equal(t, "poolp", shown.Repository)
	assert.Equal(t, e.configFile, shown.ConfigFile)
	assert.Equal(t, e.stateFile, shown.StateFile)

	// The saved connection now serves the other commands.
	_, err = e.run(t, "snapshots")
	require.NoError(t, err)
}

func TestConfigSet_Unreachable(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "config", "set", "http://127.0.0.1:1")
	require.Error(t, err)

	p, err := prefs.Load(e.stateFile)
	require.NoError(t, err)
	assert.Empty(t, p.Connection.APIURL)
}

func TestLogsCmd(t *testing.T) {
	e := newEnv(t)
	lines := []string{
		`{"level":"debug","ts":"2026-03-01T10:20:30.000Z","msg":"request started"}`,
		`{"level":"warn","ts":"2026-03-01T10:20:31.000Z","logger":"actions","msg":"fetch failed","resource":"snapshots"}`,
		`not json`,
	}
	require.NoError(t, os.WriteFile(e.logFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	out, err := e.run(t, "logs", "--level", "warn")
	require.NoError(t, err)
	assert.NotContains(t, out, "request started")
	assert.Contains(t, out, "actions: fetch failed resource=snapshots")
	assert.Contains(t, out, "not json")

	out, err = e.run(t, "logs", "-n", "1", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "not json\n", out)
}

func TestLogsCmd_Empty(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "is empty")
}
