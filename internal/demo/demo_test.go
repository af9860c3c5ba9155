package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/preview"
)

func newTestClient(t *testing.T, repo *Repository) *plakar.Client {
	t.Helper()
	server := httptest.NewServer(repo.Handler())
	t.Cleanup(server.Close)
	client, err := plakar.NewClient(server.URL)
	require.NoError(t, err)
	return client
}

func TestNew_IsDeterministic(t *testing.T) {
	a := New("demo", 5, 7)
	b := New("demo", 5, 7)
	c := New("demo", 5, 8)

	assert.Equal(t, a.Snapshots(), b.Snapshots())
	assert.NotEqual(t, a.Snapshots()[0].ID, c.Snapshots()[0].ID)

	snaps := a.Snapshots()
	require.Len(t, snaps, 5)
	for i := 1; i < len(snaps); i++ {
		assert.Greater(t, snaps[i-1].Date, snaps[i].Date, "snapshots are newest first")
	}
	assert.Equal(t, strings.SplitN(snaps[0].ID, "-", 2)[0], snaps[0].ShortID)
}

func TestHandler_ConfigAndSnapshotPages(t *testing.T) {
	repo := New("poolp", 23, 1)
	client := newTestClient(t, repo)
	ctx := context.Background()

	cfg, err := client.FetchConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "poolp", cfg.Repository)

	page, err := client.FetchSnapshots(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 23, page.TotalItems)
	assert.Equal(t, 20, page.Page, "page is reported as the offset")
	assert.True(t, page.HasPreviousPage)
	assert.False(t, page.HasNextPage)
	assert.Equal(t, repo.Snapshots()[20].ID, page.Items[0].ID)
}

func TestHandler_DirectoryAndFile(t *testing.T) {
	repo := New("demo", 1, 1)
	client := newTestClient(t, repo)
	ctx := context.Background()
	snap := repo.Snapshots()[0]
	home := snap.RootPath + "/"

	dir, err := client.FetchPath(ctx, snap.ID, home, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, dir.Snapshot.ID)
	names := make([]string, 0, len(dir.Items))
	for _, it := range dir.Items {
		names = append(names, it.Name)
	}
	assert.Contains(t, names, "Documents")
	assert.Contains(t, names, "logs")

	file, err := client.FetchPath(ctx, snap.ID, home+"Documents/notes.md", 1, 10)
	require.NoError(t, err)
	require.Len(t, file.Items, 1)
	notes := file.Items[0]
	assert.True(t, notes.IsFile())
	assert.Equal(t, "text/markdown", notes.MimeType)
	assert.Equal(t, preview.Text, preview.Classify(notes.MimeType))
	assert.Len(t, notes.Checksum, 64)
	assert.Equal(t, "/api/raw/"+snap.ID+":"+home+"Documents/notes.md", notes.RawPath)

	raw, err := client.FetchRaw(ctx, notes.RawPath, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw.Data), "# Notes"))
	assert.Equal(t, "text/markdown", raw.ContentType)
	assert.EqualValues(t, len(raw.Data), notes.ByteSize)
}

func TestHandler_LogsDirectoryPaginates(t *testing.T) {
	repo := New("demo", 1, 3)
	client := newTestClient(t, repo)
	snap := repo.Snapshots()[0]

	first, err := client.FetchPath(context.Background(), snap.ID, snap.RootPath+"/logs/", 1, 5)
	require.NoError(t, err)
	require.Greater(t, first.TotalPages, 2)
	assert.Len(t, first.Items, 5)
	assert.True(t, first.HasNextPage)

	second, err := client.FetchPath(context.Background(), snap.ID, snap.RootPath+"/logs/", 2, 5)
	require.NoError(t, err)
	assert.NotEqual(t, first.Items[0].Name, second.Items[0].Name)
}

func TestHandler_Errors(t *testing.T) {
	repo := New("demo", 1, 1)
	client := newTestClient(t, repo)
	ctx := context.Background()
	snap := repo.Snapshots()[0]

	_, err := client.FetchPath(ctx, "00000000-0000-0000-0000-000000000000", "/", 1, 10)
	assert.Equal(t, http.StatusNotFound, plakar.StatusCode(err))

	_, err = client.FetchPath(ctx, snap.ID, "/no/such/", 1, 10)
	assert.Equal(t, http.StatusNotFound, plakar.StatusCode(err))

	_, err = client.FetchRaw(ctx, "/api/raw/"+snap.ID+":/home/", 0)
	assert.Equal(t, http.StatusNotFound, plakar.StatusCode(err))

	server := httptest.NewServer(repo.Handler())
	defer server.Close()
	resp, err := http.Get(server.URL + "/api/snapshots?offset=-1")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Search(t *testing.T) {
	repo := New("demo", 3, 1)
	client := newTestClient(t, repo)
	ctx := context.Background()

	results, err := client.Search(ctx, "REPORT")
	require.NoError(t, err)
	require.Len(t, results, 3, "one report.txt per snapshot")
	for _, r := range results {
		assert.Equal(t, plakar.ResultFile, r.Type)
		assert.True(t, strings.HasSuffix(r.Path, "/Documents/report.txt"))
		assert.NotEmpty(t, r.Snapshot.ID)
	}

	folders, err := client.Search(ctx, "pictures")
	require.NoError(t, err)
	require.NotEmpty(t, folders)
	assert.True(t, folders[0].IsFolder())
	assert.True(t, strings.HasSuffix(folders[0].Path, "/"))

	none, err := client.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServe_StopsOnCancel(t *testing.T) {
	repo := New("demo", 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- repo.Serve(ctx, "127.0.0.1:0", ready) }()

	addr := <-ready
	client, err := plakar.NewClient(addr)
	require.NoError(t, err)
	cfg, err := client.FetchConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Repository)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHandler_ReservedCharactersInFileNames(t *testing.T) {
	repo := New("demo", 1, 1)
	client := newTestClient(t, repo)
	ctx := context.Background()
	snap := repo.Snapshots()[0]
	docs := snap.RootPath + "/Documents/"

	for _, name := range []string{"notes#1.txt", "what?.txt", "100%.txt"} {
		file, err := client.FetchPath(ctx, snap.ID, docs+name, 1, 10)
		require.NoError(t, err, name)
		require.Len(t, file.Items, 1, name)
		assert.Equal(t, name, file.Items[0].Name)
		assert.Equal(t, "/api/raw/"+snap.ID+":"+docs+name, file.Items[0].RawPath)

		raw, err := client.FetchRaw(ctx, file.Items[0].RawPath, 0)
		require.NoError(t, err, name)
		assert.Equal(t, "contents of "+name+"\n", string(raw.Data))
	}
}
