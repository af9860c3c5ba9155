package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/plakview/internal/plakar"
)

type foreignEvent struct{}

func (foreignEvent) isEvent() {}

func sampleSnapshots(n int) []plakar.SnapshotSummary {
	out := make([]plakar.SnapshotSummary, n)
	for i := range out {
		out[i] = plakar.SnapshotSummary{ID: string(rune('a' + i))}
	}
	return out
}

func TestRequestSetsLoadingAndClearsErrorAndItems(t *testing.T) {
	boom := errors.New("boom")
	tree := Tree{
		Config:    Config{Err: boom},
		Snapshots: SnapshotList{Items: sampleSnapshots(2), Err: boom},
		Path:      PathView{Items: []plakar.PathEntry{{Name: "x"}}, Err: boom},
		Search:    SearchResults{Items: []plakar.SearchResult{{Path: "/a"}}, Err: boom},
	}

	tree = Reduce(tree, ConfigRequested{APIURL: "http://x", Token: 1})
	tree = Reduce(tree, SnapshotsRequested{Page: 2, PageSize: 5, Token: 1})
	tree = Reduce(tree, PathRequested{SnapshotID: "id", Path: "/home/", Page: 1, PageSize: 10, Token: 1})
	tree = Reduce(tree, SearchRequested{Query: "report", Token: 1})

	assert.True(t, tree.Config.Loading)
	assert.NoError(t, tree.Config.Err)
	assert.Equal(t, "http://x", tree.Config.APIURL)

	assert.True(t, tree.Snapshots.Loading)
	assert.NoError(t, tree.Snapshots.Err)
	assert.Empty(t, tree.Snapshots.Items)
	assert.Equal(t, 2, tree.Snapshots.Page)
	assert.Equal(t, 5, tree.Snapshots.PageSize)

	assert.True(t, tree.Path.Loading)
	assert.NoError(t, tree.Path.Err)
	assert.Empty(t, tree.Path.Items)
	assert.True(t, tree.Path.IsDirectory())

	assert.True(t, tree.Search.Loading)
	assert.NoError(t, tree.Search.Err)
	assert.Empty(t, tree.Search.Items)
	assert.Equal(t, "report", tree.Search.Query)

	for _, st := range []Status{tree.Config.Status(), tree.Snapshots.Status(), tree.Path.Status(), tree.Search.Status()} {
		assert.Equal(t, StatusLoading, st)
	}
}

func TestSuccessReplacesData(t *testing.T) {
	s := ReduceSnapshots(SnapshotList{}, SnapshotsRequested{Page: 2, PageSize: 5, Token: 3})
	s = ReduceSnapshots(s, SnapshotsLoaded{
		Token: 3,
		Page:  &plakar.SnapshotPage{Items: sampleSnapshots(3), TotalPages: 4, Page: 5, TotalItems: 18},
	})

	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Len(t, s.Items, 3)
	assert.Equal(t, 4, s.TotalPages)
	assert.Equal(t, 18, s.TotalItems)
	assert.Equal(t, 2, s.Page, "requested page number is kept, not the server offset")
	assert.Equal(t, StatusReady, s.Status())
	assert.True(t, s.HasNext())
	assert.True(t, s.HasPrevious())
}

func TestSuccessWithEmptyPageIsReady(t *testing.T) {
	s := ReduceSearch(SearchResults{}, SearchRequested{Query: "nothing", Token: 1})
	s = ReduceSearch(s, SearchLoaded{Token: 1})

	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
	assert.Equal(t, StatusReady, s.Status())
}

func TestFailureSetsErrorAndEmptiesPageItems(t *testing.T) {
	boom := errors.New("network down")

	p := ReducePath(PathView{}, PathRequested{SnapshotID: "id", Path: "/etc/passwd", Token: 1})
	p = ReducePath(p, PathFailed{Err: boom, Token: 1})
	assert.False(t, p.Loading)
	assert.Equal(t, boom, p.Err)
	assert.Empty(t, p.Items)
	assert.Equal(t, StatusFailed, p.Status())

	s := ReduceSearch(SearchResults{}, SearchRequested{Query: "report", Token: 1})
	s = ReduceSearch(s, SearchFailed{Err: boom, Token: 1})
	assert.False(t, s.Loading)
	assert.Equal(t, boom, s.Err)
	assert.Empty(t, s.Items)
}

func TestConfigFailureKeepsLastKnownGood(t *testing.T) {
	c := ReduceConfig(Config{}, ConfigRequested{APIURL: "http://a", Token: 1})
	c = ReduceConfig(c, ConfigLoaded{Config: &plakar.RepositoryConfig{Repository: "poolp"}, Token: 1})
	require.Equal(t, "poolp", c.RepositoryName)
	require.Equal(t, StatusReady, c.Status())

	c = ReduceConfig(c, ConfigRequested{APIURL: "http://a", Token: 2})
	assert.Equal(t, "poolp", c.RepositoryName, "re-requesting the same URL keeps the name")
	c = ReduceConfig(c, ConfigFailed{Err: errors.New("refused"), Token: 2})

	assert.Equal(t, "http://a", c.APIURL)
	assert.Equal(t, "poolp", c.RepositoryName)
	assert.EqualError(t, c.Err, "refused")
	assert.False(t, c.Loading)
}

func TestConfigNewURLDropsRepositoryName(t *testing.T) {
	c := ReduceConfig(Config{}, ConfigRequested{APIURL: "http://a", Token: 1})
	c = ReduceConfig(c, ConfigLoaded{Config: &plakar.RepositoryConfig{Repository: "poolp"}, Token: 1})

	c = ReduceConfig(c, ConfigRequested{APIURL: "http://b", Token: 2})
	assert.Empty(t, c.RepositoryName)
	c = ReduceConfig(c, ConfigFailed{Err: errors.New("refused"), Token: 2})

	assert.Equal(t, "http://b", c.APIURL)
	assert.Empty(t, c.RepositoryName, "a failed URL is never paired with another server's name")
	assert.Equal(t, StatusFailed, c.Status())
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	tree := Tree{}
	tree = Reduce(tree, SnapshotsRequested{Page: 2, PageSize: 10, Token: 1})
	tree = Reduce(tree, SnapshotsRequested{Page: 3, PageSize: 10, Token: 2})

	fresh := &plakar.SnapshotPage{Items: sampleSnapshots(1), TotalPages: 3}
	stale := &plakar.SnapshotPage{Items: sampleSnapshots(2), TotalPages: 9}

	tree = Reduce(tree, SnapshotsLoaded{Page: fresh, Token: 2})
	require.False(t, Accepts(tree, SnapshotsLoaded{Page: stale, Token: 1}))
	tree = Reduce(tree, SnapshotsLoaded{Page: stale, Token: 1})
	tree = Reduce(tree, SnapshotsFailed{Err: errors.New("late"), Token: 1})

	assert.Equal(t, 3, tree.Snapshots.Page)
	assert.Len(t, tree.Snapshots.Items, 1)
	assert.Equal(t, 3, tree.Snapshots.TotalPages)
	assert.NoError(t, tree.Snapshots.Err)
}

func TestOlderRequestDoesNotRewindToken(t *testing.T) {
	p := ReducePath(PathView{}, PathRequested{SnapshotID: "s", Path: "/b/", Token: 5})
	p = ReducePath(p, PathRequested{SnapshotID: "s", Path: "/a/", Token: 4})

	assert.Equal(t, "/b/", p.Path)
	assert.Equal(t, Token(5), p.Token)
}

func TestResourcesAreIndependent(t *testing.T) {
	tree := Tree{}
	tree = Reduce(tree, SearchRequested{Query: "q", Token: 1})
	tree = Reduce(tree, SnapshotsRequested{Page: 1, PageSize: 10, Token: 1})
	tree = Reduce(tree, SearchFailed{Err: errors.New("boom"), Token: 1})

	assert.True(t, tree.Snapshots.Loading)
	assert.NoError(t, tree.Snapshots.Err)
	assert.Error(t, tree.Search.Err)
}

func TestUnknownEventIsIdentity(t *testing.T) {
	tree := Tree{
		Config:    Config{APIURL: "http://x", RepositoryName: "r"},
		Snapshots: SnapshotList{Items: sampleSnapshots(2), Page: 1, PageSize: 10},
	}
	out := Reduce(tree, foreignEvent{})
	assert.Equal(t, tree, out)
	assert.False(t, Accepts(tree, foreignEvent{}))

	// Sub-reducers ignore events for other resources.
	assert.Equal(t, tree.Snapshots, ReduceSnapshots(tree.Snapshots, SearchRequested{Query: "x", Token: 9}))
	assert.Equal(t, tree.Config, ReduceConfig(tree.Config, PathFailed{Token: 0}))
}

func TestConfigRestoredOnlyBeforeAnyRequest(t *testing.T) {
	c := ReduceConfig(Config{}, ConfigRestored{APIURL: "http://saved", RepositoryName: "saved"})
	assert.Equal(t, "http://saved", c.APIURL)
	assert.Equal(t, "saved", c.RepositoryName)
	assert.True(t, c.Configured())

	c = ReduceConfig(Config{}, ConfigRequested{APIURL: "http://live", Token: 1})
	c = ReduceConfig(c, ConfigRestored{APIURL: "http://saved", RepositoryName: "saved"})
	assert.Equal(t, "http://live", c.APIURL)
	assert.Empty(t, c.RepositoryName)
}

func TestPathViewFile(t *testing.T) {
	p := ReducePath(PathView{}, PathRequested{SnapshotID: "s", Path: "/etc/hosts", Token: 1})
	p = ReducePath(p, PathLoaded{Token: 1, Page: &plakar.PathPage{
		Snapshot: plakar.SnapshotSummary{ID: "s"},
		Items:    []plakar.PathEntry{{Name: "hosts", FileDetails: plakar.FileDetails{MimeType: "text/plain"}}},
	}})

	f, ok := p.File()
	require.True(t, ok)
	assert.Equal(t, "hosts", f.Name)
	assert.Equal(t, "s", p.Snapshot.ID)
	assert.False(t, p.IsDirectory())

	p.Path = "/etc/"
	_, ok = p.File()
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "ready", StatusReady.String())
}
