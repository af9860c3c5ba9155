package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/state"
)

// fakeFetcher lets tests control when and how each call completes.
type fakeFetcher struct {
	mu        sync.Mutex
	calls     []string
	config    *plakar.RepositoryConfig
	snapshots func(page, pageSize int) (*plakar.SnapshotPage, error)
	search    error
	raw       *plakar.RawContent
}

func (f *fakeFetcher) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFetcher) FetchConfig(context.Context) (*plakar.RepositoryConfig, error) {
	f.record("config")
	if f.config == nil {
		return nil, errors.New("no config")
	}
	return f.config, nil
}

func (f *fakeFetcher) FetchSnapshots(_ context.Context, page, pageSize int) (*plakar.SnapshotPage, error) {
	f.record("snapshots")
	return f.snapshots(page, pageSize)
}

func (f *fakeFetcher) FetchPath(_ context.Context, id, path string, _, _ int) (*plakar.PathPage, error) {
	f.record("path " + id + ":" + path)
	return &plakar.PathPage{Path: path, Items: []plakar.PathEntry{{Name: "x"}}}, nil
}

func (f *fakeFetcher) Search(context.Context, string) ([]plakar.SearchResult, error) {
	f.record("search")
	if f.search != nil {
		return nil, f.search
	}
	return []plakar.SearchResult{}, nil
}

func (f *fakeFetcher) FetchRaw(context.Context, string, int64) (*plakar.RawContent, error) {
	f.record("raw")
	return f.raw, nil
}

func factoryFor(f plakar.Fetcher) ClientFactory {
	return func(string) (plakar.Fetcher, error) { return f, nil }
}

func TestDispatchersRequireConfiguration(t *testing.T) {
	store := state.NewStore(state.Tree{})
	fake := &fakeFetcher{}
	d := New(store, factoryFor(fake))

	var dispatched int
	store.Subscribe(func(state.Tree, state.Event) { dispatched++ })

	ctx := context.Background()
	assert.ErrorIs(t, d.FetchSnapshots(ctx, 1, 10), ErrNotConfigured)
	assert.ErrorIs(t, d.FetchPath(ctx, "id", "/", 1, 10), ErrNotConfigured)
	assert.ErrorIs(t, d.Search(ctx, "q"), ErrNotConfigured)
	_, err := d.Raw(ctx, "/api/raw/id:/f", 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, d.Configure(ctx, "  "), ErrNotConfigured)

	assert.Zero(t, dispatched)
	assert.Empty(t, fake.calls)
}

func TestConfigureSetsURLBeforeFetching(t *testing.T) {
	store := state.NewStore(state.Tree{})
	var urlDuringFetch string
	fake := &fakeFetcher{config: &plakar.RepositoryConfig{Repository: "poolp"}}
	factory := func(apiURL string) (plakar.Fetcher, error) {
		urlDuringFetch = store.State().Config.APIURL
		assert.True(t, store.State().Config.Loading)
		return fake, nil
	}

	d := New(store, factory)

	require.NoError(t, d.Configure(context.Background(), "http://x"))
	assert.Equal(t, "http://x", urlDuringFetch)

	cfg := store.State().Config
	assert.Equal(t, "http://x", cfg.APIURL)
	assert.Equal(t, "poolp", cfg.RepositoryName)
	assert.False(t, cfg.Loading)
	assert.NoError(t, cfg.Err)
}

func TestConfigureFailureIsRecorded(t *testing.T) {
	store := state.NewStore(state.Tree{})
	d := New(store, factoryFor(&fakeFetcher{}))

	err := d.Configure(context.Background(), "http://x")
	require.Error(t, err)

	cfg := store.State().Config
	assert.Equal(t, "http://x", cfg.APIURL)
	assert.Error(t, cfg.Err)
	assert.False(t, cfg.Loading)
}

func TestConfigureFactoryErrorBecomesFailure(t *testing.T) {
	store := state.NewStore(state.Tree{})
	d := New(store, func(string) (plakar.Fetcher, error) { return nil, errors.New("bad url") })

	err := d.Configure(context.Background(), "::")
	require.Error(t, err)
	assert.Contains(t, store.State().Config.Err.Error(), "bad url")
}

func TestClientIsCachedPerURL(t *testing.T) {
	store := state.NewStore(state.Tree{})
	built := 0
	fake := &fakeFetcher{config: &plakar.RepositoryConfig{Repository: "r"}}
	d := New(store, func(string) (plakar.Fetcher, error) {
		built++
		return fake, nil
	})

	ctx := context.Background()
	require.NoError(t, d.Configure(ctx, "http://a"))
	require.NoError(t, d.Search(ctx, "x"))
	require.NoError(t, d.Configure(ctx, "http://b"))
	assert.Equal(t, 2, built)
}

func TestStaleSnapshotResponseIsDiscarded(t *testing.T) {
	store := state.NewStore(state.Tree{Config: state.Config{APIURL: "http://x"}})

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	fake := &fakeFetcher{snapshots: func(page, _ int) (*plakar.SnapshotPage, error) {
		if page == 2 {
			close(slowStarted)
			<-releaseSlow
			return &plakar.SnapshotPage{Items: make([]plakar.SnapshotSummary, 2), TotalPages: 99}, nil
		}
		return &plakar.SnapshotPage{Items: make([]plakar.SnapshotSummary, 1), TotalPages: 3}, nil
	}}

	core, logs := observer.New(zap.DebugLevel)
	d := New(store, factoryFor(fake), WithLogger(zap.New(core)))

	done := make(chan error)
	go func() { done <- d.FetchSnapshots(context.Background(), 2, 10) }()
	<-slowStarted

	require.NoError(t, d.FetchSnapshots(context.Background(), 3, 10))
	close(releaseSlow)
	require.NoError(t, <-done)

	snaps := store.State().Snapshots
	assert.Equal(t, 3, snaps.Page)
	assert.Equal(t, 3, snaps.TotalPages)
	assert.Len(t, snaps.Items, 1)
	assert.Equal(t, 1, logs.FilterMessage("stale response discarded").Len())
}

func TestSearchFailureLogsWarning(t *testing.T) {
	store := state.NewStore(state.Tree{Config: state.Config{APIURL: "http://x"}})
	core, logs := observer.New(zap.WarnLevel)
	d := New(store, factoryFor(&fakeFetcher{search: errors.New("refused")}), WithLogger(zap.New(core)))

	err := d.Search(context.Background(), "report")
	require.Error(t, err)

	s := store.State().Search
	assert.False(t, s.Loading)
	assert.Error(t, s.Err)
	assert.Empty(t, s.Items)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestFetchPathNormalisesLeadingSlash(t *testing.T) {
	store := state.NewStore(state.Tree{Config: state.Config{APIURL: "http://x"}})
	fake := &fakeFetcher{}
	d := New(store, factoryFor(fake))

	require.NoError(t, d.FetchPath(context.Background(), "id", "home/", 0, 0))

	p := store.State().Path
	assert.Equal(t, "/home/", p.Path)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageSize)
	assert.Equal(t, []string{"path id:/home/"}, fake.calls)
}

func TestRawDoesNotTouchState(t *testing.T) {
	store := state.NewStore(state.Tree{Config: state.Config{APIURL: "http://x"}})
	fake := &fakeFetcher{raw: &plakar.RawContent{Data: []byte("hi")}}
	d := New(store, factoryFor(fake))

	before := store.State()
	content, err := d.Raw(context.Background(), "/api/raw/id:/f", 10)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(content.Data))
	assert.Equal(t, before, store.State())
}

func TestEndToEnd_SnapshotPageOverHTTP(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/config":
			_ = json.NewEncoder(w).Encode(map[string]string{"repository": "demo"})
		case "/api/snapshots":
			gotQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items":      []map[string]any{{"id": "a"}, {"id": "b"}, {"id": "c"}},
				"totalPages": 4,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	store := state.NewStore(state.Tree{})
	d := New(store, DefaultClientFactory())
	ctx := context.Background()

	require.NoError(t, d.Configure(ctx, server.URL))
	require.NoError(t, d.FetchSnapshots(ctx, 2, 5))

	assert.Equal(t, "offset=5&limit=5", gotQuery)
	snaps := store.State().Snapshots
	assert.False(t, snaps.Loading)
	assert.NoError(t, snaps.Err)
	assert.Len(t, snaps.Items, 3)
	assert.Equal(t, 4, snaps.TotalPages)
}

func TestEndToEnd_SearchRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	store := state.NewStore(state.Tree{Config: state.Config{APIURL: server.URL}})
	d := New(store, DefaultClientFactory())

	err := d.Search(context.Background(), "report")
	require.Error(t, err)
	assert.True(t, plakar.IsNetworkError(err))

	s := store.State().Search
	assert.False(t, s.Loading)
	assert.Error(t, s.Err)
	assert.Empty(t, s.Items)
}
