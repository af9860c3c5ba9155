package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/five82/plakview/internal/logging"
	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/state"
)

// ErrNotConfigured is returned by every dispatcher except Configure while the
// store holds no API URL. No event is dispatched in that case.
var ErrNotConfigured = errors.New("api url not configured")

// ClientFactory builds a resource client for an API base URL.
type ClientFactory func(apiURL string) (plakar.Fetcher, error)

// DefaultClientFactory returns plakar clients built with opts.
func DefaultClientFactory(opts ...plakar.Option) ClientFactory {
	return func(apiURL string) (plakar.Fetcher, error) {
		return plakar.NewClient(apiURL, opts...)
	}
}

type resource int

const (
	resConfig resource = iota
	resSnapshots
	resPath
	resSearch
	resourceCount
)

func (r resource) String() string {
	switch r {
	case resConfig:
		return "config"
	case resSnapshots:
		return "snapshots"
	case resPath:
		return "path"
	case resSearch:
		return "search"
	}
	return "unknown"
}

// Dispatcher runs the fetch-then-transition cycle for each resource. Calls for
// the same resource may overlap; the reducers keep only the latest one.
type Dispatcher struct {
	store     *state.Store
	newClient ClientFactory
	logger    *zap.Logger

	tokens [resourceCount]atomic.Uint64

	mu        sync.Mutex
	clientURL string
	client    plakar.Fetcher
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a Dispatcher writing to store.
func New(store *state.Store, newClient ClientFactory, opts ...Option) *Dispatcher {
	if newClient == nil {
		newClient = DefaultClientFactory()
	}
	d := &Dispatcher{
		store:     store,
		newClient: newClient,
		logger:    logging.L(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("actions")
	return d
}

// Configure sets the API URL immediately, then loads the repository
// configuration from it.
func (d *Dispatcher) Configure(ctx context.Context, apiURL string) error {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return fmt.Errorf("configure: %w", ErrNotConfigured)
	}

	tok := d.issue(resConfig)
	d.store.Dispatch(state.ConfigRequested{APIURL: apiURL, Token: tok})
	d.logger.Debug("request started", zap.Stringer("resource", resConfig), zap.String("api_url", apiURL))

	client, err := d.clientFor(apiURL)
	if err != nil {
		d.complete(resConfig, state.ConfigFailed{Err: err, Token: tok}, err, zap.String("api_url", apiURL))
		return err
	}

	cfg, err := client.FetchConfig(ctx)
	if err != nil {
		d.complete(resConfig, state.ConfigFailed{Err: err, Token: tok}, err, zap.String("api_url", apiURL))
		return err
	}
	d.complete(resConfig, state.ConfigLoaded{Config: cfg, Token: tok}, nil, zap.String("repository", cfg.Repository))
	return nil
}

// FetchSnapshots loads one page of the snapshot list.
func (d *Dispatcher) FetchSnapshots(ctx context.Context, page, pageSize int) error {
	client, err := d.configuredClient()
	if err != nil {
		return err
	}
	page, pageSize = clampPage(page, pageSize)

	tok := d.issue(resSnapshots)
	d.store.Dispatch(state.SnapshotsRequested{Page: page, PageSize: pageSize, Token: tok})
	params := []zap.Field{zap.Int("page", page), zap.Int("page_size", pageSize)}
	d.logger.Debug("request started", append(params, zap.Stringer("resource", resSnapshots))...)

	result, err := client.FetchSnapshots(ctx, page, pageSize)
	if err != nil {
		d.complete(resSnapshots, state.SnapshotsFailed{Err: err, Token: tok}, err, params...)
		return err
	}
	d.complete(resSnapshots, state.SnapshotsLoaded{Page: result, Token: tok}, nil,
		append(params, zap.Int("items", len(result.Items)), zap.Int("total_pages", result.TotalPages))...)
	return nil
}

// FetchPath loads a directory listing or a file description. A path ending in
// "/" addresses a directory; a missing leading "/" is added.
func (d *Dispatcher) FetchPath(ctx context.Context, snapshotID, path string, page, pageSize int) error {
	client, err := d.configuredClient()
	if err != nil {
		return err
	}
	page, pageSize = clampPage(page, pageSize)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	tok := d.issue(resPath)
	d.store.Dispatch(state.PathRequested{SnapshotID: snapshotID, Path: path, Page: page, PageSize: pageSize, Token: tok})
	params := []zap.Field{
		zap.String("snapshot", snapshotID),
		zap.String("path", path),
		zap.Int("page", page),
		zap.Int("page_size", pageSize),
	}
	d.logger.Debug("request started", append(params, zap.Stringer("resource", resPath))...)

	result, err := client.FetchPath(ctx, snapshotID, path, page, pageSize)
	if err != nil {
		d.complete(resPath, state.PathFailed{Err: err, Token: tok}, err, params...)
		return err
	}
	d.complete(resPath, state.PathLoaded{Page: result, Token: tok}, nil,
		append(params, zap.Int("items", len(result.Items)))...)
	return nil
}

// Search runs a repository search.
func (d *Dispatcher) Search(ctx context.Context, query string) error {
	client, err := d.configuredClient()
	if err != nil {
		return err
	}

	tok := d.issue(resSearch)
	d.store.Dispatch(state.SearchRequested{Query: query, Token: tok})
	params := []zap.Field{zap.String("query", query)}
	d.logger.Debug("request started", append(params, zap.Stringer("resource", resSearch))...)

	items, err := client.Search(ctx, query)
	if err != nil {
		d.complete(resSearch, state.SearchFailed{Err: err, Token: tok}, err, params...)
		return err
	}
	d.complete(resSearch, state.SearchLoaded{Items: items, Token: tok}, nil,
		append(params, zap.Int("items", len(items)))...)
	return nil
}

// Raw fetches file content for previews and downloads. It does not touch the
// state tree.
func (d *Dispatcher) Raw(ctx context.Context, rawPath string, limit int64) (*plakar.RawContent, error) {
	client, err := d.configuredClient()
	if err != nil {
		return nil, err
	}
	content, err := client.FetchRaw(ctx, rawPath, limit)
	if err != nil {
		d.logger.Warn("raw fetch failed", zap.String("raw_path", rawPath), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// complete dispatches a Loaded or Failed event and logs the outcome. It
// reports whether the event was applied.
func (d *Dispatcher) complete(r resource, ev state.Event, err error, fields ...zap.Field) bool {
	fields = append(fields, zap.Stringer("resource", r))
	applied := d.store.Dispatch(ev)
	switch {
	case !applied:
		d.logger.Debug("stale response discarded", fields...)
	case err != nil:
		d.logger.Warn("request failed", append(fields, zap.Error(err))...)
	default:
		d.logger.Debug("request succeeded", fields...)
	}
	return applied
}

func (d *Dispatcher) issue(r resource) state.Token {
	return state.Token(d.tokens[r].Add(1))
}

func (d *Dispatcher) configuredClient() (plakar.Fetcher, error) {
	cfg := d.store.State().Config
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	return d.clientFor(cfg.APIURL)
}

// clientFor returns the cached client for apiURL, building a new one when the
// URL changed.
func (d *Dispatcher) clientFor(apiURL string) (plakar.Fetcher, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil && d.clientURL == apiURL {
		return d.client, nil
	}
	client, err := d.newClient(apiURL)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	d.client = client
	d.clientURL = apiURL
	return client, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return page, pageSize
}
