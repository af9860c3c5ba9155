package plakar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher defines the read-only repository API used by the dispatchers.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchConfig(ctx context.Context) (*RepositoryConfig, error)
	FetchSnapshots(ctx context.Context, page, pageSize int) (*SnapshotPage, error)
	FetchPath(ctx context.Context, snapshotID, path string, page, pageSize int) (*PathPage, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
	FetchRaw(ctx context.Context, rawPath string, limit int64) (*RawContent, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the repository HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	raw       singleflight.Group
}

const (
	defaultUserAgent = "plakview/0.1"
	defaultTimeout   = 30 * time.Second
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the given API base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API base URL.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchConfig retrieves the repository configuration.
func (c *Client) FetchConfig(ctx context.Context) (*RepositoryConfig, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload RepositoryConfig
	if err := c.get(ctx, "fetch-config", &url.URL{Path: "/api/config"}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSnapshots retrieves one page of the snapshot list.
func (c *Client) FetchSnapshots(ctx context.Context, page, pageSize int) (*SnapshotPage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/snapshots", RawQuery: pageQuery(page, pageSize)}
	var payload SnapshotPage
	if err := c.get(ctx, "fetch-snapshots", rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchPath lists a directory, or describes a single file, inside a snapshot.
// A trailing slash on path addresses a directory.
func (c *Client) FetchPath(ctx context.Context, snapshotID, path string, page, pageSize int) (*PathPage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(snapshotID) == "" {
		return nil, fmt.Errorf("snapshot id required")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rel := &url.URL{
		Path:     "/api/snapshot/" + snapshotID + ":" + path,
		RawQuery: pageQuery(page, pageSize),
	}
	var payload PathPage
	if err := c.get(ctx, "fetch-path", rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Search runs a free-text query across the repository.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", query)
	rel := &url.URL{Path: "/api/search", RawQuery: values.Encode()}
	var payload []SearchResult
	if err := c.get(ctx, "search", rel, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []SearchResult{}
	}
	return payload, nil
}

// FetchRaw downloads at most limit bytes of a file's content. rawPath is the
// value of FileDetails.RawPath: either an absolute URL or an unescaped API
// path such as "/api/raw/{id}:/home/notes#1.txt". A non-positive limit reads
// the whole body.
//
// Concurrent calls for the same rawPath and limit share one request. The
// shared request is not cancelled with any single caller's context; each
// caller stops waiting when its own context is done.
func (c *Client) FetchRaw(ctx context.Context, rawPath string, limit int64) (*RawContent, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel, err := rawURL(rawPath)
	if err != nil {
		return nil, err
	}
	key := rel.String() + "#" + strconv.FormatInt(limit, 10)
	shared := context.WithoutCancel(ctx)
	ch := c.raw.DoChan(key, func() (any, error) {
		return c.fetchRaw(shared, rel, limit)
	})
	select {
	case <-ctx.Done():
		return nil, &NetworkError{Op: "fetch-raw", URL: c.baseURL.ResolveReference(rel).String(), Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RawContent), nil
	}
}

// rawURL turns a raw path into a URL reference. Only values with a scheme are
// parsed; anything else is a literal path, so '#', '?' and '%' in file names
// stay part of the path.
func rawURL(rawPath string) (*url.URL, error) {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return nil, fmt.Errorf("invalid raw path %q", rawPath)
	}
	lower := strings.ToLower(rawPath)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(rawPath)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid raw path %q", rawPath)
		}
		return u, nil
	}
	return &url.URL{Path: rawPath}, nil
}

func (c *Client) fetchRaw(ctx context.Context, rel *url.URL, limit int64) (*RawContent, error) {
	resp, reqURL, err := c.send(ctx, "fetch-raw", rel, "*/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{Op: "fetch-raw", URL: reqURL, Err: fmt.Errorf("read body: %w", err)}
	}
	out := &RawContent{ContentType: resp.Header.Get("Content-Type")}
	if limit > 0 && int64(len(data)) > limit {
		data = data[:limit]
		out.Truncated = true
	}
	out.Data = data
	return out, nil
}

func (c *Client) get(ctx context.Context, op string, rel *url.URL, dest any) error {
	resp, reqURL, err := c.send(ctx, op, rel, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &NetworkError{Op: op, URL: reqURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send issues exactly one GET request. Non-2xx responses are closed and
// returned as a NetworkError.
func (c *Client) send(ctx context.Context, op string, rel *url.URL, accept string) (*http.Response, string, error) {
	reqURL := c.baseURL.ResolveReference(rel).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, reqURL, &NetworkError{Op: op, URL: reqURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, reqURL, &NetworkError{Op: op, URL: reqURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, reqURL, &NetworkError{
			Op:         op,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(detail))),
		}
	}
	return resp, reqURL, nil
}

// Offset converts a 1-based page number into the API's offset parameter.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return (page - 1) * pageSize
}

// pageQuery keeps offset before limit, the order the API documents.
func pageQuery(page, pageSize int) string {
	if pageSize < 1 {
		pageSize = 1
	}
	return "offset=" + strconv.Itoa(Offset(page, pageSize)) + "&limit=" + strconv.Itoa(pageSize)
}

// ParseBaseURL normalises an API address: a scheme is added when missing and
// any path, query or fragment is dropped.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
