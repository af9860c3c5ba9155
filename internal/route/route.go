package route

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	snapshotPrefix = "/snapshot/"
	searchPath     = "/search"
	configPath     = "/config"
)

var (
	// ErrUnknownRoute is returned by Parse for locations no view handles.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrInvalidSnapshotID is returned for empty or malformed snapshot ids.
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// Kind selects the view a route addresses.
type Kind int

const (
	SnapshotList Kind = iota
	Snapshot
	Search
	Config
)

func (k Kind) String() string {
	switch k {
	case SnapshotList:
		return "snapshots"
	case Snapshot:
		return "snapshot"
	case Search:
		return "search"
	case Config:
		return "config"
	}
	return "unknown"
}

// Route is a decoded location. Only the fields relevant to Kind are set.
type Route struct {
	Kind       Kind
	Page       int
	PageSize   int
	SnapshotID string
	Path       string
	Query      string
	APIURL     string
}

// IsDirectory reports whether a Snapshot route addresses a directory.
func (r Route) IsDirectory() bool {
	return r.Kind == Snapshot && strings.HasSuffix(r.Path, "/")
}

// URL encodes the route back into a location.
func (r Route) URL() string {
	switch r.Kind {
	case Snapshot:
		return SnapshotURL(r.SnapshotID, r.Path, r.Page, r.PageSize)
	case Search:
		return SearchURL(r.Query)
	case Config:
		if r.APIURL != "" {
			return configPath + "?" + url.Values{"api_url": {r.APIURL}}.Encode()
		}
		return ConfigURL()
	default:
		return SnapshotListPageURL(r.Page, r.PageSize)
	}
}

// SnapshotListPageURL returns the snapshot list location. Default page and
// page size are left out.
func SnapshotListPageURL(page, pageSize int) string {
	u := url.URL{Path: "/", RawQuery: pageQuery(page, pageSize)}
	return u.String()
}

// SnapshotURL returns the location of path inside a snapshot. A path ending
// in "/" addresses a directory; a missing leading "/" is added.
func SnapshotURL(snapshotID, path string, page, pageSize int) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{
		Path:     snapshotPrefix + canonicalID(snapshotID) + ":" + path,
		RawQuery: pageQuery(page, pageSize),
	}
	return u.String()
}

// SearchURL returns the search location for q.
func SearchURL(q string) string {
	return searchPath + "?" + url.Values{"q": {q}}.Encode()
}

// ConfigURL returns the configuration location.
func ConfigURL() string {
	return configPath
}

// Parse decodes a location. Missing or invalid page parameters fall back to
// the defaults.
func Parse(location string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return Route{}, fmt.Errorf("parse location %q: %w", location, err)
	}
	q := u.Query()
	page := intParam(q, "page", DefaultPage)
	pageSize := intParam(q, "pageSize", DefaultPageSize)

	p := u.Path
	switch {
	case p == "" || p == "/" || p == "/snapshots" || p == "/snapshot" || p == "/snapshot/":
		return Route{Kind: SnapshotList, Page: page, PageSize: pageSize}, nil
	case p == searchPath:
		return Route{Kind: Search, Query: q.Get("q")}, nil
	case p == configPath:
		return Route{Kind: Config, APIURL: q.Get("api_url")}, nil
	case strings.HasPrefix(p, snapshotPrefix):
		id, path := splitTarget(strings.TrimPrefix(p, snapshotPrefix))
		if id == "" || strings.Contains(id, "/") {
			return Route{}, fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
		}
		return Route{
			Kind:       Snapshot,
			SnapshotID: canonicalID(id),
			Path:       path,
			Page:       page,
			PageSize:   pageSize,
		}, nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, p)
}

// ParseTarget decodes the "{snapshotId}:{path}" form used on the command line.
func ParseTarget(target string) (snapshotID, path string, err error) {
	id, path := splitTarget(strings.TrimSpace(target))
	if id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return canonicalID(id), path, nil
}

// splitTarget separates the snapshot id from the path. A bare id, or one
// followed by a lone ":", addresses the root directory.
func splitTarget(target string) (string, string) {
	id, path, _ := strings.Cut(target, ":")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return id, path
}

// canonicalID lower-cases UUIDs; other ids are kept as given.
func canonicalID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

func pageQuery(page, pageSize int) string {
	values := url.Values{}
	if page != DefaultPage && page >= 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if pageSize != DefaultPageSize && pageSize >= 1 {
		values.Set("pageSize", strconv.Itoa(pageSize))
	}
	return values.Encode()
}

func intParam(q url.Values, key string, def int) int {
	raw := q.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
