package state

import (
	"strings"

	"github.com/five82/plakview/internal/plakar"
)

// Status summarises a resource's lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusFailed
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusReady:
		return "ready"
	default:
		return "idle"
	}
}

func statusOf(loading bool, err error, populated bool) Status {
	switch {
	case loading:
		return StatusLoading
	case err != nil:
		return StatusFailed
	case populated:
		return StatusReady
	default:
		return StatusIdle
	}
}

// Config is the connection configuration. It is the only resource persisted
// across sessions.
type Config struct {
	APIURL         string
	RepositoryName string
	Loading        bool
	Err            error
	Token          Token
}

// Configured reports whether an API URL is known.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIURL) != ""
}

func (c Config) Status() Status {
	return statusOf(c.Loading, c.Err, c.RepositoryName != "")
}

// SnapshotList is one page of the snapshot list.
type SnapshotList struct {
	Items      []plakar.SnapshotSummary
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	Loading    bool
	Err        error
	Token      Token
}

func (s SnapshotList) Status() Status {
	return statusOf(s.Loading, s.Err, s.Items != nil)
}

// HasNext reports whether a page after the current one exists.
func (s SnapshotList) HasNext() bool {
	return s.Page < s.TotalPages
}

// HasPrevious reports whether a page before the current one exists.
func (s SnapshotList) HasPrevious() bool {
	return s.Page > 1
}

// PathView is a directory listing, or the details of one file, inside a
// snapshot. Its identity is (SnapshotID, Path, Page, PageSize).
type PathView struct {
	SnapshotID string
	Path       string
	Snapshot   plakar.SnapshotSummary
	Items      []plakar.PathEntry
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	Loading    bool
	Err        error
	Token      Token
}

func (p PathView) Status() Status {
	return statusOf(p.Loading, p.Err, p.Items != nil)
}

// IsDirectory reports whether the view addresses a directory.
func (p PathView) IsDirectory() bool {
	return strings.HasSuffix(p.Path, "/")
}

// File returns the described file when the view addresses a single file.
func (p PathView) File() (plakar.PathEntry, bool) {
	if p.IsDirectory() || len(p.Items) == 0 {
		return plakar.PathEntry{}, false
	}
	return p.Items[0], true
}

// HasNext reports whether a page after the current one exists.
func (p PathView) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether a page before the current one exists.
func (p PathView) HasPrevious() bool {
	return p.Page > 1
}

// SearchResults holds the results of the last search.
type SearchResults struct {
	Query   string
	Items   []plakar.SearchResult
	Loading bool
	Err     error
	Token   Token
}

func (s SearchResults) Status() Status {
	return statusOf(s.Loading, s.Err, s.Items != nil)
}

// Tree is the whole application state. Each resource evolves independently.
type Tree struct {
	Config    Config
	Snapshots SnapshotList
	Path      PathView
	Search    SearchResults
}

// clone copies the slices so callers cannot alias the stored tree.
func (t Tree) clone() Tree {
	out := t
	out.Snapshots.Items = cloneSlice(t.Snapshots.Items)
	out.Path.Items = cloneSlice(t.Path.Items)
	out.Search.Items = cloneSlice(t.Search.Items)
	return out
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
