package state

import "github.com/five82/plakview/internal/plakar"

// Reduce applies ev to the resource it belongs to. Events for other resources
// and unknown events leave the tree unchanged.
func Reduce(t Tree, ev Event) Tree {
	switch ev.(type) {
	case ConfigRequested, ConfigLoaded, ConfigFailed, ConfigRestored:
		t.Config = ReduceConfig(t.Config, ev)
	case SnapshotsRequested, SnapshotsLoaded, SnapshotsFailed:
		t.Snapshots = ReduceSnapshots(t.Snapshots, ev)
	case PathRequested, PathLoaded, PathFailed:
		t.Path = ReducePath(t.Path, ev)
	case SearchRequested, SearchLoaded, SearchFailed:
		t.Search = ReduceSearch(t.Search, ev)
	}
	return t
}

// Accepts reports whether ev would be applied to t. Requests older than the
// latest issued one and completions for any token other than the latest are
// rejected.
func Accepts(t Tree, ev Event) bool {
	switch e := ev.(type) {
	case ConfigRequested:
		return e.Token >= t.Config.Token
	case ConfigLoaded:
		return e.Token == t.Config.Token
	case ConfigFailed:
		return e.Token == t.Config.Token
	case ConfigRestored:
		return t.Config.Token == 0 && !t.Config.Configured()
	case SnapshotsRequested:
		return e.Token >= t.Snapshots.Token
	case SnapshotsLoaded:
		return e.Token == t.Snapshots.Token
	case SnapshotsFailed:
		return e.Token == t.Snapshots.Token
	case PathRequested:
		return e.Token >= t.Path.Token
	case PathLoaded:
		return e.Token == t.Path.Token
	case PathFailed:
		return e.Token == t.Path.Token
	case SearchRequested:
		return e.Token >= t.Search.Token
	case SearchLoaded:
		return e.Token == t.Search.Token
	case SearchFailed:
		return e.Token == t.Search.Token
	}
	return false
}

// ReduceConfig transitions the configuration resource.
func ReduceConfig(c Config, ev Event) Config {
	switch e := ev.(type) {
	case ConfigRequested:
		if e.Token < c.Token {
			return c
		}
		if e.APIURL != c.APIURL {
			c.RepositoryName = ""
		}
		c.APIURL = e.APIURL
		c.Token = e.Token
		c.Err = nil
		c.Loading = true
	case ConfigLoaded:
		if e.Token != c.Token {
			return c
		}
		c.Loading = false
		c.Err = nil
		if e.Config != nil {
			c.RepositoryName = e.Config.Repository
		}
	case ConfigFailed:
		if e.Token != c.Token {
			return c
		}
		c.Loading = false
		c.Err = e.Err
	case ConfigRestored:
		if c.Token != 0 || c.Configured() {
			return c
		}
		c.APIURL = e.APIURL
		c.RepositoryName = e.RepositoryName
	}
	return c
}

// ReduceSnapshots transitions the snapshot list. The page number kept is the
// requested one; the server's page field is an offset.
func ReduceSnapshots(s SnapshotList, ev Event) SnapshotList {
	switch e := ev.(type) {
	case SnapshotsRequested:
		if e.Token < s.Token {
			return s
		}
		s = SnapshotList{
			Page:     e.Page,
			PageSize: e.PageSize,
			Loading:  true,
			Token:    e.Token,
		}
	case SnapshotsLoaded:
		if e.Token != s.Token {
			return s
		}
		s.Loading = false
		s.Err = nil
		s.Items = []plakar.SnapshotSummary{}
		s.TotalPages, s.TotalItems = 0, 0
		if e.Page != nil {
			s.Items = nonNil(e.Page.Items)
			s.TotalPages = e.Page.TotalPages
			s.TotalItems = e.Page.TotalItems
		}
	case SnapshotsFailed:
		if e.Token != s.Token {
			return s
		}
		s.Loading = false
		s.Err = e.Err
		s.Items = nil
	}
	return s
}

// ReducePath transitions the path view.
func ReducePath(p PathView, ev Event) PathView {
	switch e := ev.(type) {
	case PathRequested:
		if e.Token < p.Token {
			return p
		}
		p = PathView{
			SnapshotID: e.SnapshotID,
			Path:       e.Path,
			Page:       e.Page,
			PageSize:   e.PageSize,
			Loading:    true,
			Token:      e.Token,
		}
	case PathLoaded:
		if e.Token != p.Token {
			return p
		}
		p.Loading = false
		p.Err = nil
		p.Items = []plakar.PathEntry{}
		p.TotalPages, p.TotalItems = 0, 0
		if e.Page != nil {
			p.Snapshot = e.Page.Snapshot
			p.Items = nonNil(e.Page.Items)
			p.TotalPages = e.Page.TotalPages
			p.TotalItems = e.Page.TotalItems
		}
	case PathFailed:
		if e.Token != p.Token {
			return p
		}
		p.Loading = false
		p.Err = e.Err
		p.Items = nil
	}
	return p
}

// ReduceSearch transitions the search results.
func ReduceSearch(s SearchResults, ev Event) SearchResults {
	switch e := ev.(type) {
	case SearchRequested:
		if e.Token < s.Token {
			return s
		}
		s = SearchResults{
			Query:   e.Query,
			Loading: true,
			Token:   e.Token,
		}
	case SearchLoaded:
		if e.Token != s.Token {
			return s
		}
		s.Loading = false
		s.Err = nil
		s.Items = nonNil(e.Items)
	case SearchFailed:
		if e.Token != s.Token {
			return s
		}
		s.Loading = false
		s.Err = e.Err
		s.Items = nil
	}
	return s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
