package state

import "github.com/five82/plakview/internal/plakar"

// Token identifies one request for a resource. Tokens are issued in increasing
// order per resource; zero means "never requested".
type Token uint64

// Event is a state transition input. The set is closed: only the types in this
// file implement it.
type Event interface {
	isEvent()
}

// ConfigRequested records the API URL immediately, before the repository
// configuration has been fetched.
type ConfigRequested struct {
	APIURL string
	Token  Token
}

// ConfigLoaded carries the repository configuration for the request Token.
type ConfigLoaded struct {
	Config *plakar.RepositoryConfig
	Token  Token
}

// ConfigFailed reports a failed configuration fetch.
type ConfigFailed struct {
	Err   error
	Token Token
}

// ConfigRestored rehydrates the configuration from the persisted state file.
// It is applied only while no configuration request has been issued.
type ConfigRestored struct {
	APIURL         string
	RepositoryName string
}

// SnapshotsRequested starts loading one page of the snapshot list.
type SnapshotsRequested struct {
	Page     int
	PageSize int
	Token    Token
}

// SnapshotsLoaded carries the page returned for Token.
type SnapshotsLoaded struct {
	Page  *plakar.SnapshotPage
	Token Token
}

// SnapshotsFailed reports a failed snapshot list fetch.
type SnapshotsFailed struct {
	Err   error
	Token Token
}

// PathRequested starts loading a directory listing or file description.
type PathRequested struct {
	SnapshotID string
	Path       string
	Page       int
	PageSize   int
	Token      Token
}

// PathLoaded carries the path page returned for Token.
type PathLoaded struct {
	Page  *plakar.PathPage
	Token Token
}

// PathFailed reports a failed path fetch.
type PathFailed struct {
	Err   error
	Token Token
}

// SearchRequested starts a repository search.
type SearchRequested struct {
	Query string
	Token Token
}

// SearchLoaded carries the results returned for Token.
type SearchLoaded struct {
	Items []plakar.SearchResult
	Token Token
}

// SearchFailed reports a failed search.
type SearchFailed struct {
	Err   error
	Token Token
}

func (ConfigRequested) isEvent()    {}
func (ConfigLoaded) isEvent()       {}
func (ConfigFailed) isEvent()       {}
func (ConfigRestored) isEvent()     {}
func (SnapshotsRequested) isEvent() {}
func (SnapshotsLoaded) isEvent()    {}
func (SnapshotsFailed) isEvent()    {}
func (PathRequested) isEvent()      {}
func (PathLoaded) isEvent()         {}
func (PathFailed) isEvent()         {}
func (SearchRequested) isEvent()    {}
func (SearchLoaded) isEvent()       {}
func (SearchFailed) isEvent()       {}
