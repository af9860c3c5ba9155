package plakar

import (
	"strings"
	"time"
)

// RepositoryConfig mirrors the payload returned by /api/config.
type RepositoryConfig struct {
	Repository string `json:"repository"`
}

// SnapshotSummary describes a snapshot as listed by /api/snapshots.
type SnapshotSummary struct {
	ID        string   `json:"id"`
	ShortID   string   `json:"shortId"`
	Username  string   `json:"username"`
	Hostname  string   `json:"hostName"`
	Location  string   `json:"location"`
	RootPath  string   `json:"rootPath"`
	Date      string   `json:"date"`
	Size      string   `json:"size"`
	Tags      []string `json:"tags"`
	OS        string   `json:"os"`
	Signature string   `json:"signature"`
}

// ParsedDate returns the snapshot creation date when it can be parsed.
func (s SnapshotSummary) ParsedDate() time.Time {
	return parseTime(s.Date)
}

// DisplayShortID returns ShortID, deriving it from ID when the server omitted it.
func (s SnapshotSummary) DisplayShortID() string {
	if s.ShortID != "" {
		return s.ShortID
	}
	return ShortID(s.ID)
}

// ShortID returns the leading group of a snapshot UUID.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// SnapshotPage mirrors /api/snapshots.
//
// The server reports Page as the request offset; callers that need the page
// number should keep the one they asked for.
type SnapshotPage struct {
	Items           []SnapshotSummary `json:"items"`
	Page            int               `json:"page"`
	PageSize        int               `json:"pageSize"`
	TotalItems      int               `json:"totalItems"`
	TotalPages      int               `json:"totalPages"`
	HasPreviousPage bool              `json:"hasPreviousPage"`
	HasNextPage     bool              `json:"hasNextPage"`
}

// PathEntry is one item of a path listing. Directories only fill the PathEntry
// fields; files additionally carry the FileDetails fields.
type PathEntry struct {
	Name             string `json:"name"`
	Path             string `json:"path"`
	DirectoryPath    string `json:"directoryPath"`
	IsDirectory      bool   `json:"isDirectory"`
	Mode             string `json:"mode"`
	UID              string `json:"uid"`
	GID              string `json:"gid"`
	ModificationTime string `json:"modificationTime"`
	Size             string `json:"size"`

	FileDetails
}

// FileDetails holds the metadata only files carry.
type FileDetails struct {
	MimeType string `json:"mimeType,omitempty"`
	ByteSize uint64 `json:"byteSize,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	RawPath  string `json:"rawPath,omitempty"`
	Device   string `json:"device,omitempty"`
	Inode    string `json:"inode,omitempty"`
}

// IsFile reports whether the entry addresses a single file.
func (e PathEntry) IsFile() bool {
	return !e.IsDirectory
}

// ParsedModificationTime returns the entry mtime when it can be parsed.
func (e PathEntry) ParsedModificationTime() time.Time {
	return parseTime(e.ModificationTime)
}

// PathPage mirrors /api/snapshot/{id}:{path}.
type PathPage struct {
	Snapshot        SnapshotSummary `json:"snapshot"`
	Path            string          `json:"path"`
	Items           []PathEntry     `json:"items"`
	Page            int             `json:"page"`
	PageSize        int             `json:"pageSize"`
	TotalItems      int             `json:"totalItems"`
	TotalPages      int             `json:"totalPages"`
	HasPreviousPage bool            `json:"hasPreviousPage"`
	HasNextPage     bool            `json:"hasNextPage"`
}

// SearchResult is one hit returned by /api/search.
type SearchResult struct {
	Snapshot SnapshotSummary `json:"snapshot"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
	Path     string          `json:"path"`
}

// Search result types.
const (
	ResultFile   = "file"
	ResultFolder = "folder"
)

// IsFolder reports whether the hit addresses a directory.
func (r SearchResult) IsFolder() bool {
	return strings.EqualFold(strings.TrimSpace(r.Type), ResultFolder)
}

// RawContent is the (possibly truncated) body of /api/raw.
type RawContent struct {
	Data        []byte
	ContentType string
	Truncated   bool
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05Z07:00"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
