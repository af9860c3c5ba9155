// Package route treats locations as a serialisation of view parameters.
//
// # Overview
//
// Every screen of plakview has an address, in the manner of a web client's
// address bar. The UI shows the current location, ":" accepts a new one, and
// the back stack is a list of locations. A location always decodes to the
// same view parameters, and encoding those parameters gives the location
// back.
//
// # URL Grammar
//
//	location  = list | snapshot | search | config
//	list      = "/" [ "?" paging ]
//	snapshot  = "/snapshot/" id [ ":" path ] [ "?" paging ]
//	search    = "/search" "?q=" query
//	config    = "/config" [ "?api_url=" url ]
//	paging    = "page=" n [ "&pageSize=" n ] | "pageSize=" n
//
// Aliases accepted by Parse for the snapshot list: "", "/snapshots",
// "/snapshot" and "/snapshot/".
//
// Snapshot paths:
//
//   - A path ending in "/" addresses a directory, anything else a file.
//   - A missing leading "/" is added; a bare id or "id:" addresses "/".
//   - The path is percent-encoded as a URL path, so spaces, '#', '?', '%'
//     and non-ASCII names round-trip.
//   - Ids that parse as UUIDs are lower-cased. Other ids pass through
//     unchanged; an id containing "/" is ErrInvalidSnapshotID.
//
// Examples:
//
//	/                                                    list, page 1, size 10
//	/?page=3&pageSize=20                                 list, page 3, size 20
//	/snapshot/6e0a2c43-...:/home/fred/                   directory
//	/snapshot/6e0a2c43-...:/home/fred/notes%231.txt      file "notes#1.txt"
//	/search?q=report                                     search for "report"
//	/config?api_url=http%3A%2F%2Flocalhost%3A3010        config form, prefilled
//
// # Defaults
//
// DefaultPage and DefaultPageSize are never written, so a location built
// with the defaults is the bare route and parsing a bare route yields the
// defaults. Page parameters below 1 or not numeric fall back to the
// defaults as well.
//
// # Parsing Errors
//
// Parse returns ErrUnknownRoute for paths no view handles and
// ErrInvalidSnapshotID for empty or malformed ids. The UI keeps its current
// location and reports the error in the status line.
//
// ParseTarget decodes the "{id}:{path}" form used by the ls and cat
// commands, with the same id rules.
//
// # Synchronizer
//
// A Synchronizer decides whether opening a location needs a fetch. It keeps
// the last route seen for each Kind and reports a change only when the
// parameters differ:
//
//	Sync("/?page=2")  → changed (first visit)
//	Sync("/search?q=a") → changed
//	Sync("/?page=2")  → unchanged: the list still holds page 2
//	Invalidate(SnapshotList)
//	Sync("/?page=2")  → changed: reload requested
//
// Kinds are tracked separately because each view owns a separate resource in
// the state tree; visiting a search does not discard the loaded list.
// Reset forgets everything, as after connecting to another repository.
//
// # History
//
// History is a bounded back stack of locations (the last 100). Push records
// a navigation and ignores a push of the current location; Replace swaps the
// top entry, which the UI uses when only paging parameters change; Back pops
// and reports false at the bottom. The zero History starts at the snapshot
// list.
//
// # Paths
//
// DecomposePath, DirectoryPath and FileName are string helpers for
// breadcrumbs and parent navigation. DirectoryPath always ends in "/" and
// the root is its own parent:
//
//	DirectoryPath("/home/fred/notes.md") = "/home/fred/"
//	DirectoryPath("/home/fred/")        = "/home/"
//	DirectoryPath("/")                  = "/"
package route
