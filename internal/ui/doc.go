// Package ui is the plakview terminal interface, built on Bubble Tea.
//
// The model mirrors a browser: every screen is a route (see package route)
// shown in the address bar under the header, ":" accepts a new one, and a
// back stack records where the user has been. Opening a route asks the
// route.Synchronizer whether its parameters changed; only then is the
// matching dispatcher action issued as a tea.Cmd.
//
// Rendering never reads the network. Actions update the state store; the
// model waits on Store.Changes and copies the tree before drawing, so a
// response for a superseded request, which the store rejects, never shows.
//
// Views:
//
//   - Snapshot list: one page of snapshots, n/p to page, +/- page size
//   - Explorer: a directory listing with breadcrumbs
//   - File: the details card and a syntax highlighted or hex preview
//   - Search: remote search box and its results
//   - Config: the API URL form, forced while no URL is known
//
// List views share a local fuzzy filter (f) over the rows of the current page.
package ui
