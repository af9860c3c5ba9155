// Package actions orchestrates resource fetches between the plakar client and
// the state store.
//
// # Overview
//
// A Dispatcher has one method per resource. Each runs the same cycle:
//
//	1. check the configuration gate
//	2. issue a fresh token for the resource
//	3. Dispatch XRequested{params, token}
//	4. call the repository client exactly once
//	5. Dispatch XLoaded{payload, token} or XFailed{err, token}
//	6. return the client's error, if any
//
// Methods block until the response arrives and are safe to call from many
// goroutines. The TUI runs them inside tea.Cmds; the CLI calls them directly
// and reads the store afterwards.
//
//	Method          Events                                     Client call
//	Configure       ConfigRequested / ConfigLoaded / Failed    FetchConfig
//	FetchSnapshots  SnapshotsRequested / Loaded / Failed       FetchSnapshots
//	FetchPath       PathRequested / Loaded / Failed            FetchPath
//	Search          SearchRequested / Loaded / Failed          Search
//	Raw             none                                       FetchRaw
//
// # Configuration Gate
//
// Configure is the only method usable without an API URL. It dispatches
// ConfigRequested with the new URL before any network call, so the UI can
// show the pending address and the other methods unlock at once. The
// repository name follows when FetchConfig returns.
//
// Every other method reads the store first. With no API URL it returns
// ErrNotConfigured and dispatches nothing, leaving the tree untouched:
//
//	d := actions.New(store, actions.DefaultClientFactory())
//	err := d.FetchSnapshots(ctx, 1, 10)
//	errors.Is(err, actions.ErrNotConfigured) // true until Configure
//
// An empty URL passed to Configure is rejected the same way.
//
// # Tokens and Overlapping Calls
//
// Tokens come from one atomic counter per resource, so they increase in the
// order calls start. Calls are never cancelled by newer ones; when two
// overlap, both responses reach the store and the reducer keeps only the one
// whose token is the latest issued. The losing completion is logged at debug
// level as a stale response.
//
// Contexts passed in bound the network call only. A cancelled call still
// dispatches its Failed event, which the store drops if a newer request has
// been issued meanwhile.
//
// # Clients
//
// A ClientFactory builds a plakar.Fetcher for a base URL. The Dispatcher
// caches the client for the current URL and builds a new one when the URL
// changes; a factory error surfaces as ConfigFailed (for Configure) or as the
// returned error. DefaultClientFactory wraps plakar.NewClient with options
// such as plakar.WithTimeout. Tests substitute an in-memory Fetcher.
//
// # Raw Content
//
// Raw fetches file bytes for previews, downloads and the cat command. It is
// gated like the others but keeps nothing in the state tree: previews belong
// to the view showing them. Identical concurrent Raw calls share a single
// request inside the client.
//
// # Logging
//
// The Dispatcher logs through a zap logger named "actions" (WithLogger, or
// the global logger). Requests and successes are debug entries carrying the
// resource and its parameters; failures are warnings with the error.
package actions
