// Package state holds the application state tree and the pure transition
// functions that evolve it.
//
// # Overview
//
// Four resources live side by side in a Tree and never influence each other:
//
//	Config     API URL and repository name (persisted)
//	Snapshots  one page of the snapshot list
//	Path       a directory listing or a single file's details
//	Search     results for the last query
//
// Nothing in this package performs I/O. The actions package issues requests
// and turns their outcomes into Events; Reduce maps (Tree, Event) to the next
// Tree; the UI and the CLI read copies of the result.
//
//	actions.Dispatcher            Store                      readers
//	┌──────────────────┐   Dispatch(ev)   ┌──────────────┐   State()
//	│ XRequested{tok}  │────────────────→│ Accepts?     │──────────→ ui.Model
//	│ client.FetchX()  │                 │ Reduce       │  Changes()
//	│ XLoaded{tok} or  │────────────────→│ notify       │──────────→ (wake up)
//	│ XFailed{tok}     │                 └──────────────┘  Subscribe
//	└──────────────────┘                                 ──────────→ app (persist)
//
// # Resource Lifecycle
//
// Each resource moves through Requested, Loaded and Failed events:
//
//	Requested: Loading=true, Err=nil, page items cleared, parameters recorded
//	Loaded:    Loading=false, Err=nil, data replaced from the payload
//	Failed:    Loading=false, Err set, page items stay empty
//
// Status derives a single label from those fields:
//
//	Loading            → StatusLoading
//	Err != nil         → StatusFailed
//	data present       → StatusReady
//	otherwise          → StatusIdle
//
// The page number kept for Snapshots and Path is the one the caller asked
// for. The server's page field is an offset and is not trusted.
//
// # Configuration
//
// Config differs from the list resources in three ways:
//
//   - ConfigRequested stores the API URL immediately, so the URL is known
//     (and the other dispatchers unlock) while the repository name loads.
//   - A failure keeps the last known repository name when the URL is
//     unchanged. Requesting a different URL drops the name at once, so a
//     failed switch never pairs the new URL with the old server's name.
//   - ConfigRestored rehydrates URL and name from the state file. It only
//     applies while no ConfigRequested has been seen; a live request always
//     wins over the saved value.
//
// Configured reports whether an API URL is set, regardless of status.
//
// # Request Tokens
//
// Every Requested event carries a Token issued by the dispatcher, counting
// up from 1 per resource. A resource remembers the latest token it saw.
//
//	Requested{tok}:  applied when tok >= latest; older requests are ignored
//	Loaded{tok}:     applied only when tok == latest
//	Failed{tok}:     applied only when tok == latest
//
// Overlapping requests are not cancelled. A slow response for page 2 that
// arrives after the request for page 3 is simply rejected:
//
//	Requested{page 2, tok 1}  → latest = 1, loading
//	Requested{page 3, tok 2}  → latest = 2, loading, page 3
//	Loaded{tok 2}             → page 3 shown
//	Loaded{tok 1}             → rejected, tree unchanged
//
// Accepts reports the decision without applying it. Reduce and the
// per-resource reducers are total: unknown or rejected events return their
// input unchanged.
//
// # Store
//
// Store serialises dispatches behind a sync.RWMutex. Dispatch reports whether
// the event was accepted; rejected events neither change the tree nor notify.
//
//   - State returns a deep copy of the tree. Item slices are cloned, so a
//     reader may keep a Tree as long as it likes.
//   - Changes returns a channel with a buffer of one. Each accepted dispatch
//     tries a non-blocking send, so a reader that falls behind wakes once and
//     then reads the latest State.
//   - Subscribe registers a callback receiving the resulting tree and the
//     event. Callbacks run outside the store lock, one at a time and in the
//     order the dispatches were accepted. A callback may call State but must
//     not call Dispatch.
//
// The zero Store is ready to use.
//
// # Usage Example
//
//	store := state.NewStore(state.Tree{})
//	store.Subscribe(func(tree state.Tree, ev state.Event) {
//		if _, ok := ev.(state.ConfigLoaded); ok {
//			save(tree.Config)
//		}
//	})
//
//	store.Dispatch(state.SnapshotsRequested{Page: 1, PageSize: 10, Token: 1})
//	store.Dispatch(state.SnapshotsLoaded{Page: page, Token: 1})
//
//	<-store.Changes()
//	tree := store.State()
//	fmt.Println(tree.Snapshots.Status(), len(tree.Snapshots.Items))
//
// # Testing
//
// The reducers are plain functions over values; tests build a Tree literal,
// feed events and compare the result. Store tests cover copying,
// notification coalescing and the delivery order of subscribers under
// concurrent dispatch.
package state
