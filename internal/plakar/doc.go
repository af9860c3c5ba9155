// Package plakar provides an HTTP client for the repository browsing API
// exposed by a plakar UI server.
//
// # Overview
//
// The client is thin: one method per resource, one outbound GET per call, no
// retries and no caching. Concurrent FetchRaw calls for the same path and limit
// share a single request. Everything it returns is either a decoded payload or
// a *NetworkError.
//
// # API Endpoints
//
//   - GET /api/config: repository name
//   - GET /api/snapshots?offset=&limit=: one page of snapshot summaries
//   - GET /api/snapshot/{id}:{path}?offset=&limit=: directory listing or file details
//   - GET /api/search?q=: free-text search results
//   - GET /api/raw/{id}:{path}: raw file content (used for previews and downloads)
//
// Page numbers are 1-based on the client side and converted with
// offset = (page-1) * pageSize and limit = pageSize.
//
// # Error Handling
//
// Transport failures, non-2xx statuses and undecodable bodies are all reported
// as *NetworkError. The message is opaque; callers store it as-is in their
// resource state. StatusCode and IsNetworkError help when a caller needs to
// branch, which the dispatchers never do.
//
// # Usage Example
//
//	client, err := plakar.NewClient("localhost:3010")
//	if err != nil {
//		return err
//	}
//	page, err := client.FetchSnapshots(ctx, 1, 10)
package plakar
