package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/plakview/internal/logging"
	"github.com/five82/plakview/internal/plakar"
)

const (
	defaultLimit = 10
	searchLimit  = 100
)

// Handler returns the repository API router.
func (r *Repository) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(logging.Middleware)

	router.Get("/api/config", r.handleConfig)
	router.Get("/api/snapshots", r.handleSnapshots)
	router.Get("/api/snapshot/*", r.handleSnapshot)
	router.Get("/api/raw/*", r.handleRaw)
	router.Get("/api/search", r.handleSearch)
	return router
}

// Serve listens on addr until ctx is cancelled. The bound address is sent on
// ready (if non-nil) once the listener is open, which lets callers use ":0".
func (r *Repository) Serve(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (r *Repository) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, plakar.RepositoryConfig{Repository: r.name})
}

func (r *Repository) handleSnapshots(w http.ResponseWriter, req *http.Request) {
	offset, limit, err := pageParams(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	begin, end := window(offset, limit, len(r.snapshots))
	writeJSON(w, plakar.SnapshotPage{
		Items:           r.snapshots[begin:end],
		Page:            begin,
		PageSize:        limit,
		TotalItems:      len(r.snapshots),
		TotalPages:      pages(len(r.snapshots), limit),
		HasPreviousPage: begin > 0,
		HasNextPage:     end < len(r.snapshots),
	})
}

func (r *Repository) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	id, p, ok := splitTarget(strings.TrimPrefix(req.URL.Path, "/api/snapshot/"))
	if !ok {
		http.Error(w, "malformed snapshot path", http.StatusBadRequest)
		return
	}
	snap, ok := r.snapshot(id)
	if !ok {
		http.Error(w, "snapshot not found: "+id, http.StatusNotFound)
		return
	}
	n, ok := r.lookup(id, p)
	if !ok {
		http.Error(w, "path not found: "+p, http.StatusNotFound)
		return
	}
	offset, limit, err := pageParams(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := plakar.PathPage{Snapshot: snap, Path: p, Items: []plakar.PathEntry{}}
	if !n.dir {
		res.Items = append(res.Items, entry(id, path.Dir(p), n))
		res.PageSize = limit
		res.TotalItems = 1
		res.TotalPages = 1
		writeJSON(w, res)
		return
	}

	begin, end := window(offset, limit, len(n.children))
	for _, c := range n.children[begin:end] {
		res.Items = append(res.Items, entry(id, p, c))
	}
	res.Page = begin
	res.PageSize = limit
	res.TotalItems = len(n.children)
	res.TotalPages = pages(len(n.children), limit)
	res.HasPreviousPage = begin > 0
	res.HasNextPage = end < len(n.children)
	writeJSON(w, res)
}

func (r *Repository) handleRaw(w http.ResponseWriter, req *http.Request) {
	id, p, ok := splitTarget(strings.TrimPrefix(req.URL.Path, "/api/raw/"))
	if !ok {
		http.Error(w, "malformed raw path", http.StatusBadRequest)
		return
	}
	n, ok := r.lookup(id, p)
	if !ok || n.dir {
		http.Error(w, "file not found: "+p, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", n.mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(n.content)))
	if req.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", n.name))
	}
	_, _ = w.Write(n.content)
}

func (r *Repository) handleSearch(w http.ResponseWriter, req *http.Request) {
	hits := r.search(req.URL.Query().Get("q"), searchLimit)
	out := make([]plakar.SearchResult, 0, len(hits))
	for _, h := range hits {
		kind := plakar.ResultFile
		p := h.path
		if h.node.dir {
			kind = plakar.ResultFolder
			p += "/"
		}
		out = append(out, plakar.SearchResult{
			Snapshot: h.snapshot,
			Date:     h.node.mtime.UTC().Format(time.RFC3339),
			Type:     kind,
			Path:     p,
		})
	}
	writeJSON(w, out)
}

// splitTarget separates "{id}:{path}". The path is made absolute.
func splitTarget(target string) (string, string, bool) {
	id, p, found := strings.Cut(target, ":")
	if !found || id == "" {
		return "", "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return id, p, true
}

func pageParams(req *http.Request) (int, int, error) {
	q := req.URL.Query()
	offset, limit := 0, defaultLimit
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", raw)
		}
		offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		limit = n
	}
	return offset, limit, nil
}

// window clamps [offset, offset+limit) to n items. An offset past the end
// restarts at zero.
func window(offset, limit, n int) (int, int) {
	if offset >= n {
		offset = 0
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

func pages(total, limit int) int {
	return (total + limit - 1) / limit
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
