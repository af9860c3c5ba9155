package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/preview"
	"github.com/five82/plakview/internal/route"
)

// entry is one selectable row of a list view.
type entry struct {
	title    string // matched by the local filter
	detail   string
	kind     string // KindStyle key
	icon     string
	location string // opened with enter

	copyText  string
	copyLabel string

	// Files only.
	file    bool
	name    string
	rawPath string
}

// visibleEntry is an entry that passed the filter, with the title byte
// offsets the filter matched.
type visibleEntry struct {
	entry
	matched []int
}

// entries lists the rows of the current view in server order.
func (m Model) entries() []entry {
	switch m.route.Kind {
	case route.SnapshotList:
		return m.snapshotEntries()
	case route.Snapshot:
		if m.route.IsDirectory() {
			return m.directoryEntries()
		}
	case route.Search:
		return m.searchEntries()
	}
	return nil
}

func (m Model) snapshotEntries() []entry {
	items := m.tree.Snapshots.Items
	out := make([]entry, 0, len(items))
	now := m.now()
	for _, s := range items {
		detail := s.Size
		if t := s.ParsedDate(); !t.IsZero() {
			detail = humanize.RelTime(t, now, "ago", "from now") + "  " + detail
		}
		title := s.DisplayShortID() + "  " + s.Username + "@" + s.Hostname + "  " + s.RootPath
		if len(s.Tags) > 0 {
			title += "  #" + strings.Join(s.Tags, " #")
		}
		out = append(out, entry{
			title:     title,
			detail:    detail,
			kind:      "directory",
			icon:      "◆",
			location:  route.SnapshotURL(s.ID, "/", route.DefaultPage, m.pageSize),
			copyText:  s.ID,
			copyLabel: "snapshot id",
		})
	}
	return out
}

func (m Model) directoryEntries() []entry {
	view := m.tree.Path
	if view.SnapshotID != m.route.SnapshotID || view.Path != m.route.Path {
		return nil
	}
	out := make([]entry, 0, len(view.Items))
	for _, item := range view.Items {
		out = append(out, m.pathEntry(view.SnapshotID, m.route.Path, item))
	}
	return out
}

// pathEntry builds the row of a directory listing item. The child path is
// derived from the listed directory, not from the item's own path field.
func (m Model) pathEntry(snapshotID, dir string, item plakar.PathEntry) entry {
	child := dir + item.Name
	e := entry{
		title:     item.Name,
		location:  route.SnapshotURL(snapshotID, child, route.DefaultPage, m.pageSize),
		copyText:  snapshotID + ":" + child,
		copyLabel: "path",
	}
	if item.IsDirectory {
		child += "/"
		e.title += "/"
		e.kind = "directory"
		e.icon = "▸"
		e.location = route.SnapshotURL(snapshotID, child, route.DefaultPage, m.pageSize)
		e.copyText = snapshotID + ":" + child
		e.detail = item.ModificationTime
		if t := item.ParsedModificationTime(); !t.IsZero() {
			e.detail = t.Format("2006-01-02 15:04")
		}
		return e
	}

	e.kind = preview.Classify(item.MimeType).String()
	e.icon = kindIcon(e.kind)
	e.file = true
	e.name = item.Name
	e.rawPath = rawPathFor(snapshotID, child, item)
	size := item.Size
	if item.ByteSize > 0 {
		size = preview.Bytes(item.ByteSize)
	}
	e.detail = size
	if t := item.ParsedModificationTime(); !t.IsZero() {
		e.detail = t.Format("2006-01-02 15:04") + "  " + padLeft(size, 9)
	}
	return e
}

func (m Model) searchEntries() []entry {
	if m.tree.Search.Query != m.route.Query {
		return nil
	}
	items := m.tree.Search.Items
	out := make([]entry, 0, len(items))
	for _, r := range items {
		p := r.Path
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		e := entry{
			title:     p,
			detail:    r.Snapshot.DisplayShortID() + "  " + r.Snapshot.Hostname,
			copyText:  r.Snapshot.ID + ":" + p,
			copyLabel: "path",
		}
		if r.IsFolder() {
			if !strings.HasSuffix(p, "/") {
				p += "/"
				e.title = p
				e.copyText += "/"
			}
			e.kind = "directory"
			e.icon = "▸"
		} else {
			e.kind = "file"
			e.icon = "·"
			e.file = true
			e.name = route.FileName(p)
			e.rawPath = "/api/raw/" + r.Snapshot.ID + ":" + p
		}
		e.location = route.SnapshotURL(r.Snapshot.ID, p, route.DefaultPage, m.pageSize)
		out = append(out, e)
	}
	return out
}

// visibleEntries applies the local filter. Matches come back best first.
func (m Model) visibleEntries() []visibleEntry {
	all := m.entries()
	if m.filter.query == "" {
		out := make([]visibleEntry, len(all))
		for i, e := range all {
			out[i] = visibleEntry{entry: e}
		}
		return out
	}
	titles := make([]string, len(all))
	for i, e := range all {
		titles[i] = e.title
	}
	matches := fuzzy.Find(m.filter.query, titles)
	out := make([]visibleEntry, 0, len(matches))
	for _, match := range matches {
		out = append(out, visibleEntry{entry: all[match.Index], matched: match.MatchedIndexes})
	}
	return out
}

func (m Model) selectedEntry() (entry, bool) {
	entries := m.visibleEntries()
	if m.selected < 0 || m.selected >= len(entries) {
		return entry{}, false
	}
	return entries[m.selected].entry, true
}

// rawPathFor returns the raw content location of a file, falling back to the
// conventional layout when the server left it out.
func rawPathFor(snapshotID, path string, item plakar.PathEntry) string {
	if item.RawPath != "" {
		return item.RawPath
	}
	return "/api/raw/" + snapshotID + ":" + path
}

func kindIcon(kind string) string {
	switch kind {
	case "image":
		return "▣"
	case "video":
		return "▶"
	case "audio":
		return "♪"
	case "pdf":
		return "▤"
	default:
		return "·"
	}
}

// filterState is the local fuzzy filter over the rows of the current page.
type filterState struct {
	input   textinput.Model
	query   string
	editing bool
}

func newFilterState() filterState {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to narrow this page"
	ti.CharLimit = 128
	return filterState{input: ti}
}

func (f *filterState) open() tea.Cmd {
	f.editing = true
	f.input.SetValue(f.query)
	f.input.CursorEnd()
	return f.input.Focus()
}

func (f *filterState) clear() {
	f.editing = false
	f.query = ""
	f.input.SetValue("")
	f.input.Blur()
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.filter.editing = false
		m.filter.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.filter.clear()
		m.selected = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.filter.input, cmd = m.filter.input.Update(msg)
	m.filter.query = strings.TrimSpace(m.filter.input.Value())
	m.selected = 0
	return m, cmd
}
