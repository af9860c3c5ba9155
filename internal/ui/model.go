package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/plakview/internal/logging"
	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/prefs"
	"github.com/five82/plakview/internal/route"
	"github.com/five82/plakview/internal/state"
)

// Actions is the part of the dispatcher the UI drives.
type Actions interface {
	Configure(ctx context.Context, apiURL string) error
	FetchSnapshots(ctx context.Context, page, pageSize int) error
	FetchPath(ctx context.Context, snapshotID, path string, page, pageSize int) error
	Search(ctx context.Context, query string) error
	Raw(ctx context.Context, rawPath string, limit int64) (*plakar.RawContent, error)
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Actions     Actions
	Store       *state.Store
	Start       string // initial location; empty means the snapshot list
	PageSize    int
	ThemeName   string
	PrefsPath   string
	DownloadDir string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx         context.Context
	actions     Actions
	store       *state.Store
	prefsPath   string
	downloadDir string
	now         func() time.Time

	// UI state
	keys     keyMap
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model

	// Navigation
	tree     state.Tree
	route    route.Route
	history  *route.History
	sync     *route.Synchronizer
	pending  string // location to open once the connection is configured
	pageSize int
	selected int

	// Inputs
	filter      filterState
	searchInput textinput.Model
	configInput textinput.Model
	gotoInput   textinput.Model
	gotoActive  bool
	configuring bool

	// File preview
	previewViewport viewport.Model
	preview         previewState

	// Status line
	status    string
	statusErr bool
}

// New creates a new Bubble Tea model positioned at opts.Start.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(state.Tree{})
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = route.DefaultPageSize
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = DefaultThemeName
	}

	m := Model{
		ctx:         ctx,
		actions:     opts.Actions,
		store:       store,
		prefsPath:   opts.PrefsPath,
		downloadDir: opts.DownloadDir,
		now:         time.Now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		tree:        store.State(),
		history:     &route.History{},
		sync:        route.NewSynchronizer(),
		pageSize:    pageSize,
	}
	m.initInputs()

	start := strings.TrimSpace(opts.Start)
	if start == "" {
		start = route.SnapshotListPageURL(route.DefaultPage, pageSize)
	}
	if _, err := route.Parse(start); err != nil {
		m.setError(err)
		start = route.SnapshotListPageURL(route.DefaultPage, pageSize)
	}
	m.open(start, true)
	return m
}

func (m *Model) initInputs() {
	si := textinput.New()
	si.Placeholder = "Search files and folders..."
	si.Prompt = "/ "
	si.CharLimit = 256
	m.searchInput = si

	ci := textinput.New()
	ci.Placeholder = "http://localhost:3010"
	ci.Prompt = "API URL: "
	ci.CharLimit = 512
	m.configInput = ci

	gi := textinput.New()
	gi.Prompt = ": "
	gi.CharLimit = 1024
	m.gotoInput = gi

	m.filter = newFilterState()
	m.previewViewport = viewport.New(0, 0)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spinner.Tick,
		waitForChange(m.ctx, m.store),
		m.load(false),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeInputs()
		m.updatePreviewViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateChangedMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForChange(m.ctx, m.store))

	case loadedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setError(fmt.Errorf("load %s: %w", msg.kind, msg.err))
		}
		return m, m.refresh()

	case configuredMsg:
		return m.handleConfigured(msg)

	case previewMsg:
		m.handlePreview(msg)
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(msg.text)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Location returns the current route string, as shown in the address bar.
func (m Model) Location() string {
	return m.route.URL()
}

// open moves to location without fetching. Config is forced while no API URL
// is known; the requested location is kept for after configuration.
func (m *Model) open(location string, push bool) bool {
	r, err := route.Parse(location)
	if err != nil {
		m.setError(err)
		return false
	}
	if r.Kind != route.Config && !m.tree.Config.Configured() {
		m.pending = r.URL()
		r = route.Route{Kind: route.Config}
	}

	loc := r.URL()
	if push {
		m.history.Push(loc)
	} else {
		m.history.Replace(loc)
	}

	if r.Kind == route.Snapshot && (r.SnapshotID != m.route.SnapshotID || r.Path != m.route.Path) {
		m.resetPreview()
	}
	if r.Kind == route.SnapshotList || r.Kind == route.Snapshot {
		m.pageSize = r.PageSize
	}
	sameView := r.Kind == m.route.Kind && r.SnapshotID == m.route.SnapshotID && r.Path == m.route.Path && r.Query == m.route.Query
	m.route = r
	if !sameView {
		m.selected = 0
		m.filter.clear()
	}
	m.gotoActive = false
	m.gotoInput.Blur()

	switch r.Kind {
	case route.Config:
		value := r.APIURL
		if value == "" {
			value = m.tree.Config.APIURL
		}
		m.configInput.SetValue(value)
		m.configInput.CursorEnd()
		m.configInput.Focus()
	case route.Search:
		m.searchInput.SetValue(r.Query)
		m.searchInput.CursorEnd()
		if strings.TrimSpace(r.Query) == "" {
			m.searchInput.Focus()
		} else {
			m.searchInput.Blur()
		}
	}
	m.updatePreviewViewport()
	return true
}

// navigate opens location and fetches what it needs.
func (m *Model) navigate(location string, push bool) tea.Cmd {
	if !m.open(location, push) {
		return nil
	}
	return m.load(false)
}

// load issues the fetch the current route needs. Unless force is set, a
// route whose parameters did not change since its last fetch is not fetched
// again.
func (m Model) load(force bool) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	if force {
		m.sync.Invalidate(m.route.Kind)
	}
	r, changed, err := m.sync.Sync(m.route.URL())
	if err != nil || !changed {
		return nil
	}

	ctx, actions := m.ctx, m.actions
	switch r.Kind {
	case route.SnapshotList:
		return fetchCmd(r.Kind, func() error {
			return actions.FetchSnapshots(ctx, r.Page, r.PageSize)
		})
	case route.Snapshot:
		return fetchCmd(r.Kind, func() error {
			return actions.FetchPath(ctx, r.SnapshotID, r.Path, r.Page, r.PageSize)
		})
	case route.Search:
		if strings.TrimSpace(r.Query) == "" {
			return nil
		}
		return fetchCmd(r.Kind, func() error {
			return actions.Search(ctx, r.Query)
		})
	case route.Config:
		if r.APIURL == "" {
			return nil
		}
		return configureCmd(ctx, actions, r.APIURL)
	}
	return nil
}

// refresh copies the store tree into the model and starts the preview for a
// freshly loaded file.
func (m *Model) refresh() tea.Cmd {
	m.tree = m.store.State()
	if n := len(m.visibleEntries()); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	m.configuring = m.tree.Config.Loading
	m.updatePreviewViewport()
	return m.maybeLoadPreview()
}

func (m Model) handleConfigured(msg configuredMsg) (tea.Model, tea.Cmd) {
	m.tree = m.store.State()
	m.configuring = false
	if msg.err != nil {
		m.setError(fmt.Errorf("connect to %s: %w", msg.apiURL, msg.err))
		m.configInput.Focus()
		return m, nil
	}
	m.setStatus("Connected to " + displayRepository(m.tree.Config))
	m.sync.Reset()
	next := m.pending
	m.pending = ""
	if next == "" {
		next = route.SnapshotListPageURL(route.DefaultPage, m.pageSize)
	}
	return m, m.navigate(next, true)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Focused inputs take every key.
	switch {
	case m.gotoActive:
		return m.handleGotoInput(msg)
	case m.filter.editing:
		return m.handleFilterInput(msg)
	case m.route.Kind == route.Search && m.searchInput.Focused():
		return m.handleSearchInput(msg)
	case m.route.Kind == route.Config && m.configInput.Focused():
		return m.handleConfigInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		return m, m.cycleTheme()

	case key.Matches(msg, m.keys.Goto):
		m.gotoActive = true
		m.gotoInput.SetValue(m.Location())
		m.gotoInput.CursorEnd()
		return m, m.gotoInput.Focus()

	case key.Matches(msg, m.keys.Config):
		return m, m.navigate(route.ConfigURL(), true)

	case key.Matches(msg, m.keys.Search):
		if m.route.Kind == route.Search {
			m.searchInput.CursorEnd()
			return m, m.searchInput.Focus()
		}
		return m, m.navigate(route.SearchURL(m.tree.Search.Query), true)

	case key.Matches(msg, m.keys.SnapshotList):
		page, size := route.DefaultPage, m.pageSize
		if m.tree.Snapshots.Page > 0 {
			page = m.tree.Snapshots.Page
		}
		return m, m.navigate(route.SnapshotListPageURL(page, size), true)

	case key.Matches(msg, m.keys.Reload):
		m.resetPreview()
		m.setStatus("Reloading " + m.route.Kind.String())
		return m, m.load(true)

	case key.Matches(msg, m.keys.Back):
		if m.filter.query != "" {
			m.filter.clear()
			return m, nil
		}
		loc, ok := m.history.Back()
		if !ok {
			m.setStatus("Nothing to go back to")
			return m, nil
		}
		return m, m.navigate(loc, false)
	}

	switch m.route.Kind {
	case route.Snapshot:
		if !m.route.IsDirectory() {
			return m.handleFileKey(msg)
		}
		return m.handleListKey(msg)
	case route.SnapshotList, route.Search:
		return m.handleListKey(msg)
	case route.Config:
		if key.Matches(msg, m.keys.Open) {
			return m, m.configInput.Focus()
		}
	}
	return m, nil
}

// handleListKey handles keys shared by the snapshot list, directory and
// search views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.visibleEntries()
	count := len(entries)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < count-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(count-1, 0)
	case key.Matches(msg, m.keys.PageDown):
		m.selected = min(m.selected+m.listHeight()/2, max(count-1, 0))
	case key.Matches(msg, m.keys.PageUp):
		m.selected = max(m.selected-m.listHeight()/2, 0)

	case key.Matches(msg, m.keys.Open):
		if e, ok := m.selectedEntry(); ok {
			return m, m.navigate(e.location, true)
		}

	case key.Matches(msg, m.keys.Parent):
		return m, m.parent()

	case key.Matches(msg, m.keys.Filter):
		if m.route.Kind == route.Search && m.tree.Search.Items == nil {
			return m, nil
		}
		return m, m.filter.open()

	case key.Matches(msg, m.keys.NextPage):
		return m, m.turnPage(1)
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.turnPage(-1)
	case key.Matches(msg, m.keys.GrowPage):
		return m, m.resizePage(true)
	case key.Matches(msg, m.keys.ShrinkPage):
		return m, m.resizePage(false)

	case key.Matches(msg, m.keys.CopyPath):
		if e, ok := m.selectedEntry(); ok {
			return m, copyTextCmd(e.copyText, e.copyLabel)
		}
	case key.Matches(msg, m.keys.CopyContent):
		if e, ok := m.selectedEntry(); ok && e.file {
			return m, m.copyContentCmd(e.rawPath, e.name)
		}
	case key.Matches(msg, m.keys.Download):
		if e, ok := m.selectedEntry(); ok && e.file {
			return m, m.downloadCmd(e.rawPath, e.name)
		}
	}
	return m, nil
}

// parent opens the directory above the current path. From a snapshot root it
// returns to the snapshot list.
func (m *Model) parent() tea.Cmd {
	if m.route.Kind != route.Snapshot {
		return nil
	}
	if m.route.Path == "/" {
		return m.navigate(route.SnapshotListPageURL(route.DefaultPage, m.pageSize), true)
	}
	dir := route.DirectoryPath(m.route.Path)
	return m.navigate(route.SnapshotURL(m.route.SnapshotID, dir, route.DefaultPage, m.pageSize), true)
}

// turnPage moves delta pages when the target page exists.
func (m *Model) turnPage(delta int) tea.Cmd {
	r := m.route
	var total int
	switch r.Kind {
	case route.SnapshotList:
		total = m.tree.Snapshots.TotalPages
	case route.Snapshot:
		total = m.tree.Path.TotalPages
	default:
		return nil
	}
	target := r.Page + delta
	if target < 1 || (total > 0 && target > total) || (total == 0 && delta > 0) {
		m.setStatus("No more pages")
		return nil
	}
	r.Page = target
	return m.navigate(r.URL(), false)
}

// resizePage changes the page size, keeping the first visible item on screen.
func (m *Model) resizePage(grow bool) tea.Cmd {
	r := m.route
	if r.Kind != route.SnapshotList && r.Kind != route.Snapshot {
		return nil
	}
	size := nextPageSize(r.PageSize, grow)
	if size == r.PageSize {
		return nil
	}
	r.Page = pageFor(r.Page, r.PageSize, size)
	r.PageSize = size
	m.setStatus(fmt.Sprintf("Page size %d", size))
	return m.navigate(r.URL(), false)
}

func (m *Model) cycleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath != "" {
		name := m.theme.Name
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			logging.L().Warn("save theme failed", logging.Err(err))
		}
	}
	m.setStatus("Theme " + m.theme.Name)
	// The preview is highlighted with the theme's syntax style.
	if m.preview.text != "" {
		m.resetPreview()
		return m.maybeLoadPreview()
	}
	return nil
}

func (m Model) handleGotoInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		location := strings.TrimSpace(m.gotoInput.Value())
		m.gotoActive = false
		m.gotoInput.Blur()
		if location == "" {
			return m, nil
		}
		return m, m.navigate(location, true)
	case key.Matches(msg, m.keys.Cancel):
		m.gotoActive = false
		m.gotoInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchInput.Blur()
		return m, m.navigate(route.SearchURL(query), m.route.Query != "")
	case key.Matches(msg, m.keys.Cancel):
		m.searchInput.Blur()
		if m.route.Query == "" {
			if loc, ok := m.history.Back(); ok {
				return m, m.navigate(loc, false)
			}
		}
		m.searchInput.SetValue(m.route.Query)
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfigInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		apiURL := strings.TrimSpace(m.configInput.Value())
		if apiURL == "" {
			m.setError(errors.New("enter the API URL of a plakar server"))
			return m, nil
		}
		if m.actions == nil {
			return m, nil
		}
		m.configInput.Blur()
		m.configuring = true
		m.setStatus("Connecting to " + apiURL)
		return m, configureCmd(m.ctx, m.actions, apiURL)
	case key.Matches(msg, m.keys.Cancel):
		m.configInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.configInput, cmd = m.configInput.Update(msg)
	return m, cmd
}

func (m *Model) resizeInputs() {
	w := max(m.width-6, 10)
	m.searchInput.Width = w - len(m.searchInput.Prompt)
	m.configInput.Width = w - len(m.configInput.Prompt)
	m.gotoInput.Width = w - len(m.gotoInput.Prompt)
	m.filter.input.Width = w - len(m.filter.input.Prompt)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	logging.L().Debug("ui error", logging.Err(err))
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
