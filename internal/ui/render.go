package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/route"
	"github.com/five82/plakview/internal/state"
)

// bgStyle renders text segments that all carry the same background color.
// Lipgloss resets styles between segments, which otherwise leaves gaps in the
// background wherever plain spaces join styled text.
type bgStyle struct {
	bg lipgloss.Color
}

func newBgStyle(color string) bgStyle {
	return bgStyle{bg: lipgloss.Color(color)}
}

func (b bgStyle) render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	return style.Background(b.bg).Render(text)
}

func (b bgStyle) spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

func (b bgStyle) join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// contentHeight is the height left for the main pane once the header,
// address bar, command bar and status line are drawn.
func (m Model) contentHeight() int {
	return max(m.height-4, 3)
}

// listHeight is the number of rows a list pane can show.
func (m Model) listHeight() int {
	return max(m.contentHeight()-2-len(m.listPrefix()), 1)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderAddressBar())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.route.Kind {
	case route.Config:
		return m.renderConfig()
	case route.Search:
		return m.renderSearch()
	case route.Snapshot:
		if m.route.IsDirectory() {
			return m.renderExplorer()
		}
		return m.renderFile()
	default:
		return m.renderSnapshots()
	}
}

// renderHeader renders the logo, repository and connection status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)

	cfg := m.tree.Config
	parts := []string{bg.render("plakview", styles.Logo)}

	switch cfg.Status() {
	case state.StatusLoading:
		parts = append(parts, bg.render(m.spinner.View()+" Connecting to "+cfg.APIURL, styles.WarningText))
	case state.StatusFailed:
		parts = append(parts, bg.render("● "+truncate(cfg.Err.Error(), 60), styles.DangerText))
	case state.StatusReady:
		parts = append(parts,
			bg.render("●", styles.SuccessText)+bg.spaces(1)+bg.render(cfg.RepositoryName, styles.Text),
			bg.render(truncatePath(cfg.APIURL, 40), styles.MutedText))
	default:
		parts = append(parts, bg.render("○ not configured", styles.MutedText))
	}

	if m.anyLoading() {
		parts = append(parts, bg.render(m.spinner.View(), styles.InfoText))
	}

	return styles.Header.Width(m.width).Render(bg.join(parts, "  "))
}

func (m Model) anyLoading() bool {
	t := m.tree
	return t.Snapshots.Loading || t.Path.Loading || t.Search.Loading || m.preview.loading
}

// renderAddressBar shows the current route, or the route being typed.
func (m Model) renderAddressBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	if m.gotoActive {
		return styles.Header.Width(m.width).Render(m.gotoInput.View())
	}
	bg := newBgStyle(m.theme.Surface)
	loc := truncatePath(m.Location(), max(m.width-6, 10))
	return styles.Header.Width(m.width).Render(
		bg.render(":", styles.FaintText) + bg.spaces(1) + bg.render(loc, styles.AccentText))
}

// renderCommandBar lists the keys that matter in the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.route.Kind {
	case route.Config:
		commands = []cmd{{"enter", "Connect"}, {"esc", "Leave input"}, {"b", "Back"}}
	case route.Search:
		commands = []cmd{{"/", "New search"}, {"enter", "Open"}, {"f", "Filter"}, {"c", "Copy path"}, {"b", "Back"}}
	case route.Snapshot:
		if m.route.IsDirectory() {
			commands = []cmd{{"enter", "Open"}, {"h", "Up"}, {"n/p", "Page"}, {"f", "Filter"}, {"c/y/d", "Copy/Content/Download"}}
		} else {
			commands = []cmd{{"j/k", "Scroll"}, {"h", "Up"}, {"c", "Copy path"}, {"y", "Copy content"}, {"d", "Download"}}
		}
	default:
		commands = []cmd{{"enter", "Open"}, {"n/p", "Page"}, {"+/-", "Page size"}, {"f", "Filter"}, {"/", "Search"}}
	}
	commands = append(commands, cmd{":", "Go to"}, cmd{"?", "More"})

	colon := bg.render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.render(c.key, styles.AccentText)+colon+bg.render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.render("T", styles.AccentText)+colon+bg.render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.join(segments, "  "))
}

// renderStatusLine shows the last message, or paging information.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)

	var text string
	switch {
	case m.status != "" && m.statusErr:
		text = bg.render(truncate(m.status, m.width-2), styles.DangerText)
	case m.status != "":
		text = bg.render(truncate(m.status, m.width-2), styles.MutedText)
	default:
		text = bg.render(m.pagingSummary(), styles.FaintText)
	}
	return styles.Footer.Width(m.width).Render(text)
}

func (m Model) pagingSummary() string {
	switch m.route.Kind {
	case route.SnapshotList:
		s := m.tree.Snapshots
		return pageLabel(s.Page, s.TotalPages, s.PageSize, s.TotalItems, "snapshots")
	case route.Snapshot:
		if m.route.IsDirectory() {
			p := m.tree.Path
			return pageLabel(p.Page, p.TotalPages, p.PageSize, p.TotalItems, "entries")
		}
	case route.Search:
		if n := len(m.tree.Search.Items); m.tree.Search.Items != nil {
			return fmt.Sprintf("%d results", n)
		}
	}
	return ""
}

func pageLabel(page, totalPages, pageSize, totalItems int, noun string) string {
	if totalPages == 0 {
		return ""
	}
	return fmt.Sprintf("page %d/%d  ·  %d per page  ·  %d %s", page, totalPages, pageSize, totalItems, noun)
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐. Focused boxes use the focus colors.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := newBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.render("┌"+strings.Repeat("─", leftPad), borderStyle) +
		bg.render(" "+title+" ", titleStyle) +
		bg.render(strings.Repeat("─", rightPad)+"┐", borderStyle)
	bottom := bg.render("└"+strings.Repeat("─", innerWidth)+"┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	rows := make([]string, 0, height)
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.render("│", borderStyle)+contentStyle.Render(line)+bg.render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}

// listPrefix returns the lines drawn above the rows of a list view.
func (m Model) listPrefix() []string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	var lines []string
	switch m.route.Kind {
	case route.Snapshot:
		lines = append(lines, m.renderBreadcrumbs(), m.renderSnapshotSummary())
	case route.Search:
		lines = append(lines, m.searchInput.View())
	}
	if m.filter.editing {
		lines = append(lines, m.filter.input.View())
	} else if m.filter.query != "" {
		lines = append(lines, styles.WarningText.Render("filter: "+m.filter.query)+styles.FaintText.Render("  (esc clears)"))
	}
	return lines
}

// renderList renders the visible entries of a list view under its prefix.
func (m Model) renderList(title string, status state.Status, err error, noun string) string {
	height := m.contentHeight()
	bgColor := m.theme.FocusBg
	width := m.width - 2

	lines := m.listPrefix()
	entries := m.visibleEntries()
	switch {
	case len(entries) > 0:
		lines = append(lines, m.renderRows(entries, width, bgColor)...)
	case status == state.StatusReady && m.filter.query != "":
		lines = append(lines, m.theme.Styles().MutedText.Render("No "+noun+" match the filter"))
	default:
		lines = append(lines, m.renderResourceState(status, err, noun))
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

// renderRows renders the rows that fit, scrolled so the selection is visible.
func (m Model) renderRows(entries []visibleEntry, width int, bgColor string) []string {
	visible := m.listHeight()
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(entries))

	compact := m.width < LayoutCompactWidth
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selected
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(m.formatRow(entries[i], width, rowBg, selected, compact)))
	}
	return lines
}

// formatRow formats one row: icon, title with filter matches highlighted, and
// the detail column right-aligned.
func (m Model) formatRow(e visibleEntry, width int, bgColor string, selected, compact bool) string {
	bg := newBgStyle(bgColor)
	styles := m.theme.Styles()

	iconStyle := styles.KindStyle(e.kind)
	titleStyle := styles.Text
	if e.kind == "directory" {
		titleStyle = styles.KindStyle(e.kind).Bold(true)
	}
	detailStyle := styles.MutedText
	matchStyle := styles.WarningText.Bold(true)
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		iconStyle, titleStyle, detailStyle = sel, sel.Bold(e.kind == "directory"), sel
		matchStyle = sel.Bold(true).Underline(true)
	}

	detail := e.detail
	if compact {
		detail = ""
	}
	titleWidth := max(width-lipgloss.Width(detail)-6, 10)
	title := truncate(e.title, titleWidth)

	titlePart := highlightMatches(title, e.matched, bg, titleStyle, matchStyle)
	used := 3 + lipgloss.Width(title)
	gap := max(width-used-lipgloss.Width(detail)-1, 1)

	return bg.spaces(1) + bg.render(e.icon, iconStyle) + bg.spaces(1) + titlePart +
		bg.spaces(gap) + bg.render(detail, detailStyle)
}

// highlightMatches renders s with the bytes at the matched offsets in
// matchStyle.
func highlightMatches(s string, matched []int, bg bgStyle, base, match lipgloss.Style) string {
	if len(matched) == 0 {
		return bg.render(s, base)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style := base
		if runHit {
			style = match
		}
		b.WriteString(bg.render(run.String(), style))
		run.Reset()
	}
	for i, r := range s {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

// renderResourceState describes a resource that has nothing to list yet.
func (m Model) renderResourceState(status state.Status, err error, noun string) string {
	styles := m.theme.Styles()
	switch status {
	case state.StatusLoading:
		return m.spinner.View() + styles.MutedText.Render(" Loading "+noun+"...")
	case state.StatusFailed:
		msg := styles.DangerText.Render("Could not load " + noun)
		if err != nil {
			msg += "\n" + styles.Text.Render(err.Error())
		}
		return msg + "\n\n" + styles.MutedText.Render("Press r to retry, C to change the connection.")
	case state.StatusReady:
		return styles.MutedText.Render("No " + noun)
	}
	return styles.FaintText.Render("Nothing loaded yet")
}

func (m Model) renderSnapshots() string {
	s := m.tree.Snapshots
	title := "Snapshots"
	if s.TotalPages > 0 {
		title = fmt.Sprintf("Snapshots · page %d of %d", s.Page, s.TotalPages)
	}
	return m.renderList(title, s.Status(), s.Err, "snapshots")
}

func (m Model) renderExplorer() string {
	p := m.tree.Path
	status, err := p.Status(), p.Err
	if p.SnapshotID != m.route.SnapshotID || p.Path != m.route.Path {
		status, err = state.StatusLoading, nil
	}
	title := plakar.ShortID(m.route.SnapshotID) + ":" + m.route.Path
	return m.renderList(truncatePath(title, m.width-8), status, err, "entries")
}

func (m Model) renderSearch() string {
	s := m.tree.Search
	status, err := s.Status(), s.Err
	if m.route.Query == "" {
		status, err = state.StatusIdle, nil
	} else if s.Query != m.route.Query {
		status, err = state.StatusLoading, nil
	}
	title := "Search"
	if m.route.Query != "" {
		title = fmt.Sprintf("Search · %q", m.route.Query)
	}
	return m.renderList(title, status, err, "results")
}

// renderBreadcrumbs renders the snapshot root and each directory of the
// current path.
func (m Model) renderBreadcrumbs() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := newBgStyle(m.theme.FocusBg)
	parts := []string{bg.render(plakar.ShortID(m.route.SnapshotID)+":/", styles.AccentText)}
	for _, c := range route.DecomposePath(m.route.Path) {
		parts = append(parts, bg.render(c.Name, styles.Text))
	}
	return bg.join(parts, " › ")
}

func (m Model) renderSnapshotSummary() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	s := m.tree.Path.Snapshot
	if s.ID == "" || m.tree.Path.SnapshotID != m.route.SnapshotID {
		return ""
	}
	summary := s.Username + "@" + s.Hostname + "  " + s.RootPath + "  " + s.Size
	if t := s.ParsedDate(); !t.IsZero() {
		summary += "  " + t.Format("2006-01-02 15:04")
	}
	return styles.FaintText.Render(truncate(summary, m.width-4))
}
