package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/preview"
	"github.com/five82/plakview/internal/route"
	"github.com/five82/plakview/internal/state"
)

// previewState tracks the rendered preview of the open file.
type previewState struct {
	rawPath   string // file the preview belongs to; empty when none was requested
	loading   bool
	text      string
	truncated bool
	limit     int64
	err       error
}

func (m *Model) resetPreview() {
	m.preview = previewState{}
	m.previewViewport.SetContent("")
	m.previewViewport.GotoTop()
}

// openFile returns the file the current route shows, once it has loaded.
func (m Model) openFile() (plakar.PathEntry, bool) {
	if m.route.Kind != route.Snapshot || m.route.IsDirectory() {
		return plakar.PathEntry{}, false
	}
	view := m.tree.Path
	if view.SnapshotID != m.route.SnapshotID || view.Path != m.route.Path || view.Status() != state.StatusReady {
		return plakar.PathEntry{}, false
	}
	return view.File()
}

// maybeLoadPreview fetches and renders the open file unless that already
// happened.
func (m *Model) maybeLoadPreview() tea.Cmd {
	file, ok := m.openFile()
	if !ok || m.actions == nil {
		return nil
	}
	rawPath := rawPathFor(m.route.SnapshotID, m.route.Path, file)
	if m.preview.rawPath == rawPath {
		return nil
	}
	limit := int64(PreviewLimit)
	switch preview.Classify(file.MimeType) {
	case preview.Image, preview.Video, preview.Audio, preview.PDF:
		limit = preview.HexDumpBytes
	}
	m.preview = previewState{rawPath: rawPath, loading: true, limit: limit}
	ctx, actions := m.ctx, m.actions
	opts := preview.Options{Width: m.previewWidth(), Style: m.theme.Syntax}
	name, mimeType := file.Name, file.MimeType
	return func() tea.Msg {
		content, err := actions.Raw(ctx, rawPath, limit)
		if err != nil {
			return previewMsg{rawPath: rawPath, err: err}
		}
		if mimeType == "" {
			mimeType = content.ContentType
		}
		text, err := preview.Render(content.Data, name, mimeType, opts)
		return previewMsg{rawPath: rawPath, text: text, truncated: content.Truncated, err: err}
	}
}

func (m *Model) handlePreview(msg previewMsg) {
	// A preview for a file we navigated away from.
	if msg.rawPath != m.preview.rawPath {
		return
	}
	m.preview.loading = false
	m.preview.text = msg.text
	m.preview.truncated = msg.truncated
	m.preview.err = msg.err
	m.updatePreviewViewport()
	m.previewViewport.GotoTop()
}

// previewWide reports whether details and preview sit side by side.
func (m Model) previewWide() bool {
	return m.width >= LayoutWideWidth
}

func (m Model) previewWidth() int {
	if m.previewWide() {
		return max(m.width*60/100-4, 20)
	}
	return max(m.width-4, 20)
}

func (m Model) previewHeight() int {
	h := m.contentHeight() - 2
	if !m.previewWide() {
		h -= m.detailsHeight() + 2
	}
	return max(h, 3)
}

func (m *Model) updatePreviewViewport() {
	m.previewViewport.Width = m.previewWidth()
	m.previewViewport.Height = m.previewHeight()
	m.previewViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	var content string
	switch {
	case m.preview.err != nil:
		content = m.theme.Styles().DangerText.Render("Preview failed: " + m.preview.err.Error())
	case m.preview.text != "":
		content = m.preview.text
		if m.preview.truncated {
			content += "\n" + m.theme.Styles().WarningText.Render(
				fmt.Sprintf("(preview limited to %s; press d to download the whole file)", preview.Bytes(uint64(m.preview.limit))))
		}
	}
	m.previewViewport.SetContent(content)
}

// handleFileKey processes keys in the file view: movement scrolls the preview.
func (m Model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	file, ok := m.openFile()
	rawPath := ""
	if ok {
		rawPath = rawPathFor(m.route.SnapshotID, m.route.Path, file)
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.previewViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.previewViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.previewViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.previewViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageDown):
		m.previewViewport.HalfPageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.previewViewport.HalfPageUp()

	case key.Matches(msg, m.keys.Parent):
		return m, m.parent()

	case key.Matches(msg, m.keys.CopyPath):
		return m, copyTextCmd(m.route.SnapshotID+":"+m.route.Path, "path")
	case key.Matches(msg, m.keys.CopyContent):
		if ok {
			return m, m.copyContentCmd(rawPath, file.Name)
		}
	case key.Matches(msg, m.keys.Download):
		if ok {
			return m, m.downloadCmd(rawPath, file.Name)
		}
	}
	return m, nil
}

// detailsHeight is the number of lines the file details card takes.
func (m Model) detailsHeight() int {
	file, ok := m.openFile()
	if !ok {
		return 1
	}
	return len(preview.FileFields(file, m.now()))
}

// renderFile renders the details card and the preview.
func (m Model) renderFile() string {
	height := m.contentHeight()
	title := route.FileName(m.route.Path)
	view := m.tree.Path

	file, ok := m.openFile()
	if !ok {
		return m.renderTitledBox(title, m.renderResourceState(view.Status(), view.Err, "file"), m.width, height, true)
	}

	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	var details strings.Builder
	fields := preview.FileFields(file, m.now())
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f.Label))
	}
	detailsWidth := m.width - 4
	if m.previewWide() {
		detailsWidth = m.width - m.previewWidth() - 8
	}
	for i, f := range fields {
		if i > 0 {
			details.WriteString("\n")
		}
		details.WriteString(styles.MutedText.Render(padRight(f.Label, labelWidth+2)))
		details.WriteString(styles.Text.Render(truncate(f.Value, max(detailsWidth-labelWidth-2, 8))))
	}

	var body string
	switch {
	case m.preview.loading:
		body = m.spinner.View() + " Loading preview..."
	default:
		body = m.previewViewport.View()
	}

	if m.previewWide() {
		detailsBox := m.renderTitledBox(title, details.String(), m.width-m.previewWidth()-4, height, false)
		previewBox := m.renderTitledBox("Preview", body, m.previewWidth()+4, height, true)
		return lipgloss.JoinHorizontal(lipgloss.Top, detailsBox, previewBox)
	}
	detailsBox := m.renderTitledBox(title, details.String(), m.width, len(fields)+2, false)
	previewBox := m.renderTitledBox("Preview", body, m.width, max(height-len(fields)-2, 3), true)
	return detailsBox + "\n" + previewBox
}
