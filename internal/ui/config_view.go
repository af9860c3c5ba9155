package ui

import (
	"strings"

	"github.com/five82/plakview/internal/state"
)

// renderConfig renders the connection form.
func (m Model) renderConfig() string {
	styles := m.theme.Styles()
	cfg := m.tree.Config

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Connect to a plakar repository"))
	b.WriteString("\n\n")

	status := cfg.Status()
	b.WriteString(styles.MutedText.Render(padRight("Status", 12)))
	b.WriteString(styles.StatusStyle(status.String()).Render(status.String()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(padRight("API URL", 12)))
	b.WriteString(styles.Text.Render(valueOr(cfg.APIURL, "-")))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(padRight("Repository", 12)))
	b.WriteString(styles.Text.Render(valueOr(cfg.RepositoryName, "-")))
	b.WriteString("\n")
	if status == state.StatusFailed && cfg.Err != nil {
		b.WriteString(styles.MutedText.Render(padRight("Error", 12)))
		b.WriteString(styles.DangerText.Render(cfg.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.configuring {
		b.WriteString(m.spinner.View() + styles.WarningText.Render(" Connecting..."))
	} else {
		b.WriteString(m.configInput.View())
	}
	b.WriteString("\n\n")

	if m.configInput.Focused() {
		b.WriteString(styles.FaintText.Render("enter connects, esc leaves the input"))
	} else {
		b.WriteString(styles.FaintText.Render("enter edits the URL"))
	}
	if m.pending != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("then opens " + m.pending))
	}

	return m.renderTitledBox("Connection", b.String(), m.width, m.contentHeight(), true)
}

// displayRepository names the configured repository for status messages.
func displayRepository(cfg state.Config) string {
	if cfg.RepositoryName != "" {
		return cfg.RepositoryName + " (" + cfg.APIURL + ")"
	}
	return cfg.APIURL
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
