package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/plakview/internal/clip"
	"github.com/five82/plakview/internal/preview"
	"github.com/five82/plakview/internal/route"
	"github.com/five82/plakview/internal/state"
)

// Messages

type stateChangedMsg struct{}

type loadedMsg struct {
	kind route.Kind
	err  error
}

type configuredMsg struct {
	apiURL string
	err    error
}

type previewMsg struct {
	rawPath   string
	text      string
	truncated bool
	err       error
}

type statusMsg struct {
	text string
	err  error
}

// Commands

// waitForChange blocks until the store reports a change.
func waitForChange(ctx context.Context, store *state.Store) tea.Cmd {
	ch := store.Changes()
	return func() tea.Msg {
		select {
		case <-ch:
			return stateChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func fetchCmd(kind route.Kind, fetch func() error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{kind: kind, err: fetch()}
	}
}

func configureCmd(ctx context.Context, actions Actions, apiURL string) tea.Cmd {
	return func() tea.Msg {
		return configuredMsg{apiURL: apiURL, err: actions.Configure(ctx, apiURL)}
	}
}

func copyTextCmd(text, what string) tea.Cmd {
	if text == "" {
		return nil
	}
	return func() tea.Msg {
		res, err := clip.WriteAll(text)
		if err != nil {
			return statusMsg{err: fmt.Errorf("copy %s: %w", what, err)}
		}
		return statusMsg{text: res.Describe(what)}
	}
}

// copyContentCmd fetches a file and puts its content on the clipboard.
func (m Model) copyContentCmd(rawPath, name string) tea.Cmd {
	if m.actions == nil || rawPath == "" {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		content, err := actions.Raw(ctx, rawPath, DownloadLimit)
		if err != nil {
			return statusMsg{err: fmt.Errorf("fetch %s: %w", name, err)}
		}
		if !preview.LooksLikeText(content.Data) {
			return statusMsg{err: errors.New(name + " is not text; use download instead")}
		}
		res, err := clip.WriteAll(string(content.Data))
		if err != nil {
			return statusMsg{err: fmt.Errorf("copy %s: %w", name, err)}
		}
		return statusMsg{text: res.Describe("content of " + name)}
	}
}

// downloadCmd saves a file into the download directory.
func (m Model) downloadCmd(rawPath, name string) tea.Cmd {
	if m.actions == nil || rawPath == "" {
		return nil
	}
	ctx, actions, dir := m.ctx, m.actions, m.downloadDir
	return func() tea.Msg {
		content, err := actions.Raw(ctx, rawPath, DownloadLimit)
		if err != nil {
			return statusMsg{err: fmt.Errorf("fetch %s: %w", name, err)}
		}
		dest, err := clip.Save(dir, name, content.Data)
		if err != nil {
			return statusMsg{err: fmt.Errorf("save %s: %w", name, err)}
		}
		return statusMsg{text: "Saved " + name + " to " + dest}
	}
}
