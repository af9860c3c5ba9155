package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/plakview/internal/actions"
	"github.com/five82/plakview/internal/config"
	"github.com/five82/plakview/internal/logging"
	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/prefs"
	"github.com/five82/plakview/internal/state"
	"github.com/five82/plakview/internal/ui"
)

// Options configure a plakview session.
type Options struct {
	Config config.Config
	Start  string // initial route; empty opens the snapshot list
	Theme  string // set from the command line; wins over the saved theme
}

// Session is the state shared by the TUI and the CLI commands: the store, the
// dispatcher writing to it and the configuration they were built from.
type Session struct {
	Config     config.Config
	Store      *state.Store
	Dispatcher *actions.Dispatcher
}

// NewSession builds the store, restores the persisted connection into it and
// creates the dispatcher writing to it. Every accepted ConfigLoaded is saved to
// the state file. An api_url set in the config file or on the command line
// wins over the persisted one.
func NewSession(cfg config.Config) *Session {
	store := state.NewStore(state.Tree{})
	restoreConnection(store, cfg)
	store.Subscribe(persistConnection(cfg.StateFile))

	dispatcher := actions.New(store,
		actions.DefaultClientFactory(plakar.WithTimeout(cfg.RequestTimeout)),
		actions.WithLogger(logging.L()),
	)
	return &Session{Config: cfg, Store: store, Dispatcher: dispatcher}
}

// persistConnection returns a store subscriber saving the connection once a
// repository configuration has loaded. Failed and superseded requests never
// reach it.
func persistConnection(stateFile string) func(state.Tree, state.Event) {
	return func(tree state.Tree, ev state.Event) {
		if _, ok := ev.(state.ConfigLoaded); !ok {
			return
		}
		c := tree.Config
		err := prefs.Update(stateFile, func(p *prefs.Prefs) {
			p.Connection = prefs.Connection{APIURL: c.APIURL, RepositoryName: c.RepositoryName}
		})
		if err != nil {
			logging.L().Warn("persist connection failed", logging.String("path", stateFile), logging.Err(err))
		}
	}
}

func restoreConnection(store *state.Store, cfg config.Config) {
	saved, _ := prefs.Load(cfg.StateFile)
	conn := saved.Connection
	if override := strings.TrimSpace(cfg.APIURL); override != "" && override != conn.APIURL {
		conn = prefs.Connection{APIURL: override}
	}
	if conn.APIURL == "" {
		return
	}
	store.Dispatch(state.ConfigRestored{APIURL: conn.APIURL, RepositoryName: conn.RepositoryName})
	logging.L().Debug("connection restored",
		logging.String("api_url", conn.APIURL),
		logging.String("repository", conn.RepositoryName))
}

// Run boots the plakview TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     "json",
		OutputPath: cfg.LogFile,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logging.Sync() }()

	session := NewSession(cfg)
	logging.L().Info("plakview starting",
		logging.String("start", opts.Start),
		logging.Int("page_size", cfg.PageSize),
		zap.Bool("configured", session.Store.State().Config.Configured()))

	// A URL without a repository name came from the config file or a flag;
	// look the repository up so the header can name it.
	if c := session.Store.State().Config; c.Configured() && c.RepositoryName == "" {
		go func() {
			if err := session.Dispatcher.Configure(ctx, c.APIURL); err != nil {
				logging.L().Warn("startup configuration failed", logging.Err(err))
			}
		}()
	}

	return ui.Run(ui.Options{
		Context:     ctx,
		Actions:     session.Dispatcher,
		Store:       session.Store,
		Start:       opts.Start,
		PageSize:    cfg.PageSize,
		ThemeName:   themeFor(opts.Theme, cfg),
		PrefsPath:   cfg.StateFile,
		DownloadDir: cfg.DownloadDir,
	})
}

// themeFor picks the theme: the command line, then the one saved by the TUI,
// then config.toml.
func themeFor(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if saved, _ := prefs.Load(cfg.StateFile); saved.Theme != "" {
		return saved.Theme
	}
	return cfg.Theme
}
