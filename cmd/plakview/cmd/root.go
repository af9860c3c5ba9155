package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/five82/plakview/internal/actions"
	"github.com/five82/plakview/internal/app"
	"github.com/five82/plakview/internal/config"
	"github.com/five82/plakview/internal/logging"
)

// Version info, set via SetVersion.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersion records the build information printed by the version command.
func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// ExecuteContext runs the command line.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// cli carries the flags every command resolves its configuration from.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "plakview [route]",
		Short: "Browse plakar backup repositories from the terminal",
		Long: `plakview explores the snapshots of a plakar repository through its HTTP API.

Without a subcommand it starts the interactive explorer. The optional route
argument opens a location directly, using the same form the address bar shows:

  plakview /
  plakview '/?page=2&pageSize=20'
  plakview '/snapshot/<id>:/home/'
  plakview '/search?q=report'
  plakview '/config?api_url=http://localhost:3010'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := app.Options{Config: cfg, Theme: strings.TrimSpace(c.v.GetString("theme"))}
			if len(args) == 1 {
				opts.Start = args[0]
			}
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: ~/.config/plakview/config.toml)")
	flags.String("api-url", "", "plakar API URL, overrides the saved connection")
	flags.Int("page-size", 0, "items per page (default from config, 10)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("theme", "", "color theme (Nightfox, Kanagawa, Slate)")

	// Errors are nil when the flag exists.
	for _, name := range []string{"api-url", "page-size", "log-level", "theme"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}
	c.v.SetEnvPrefix("PLAKVIEW")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		newSnapshotsCmd(c),
		newLsCmd(c),
		newCatCmd(c),
		newSearchCmd(c),
		newConfigCmd(c),
		newDemoCmd(c),
		newLogsCmd(c),
		newVersionCmd(),
	)
	return root
}

// config loads the config file and applies flag and environment overrides.
func (c *cli) config() (config.Config, error) {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if u := strings.TrimSpace(c.v.GetString("api-url")); u != "" {
		cfg.APIURL = u
	}
	if n := c.v.GetInt("page-size"); n > 0 {
		cfg.PageSize = n
	}
	if level := strings.TrimSpace(c.v.GetString("log-level")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if theme := strings.TrimSpace(c.v.GetString("theme")); theme != "" {
		cfg.Theme = theme
	}
	return cfg, nil
}

// session prepares a non-interactive command. Logging goes to stderr and is
// silent unless --log-level asks for it.
func (c *cli) session(requireURL bool) (*app.Session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	level := strings.TrimSpace(c.v.GetString("log-level"))
	if level == "" {
		level = "error"
	}
	if err := logging.Init(logging.Config{Level: level, Format: "console", OutputPath: "stderr"}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	s := app.NewSession(cfg)
	if requireURL && !s.Store.State().Config.Configured() {
		return nil, fmt.Errorf("%w: pass --api-url or run 'plakview config set <url>'", actions.ErrNotConfigured)
	}
	return s, nil
}
