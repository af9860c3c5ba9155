package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/plakview/internal/config"
)

type configOutput struct {
	ConfigFile     string `json:"configFile" yaml:"configFile"`
	APIURL         string `json:"apiUrl" yaml:"apiUrl"`
	Repository     string `json:"repository" yaml:"repository"`
	PageSize       int    `json:"pageSize" yaml:"pageSize"`
	RequestTimeout string `json:"requestTimeout" yaml:"requestTimeout"`
	Theme          string `json:"theme" yaml:"theme"`
	StateFile      string `json:"stateFile" yaml:"stateFile"`
	LogFile        string `json:"logFile" yaml:"logFile"`
	LogLevel       string `json:"logLevel" yaml:"logLevel"`
	DownloadDir    string `json:"downloadDir" yaml:"downloadDir"`
}

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the repository connection",
	}
	cmd.AddCommand(newConfigSetCmd(c), newConfigShowCmd(c))
	return cmd
}

func newConfigSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <api-url>",
		Short: "Connect to a plakar API and remember it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(false)
			if err != nil {
				return err
			}
			if err := s.Dispatcher.Configure(cmd.Context(), args[0]); err != nil {
				return err
			}
			cfg := s.Store.State().Config
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s (%s)\n", cfg.RepositoryName, cfg.APIURL)
			_, err = fmt.Fprintf(out, "Saved to %s\n", s.Config.StateFile)
			return err
		},
	}
}

func newConfigShowCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			s, err := c.session(false)
			if err != nil {
				return err
			}
			conn := s.Store.State().Config
			cfgFile := c.cfgFile
			if cfgFile == "" {
				cfgFile = config.DefaultPath()
			}
			timeout := s.Config.RequestTimeout.String()
			if s.Config.RequestTimeout == 0 {
				timeout = "none"
			}
			shown := configOutput{
				ConfigFile:     cfgFile,
				APIURL:         conn.APIURL,
				Repository:     conn.RepositoryName,
				PageSize:       s.Config.PageSize,
				RequestTimeout: timeout,
				Theme:          s.Config.Theme,
				StateFile:      s.Config.StateFile,
				LogFile:        s.Config.LogFile,
				LogLevel:       s.Config.LogLevel,
				DownloadDir:    s.Config.DownloadDir,
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, shown)
			}
			w := newTable(out)
			rows := []struct{ label, value string }{
				{"config file", shown.ConfigFile},
				{"api url", valueOr(shown.APIURL, "(not configured)")},
				{"repository", valueOr(shown.Repository, "-")},
				{"page size", fmt.Sprint(shown.PageSize)},
				{"request timeout", shown.RequestTimeout},
				{"theme", shown.Theme},
				{"state file", shown.StateFile},
				{"log file", shown.LogFile},
				{"log level", shown.LogLevel},
				{"download dir", shown.DownloadDir},
			}
			for _, row := range rows {
				fmt.Fprintf(w, "%s:\t%s\n", row.label, row.value)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml)")
	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
