package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/five82/plakview/internal/logtail"
)

func newLogsCmd(c *cli) *cobra.Command {
	var (
		lines int
		level string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the explorer's log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var min zapcore.Level
			if err := min.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("log level %q: %w", level, err)
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			tail, err := logtail.Tail(cfg.LogFile, lines)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				_, err := fmt.Fprintf(out, "%s is empty\n", cfg.LogFile)
				return err
			}
			for _, line := range tail {
				if raw {
					fmt.Fprintln(out, line)
					continue
				}
				if e := logtail.Parse(line); e.Enabled(min) {
					fmt.Fprintln(out, e.Format())
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "lines to read from the end, 0 for all")
	cmd.Flags().StringVar(&level, "level", "debug", "hide entries below this level")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the lines as written")
	return cmd
}
