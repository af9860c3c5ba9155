package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/plakview/internal/demo"
	"github.com/five82/plakview/internal/logging"
)

func newDemoCmd(c *cli) *cobra.Command {
	var (
		addr      string
		name      string
		snapshots int
		seed      uint64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve a generated repository over the plakar HTTP API",
		Long: `Serve a deterministic, generated repository on the plakar HTTP API so the
explorer can be tried without a real plakar server:

  plakview demo --addr 127.0.0.1:3010 &
  plakview --api-url http://127.0.0.1:3010`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := c.v.GetString("log-level")
			if level == "" {
				level = "info"
			}
			if err := logging.Init(logging.Config{Level: level, Format: "console", OutputPath: "stderr"}); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer func() { _ = logging.Sync() }()

			repo := demo.New(name, snapshots, seed)
			ready := make(chan string, 1)
			errCh := make(chan error, 1)
			go func() { errCh <- repo.Serve(cmd.Context(), addr, ready) }()

			select {
			case bound := <-ready:
				fmt.Fprintf(cmd.OutOrStdout(), "Serving %q (%d snapshots) on http://%s\n", repo.Name(), snapshots, bound)
			case err := <-errCh:
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3010", "listen address")
	cmd.Flags().StringVar(&name, "name", "demo", "repository name")
	cmd.Flags().IntVar(&snapshots, "snapshots", 42, "number of snapshots to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "generator seed")
	return cmd
}
