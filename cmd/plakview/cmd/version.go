package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plakview %s\n", appVersion)
			fmt.Fprintf(out, "  commit: %s\n", appCommit)
			fmt.Fprintf(out, "  built:  %s\n", appDate)
		},
	}
}
