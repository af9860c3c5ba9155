package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/plakview/internal/plakar"
)

type searchOutput struct {
	Query string                `json:"query" yaml:"query"`
	Items []plakar.SearchResult `json:"items" yaml:"items"`
}

func newSearchCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search file and folder names across all snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("empty search query")
			}
			s, err := c.session(true)
			if err != nil {
				return err
			}
			if err := s.Dispatcher.Search(cmd.Context(), query); err != nil {
				return err
			}
			results := s.Store.State().Search

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, searchOutput{Query: results.Query, Items: results.Items})
			}
			if len(results.Items) == 0 {
				_, err := fmt.Fprintf(out, "No results for %q\n", query)
				return err
			}
			w := newTable(out)
			fmt.Fprintln(w, "TYPE\tSNAPSHOT\tORIGIN\tPATH")
			for _, r := range results.Items {
				p := r.Path
				if r.IsFolder() && !strings.HasSuffix(p, "/") {
					p += "/"
				}
				fmt.Fprintf(w, "%s\t%s\t%s@%s\t%s\n",
					r.Type, r.Snapshot.DisplayShortID(), r.Snapshot.Username, r.Snapshot.Hostname, p)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%d results\n", len(results.Items))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml)")
	return cmd
}
