package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/plakview/internal/plakar"
)

// snapshotsOutput is the structured form of one page of snapshots.
type snapshotsOutput struct {
	Page       int                      `json:"page" yaml:"page"`
	PageSize   int                      `json:"pageSize" yaml:"pageSize"`
	TotalPages int                      `json:"totalPages" yaml:"totalPages"`
	TotalItems int                      `json:"totalItems" yaml:"totalItems"`
	Items      []plakar.SnapshotSummary `json:"items" yaml:"items"`
}

func newSnapshotsCmd(c *cli) *cobra.Command {
	var (
		page   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List the snapshots of the repository, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			s, err := c.session(true)
			if err != nil {
				return err
			}
			if err := s.Dispatcher.FetchSnapshots(cmd.Context(), page, s.Config.PageSize); err != nil {
				return err
			}
			list := s.Store.State().Snapshots

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, snapshotsOutput{
					Page:       list.Page,
					PageSize:   list.PageSize,
					TotalPages: list.TotalPages,
					TotalItems: list.TotalItems,
					Items:      list.Items,
				})
			}

			now := time.Now()
			w := newTable(out)
			fmt.Fprintln(w, "ID\tDATE\tORIGIN\tROOT\tSIZE\tTAGS")
			for _, snap := range list.Items {
				date := snap.Date
				if t := snap.ParsedDate(); !t.IsZero() {
					date = humanize.RelTime(t, now, "ago", "from now")
				}
				fmt.Fprintf(w, "%s\t%s\t%s@%s\t%s\t%s\t%s\n",
					snap.DisplayShortID(), date, snap.Username, snap.Hostname,
					snap.RootPath, snap.Size, strings.Join(snap.Tags, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, pageFooter(list.Page, list.TotalPages, list.TotalItems, "snapshots"))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml)")
	return cmd
}
