package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"github.com/five82/plakview/internal/plakar"
	"github.com/five82/plakview/internal/preview"
	"github.com/five82/plakview/internal/route"
	"github.com/five82/plakview/internal/state"
)

// treePageSize is the page size used while walking a tree.
const treePageSize = 100

// pathOutput is the structured form of a path listing.
type pathOutput struct {
	Snapshot   string             `json:"snapshot" yaml:"snapshot"`
	Path       string             `json:"path" yaml:"path"`
	Page       int                `json:"page" yaml:"page"`
	TotalPages int                `json:"totalPages" yaml:"totalPages"`
	TotalItems int                `json:"totalItems" yaml:"totalItems"`
	Items      []plakar.PathEntry `json:"items" yaml:"items"`
}

func newLsCmd(c *cli) *cobra.Command {
	var (
		page   int
		tree   bool
		depth  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "ls <snapshot>[:<path>]",
		Short: "List a directory, or describe a file, inside a snapshot",
		Long: `List a directory inside a snapshot. Paths ending in "/" are directories;
any other path is described as a file. A bare snapshot id lists its root.

  plakview ls 0f3c9a2e-...:/home/
  plakview ls 0f3c9a2e-...:/etc/hosts
  plakview ls --tree --depth 3 0f3c9a2e-...:/home/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			id, path, err := route.ParseTarget(args[0])
			if err != nil {
				return err
			}
			s, err := c.session(true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if tree {
				if !strings.HasSuffix(path, "/") {
					path += "/"
				}
				client, err := plakar.NewClient(s.Store.State().Config.APIURL, plakar.WithTimeout(s.Config.RequestTimeout))
				if err != nil {
					return err
				}
				root := gotree.New(plakar.ShortID(id) + ":" + path)
				if err := walkTree(cmd.Context(), client, id, path, root, depth); err != nil {
					return err
				}
				_, err = io.WriteString(out, root.Print())
				return err
			}

			if err := s.Dispatcher.FetchPath(cmd.Context(), id, path, page, s.Config.PageSize); err != nil {
				return err
			}
			view := s.Store.State().Path

			if format != formatTable {
				return writeStructured(out, format, pathOutput{
					Snapshot:   view.SnapshotID,
					Path:       view.Path,
					Page:       view.Page,
					TotalPages: view.TotalPages,
					TotalItems: view.TotalItems,
					Items:      view.Items,
				})
			}
			if file, ok := view.File(); ok {
				return writeFields(out, preview.FileFields(file, time.Now()))
			}
			return writeListing(out, view)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().BoolVar(&tree, "tree", false, "print the directory tree instead of one page")
	cmd.Flags().IntVar(&depth, "depth", 2, "levels to descend with --tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml)")
	return cmd
}

func writeListing(w io.Writer, view state.PathView) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "MODE\tSIZE\tMODIFIED\tNAME")
	for _, item := range view.Items {
		name, size := item.Name, item.Size
		if item.IsDirectory {
			name += "/"
			size = "-"
		} else if item.ByteSize > 0 {
			size = preview.Bytes(item.ByteSize)
		}
		modified := item.ModificationTime
		if t := item.ParsedModificationTime(); !t.IsZero() {
			modified = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Mode, size, modified, name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, pageFooter(view.Page, view.TotalPages, view.TotalItems, "entries"))
	return err
}

func writeFields(w io.Writer, fields []preview.Field) error {
	tw := newTable(w)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, f.Value)
	}
	return tw.Flush()
}

// walkTree adds the entries below dir to node, descending depth levels.
func walkTree(ctx context.Context, client *plakar.Client, id, dir string, node gotree.Tree, depth int) error {
	if depth <= 0 {
		return nil
	}
	for page := 1; ; page++ {
		listing, err := client.FetchPath(ctx, id, dir, page, treePageSize)
		if err != nil {
			return err
		}
		for _, item := range listing.Items {
			if !item.IsDirectory {
				node.Add(item.Name)
				continue
			}
			child := node.Add(item.Name + "/")
			if err := walkTree(ctx, client, id, dir+item.Name+"/", child, depth-1); err != nil {
				return err
			}
		}
		if page >= listing.TotalPages {
			return nil
		}
	}
}
