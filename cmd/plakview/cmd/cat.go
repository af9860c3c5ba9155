package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/plakview/internal/preview"
	"github.com/five82/plakview/internal/route"
)

const (
	defaultCatLimit = 1 << 20
	defaultCatWidth = 100
)

func newCatCmd(c *cli) *cobra.Command {
	var (
		limit int64
		raw   bool
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "cat <snapshot>:<path>",
		Short: "Print a file from a snapshot",
		Long: `Print a file from a snapshot. On a terminal text files are syntax
highlighted and other files are summarised with a hex dump of their first
bytes. --raw writes the content unchanged, which suits redirection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path, err := route.ParseTarget(args[0])
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, "/") {
				return fmt.Errorf("%s:%s is a directory; use ls", id, path)
			}
			s, err := c.session(true)
			if err != nil {
				return err
			}
			content, err := s.Dispatcher.Raw(cmd.Context(), "/api/raw/"+id+":"+path, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				_, err := out.Write(content.Data)
				return err
			}
			width, isTerm := terminalWidth(out)
			text, err := preview.Render(content.Data, route.FileName(path), content.ContentType, preview.Options{
				Width: width,
				Plain: plain || !isTerm,
			})
			if err != nil {
				return err
			}
			if _, err := io.WriteString(out, text); err != nil {
				return err
			}
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(out)
			}
			if content.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "(output limited to %s; use --limit 0 for the whole file)\n",
					preview.Bytes(uint64(limit)))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", defaultCatLimit, "maximum bytes to fetch, 0 for no limit")
	cmd.Flags().BoolVar(&raw, "raw", false, "write the content unchanged")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable highlighting")
	return cmd
}

// terminalWidth reports the width of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultCatWidth, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultCatWidth, true
	}
	return width, true
}
