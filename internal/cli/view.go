package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/viewer"
	"github.com/mta-tools/mta/internal/watcher"
)

const clearScreen = "\x1b[H\x1b[2J"

func newViewCmd() *cobra.Command {
	var from, to string
	var watch bool
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Show an exported analysis",
		Long: `Print a read-only report of an exported analysis: student and video,
each layer's blocks, and a merged timeline.

Examples:
  mta view analysis-ana-garcía.json
  mta view analysis.yaml --from 1:00 --to 2:30
  mta view analysis.json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			fromT, err := parseTimeFlag("from", from)
			if err != nil {
				return err
			}
			toT, err := parseTimeFlag("to", to)
			if err != nil {
				return err
			}
			if toT > 0 && toT <= fromT {
				return fmt.Errorf("--to must be after --from")
			}

			tty, width := terminal(os.Stdout)
			opts := viewer.Options{From: fromT, To: toT, Width: width, Styler: styler(tty)}
			if cat, err := loadCatalog(); err == nil {
				opts.Catalog = cat
			}
			out := cmd.OutOrStdout()

			if !watch {
				return renderFile(out, path, opts)
			}

			redraw := func() {
				if tty {
					io.WriteString(out, clearScreen)
				}
				if err := renderFile(out, path, opts); err != nil {
					fmt.Fprintln(out, opts.Styler.Error(err.Error()))
				}
			}
			redraw()
			return watcher.Watch(cmd.Context(), path, watcher.DefaultDebounce, func(string) {
				slog.Default().Debug("analysis changed", "path", path)
				redraw()
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "only blocks overlapping this time onwards (m:ss or seconds)")
	cmd.Flags().StringVar(&to, "to", "", "only blocks starting before this time (m:ss or seconds)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the file changes")
	return cmd
}

func renderFile(w io.Writer, path string, opts viewer.Options) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	return viewer.Render(w, doc, opts)
}
