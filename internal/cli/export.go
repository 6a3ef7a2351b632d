package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/components"
	"github.com/mta-tools/mta/internal/util"
)

// Export formats accepted by mta export.
var exportFormats = []string{"json", "yaml", "text", "csv", "presence-csv", "table"}

func exportExtension(format string) string {
	switch format {
	case "text", "table":
		return "txt"
	case "presence-csv":
		return "csv"
	default:
		return format
	}
}

func newExportCmd() *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved project",
		Long: `Export the autosaved project.

Formats:
  json          the full analysis document (default)
  yaml          the same document as YAML
  text          per-layer summary followed by a merged timeline
  csv           one row per block
  presence-csv  10 second windows with the blocks active in each layer
  table         the presence table for the terminal

When --output names a directory the file is named analysis-<student>.<ext>.

Examples:
  mta export > analysis.json
  mta export --format csv -o analysis.csv
  mta export --format text -o ~/Desktop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q (valid: %s)", format, strings.Join(exportFormats, ", "))
			}
			doc, err := loadSaved(cmd.Context())
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				tty, width := terminal(os.Stdout)
				data, err := renderExport(doc, format, styler(tty), width)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			path := outPath
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, persist.ExportFilename(doc, exportExtension(format)))
			}
			data, err := renderExport(doc, format, styler(false), 0)
			if err != nil {
				return err
			}
			if err := util.AtomicWriteFile(path, data, 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styler(false).Success("exported "+path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file or directory (default stdout)")
	return cmd
}

func validFormat(format string) bool {
	for _, f := range exportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// renderExport encodes doc in the named format.
func renderExport(doc persist.Document, format string, s components.Styler, width int) ([]byte, error) {
	switch format {
	case "json":
		return persist.Encode(doc, persist.FormatJSON)
	case "yaml":
		return persist.Encode(doc, persist.FormatYAML)
	case "text":
		return []byte(persist.TextSummary(doc)), nil
	case "csv":
		return persist.CSV(doc)
	case "presence-csv":
		return persist.PresenceTable(doc).CSV()
	case "table":
		var b strings.Builder
		if err := writePresence(&b, doc, s, width); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writePresence(w io.Writer, doc persist.Document, s components.Styler, width int) error {
	p := persist.PresenceTable(doc)
	records := p.Records()
	tbl := components.NewStyledTable(records[0]...).
		WithTheme(s.Theme).
		WithPlain(s.Plain).
		WithTitle(fmt.Sprintf("%s - %s", doc.StudentInfo.FullName, doc.VideoInfo.Title)).
		WithFooter(fmt.Sprintf("%d windows of %s", len(p.Rows), timeline.FormatClock(persist.PresenceWindow)))
	if width > 0 && len(records[0]) > 1 {
		tbl.WithMaxCellWidth(max((width-12)/(len(records[0])-1)-3, 8))
	}
	for _, r := range records[1:] {
		tbl.AddRow(r...)
	}
	_, err := io.WriteString(w, tbl.Render())
	return err
}
