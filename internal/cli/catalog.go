package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/catalog"
	"github.com/mta-tools/mta/internal/output"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/components"
)

type categoryRow struct {
	Group           string  `json:"group"`
	Step            int     `json:"step"`
	Type            string  `json:"type"`
	Label           string  `json:"label"`
	Color           string  `json:"color"`
	DefaultDuration float64 `json:"defaultDuration"`
}

func newCatalogCmd() *cobra.Command {
	var step int
	var dump bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the block categories",
		Long: `List the block categories available at a workflow step.

The built-in table can be extended or replaced with a YAML file set in
[catalog] file. Use --dump to print the current table in that format as a
starting point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			out := formatter(cmd)
			if dump {
				data, err := cat.Marshal()
				if err != nil {
					return err
				}
				out.Print(string(data))
				return nil
			}

			rows := catalogRows(cat, step)
			if out.IsJSON() {
				return out.JSON(rows)
			}

			tty, _ := writerTerminal(out.Writer())
			if !tty {
				tbl := output.NewTable(out.Writer(), "GROUP", "STEP", "TYPE", "LABEL", "DURATION", "COLOR")
				for _, r := range rows {
					tbl.AddRow(r.Group, strconv.Itoa(r.Step), r.Type, r.Label, trimSeconds(r.DefaultDuration), r.Color)
				}
				tbl.Render()
				return nil
			}

			s := styler(tty)
			tbl := components.NewStyledTable("Group", "Step", "Type", "Label", "Duration").
				WithTheme(s.Theme).
				WithPlain(s.Plain).
				WithTitle(fmt.Sprintf("Categories up to step %d", timeline.ClampStep(step))).
				WithFooter(output.CountStr(len(rows), "category", "categories"))
			for _, r := range rows {
				tbl.AddRow(r.Group, strconv.Itoa(r.Step), r.Type, s.Swatch(r.Label, r.Color), trimSeconds(r.DefaultDuration))
			}
			out.Print(tbl.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&step, "step", timeline.MaxStep, "workflow step (1-7)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the catalog as a YAML override file")
	return cmd
}

func catalogRows(cat *catalog.Catalog, step int) []categoryRow {
	rows := []categoryRow{}
	for _, g := range cat.Visible(timeline.ClampStep(step)) {
		for _, c := range g.Categories {
			rows = append(rows, categoryRow{
				Group:           g.Name,
				Step:            g.Step,
				Type:            c.Type,
				Label:           c.Label,
				Color:           c.Color,
				DefaultDuration: c.DefaultDuration,
			})
		}
	}
	return rows
}

func trimSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}
