package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/output"
	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported analysis into the autosave store",
		Long: `Validate an exported analysis (JSON, or YAML by extension) and store it
under the autosave key, replacing what was there. Nothing is written when
the file is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			doc, err := readDocument(path)
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			project := timeline.NewProject(doc.Student(), nil)
			mgr := persist.NewManager(store, project, persist.WithKey(cfg.Autosave.Key))
			if _, err := mgr.ImportFile(path); err != nil {
				return err
			}
			if err := mgr.Save(ctx); err != nil {
				return err
			}

			blocks := 0
			for _, l := range project.Snapshot().Layers {
				blocks += len(l.Blocks)
			}
			out := formatter(cmd)
			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"key":     mgr.Key(),
					"student": doc.StudentInfo.FullName,
					"blocks":  blocks,
				})
			}
			tty, _ := writerTerminal(out.Writer())
			out.Println(styler(tty).Success(fmt.Sprintf("imported %s for %s into %q",
				output.CountStr(blocks, "block", "blocks"), doc.StudentInfo.FullName, mgr.Key())))
			return nil
		},
	}
}
