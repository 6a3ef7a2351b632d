package cli

import (
	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault()
			if err != nil {
				return err
			}
			formatter(cmd).Textln("Created config file: %s", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			out := formatter(cmd)
			if cfgFile != "" {
				out.Println(cfgFile)
				return
			}
			out.Println(config.DefaultPath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after defaults, the config file and MTA_* environment overrides.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd)
			if out.IsJSON() {
				return out.JSON(cfg)
			}
			return config.Print(cfg, out.Writer())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Long: `Print one configuration value by section or dotted key.

Examples:
  mta config get autosave.backend
  mta config get editor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetValue(cfg, args[0])
			if err != nil {
				return err
			}
			out := formatter(cmd)
			switch v.(type) {
			case string, int, float64:
				if !out.IsJSON() {
					out.Println(v)
					return nil
				}
			}
			return out.JSON(v)
		},
	})

	return cmd
}
