package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/output"
)

// VersionResponse is the JSON form of mta version.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(formatter(cmd), short)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

func runVersion(out *output.Formatter, short bool) error {
	resp := VersionResponse{
		Version:   Version,
		Commit:    Commit,
		BuiltAt:   Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if out.IsJSON() {
		return out.JSON(resp)
	}

	if short {
		out.Println(resp.Version)
		return nil
	}
	out.Textln("mta version %s", resp.Version)
	out.Textln("  commit:    %s", resp.Commit)
	out.Textln("  built:     %s", resp.BuiltAt)
	out.Textln("  go:        %s", resp.GoVersion)
	out.Textln("  platform:  %s", resp.Platform)
	return nil
}
