package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/display"
	"github.com/teranos/cruxgen/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show cruxgen version information",
		Long:  `Display version, build time, commit hash, and platform information for the cruxgen binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(out, info, false)
			}
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Rustdoc format_version: %s\n", info.RustdocFormats)
			return nil
		},
	}
}
