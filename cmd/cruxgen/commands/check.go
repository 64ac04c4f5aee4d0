package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/display"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/registry"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail when the committed registry is out of date",
		Long: `Regenerate the registry in memory and compare it with the file named by
--output (or codegen.output). Nothing is written. Exits non-zero when the
two differ, which makes it suitable for CI.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error { return bindInputFlags(cmd) },
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Codegen.Output == "" {
				return errors.WithHint(
					errors.New("check needs the registry file to compare against"),
					"pass --output or set codegen.output",
				)
			}

			enc, err := outputEncoding(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			path, crateVersion, err := locateDocs(ctx, cfg)
			if err != nil {
				return err
			}
			r, err := generate(ctx, cfg, path, crateVersion, "")
			if err != nil {
				return err
			}

			res, err := registry.Check(r.Result.Registry, cfg.Codegen.Output, enc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case display.ShouldOutputJSON(cmd):
				if err := display.WriteJSON(out, res, false); err != nil {
					return err
				}
			case res.UpToDate:
				fmt.Fprintln(out, pterm.Success.Sprintf("%s is up to date", res.Path))
			default:
				fmt.Fprintln(out, pterm.Error.Sprintf("%s is out of date", res.Path))
				display.PrintChanges(out, res.Changes)
			}
			return res.Err()
		},
	}
	inputFlags(cmd)
	return cmd
}
