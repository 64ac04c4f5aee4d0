// Package commands implements the cruxgen command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/config"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

// NewRootCmd builds the cruxgen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cruxgen",
		Short: "cruxgen - type registries for Crux apps",
		Long: `cruxgen - serde type registries for Crux apps, read from rustdoc JSON.

cruxgen finds the App and Effect implementations in a crate's rustdoc
output, follows every type they can put on the wire, and writes the
registry that foreign-language code generators consume.

Available commands:
  codegen - Generate the type registry
  check   - Fail when a committed registry is out of date
  watch   - Regenerate whenever the rustdoc JSON changes
  history - Show recorded registry snapshots
  config  - Show or create configuration
  version - Show version information

Examples:
  cruxgen codegen --lib shared -o generated/types.yaml
  cruxgen codegen --doc target/doc/shared.json
  cruxgen check -o generated/types.yaml
  cruxgen watch --doc target/doc/shared.json -o generated/types.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				config.UseFile(path)
			}
			verbosity, _ := cmd.Flags().GetCount("verbose")
			if err := logger.Initialize(config.GetViper().GetBool("log.json"), verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().String("config", "", "Read only this config file instead of ~/.cruxgen and ./cruxgen.toml")
	root.PersistentFlags().Bool("json", false, "Output as JSON where supported")

	root.AddCommand(
		newCodegenCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}
