package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/config"
	"github.com/teranos/cruxgen/display"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create cruxgen configuration",
		Long: `Configuration is merged from ~/.cruxgen/cruxgen.toml, then the nearest
cruxgen.toml above the working directory, then CRUXGEN_* environment
variables, then command line flags.`,
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if display.ShouldOutputJSON(cmd) {
				settings := map[string]string{}
				for _, kv := range config.Settings() {
					settings[kv[0]] = kv[1]
				}
				return display.WriteJSON(out, map[string]any{
					"sources":  config.Sources(),
					"settings": settings,
				}, false)
			}

			sources := config.Sources()
			if len(sources) == 0 {
				fmt.Fprintln(out, pterm.Info.Sprint("No config files found, using defaults"))
			}
			for _, s := range sources {
				fmt.Fprintln(out, pterm.Info.Sprintf("Loaded %s", s))
			}

			data := pterm.TableData{{"Key", "Value"}}
			for _, kv := range config.Settings() {
				data = append(data, []string{kv[0], kv[1]})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, table)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a cruxgen.toml with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Wrote %s", abs))
			return nil
		},
	}
}
