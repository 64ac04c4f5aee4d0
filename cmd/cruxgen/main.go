package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/teranos/cruxgen/cmd/cruxgen/commands"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

func main() {
	defer logger.Cleanup()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, pterm.Error.Sprint(err))
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, pterm.Info.Sprint(hint))
		}
		logger.Cleanup()
		os.Exit(1)
	}
}
