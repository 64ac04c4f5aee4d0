package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/config"
	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the rustdoc JSON changes",
		Long: `Generate once, then watch the rustdoc JSON and regenerate each time it is
rewritten, for example by running

  cargo +nightly rustdoc --lib -- -Z unstable-options --output-format json

in another terminal or from an editor hook. Plain 'cargo doc' writes HTML
and does not trigger a run. Bursts of writes are collapsed using
watch.debounce_ms.

Snapshots are not recorded while watching.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindInputFlags(cmd); err != nil {
				return err
			}
			return bindFlag(config.GetViper(), cmd, "watch.debounce_ms", "debounce")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// resolve once so later runs read the same file without cargo
			path, _, err := locateDocs(ctx, cfg)
			if err != nil {
				return err
			}
			watched := *cfg
			watched.Codegen.DocJSON = path

			if _, err := codegenOnce(ctx, cmd, &watched, codegenOptions{}); err != nil {
				return err
			}
			return watch(ctx, cmd, &watched)
		},
	}
	inputFlags(cmd)
	cmd.Flags().Int("debounce", int(watcher.DefaultDebounce.Milliseconds()), "Milliseconds to wait for writes to settle")
	return cmd
}

// watch blocks until ctx is done, regenerating on every change to the
// configured rustdoc JSON.
func watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	log := logger.ComponentLogger("watcher")
	w, err := watcher.New(cfg.Codegen.DocJSON, func(ctx context.Context) error {
		_, err := codegenOnce(ctx, cmd, cfg, codegenOptions{})
		return err
	}, watcher.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	w.Start(ctx)
	log.Infow("Watching for changes", logger.FieldFile, cfg.Codegen.DocJSON)
	<-ctx.Done()
	return w.Stop()
}
