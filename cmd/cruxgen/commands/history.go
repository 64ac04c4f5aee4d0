package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/display"
	"github.com/teranos/cruxgen/snapshot"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded registry snapshots",
		Long:  `List the snapshots recorded by 'cruxgen codegen', newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			snaps, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), historyJSON(snaps), false)
			}
			return display.PrintHistory(cmd.OutOrStdout(), snaps)
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of snapshots to show (0 for all)")
	return cmd
}

type snapshotJSON struct {
	ID            string    `json:"id"`
	Crate         string    `json:"crate"`
	CrateVersion  string    `json:"crate_version"`
	FormatVersion uint32    `json:"format_version"`
	SourceDigest  string    `json:"source_digest"`
	Types         int       `json:"types"`
	CreatedAt     time.Time `json:"created_at"`
}

func historyJSON(snaps []snapshot.Snapshot) []snapshotJSON {
	out := make([]snapshotJSON, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotJSON{
			ID:            s.ID,
			Crate:         s.Crate,
			CrateVersion:  s.CrateVersion,
			FormatVersion: s.FormatVersion,
			SourceDigest:  s.SourceDigest,
			Types:         s.Containers,
			CreatedAt:     s.CreatedAt,
		})
	}
	return out
}
