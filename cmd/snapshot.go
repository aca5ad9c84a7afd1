package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy items.json and history.json into the snapshots folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, stderrLogger())
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap store: %w", err)
		}
		files, err := st.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintln(out, f)
		}

		keep := cfg.Snapshots.Keep
		if cmd.Flags().Changed("keep") {
			keep, _ = cmd.Flags().GetInt("keep")
		}
		removed, err := st.PruneSnapshots(ctx, keep)
		if err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		if len(removed) > 0 {
			fmt.Fprintf(out, "pruned %d old snapshot files\n", len(removed))
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().Int("keep", 0, "Snapshot stamps to keep (default from config, 0 keeps all)")
}
