package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent bridge calls from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		action, _ := cmd.Flags().GetString("action")
		failed, _ := cmd.Flags().GetBool("failed")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, stderrLogger())
		if err != nil {
			return err
		}
		defer st.Close()

		j, err := store.OpenJournal(st.Paths().Journal)
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.Recent(cmd.Context(), store.JournalQuery{Limit: limit, Action: action, FailedOnly: failed})
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No journal entries found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-6s  %-19s  %-17s  %-10s  %-7s  %-2s  %s\n",
			"Seq", "Timestamp", "Action", "Request", "Ms", "OK", "Error")
		fmt.Fprintln(out, strings.Repeat("─", 90))

		for _, e := range entries {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-6d  %-19s  %-17s  %-10s  %-7d  %-2s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Action,
				e.RequestID,
				e.LatencyMs,
				ok,
				e.Error,
			)
		}
		return nil
	},
}

func init() {
	journalCmd.Flags().Int("limit", 50, "Maximum number of entries")
	journalCmd.Flags().String("action", "", "Only show this action")
	journalCmd.Flags().Bool("failed", false, "Only show failed calls")
}
