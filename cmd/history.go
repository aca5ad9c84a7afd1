package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		mode, _ := cmd.Flags().GetString("mode")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, stderrLogger())
		if err != nil {
			return err
		}
		defer st.Close()

		raw := st.History()
		current := st.Fingerprint()
		out := cmd.OutOrStdout()
		if len(raw) == 0 {
			fmt.Fprintln(out, "No sessions recorded.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-19s  %-8s  %-9s  %5s  %-7s  %s\n", "Ended", "Mode", "Correct", "Score", "Bank", "Session")
		fmt.Fprintln(out, strings.Repeat("─", 93))

		shown := 0
		for i := len(raw) - 1; i >= 0; i-- {
			if limit > 0 && shown >= limit {
				break
			}
			var rec session.HistoryRecord
			if err := json.Unmarshal(raw[i], &rec); err != nil {
				continue
			}
			if mode != "" && string(rec.Mode) != mode {
				continue
			}
			fmt.Fprintf(out, "%-19s  %-8s  %-9s  %4d%%  %-7s  %s\n",
				rec.EndedAt.Local().Format("2006-01-02 15:04:05"),
				rec.Mode,
				fmt.Sprintf("%d/%d", rec.Summary.Correct, rec.Summary.Total),
				rec.Summary.Percent,
				bankState(rec.Version, current),
				rec.SessionID,
			)
			shown++
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions to show (0 = all)")
	historyCmd.Flags().String("mode", "", "Only show practice or exam sessions")
}

// bankState compares the bank fingerprint a session ran against with the
// current items.json.
func bankState(version, current string) string {
	switch {
	case version == "" || current == "":
		return "-"
	case version == current:
		return "same"
	}
	return "changed"
}
