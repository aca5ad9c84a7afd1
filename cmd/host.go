package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/store"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Serve the bridge protocol on stdin/stdout",
	Long: "Serve the store over newline-delimited JSON on stdin/stdout. Each request\n" +
		"{id, action, payload} gets a reply {id, success, payload|error}; auto-snapshot\n" +
		"results arrive as replies without an id. File dialogs answer with the paths\n" +
		"given by flags and are cancelled otherwise.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := stderrLogger()

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		journal, err := store.OpenJournal(st.Paths().Journal)
		if err != nil {
			return err
		}
		defer journal.Close()

		openPath, _ := cmd.Flags().GetString("import-file")
		savePath, _ := cmd.Flags().GetString("export-to")
		media, _ := cmd.Flags().GetStringSlice("media")
		var dialogs bridge.Dialogs = bridge.NoDialogs{}
		if openPath != "" || savePath != "" || len(media) > 0 {
			dialogs = bridge.FixedDialogs{Media: media, SavePath: savePath, OpenPath: openPath}
		}

		prefs := config.NewPreferences(cfg)
		host := bridge.NewHost(st,
			bridge.WithPreferences(prefs),
			bridge.WithDialogs(dialogs),
			bridge.WithHostLogger(logger),
		)
		srv := bridge.NewServer(bridge.NewStreamConn(os.Stdin, os.Stdout), bridge.WithJournal(host, journal, logger), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := newScheduler(cfg, prefs, st, srv, journal, logger)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()

		return srv.Serve(ctx)
	},
}

func init() {
	hostCmd.Flags().String("import-file", "", "Path returned by the importFile dialog")
	hostCmd.Flags().String("export-to", "", "Path returned by the exportFile dialog")
	hostCmd.Flags().StringSlice("media", nil, "Paths returned by the copyIntoMedia dialog")
}
