package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/qbank/internal/app"
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/snapshot"
	"github.com/abhisek/qbank/internal/store"
)

// runApp opens the store, starts the host and the scheduler on one side of
// an in-memory bridge, and runs the TUI on the other.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := fileLogger(cfg.Data.Dir)
	if err != nil {
		return err
	}
	defer closeLog()

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

	prefs := config.NewPreferences(cfg)
	dialogs := app.NewPromptDialogs()
	host := bridge.NewHost(st,
		bridge.WithPreferences(prefs),
		bridge.WithDialogs(dialogs),
		bridge.WithHostLogger(logger),
	)
	client, srv := bridge.Loopback(bridge.WithJournal(host, journal, logger), logger)

	sched := newScheduler(cfg, prefs, st, srv, journal, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(gctx)
	})
	if err := sched.Start(gctx); err != nil {
		cancel()
		client.Close()
		_ = g.Wait()
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	g.Go(func() error {
		defer cancel()
		defer client.Close()
		env := &screen.Env{
			State:  controller.New(session.WithExamSize(cfg.Exam.Size)),
			Client: client,
			Ctx:    gctx,
		}
		return app.Run(gctx, env, dialogs)
	})

	err = g.Wait()
	logger.Info("qbank exited", "error", err)
	return err
}

// newScheduler builds the auto-snapshot scheduler and keeps it in step with
// the persisted toggle.
func newScheduler(cfg config.Config, prefs *config.Preferences, st *store.Store, n snapshot.Notifier, journal *store.Journal, logger *slog.Logger) *snapshot.Scheduler {
	sched := snapshot.New(st, n,
		snapshot.WithInterval(cfg.Snapshots.Interval),
		snapshot.WithKeep(cfg.Snapshots.Keep),
		snapshot.WithEnabled(prefs.AutoSnapshots()),
		snapshot.WithJournal(journal),
		snapshot.WithLogger(logger),
	)
	prefs.OnAutoSnapshots(sched.SetEnabled)
	return sched
}
