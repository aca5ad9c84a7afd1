package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/snapshot"
	"github.com/abhisek/qbank/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Offline question bank and exam trainer",
	Long: "qbank keeps a multiple-choice question bank on local disk and runs practice and\n" +
		"exam sessions over it in the terminal, with history and automatic snapshots.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Data directory (overrides QBANK_HOME and the config file)")

	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and env, then applies --data.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		cfg.Data.Dir = p
	}
	cfg.Snapshots.Interval = snapshot.ClampInterval(cfg.Snapshots.Interval)
	return cfg, nil
}

// openStore opens the document store seeded with the bundled bank.
func openStore(cfg config.Config, logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Data.Dir, store.WithSeed(bank.Seed()), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// stderrLogger is the logger of the one-shot subcommands.
func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fileLogger writes JSON logs to qbank.log under dir. The terminal belongs
// to the UI, so nothing is logged to stderr.
func fileLogger(dir string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, store.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), f.Close, nil
}
