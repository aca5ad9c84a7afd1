package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import questions from a .json, .csv or .xlsx file",
	Long: "Import questions into items.json. JSON items are merged by id unless\n" +
		"--replace is given; CSV and spreadsheet rows are added as new items.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		sheet, _ := cmd.Flags().GetString("sheet")

		incoming, err := readItems(args[0], sheet)
		if err != nil {
			return err
		}

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
		current, err := currentItems(st)
		if err != nil {
			return err
		}

		var items []bank.Item
		switch {
		case replace:
			items = incoming
		case strings.EqualFold(filepath.Ext(args[0]), ".json"):
			items = bank.Merge(current, incoming)
		default:
			items = append(current, incoming...)
		}

		data, err := bank.Encode(items)
		if err != nil {
			return fmt.Errorf("encode items: %w", err)
		}
		if err := st.Write(ctx, store.ItemsFile, string(data)); err != nil {
			return fmt.Errorf("write items: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions; the bank now has %d.\n", len(incoming), len(items))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the bank to a .json, .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
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

		items, err := currentItems(st)
		if err != nil {
			return err
		}
		if err := writeItems(args[0], items); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d questions to %s\n", len(items), args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("replace", false, "Replace the bank instead of adding to it")
	importCmd.Flags().String("sheet", "", "Worksheet to read from a spreadsheet (default: first)")
}

// currentItems reads items.json; a missing bank is empty.
func currentItems(st *store.Store) ([]bank.Item, error) {
	raw, err := st.Read(store.ItemsFile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []bank.Item{}, nil
		}
		return nil, fmt.Errorf("read items: %w", err)
	}
	items, err := bank.ParseItems([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	return items, nil
}

func readItems(path, sheet string) ([]bank.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return bank.ImportXLSX(path, sheet)
	case ".json", ".csv":
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .json, .csv or .xlsx)", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return bank.ParseCSV(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return bank.ParseItems(data)
}

func writeItems(path string, items []bank.Item) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return bank.WriteXLSX(path, items)
	case ".json":
		b, err := bank.Encode(items)
		if err != nil {
			return fmt.Errorf("encode items: %w", err)
		}
		data = b
	case ".csv":
		s, err := bank.ToCSV(items)
		if err != nil {
			return err
		}
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported file type %q (want .json, .csv or .xlsx)", filepath.Ext(path))
	}
	if err := store.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
