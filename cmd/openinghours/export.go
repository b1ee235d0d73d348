package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/tui"
)

func runExport(args []string) error {
	var dbPath, outputPath, format, prefix string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to .db file (required)")
	fs.StringVar(&outputPath, "output", "", `Output file path (default: same dir as db, "-" = stdout)`)
	fs.StringVar(&format, "format", "csv", "Export format: csv or json")
	fs.StringVar(&prefix, "prefix", "", "Only export ids under this prefix, e.g. 0.periods")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: openinghours export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  openinghours export -db ./state/openinghours_20261018_093005.db\n")
		fmt.Fprintf(os.Stderr, "  openinghours export -db shops.db -format json -prefix 0 -output -\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format: %s (csv or json)", format)
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening db: %w", err)
	}

	if outputPath == "" {
		dir := filepath.Dir(dbPath)
		base := strings.TrimSuffix(filepath.Base(dbPath), ".db")
		outputPath = filepath.Join(dir, base+"."+format)
	}

	store, err := state.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("loading db: %w", err)
	}
	defer store.Close()

	entries, err := store.List(context.Background(), prefix)
	if err != nil {
		return fmt.Errorf("listing states: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no states found in database")
	}

	var w io.Writer = os.Stdout
	if outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "json" {
		err = state.WriteJSON(w, entries)
	} else {
		err = state.WriteCSV(w, entries)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}

	if outputPath != "-" {
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), outputPath)
	}
	return nil
}

func runExplore(args []string) error {
	var dbPath string

	fs := flag.NewFlagSet("explore", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to .db file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if dbPath == "" && fs.NArg() > 0 {
		dbPath = fs.Arg(0)
	}
	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening db: %w", err)
	}
	return tui.RunExplorer(dbPath)
}
