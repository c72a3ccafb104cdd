package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-quake-scene/internal/config"
	"github.com/mr1hm/go-quake-scene/internal/ingestion"
	"github.com/mr1hm/go-quake-scene/internal/logging"
	"github.com/mr1hm/go-quake-scene/internal/report"
	"github.com/mr1hm/go-quake-scene/internal/repository"
	"github.com/mr1hm/go-quake-scene/internal/store"
)

const usage = `usage:
  quake-catalog import [-db path] batch.json...
  quake-catalog histogram [-db path] [-out file.png] [-bins n] [batch.json...]`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "import":
		err = runImport(ctx, cfg, os.Args[2:])
	case "histogram":
		err = runHistogram(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logging.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// runImport stores each file as a batch named after the file, e.g. 2012.json -> "2012".
func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", cfg.Catalog.Path, "catalogue database path")
	fs.Parse(args) //nolint:errcheck // ExitOnError

	if *dbPath == "" {
		return fmt.Errorf("no catalogue path: pass -db or set CATALOG_PATH")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no batch files given")
	}

	db, err := repository.NewSQLiteDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range fs.Args() {
		src := &ingestion.FileSource{Path: path}
		events, err := src.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", path, err)
		}
		name := batchName(path)
		n, err := db.ImportBatch(ctx, name, events)
		if err != nil {
			return fmt.Errorf("error importing %s: %w", path, err)
		}
		slog.Info("batch imported", "batch", name, "events", n)
	}
	return nil
}

func runHistogram(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("histogram", flag.ExitOnError)
	dbPath := fs.String("db", cfg.Catalog.Path, "catalogue database path")
	out := fs.String("out", "magnitudes.png", "output image")
	bins := fs.Int("bins", 20, "number of histogram bins")
	fs.Parse(args) //nolint:errcheck // ExitOnError

	var sources []store.Source
	for _, path := range fs.Args() {
		sources = append(sources, &ingestion.FileSource{Path: path})
	}
	if *dbPath != "" {
		db, err := repository.NewSQLiteDB(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		names, err := db.Batches(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			sources = append(sources, &repository.CatalogSource{Catalog: db, Batch: name})
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no batches given")
	}

	events, err := store.New().Load(ctx, sources...)
	if err != nil {
		return err
	}
	if err := report.WriteMagnitudeHistogram(*out, events, *bins); err != nil {
		return err
	}
	slog.Info("histogram written", "path", *out, "events", len(events))
	return nil
}

func batchName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
