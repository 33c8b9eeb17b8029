// Command import-cams replaces the cam catalog with the contents of a JSON
// file:
//
//	import-cams -file cams.json
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/i474232898/surfcams/internal/cams"
	"github.com/i474232898/surfcams/internal/config"
	"github.com/i474232898/surfcams/internal/logging"
	"github.com/i474232898/surfcams/internal/store"
)

func main() {
	file := flag.String("file", "cams.json", "catalog JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr := logging.New(cfg, "import-cams")

	if cfg.StoreDriver != "sqlite" {
		logr.Error("import needs a persistent store", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logr.Error("opening catalog", "file", *file, "error", err)
		os.Exit(1)
	}
	catalog, err := cams.DecodeCatalog(f)
	f.Close()
	if err != nil {
		logr.Error("reading catalog", "file", *file, "error", err)
		os.Exit(1)
	}

	s, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		logr.Error("opening store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	categories := catalog.Categories()
	if err := s.ReplaceCatalog(ctx, categories); err != nil {
		logr.Error("replacing catalog", "error", err)
		os.Exit(1)
	}

	stored, err := s.ListCams(ctx)
	if err != nil {
		logr.Error("counting cams", "error", err)
		os.Exit(1)
	}
	logr.Info("catalog imported", "categories", len(categories), "cams", len(stored), "path", cfg.SQLitePath)
}
