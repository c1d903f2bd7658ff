// Command panel pulls, builds and stores one configured panel, then writes
// it as <out>/<name>.csv and <out>/<name>.xlsx.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"FinPanel/internal/di"
	"FinPanel/internal/service/export"
	"FinPanel/pkg/config"
	applogger "FinPanel/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	name := flag.String("name", "", "panel to build (default: every configured panel)")
	end := flag.String("end", "", "last date to include, YYYY-MM-DD (default: today)")
	out := flag.String("out", "", "output directory (default: pipeline.output_dir)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	dir := *out
	if dir == "" {
		dir = cfg.Pipeline.OutputDir
	}

	r, cleanup, err := di.InitializeRunner(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, r, *name, *end, dir)
	stop()
	cleanup()
	if err != nil {
		log.Printf("panel: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, r *di.Runner, name, end, dir string) error {
	names := r.Catalog.Names()
	if name != "" {
		names = []string{name}
	}

	for _, n := range names {
		def, err := r.Catalog.Get(n)
		if err != nil {
			return err
		}
		b, err := r.Pipeline.Rebuild(ctx, n, end)
		if err != nil {
			return err
		}

		for _, ext := range []string{".csv", ".xlsx"} {
			path := filepath.Join(dir, n+ext)
			if err := export.ToFile(path, b.Panel, def.Descriptions()); err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			r.Logger.Info("panel written",
				applogger.String("panel", n),
				applogger.String("path", path),
				applogger.Int("rows", b.Panel.Len()),
				applogger.Int("columns", len(b.Panel.Columns)),
			)
		}
	}
	return nil
}
