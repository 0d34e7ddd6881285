package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"gw2-resim/internal/cli"
	"gw2-resim/internal/config"
	"gw2-resim/internal/encounter"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/timeline"
)

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	outPath := flag.String("out", "", "Timeline output path (defaults to encounter.yaml timeline)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := cli.Start(ctx, "resim-extract")
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	code := run(ctx, env.Logger, *configDir, *outPath)
	env.Close()
	os.Exit(code)
}

func run(ctx context.Context, logger *zap.Logger, configDir, out string) int {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}
	if cfg.Encounter.Log == "" {
		logger.Error("encounter.yaml names no combat log to extract from")
		return 1
	}
	if out == "" {
		out = cfg.Encounter.Timeline
	}
	if out == "" {
		logger.Error("no output path: pass -out or set timeline in encounter.yaml")
		return 1
	}

	build, err := cfg.Build.ToBuild()
	if err != nil {
		logger.Error("invalid build", zap.Error(err))
		return 1
	}
	enc, err := encounter.Load(ctx, cfg.Encounter, build, logger)
	if err != nil {
		logger.Error("failed to classify log", zap.Error(err), zap.Stringer("kind", faults.KindOf(err)))
		return 1
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		logger.Error("failed to create output dir", zap.Error(err))
		return 1
	}
	if err := timeline.WriteFile(out, enc.Timeline); err != nil {
		logger.Error("failed to write timeline", zap.String("path", out), zap.Error(err))
		return 1
	}
	var size string
	if info, err := os.Stat(out); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}

	fmt.Printf("Timeline written to %s (%s)\n\n", out, size)
	counts := enc.Timeline.Count()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Kind\tEvents\n")
	for _, kind := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "%s\t%s\n", kind, humanize.Comma(int64(counts[kind])))
	}
	fmt.Fprintf(w, "Total\t%s\n", humanize.Comma(int64(len(enc.Timeline))))
	if err := w.Flush(); err != nil {
		logger.Error("failed to print counts", zap.Error(err))
		return 1
	}
	return 0
}
