package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"gw2-resim/internal/cli"
	"gw2-resim/internal/config"
	"gw2-resim/internal/encounter"
	"gw2-resim/internal/engine"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/report"
	"gw2-resim/internal/storage/sqlite"
	"gw2-resim/internal/sweep"
)

// progressEvery is how many finished candidates pass between progress logs.
const progressEvery = 1000

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	concurrency := flag.Int("concurrency", 0, "Concurrent resims (0 = RESIM_CONCURRENCY or num CPU)")
	order := flag.String("order", "", "Result order: damage|enumeration (defaults to sweep.yaml)")
	top := flag.Int("top", -1, "Rows to print (-1 = sweep.yaml value, 0 = all)")
	output := flag.String("output", "", "CSV output path (defaults to sweep.yaml output_csv)")
	dbPath := flag.String("db", "", "SQLite database to store the run in (defaults to RESIM_DB_PATH)")
	label := flag.String("label", "", "Label stored with the run")
	breakdown := flag.Int("breakdown", 10, "Results whose per-source damage is stored")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := cli.Start(ctx, "resim-sweep")
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	code := run(ctx, env, *configDir, flags{
		concurrency: *concurrency,
		order:       *order,
		top:         *top,
		output:      *output,
		db:          *dbPath,
		label:       *label,
		breakdown:   *breakdown,
	})
	env.Close()
	os.Exit(code)
}

type flags struct {
	concurrency int
	order       string
	top         int
	output      string
	db          string
	label       string
	breakdown   int
}

func run(ctx context.Context, env *cli.Env, configDir string, f flags) int {
	logger := env.Logger

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}
	if f.order != "" {
		cfg.Sweep.Order = f.order
	}
	if f.top >= 0 {
		cfg.Sweep.Top = f.top
	}
	if f.output != "" {
		cfg.Sweep.OutputCSV = f.output
	}
	if f.db == "" {
		f.db = env.Settings.DBPath
	}

	baseline, err := cfg.Build.ToBuild()
	if err != nil {
		logger.Error("invalid build", zap.Error(err))
		return 1
	}
	space, err := cfg.Sweep.ToSpace()
	if err != nil {
		logger.Error("invalid sweep", zap.Error(err))
		return 1
	}
	ord, err := sweep.ParseOrder(cfg.Sweep.Order)
	if err != nil {
		logger.Error("invalid order", zap.Error(err))
		return 1
	}

	enc, err := encounter.Load(ctx, cfg.Encounter, baseline, logger)
	if err != nil {
		logger.Error("failed to load encounter", zap.Error(err), zap.Stringer("kind", faults.KindOf(err)))
		return 1
	}

	var lastLogged atomic.Int64
	explorer := &sweep.Explorer{
		Space:       space,
		Baseline:    baseline,
		MaxHealth:   cfg.Encounter.EnemyMaxHealth,
		Meta:        enc.Meta,
		Concurrency: env.Concurrency(f.concurrency),
		Order:       ord,
		Logger:      logger,
		Progress: func(done, total int) {
			if done%progressEvery != 0 && done != total {
				return
			}
			if lastLogged.Swap(int64(done)) >= int64(done) {
				return
			}
			logger.Info("sweep progress",
				zap.String("done", humanize.Comma(int64(done))),
				zap.String("total", humanize.Comma(int64(total))),
			)
		},
	}

	rep, err := explorer.Run(ctx, enc.Timeline)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("sweep interrupted")
		} else {
			logger.Error("sweep failed", zap.Error(err), zap.Stringer("kind", faults.KindOf(err)))
		}
		return 1
	}

	fmt.Printf("Build sweep %s\n", rep.RunID)
	fmt.Printf("Candidates: %s, finished in %s (%s)\n\n",
		humanize.Comma(int64(len(rep.Results))),
		rep.Elapsed.Round(time.Millisecond),
		humanize.Time(rep.Started),
	)
	var base *sweep.Result
	if b, ok := rep.Baseline(); ok {
		base = &b
	}
	if err := report.Results(os.Stdout, rep.Results, cfg.Sweep.Top, base); err != nil {
		logger.Error("failed to print results", zap.Error(err))
		return 1
	}
	if best, ok := rep.Best(); ok {
		fmt.Printf("\nBest: %s\n", best.Candidate)
		if err := report.Breakdown(os.Stdout, sourcesOf(best), enc.SkillName); err != nil {
			logger.Error("failed to print breakdown", zap.Error(err))
			return 1
		}
	}

	if cfg.Sweep.OutputCSV != "" {
		if err := report.WriteCSVFile(cfg.Sweep.OutputCSV, rep.Results); err != nil {
			logger.Error("failed to write csv", zap.Error(err))
			return 1
		}
		logger.Info("csv written", zap.String("path", cfg.Sweep.OutputCSV))
	}

	if f.db != "" {
		if err := save(ctx, f.db, f.label, len(enc.Timeline), rep, f.breakdown); err != nil {
			logger.Error("failed to store run", zap.String("db", f.db), zap.Error(err))
			return 1
		}
		logger.Info("run stored", zap.String("db", f.db), zap.Stringer("run", rep.RunID))
	}
	return 0
}

func save(ctx context.Context, path, label string, events int, rep *sweep.Report, breakdown int) error {
	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveReport(ctx, label, events, rep, breakdown)
}

func sourcesOf(res sweep.Result) *engine.DamageDistribution {
	dist := engine.NewDamageDistribution()
	for id, dmg := range res.BySource {
		dist.Add(id, dmg)
	}
	return dist
}
