package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"gw2-resim/internal/character"
	"gw2-resim/internal/cli"
	"gw2-resim/internal/config"
	"gw2-resim/internal/encounter"
	"gw2-resim/internal/engine"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/report"
)

func main() {
	configDir := flag.String("config-dir", "./configs", "Path to config directory")
	playerFlag := flag.String("player", "", "Character name (defaults to encounter.yaml value)")
	logFlag := flag.String("log", "", "Combat log path (defaults to encounter.yaml value)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := cli.Start(ctx, "resim-simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	code := run(ctx, env.Logger, *configDir, *playerFlag, *logFlag)
	env.Close()
	os.Exit(code)
}

func run(ctx context.Context, logger *zap.Logger, configDir, player, logPath string) int {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}
	if player != "" {
		cfg.Encounter.Player = player
	}
	if logPath != "" {
		cfg.Encounter.Log = logPath
	}

	build, err := cfg.Build.ToBuild()
	if err != nil {
		logger.Error("invalid build", zap.Error(err))
		return 1
	}
	enc, err := encounter.Load(ctx, cfg.Encounter, build, logger)
	if err != nil {
		logger.Error("failed to load encounter", zap.Error(err), zap.Stringer("kind", faults.KindOf(err)))
		return 1
	}

	sim := engine.NewSimulator(build, cfg.Encounter.EnemyMaxHealth, engine.Exclusions{}, enc.Meta, logger)
	dist, err := sim.Run(enc.Timeline)
	if err != nil {
		logger.Error("resim failed", zap.Error(err), zap.Stringer("kind", faults.KindOf(err)))
		return 1
	}

	if enc.Log != nil {
		fmt.Printf("Player: %s vs %s\n", enc.Player.CharacterName(), enc.Target.Name)
	}
	fmt.Printf("Events: %s, Duration: %.1fs\n", humanize.Comma(int64(len(enc.Timeline))), dist.Duration.Seconds())
	for i, sigils := range build.Sigils {
		fmt.Printf("%s: %s [%s;%s]\n", character.WeaponSet(i), build.WeaponTypes[i], sigils[0], sigils[1])
	}
	fmt.Println()
	if err := report.Breakdown(os.Stdout, dist, enc.SkillName); err != nil {
		logger.Error("failed to print breakdown", zap.Error(err))
		return 1
	}
	return 0
}
