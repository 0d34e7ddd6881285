// Package encounter loads a recorded fight and classifies it into a
// timeline. It is the shared front half of the command-line tools.
package encounter

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"gw2-resim/internal/character"
	"gw2-resim/internal/classify"
	"gw2-resim/internal/config"
	"gw2-resim/internal/evtc"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/timeline"
)

// Options are the inputs of classification.
type Options struct {
	Player       string
	Baseline     character.Build
	Meta         *gamedata.Table
	Coefficients *gamedata.Coefficients
	Window       int64
	Logger       *zap.Logger
}

// Encounter is a classified fight.
type Encounter struct {
	// Log is nil when the timeline was read from a file.
	Log      *evtc.Log
	Player   evtc.Agent
	Target   evtc.Agent
	Meta     *gamedata.Table
	Timeline timeline.Sequence
}

// FromLog finds the player and the boss in log and classifies their fight.
func FromLog(ctx context.Context, log *evtc.Log, opts Options) (*Encounter, error) {
	player, err := log.FindPlayer(opts.Player)
	if err != nil {
		return nil, err
	}
	target, err := log.FindBoss()
	if err != nil {
		return nil, err
	}
	if opts.Meta == nil {
		opts.Meta = gamedata.DefaultTable()
	}
	c := classify.New(classify.Config{
		Meta:         opts.Meta,
		Coefficients: opts.Coefficients,
		Baseline:     opts.Baseline,
		Window:       opts.Window,
		Logger:       opts.Logger,
	})
	seq, err := c.Classify(ctx, log, player, target)
	if err != nil {
		return nil, err
	}
	return &Encounter{Log: log, Player: player, Target: target, Meta: opts.Meta, Timeline: seq}, nil
}

// Load reads the side tables named in cfg, then classifies the log or, when
// no log is configured, reads the stored timeline.
func Load(ctx context.Context, cfg config.Encounter, baseline character.Build, logger *zap.Logger) (*Encounter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	meta := gamedata.DefaultTable()
	if cfg.Skills != "" {
		t, err := gamedata.LoadTable(cfg.Skills)
		if err != nil {
			return nil, fmt.Errorf("skill table: %w", err)
		}
		meta = t
	}

	if cfg.Log == "" {
		seq, err := timeline.ReadFile(cfg.Timeline)
		if err != nil {
			return nil, fmt.Errorf("timeline: %w", err)
		}
		logger.Info("timeline loaded", zap.String("path", cfg.Timeline), zap.Int("events", len(seq)))
		return &Encounter{Meta: meta, Timeline: seq}, nil
	}

	coeffs := gamedata.NewCoefficients(nil)
	if cfg.Coefficients != "" {
		c, err := gamedata.LoadCoefficients(cfg.Coefficients)
		if err != nil {
			return nil, fmt.Errorf("coefficients: %w", err)
		}
		coeffs = c
	}
	log, err := evtc.Open(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", cfg.Log, err)
	}
	logger.Info("log decoded",
		zap.String("path", cfg.Log),
		zap.String("build", log.BuildVersion),
		zap.Int("records", len(log.Records)),
	)
	enc, err := FromLog(ctx, log, Options{
		Player:       cfg.Player,
		Baseline:     baseline,
		Meta:         meta,
		Coefficients: coeffs,
		Window:       cfg.WindowMillis,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("encounter classified",
		zap.String("player", enc.Player.CharacterName()),
		zap.String("target", enc.Target.Name),
		zap.Int("events", len(enc.Timeline)),
	)
	return enc, nil
}

// SkillName names id from the log's skill table, falling back to the
// condition name or the bare id.
func (e *Encounter) SkillName(id uint32) string {
	if e.Log != nil {
		if name, ok := e.Log.SkillName(id); ok && name != "" {
			return name
		}
	}
	if c, ok := gamedata.ConditionFromSkill(id); ok {
		return c.String()
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}
