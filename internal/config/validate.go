package config

import (
	"errors"
	"fmt"

	"gw2-resim/internal/sweep"
)

func (cfg *Config) validate() error {
	return errors.Join(
		cfg.Build.validate(),
		cfg.Encounter.validate(),
		cfg.Sweep.validate(),
	)
}

func (b *Build) validate() error {
	var errs []error
	if len(b.WeaponSets) != 2 {
		errs = append(errs, fmt.Errorf("build: expected 2 weapon sets, got %d", len(b.WeaponSets)))
	}
	if b.ActiveSet != 1 && b.ActiveSet != 2 {
		errs = append(errs, fmt.Errorf("build: active_set must be 1 or 2, got %d", b.ActiveSet))
	}
	for i, ws := range b.WeaponSets {
		if len(ws.Sigils) > 2 {
			errs = append(errs, fmt.Errorf("build: weapon set %d has %d sigils", i+1, len(ws.Sigils)))
		}
	}
	if b.Durations.Global < 0 {
		errs = append(errs, fmt.Errorf("build: negative global condition duration %v", b.Durations.Global))
	}
	if _, err := b.ToBuild(); err != nil {
		errs = append(errs, fmt.Errorf("build: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Encounter) validate() error {
	var errs []error
	if e.Player == "" {
		errs = append(errs, errors.New("encounter: player name is required"))
	}
	if e.EnemyMaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("encounter: enemy_max_health must be positive, got %d", e.EnemyMaxHealth))
	}
	if e.Log == "" && e.Timeline == "" {
		errs = append(errs, errors.New("encounter: one of log or timeline is required"))
	}
	if e.WindowMillis < 0 {
		errs = append(errs, fmt.Errorf("encounter: negative window_ms %d", e.WindowMillis))
	}
	return errors.Join(errs...)
}

func (s *Sweep) validate() error {
	var errs []error
	if _, err := sweep.ParseOrder(s.Order); err != nil {
		errs = append(errs, fmt.Errorf("sweep: %w", err))
	}
	if s.Top < 0 {
		errs = append(errs, fmt.Errorf("sweep: negative top %d", s.Top))
	}
	space, err := s.ToSpace()
	if err != nil {
		errs = append(errs, err)
	} else if err := space.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sweep: %w", err))
	}
	return errors.Join(errs...)
}
