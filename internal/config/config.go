// Package config loads the YAML files and environment settings shared by the
// command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Stats holds the base attributes of a build.
type Stats struct {
	Power           int `yaml:"power"`
	Precision       int `yaml:"precision"`
	Ferocity        int `yaml:"ferocity"`
	ConditionDamage int `yaml:"condition_damage"`
	Expertise       int `yaml:"expertise"`
	Concentration   int `yaml:"concentration"`
}

// WeaponSet describes one land weapon set.
type WeaponSet struct {
	Type   string   `yaml:"type"`
	Sigils []string `yaml:"sigils"`
}

// GatedDuration is a condition duration bonus active only under a buff.
type GatedDuration struct {
	Condition string  `yaml:"condition"`
	BuffID    uint32  `yaml:"buff_id"`
	Bonus     float64 `yaml:"bonus"`
}

// Build is the gear and trait setup worn in the recorded fight.
type Build struct {
	Stats      Stats       `yaml:"stats"`
	ActiveSet  int         `yaml:"active_set"`
	WeaponSets []WeaponSet `yaml:"weapon_sets"`
	Durations  struct {
		Global       float64            `yaml:"global"`
		PerCondition map[string]float64 `yaml:"per_condition"`
		Gated        []GatedDuration    `yaml:"gated"`
	} `yaml:"condition_duration"`
	DamageBonus map[string]float64 `yaml:"condition_damage_bonus"`
}

// Encounter names the recorded fight and its side tables.
type Encounter struct {
	Log            string `yaml:"log"`
	Player         string `yaml:"player"`
	EnemyMaxHealth int64  `yaml:"enemy_max_health"`
	Coefficients   string `yaml:"coefficients"`
	Skills         string `yaml:"skills"`
	Timeline       string `yaml:"timeline"`
	WindowMillis   int64  `yaml:"window_ms"`
}

// Sweep holds the axes of a build sweep and its output options.
type Sweep struct {
	Chests         []string `yaml:"chests"`
	InfusionBudget *int     `yaml:"infusion_budget"`
	Presets        []string `yaml:"presets"`
	Replacements   []string `yaml:"replacements"`
	Order          string   `yaml:"order"`
	Top            int      `yaml:"top"`
	OutputCSV      string   `yaml:"output_csv"`
}

// Config holds all configuration.
type Config struct {
	Build     Build
	Encounter Encounter
	Sweep     Sweep
}

// LoadConfig loads build.yaml, encounter.yaml and the optional sweep.yaml
// from configDir. Relative paths inside encounter.yaml resolve against
// configDir.
func LoadConfig(configDir string) (*Config, error) {
	cfg := &Config{}

	if err := loadFile(filepath.Join(configDir, "build.yaml"), &cfg.Build); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(configDir, "encounter.yaml"), &cfg.Encounter); err != nil {
		return nil, err
	}
	err := loadFile(filepath.Join(configDir, "sweep.yaml"), &cfg.Sweep)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg.Encounter.resolve(configDir)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (e *Encounter) resolve(dir string) {
	for _, p := range []*string{&e.Log, &e.Coefficients, &e.Skills, &e.Timeline} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
