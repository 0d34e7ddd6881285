package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gw2-resim/internal/character"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/sweep"
)

func TestShippedConfigsLoad(t *testing.T) {
	dir := filepath.Join("..", "..", "configs")
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	build, err := cfg.Build.ToBuild()
	if err != nil {
		t.Fatalf("to build: %v", err)
	}
	if !reflect.DeepEqual(build, character.Baseline()) {
		t.Fatalf("shipped build differs from the baseline:\n%+v\n%+v", build, character.Baseline())
	}
	if want := filepath.Join(dir, "..", "logs", "20210408-013544.evtc"); cfg.Encounter.Log != want {
		t.Fatalf("log path %q was not resolved against the config dir", cfg.Encounter.Log)
	}
	space, err := cfg.Sweep.ToSpace()
	if err != nil {
		t.Fatalf("to space: %v", err)
	}
	if !reflect.DeepEqual(space, sweep.DefaultSpace()) {
		t.Fatalf("shipped sweep differs from the default space: %+v", space)
	}
}

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

const minimalBuild = `
stats: {power: 1000, condition_damage: 1200}
active_set: 2
weapon_sets:
  - {type: two-handed, sigils: [Earth]}
  - {type: dual_wield, sigils: [malice, none]}
`

const minimalEncounter = `
player: Someone
enemy_max_health: 1000
timeline: fight.timeline
`

func TestSweepFileIsOptional(t *testing.T) {
	dir := writeConfig(t, map[string]string{"build.yaml": minimalBuild, "encounter.yaml": minimalEncounter})
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Encounter.Timeline != filepath.Join(dir, "fight.timeline") {
		t.Fatalf("unexpected timeline path %q", cfg.Encounter.Timeline)
	}
	space, err := cfg.Sweep.ToSpace()
	if err != nil {
		t.Fatalf("to space: %v", err)
	}
	if !reflect.DeepEqual(space, sweep.DefaultSpace()) {
		t.Fatalf("expected default space, got %+v", space)
	}
	build, err := cfg.Build.ToBuild()
	if err != nil {
		t.Fatalf("to build: %v", err)
	}
	want := [2][2]runes.Sigil{{runes.SigilEarth, runes.SigilNone}, {runes.SigilMalice, runes.SigilNone}}
	if build.Sigils != want || build.ActiveSet != character.WeaponSet2 {
		t.Fatalf("unexpected build %+v", build)
	}
}

func TestSweepOverrides(t *testing.T) {
	dir := writeConfig(t, map[string]string{
		"build.yaml":     minimalBuild,
		"encounter.yaml": minimalEncounter,
		"sweep.yaml":     "chests: [sinister]\ninfusion_budget: 0\npresets: [tempest]\nreplacements: []\norder: enumeration\n",
	})
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	space, err := cfg.Sweep.ToSpace()
	if err != nil {
		t.Fatalf("to space: %v", err)
	}
	if got := len(space.Candidates()); got != 1 {
		t.Fatalf("expected a single candidate, got %d", got)
	}
	if space.Chests[0] != runes.ChestSinister || space.Presets[0] != runes.PresetTempest {
		t.Fatalf("unexpected space %+v", space)
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "missing player",
			files: map[string]string{"build.yaml": minimalBuild, "encounter.yaml": "enemy_max_health: 5\nlog: a.evtc\n"},
			want:  "player name is required",
		},
		{
			name:  "unknown sigil",
			files: map[string]string{"build.yaml": strings.Replace(minimalBuild, "malice", "frailty", 1), "encounter.yaml": minimalEncounter},
			want:  `unknown sigil "frailty"`,
		},
		{
			name:  "single weapon set",
			files: map[string]string{"build.yaml": "active_set: 1\nweapon_sets: [{type: two_handed}]\n", "encounter.yaml": minimalEncounter},
			want:  "expected 2 weapon sets",
		},
		{
			name: "proc sigil as replacement",
			files: map[string]string{
				"build.yaml":     minimalBuild,
				"encounter.yaml": minimalEncounter,
				"sweep.yaml":     "replacements: [doom]\n",
			},
			want: "cannot be added",
		},
		{
			name: "bad order",
			files: map[string]string{
				"build.yaml":     minimalBuild,
				"encounter.yaml": minimalEncounter,
				"sweep.yaml":     "order: alphabetical\n",
			},
			want: "unknown result order",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.files))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestMissingBuildFile(t *testing.T) {
	dir := writeConfig(t, map[string]string{"encounter.yaml": minimalEncounter})
	if _, err := LoadConfig(dir); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("RESIM_LOG_LEVEL", "debug")
	t.Setenv("RESIM_CONCURRENCY", "3")
	t.Setenv("RESIM_DB_PATH", "/tmp/resim.db")
	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.LogLevel != "debug" || s.LogFormat != "console" || s.Concurrency != 3 || s.DBPath != "/tmp/resim.db" {
		t.Fatalf("unexpected settings %+v", s)
	}

	t.Setenv("RESIM_CONCURRENCY", "-1")
	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected error for negative concurrency")
	}
	t.Setenv("RESIM_CONCURRENCY", "many")
	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected parse error")
	}
}
