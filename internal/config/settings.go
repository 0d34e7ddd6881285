package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-level knobs read from the environment.
type Settings struct {
	LogLevel     string `env:"RESIM_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"RESIM_LOG_FORMAT" envDefault:"console"`
	Concurrency  int    `env:"RESIM_CONCURRENCY"`
	OTELEndpoint string `env:"RESIM_OTEL_ENDPOINT"`
	DBPath       string `env:"RESIM_DB_PATH"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Concurrency < 0 {
		return Settings{}, fmt.Errorf("RESIM_CONCURRENCY must not be negative, got %d", s.Concurrency)
	}
	return s, nil
}
