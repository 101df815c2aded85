package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the knobs read from the environment rather than flags or
// files: where runs land on disk, the event log, and terminal styling
// overrides.
type Env struct {
	DataDir string `env:"CLTLAB_DATA" envDefault:".cltlab"`
	Theme   string `env:"CLTLAB_THEME"`
	LogFile string `env:"CLTLAB_LOG"`
	NoColor bool   `env:"CLTLAB_NO_COLOR"`
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}
