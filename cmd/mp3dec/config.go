package main

import (
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// cliConfig holds the handful of knobs the mp3dec CLI exposes beyond its
// per-invocation flags, loaded from defaults and then overridden by any
// MP3DEC_-prefixed environment variable.
type cliConfig struct {
	OutputDir string
	Workers   int
}

func loadConfig() (cliConfig, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output.dir": ".",
		"workers":    4,
	}, "."), nil); err != nil {
		return cliConfig{}, err
	}
	if err := k.Load(env.Provider("MP3DEC_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MP3DEC_")), "_", ".")
	}), nil); err != nil {
		return cliConfig{}, err
	}
	return cliConfig{
		OutputDir: k.String("output.dir"),
		Workers:   k.Int("workers"),
	}, nil
}
