package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/soundkit/mp3dec"
)

// batchCommand decodes each input file to a .wav file of the same base name
// in cfg.OutputDir, one decoder instance per file, run concurrently up to
// cfg.Workers at a time. Each
// instance owns its own source and bit reservoir, so there's no shared
// decoding state across goroutines to guard.
func batchCommand(log zerolog.Logger, cfg cliConfig) *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "decode multiple MP3 files to WAV concurrently",
		ArgsUsage: "<file1.mp3> [file2.mp3 ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("expected at least one input file path: got 0")
			}

			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Workers)
			for _, path := range paths {
				path := path
				g.Go(func() error {
					return batchOne(ctx, log, cfg, path)
				})
			}
			return g.Wait()
		},
	}
}

func batchOne(ctx context.Context, log zerolog.Logger, cfg cliConfig, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".wav"
	out := filepath.Join(cfg.OutputDir, name)
	if err := decodeToWAV(d, out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Info().Str("in", path).Str("out", out).Msg("batch: decoded")
	return nil
}
