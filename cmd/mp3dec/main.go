// Package main provides the mp3dec CLI: decode, probe and batch-decode
// MPEG-1 Layer III streams.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("mp3dec: loading config")
	}

	app := &cli.Command{
		Name:  "mp3dec",
		Usage: "decode, probe and batch-convert MPEG-1 Layer III streams",
		Commands: []*cli.Command{
			decodeCommand(log, cfg),
			probeCommand(log),
			batchCommand(log, cfg),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mp3dec: %v\n", err)
		os.Exit(1)
	}
}
