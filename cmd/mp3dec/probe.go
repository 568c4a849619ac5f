package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/soundkit/mp3dec"
)

func probeCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "print format info for an MP3 file without decoding audio",
		ArgsUsage: "<file.mp3>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}
			path := cmd.Args().First()
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			info, err := mp3.GetFormatInfo(data)
			if err != nil {
				return fmt.Errorf("probing %s: %w", path, err)
			}

			fmt.Printf("file:        %s\n", path)
			fmt.Printf("sample rate: %d Hz\n", info.SampleRate)
			fmt.Printf("channels:    %d\n", info.NumChannels)
			fmt.Printf("frames:      %d\n", info.FrameCount)
			fmt.Printf("samples:     %d\n", info.NumSamples)
			log.Debug().Str("file", path).Int("frames", info.FrameCount).Msg("probed")
			return nil
		},
	}
}
