package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/soundkit/mp3dec"
)

var errInvalidArgCount = errors.New("expected exactly one argument: input file path")

func decodeCommand(log zerolog.Logger, cfg cliConfig) *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "decode an MP3 file to WAV, or play it live with -play",
		ArgsUsage: "<file.mp3>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "-", Usage: "output WAV path (- for stdout)"},
			&cli.BoolFlag{Name: "play", Usage: "play audio live instead of writing a file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}
			path := cmd.Args().First()
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			d, err := mp3.NewDecoder(f)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", path, err)
			}

			if cmd.Bool("play") {
				return playLive(d, log)
			}
			return decodeToWAV(d, cmd.String("output"))
		},
	}
}

func playLive(d *mp3.Decoder, log zerolog.Logger) error {
	c, ready, err := oto.NewContext(d.SampleRate(), 2, 2)
	if err != nil {
		return fmt.Errorf("opening audio context: %w", err)
	}
	<-ready

	p := c.NewPlayer(d)
	defer p.Close()
	p.Play()

	log.Info().Dur("duration", d.Duration().Round(time.Second)).Msg("playing")
	for p.IsPlaying() {
		time.Sleep(200 * time.Millisecond)
	}
	return nil
}

func decodeToWAV(d *mp3.Decoder, output string) error {
	var w io.WriteSeeker
	if output == "-" {
		tmp, err := os.CreateTemp("", "mp3dec-*.wav")
		if err != nil {
			return fmt.Errorf("creating scratch file: %w", err)
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()
		w = tmp
	} else {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer file.Close()
		w = file
	}

	enc := wav.NewEncoder(w, d.SampleRate(), 16, 2, 1)
	buf := make([]byte, 4096)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: d.SampleRate()},
		Data:   make([]int, 0, len(buf)/2),
	}
	for {
		n, err := d.Read(buf)
		if n > 0 {
			intBuf.Data = intBuf.Data[:0]
			for i := 0; i < n; i += 2 {
				s := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
				intBuf.Data = append(intBuf.Data, int(s))
			}
			if err := enc.Write(intBuf); err != nil {
				return fmt.Errorf("encoding WAV: %w", err)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading decoded PCM: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing WAV encoder: %w", err)
	}

	if output == "-" {
		if seeker, ok := w.(io.Seeker); ok {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
		if _, err := io.Copy(os.Stdout, w.(io.Reader)); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
	}
	return nil
}
