// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mp3

import (
	"github.com/pkg/errors"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frame"
	"github.com/soundkit/mp3dec/internal/reservoir"
)

// DecodeFrame and DecodeWhole below are a byte-slice oriented alternative
// to the io.Reader streaming API (Read/Seek): a Decoder used this way
// should not also be driven through Read, since both share the same
// reservoir and synthesis-history fields.

// SideInformation is a read-only summary of one decoded frame's granule
// side-information, returned alongside a FrameHeader by DecodeFrame.
type SideInformation struct {
	MainDataBegin int
	BlockType     [2][2]int
}

// FrameHeader is a read-only summary of one decoded frame's header fields.
type FrameHeader struct {
	SampleRate  int
	NumChannels int
}

// DecodeFrame decodes a single frame starting at the beginning of data,
// writing up to 1152 samples per channel into out (mono sources only fill
// channel 0). It returns the number of bytes of data consumed so the
// caller can slice data[bytesConsumed:] for the next call. Reservoir and
// synthesis state persist on the Decoder across calls; use Reset to start
// over.
func (d *Decoder) DecodeFrame(data []byte, out *[2][1152]float32) (bytesConsumed int, header FrameHeader, side SideInformation, err error) {
	if d.reservoir == nil {
		d.reservoir = reservoir.New()
	}
	src := &sliceSource{data: data}
	f, _, rerr := frame.Read(src, 0, d.frame, d.reservoir)
	if rerr != nil {
		if _, ok := rerr.(*consts.EndOfStream); ok {
			return src.pos, FrameHeader{}, SideInformation{}, errEndOfStream
		}
		if _, ok := rerr.(*consts.UnexpectedEOF); ok {
			return src.pos, FrameHeader{}, SideInformation{}, errEndOfStream
		}
		return 0, FrameHeader{}, SideInformation{}, errors.Wrap(rerr, "mp3: DecodeFrame")
	}
	d.frame = f

	pcm := f.Decode()
	nch := f.NumberOfChannels()
	for i := 0; i < consts.SamplesPerFrame; i++ {
		l := int16(uint16(pcm[4*i]) | uint16(pcm[4*i+1])<<8)
		out[0][i] = float32(l) / 32768
		if nch == 2 {
			r := int16(uint16(pcm[4*i+2]) | uint16(pcm[4*i+3])<<8)
			out[1][i] = float32(r) / 32768
		}
	}

	header = FrameHeader{SampleRate: f.SamplingFrequency(), NumChannels: nch}
	side = SideInformation{MainDataBegin: f.MainDataBegin(), BlockType: f.BlockTypes()}
	return src.pos, header, side, nil
}

// errEndOfStream is returned by DecodeFrame when data holds no further
// complete frame; it is distinct from an error that aborts DecodeWhole
// partway, which instead short-circuits with the underlying wrapped error.
var errEndOfStream = errors.New("mp3: end of stream")

// IsEndOfStream reports whether err is the sentinel DecodeFrame and
// DecodeWhole return once data is exhausted.
func IsEndOfStream(err error) bool {
	return err == errEndOfStream
}

// DecodeWhole decodes every frame in data, writing per-channel samples into
// out[0] (and out[1] for stereo sources). It resets the Decoder's state
// first, so repeated calls against the same or different buffers never see
// stale reservoir or synthesis history from an earlier call.
func (d *Decoder) DecodeWhole(data []byte, out *[2][]float32) (bytesConsumed, samplesWritten int, err error) {
	d.reservoir = reservoir.New()
	d.frame = nil

	var buf [2][1152]float32
	pos := 0
	for pos < len(data) {
		n, _, _, ferr := d.DecodeFrame(data[pos:], &buf)
		if ferr != nil {
			if IsEndOfStream(ferr) {
				break
			}
			return pos, samplesWritten, errors.Wrapf(ferr, "mp3: DecodeWhole: frame at byte %d", pos)
		}
		pos += n
		out[0] = append(out[0], buf[0][:]...)
		if d.frame != nil && d.frame.NumberOfChannels() == 2 {
			out[1] = append(out[1], buf[1][:]...)
		}
		samplesWritten += consts.SamplesPerFrame
	}
	return pos, samplesWritten, nil
}
