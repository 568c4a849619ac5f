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
	"io"

	"github.com/pkg/errors"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frame"
	"github.com/soundkit/mp3dec/internal/reservoir"
)

// sliceSource is a frame.FullReader over an in-memory byte slice, used by
// the byte-slice oriented API (GetFormatInfo, DecodeFrame, DecodeWhole) so
// those entry points don't need an io.ReadCloser wrapper.
type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) ReadFull(buf []byte) (int, error) {
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// FormatInfo summarizes a stream's layout without decoding any audio.
type FormatInfo struct {
	SampleRate  int
	NumChannels int
	NumSamples  int64
	FrameCount  int
}

// GetFormatInfo scans data for MPEG-1 Layer III frames and reports the
// stream's sample rate, channel count and total sample count, without
// running synthesis. Main data is fed into, and Huffman-decoded out of, a
// scratch reservoir only (frame.Read always does both, and the reservoir
// keeps its back-pointer bookkeeping consistent from frame to frame); a
// subsequent real decode of the same bytes starts from its own, separately
// primed reservoir and is unaffected.
//
// Once at least one frame has been read, scanning stops, rather than
// failing, at the first frame that can't be parsed, so a truncated or
// partially corrupt file still yields the format of whatever prefix was
// valid. An error is returned only when the very first frame fails.
func GetFormatInfo(data []byte) (FormatInfo, error) {
	src := &sliceSource{data: data}
	res := reservoir.New()

	var info FormatInfo
	var prev *frame.Frame
	var pos int64
	for {
		f, next, err := frame.Read(src, pos, prev, res)
		if err != nil {
			if _, ok := err.(*consts.EndOfStream); ok {
				break
			}
			if _, ok := err.(*consts.UnexpectedEOF); ok {
				break
			}
			if info.FrameCount == 0 {
				return FormatInfo{}, errors.Wrap(err, "mp3: GetFormatInfo")
			}
			break
		}
		if info.FrameCount == 0 {
			info.SampleRate = f.SamplingFrequency()
			info.NumChannels = 1
		}
		if f.NumberOfChannels() == 2 {
			info.NumChannels = 2
		}
		info.FrameCount++
		info.NumSamples += consts.SamplesPerFrame
		prev = f
		pos = next
	}
	return info, nil
}
