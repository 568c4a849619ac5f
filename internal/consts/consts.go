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

// Package consts holds the shared enums, fixed tables and error types used
// across the decoder's internal packages.
package consts

// Version is the MPEG audio version ID (frame header bits 20-19).
type Version int

const (
	Version2_5  Version = 0
	VersionReserved Version = 1
	Version2    Version = 2
	Version1    Version = 3
)

// Layer is the MPEG audio layer (frame header bits 18-17).
type Layer int

const (
	LayerReserved Layer = 0
	Layer3        Layer = 1
	Layer2        Layer = 2
	Layer1        Layer = 3
)

// Mode is the channel mode (frame header bits 7-6).
type Mode int

const (
	ModeStereo Mode = 0
	ModeJointStereo Mode = 1
	ModeDualChannel Mode = 2
	ModeSingleChannel Mode = 3
)

// SamplingFrequency is the sample-rate selector (frame header bits 11-10).
// Only the MPEG-1 triplet is represented; MPEG-2 LSF rates are out of scope.
type SamplingFrequency int

const (
	SamplingFrequency44100 SamplingFrequency = 0
	SamplingFrequency48000 SamplingFrequency = 1
	SamplingFrequency32000 SamplingFrequency = 2
	SamplingFrequencyReserved SamplingFrequency = 3
)

func (s SamplingFrequency) Int() int {
	switch s {
	case SamplingFrequency44100:
		return 44100
	case SamplingFrequency48000:
		return 48000
	case SamplingFrequency32000:
		return 32000
	}
	panic("consts: invalid sampling frequency")
}

// BlockType is the granule's window-switched block type.
type BlockType int

const (
	BlockTypeNormal BlockType = 0
	BlockTypeStart  BlockType = 1
	BlockTypeShort  BlockType = 2
	BlockTypeStop   BlockType = 3
)

const (
	SamplesPerFrame  = 1152
	GranulesPerFrame = 2
	// SamplesPerGr is the number of spectral lines in one granule.
	SamplesPerGr          = 576
	NumCriticalBandsLong  = 22
	NumCriticalBandsShort = 13

	// ReservoirSize is the bit-reservoir ring-buffer capacity in bytes.
	ReservoirSize = 4096

	// BytesPerFrame is the decoded PCM size of one frame: 1152 samples,
	// always expanded to 2 channels at 16 bits each regardless of the
	// source's channel count or the compressed frame's byte size.
	BytesPerFrame = SamplesPerGr * 4 * GranulesPerFrame
)

// SfBandIndicesLong and SfBandIndicesShort select which of the two band
// tables to read out of SfBandIndices[lsf][sfreq].
const (
	SfBandIndicesLong  = 0
	SfBandIndicesShort = 1
)

// SfBandIndices holds the scale-factor-band start-index tables, indexed as
// [lowSamplingFrequency][SamplingFrequency][SfBandIndicesLong|Short]. Only
// lsf=0 (MPEG-1) is populated; MPEG-2 LSF is out of scope (see §1 of the
// specification this module implements), so lsf=1 is left nil; MPEG-2
// frames are rejected by frame.Read's version check before any lookup.
var SfBandIndices = [2][3][2][]int{
	0: {
		SamplingFrequency44100: {
			SfBandIndicesLong:  {0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 52, 62, 74, 90, 110, 134, 162, 196, 238, 288, 342, 418, 576},
			SfBandIndicesShort: {0, 4, 8, 12, 16, 22, 30, 40, 52, 66, 84, 106, 136, 192},
		},
		SamplingFrequency48000: {
			SfBandIndicesLong:  {0, 4, 8, 12, 16, 20, 24, 30, 36, 42, 50, 60, 72, 88, 106, 128, 156, 190, 230, 276, 330, 384, 576},
			SfBandIndicesShort: {0, 4, 8, 12, 16, 22, 28, 38, 50, 64, 80, 100, 126, 192},
		},
		SamplingFrequency32000: {
			SfBandIndicesLong:  {0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 54, 66, 82, 102, 126, 156, 194, 240, 296, 364, 448, 550, 576},
			SfBandIndicesShort: {0, 4, 8, 12, 16, 22, 30, 42, 58, 78, 104, 138, 180, 192},
		},
	},
}

// ScalefacSizes gives, per scalefac_compress value 0-15, the {slen1, slen2}
// bit widths used by the scale-factor decoder.
var ScalefacSizes = [16][2]int{
	{0, 0}, {0, 1}, {0, 2}, {0, 3}, {3, 0}, {1, 1}, {1, 2}, {1, 3},
	{2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}, {4, 2}, {4, 3},
}

// Error kinds, one type per recoverable or terminal condition named by the
// decoder's error taxonomy. Each is a distinct type so callers can use
// errors.As to distinguish them even after the top-level package wraps them
// with call-site context.

type UnexpectedEOF struct {
	At string
}

func (e *UnexpectedEOF) Error() string {
	return "mp3: unexpected EOF at " + e.At
}

type EndOfStream struct{}

func (e *EndOfStream) Error() string {
	return "mp3: end of stream"
}

type InvalidHeader struct {
	Reason string
}

func (e *InvalidHeader) Error() string {
	return "mp3: invalid header: " + e.Reason
}

type InvalidSideInformation struct {
	Reason string
}

func (e *InvalidSideInformation) Error() string {
	return "mp3: invalid side information: " + e.Reason
}

type InvalidFormat struct {
	Reason string
}

func (e *InvalidFormat) Error() string {
	return "mp3: invalid format: " + e.Reason
}

type InsufficientBuffer struct {
	Reason string
}

func (e *InsufficientBuffer) Error() string {
	return "mp3: insufficient output buffer: " + e.Reason
}
