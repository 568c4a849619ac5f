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

// Package maindata decodes a granule's scale factors and Huffman-coded
// spectrum out of the bit reservoir.
package maindata

import (
	"fmt"
	"io"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frameheader"
	"github.com/soundkit/mp3dec/internal/huffman"
	"github.com/soundkit/mp3dec/internal/reservoir"
	"github.com/soundkit/mp3dec/internal/sideinfo"
)

// FullReader is the minimal source a main-data read needs.
type FullReader interface {
	ReadFull([]byte) (int, error)
}

// MainData is the decoded scale factors and dequantizable spectrum for one
// granule of one channel, carried across both channels and both granules
// of a frame.
type MainData struct {
	ScalefacL [2][2][21]int      // 0-4 bits
	ScalefacS [2][2][12][3]int   // 0-4 bits
	Is        [2][2][576]float32 // Huffman-decoded frequency lines
}

func mainDataSize(h frameheader.FrameHeader) int {
	sideInfoSize := 17
	if h.NumberOfChannels() == 2 {
		sideInfoSize = 32
	}
	crcBytes := 0
	if h.ProtectionBit() == 0 {
		crcBytes = 2
	}
	return h.FrameSize() - 4 - sideInfoSize - crcBytes
}

// Read appends this frame's main-data bytes to the reservoir, resolves the
// granules' maindata_begin back-pointer, and decodes scale factors and
// spectrum for every granule/channel. If the back-pointer reaches before
// the start of the stream (the first frames after a stream begins), the
// bytes are still buffered for later frames but decoding is silently
// skipped, matching the silent-frame-skip behavior in the decoder's error
// handling design.
func Read(source FullReader, res *reservoir.Reservoir, h frameheader.FrameHeader, si *sideinfo.SideInfo) (*MainData, error) {
	size := mainDataSize(h)
	if size < 0 || size > 1500 {
		return nil, fmt.Errorf("mp3: invalid main_data size: %d", size)
	}
	buf := make([]byte, size)
	if n, err := source.ReadFull(buf); n < size {
		if err == io.EOF {
			return nil, &consts.UnexpectedEOF{At: "maindata.Read"}
		}
		return nil, err
	}

	writePosBefore := res.WritePos()
	totalBefore := res.TotalWritten()
	res.PutData(buf)
	res.AlignNextByte()

	md := &MainData{}
	if si.MainDataBegin > totalBefore {
		// Reservoir not primed yet; nothing to decode this frame.
		return md, nil
	}

	target := (writePosBefore - si.MainDataBegin) % reservoir.Size
	if target < 0 {
		target += reservoir.Size
	}
	readPosBytes := res.GetTotalReadBits() / 8
	discard := (readPosBytes - target) % reservoir.Size
	if discard < 0 {
		discard += reservoir.Size
	}
	res.Skip(discard * 8)

	nch := h.NumberOfChannels()
	for gr := 0; gr < consts.GranulesPerFrame; gr++ {
		for ch := 0; ch < nch; ch++ {
			part2Start := res.GetTotalReadBits()
			readScaleFactors(res, md, si, gr, ch)
			readHuffman(res, h, si, md, part2Start, gr, ch)
		}
	}
	return md, nil
}

func readScaleFactors(res *reservoir.Reservoir, md *MainData, si *sideinfo.SideInfo, gr, ch int) {
	slen := consts.ScalefacSizes[si.ScalefacCompress[gr][ch]]
	slen1, slen2 := slen[0], slen[1]

	if si.WinSwitchFlag[gr][ch] == 1 && si.BlockType[gr][ch] == 2 {
		if si.MixedBlockFlag[gr][ch] != 0 {
			for sfb := 0; sfb < 8; sfb++ {
				md.ScalefacL[gr][ch][sfb] = int(res.GetBits(slen1))
			}
			for sfb := 3; sfb < 6; sfb++ {
				for win := 0; win < 3; win++ {
					md.ScalefacS[gr][ch][sfb][win] = int(res.GetBits(slen1))
				}
			}
			for sfb := 6; sfb < 12; sfb++ {
				for win := 0; win < 3; win++ {
					md.ScalefacS[gr][ch][sfb][win] = int(res.GetBits(slen2))
				}
			}
			return
		}
		for sfb := 0; sfb < 6; sfb++ {
			for win := 0; win < 3; win++ {
				md.ScalefacS[gr][ch][sfb][win] = int(res.GetBits(slen1))
			}
		}
		for sfb := 6; sfb < 12; sfb++ {
			for win := 0; win < 3; win++ {
				md.ScalefacS[gr][ch][sfb][win] = int(res.GetBits(slen2))
			}
		}
		return
	}

	// Long/normal blocks: 4 SCFSI groups. Granule 1 reuses granule 0's
	// bands for any group whose scfsi flag is set instead of reading.
	groups := [4][2]int{{0, 6}, {6, 11}, {11, 16}, {16, 21}}
	for i, g := range groups {
		if gr == 1 && si.Scfsi[ch][i] == 1 {
			for sfb := g[0]; sfb < g[1]; sfb++ {
				md.ScalefacL[gr][ch][sfb] = md.ScalefacL[0][ch][sfb]
			}
			continue
		}
		width := slen1
		if i >= 2 {
			width = slen2
		}
		for sfb := g[0]; sfb < g[1]; sfb++ {
			md.ScalefacL[gr][ch][sfb] = int(res.GetBits(width))
		}
	}
}

func readHuffman(res *reservoir.Reservoir, h frameheader.FrameHeader, si *sideinfo.SideInfo, md *MainData, part2Start, gr, ch int) {
	part23 := si.Part2_3Length[gr][ch]
	if part23 == 0 {
		si.Count1[gr][ch] = 0
		return
	}
	part3End := (part2Start + part23) % reservoir.SizeBits

	bigValues := si.BigValues[gr][ch]

	var region1Start, region2Start int
	if si.WinSwitchFlag[gr][ch] == 1 && si.BlockType[gr][ch] == 2 {
		region1Start = 36
		region2Start = consts.SamplesPerGr
	} else {
		sfBandIndicesLong := consts.SfBandIndices[h.LowSamplingFrequency()][h.SamplingFrequency()][consts.SfBandIndicesLong]
		r0 := si.Region0Count[gr][ch]
		r1 := si.Region1Count[gr][ch]
		region1Start = sfBandIndicesLong[r0+1]
		if idx := r0 + r1 + 2; idx < len(sfBandIndicesLong) {
			region2Start = sfBandIndicesLong[idx]
		} else {
			region2Start = consts.SamplesPerGr
		}
	}

	isPos := 0
	maxBigValueLines := 2 * bigValues
	for isPos < maxBigValueLines && isPos < consts.SamplesPerGr {
		var tableNum int
		switch {
		case isPos < region1Start:
			tableNum = si.TableSelect[gr][ch][0]
		case isPos < region2Start:
			tableNum = si.TableSelect[gr][ch][1]
		default:
			tableNum = si.TableSelect[gr][ch][2]
		}
		tbl := huffman.Tables[tableNum]
		x, y := tbl.Decode(res)
		if tbl.LinBits > 0 {
			if x == tbl.MaxVal {
				x += int(res.GetBits(tbl.LinBits))
			}
			if y == tbl.MaxVal {
				y += int(res.GetBits(tbl.LinBits))
			}
		}
		if x != 0 && res.GetBits(1) == 1 {
			x = -x
		}
		if y != 0 && res.GetBits(1) == 1 {
			y = -y
		}
		if isPos < consts.SamplesPerGr {
			md.Is[gr][ch][isPos] = float32(x)
		}
		isPos++
		if isPos < consts.SamplesPerGr {
			md.Is[gr][ch][isPos] = float32(y)
		}
		isPos++
	}

	count1Start := isPos
	quad := huffman.Count1Tables[si.Count1TableSelect[gr][ch]]
	for {
		pos := res.GetTotalReadBits()
		var inRange bool
		if part3End >= part2Start {
			inRange = pos >= part2Start && pos < part3End
		} else {
			inRange = pos >= part2Start || pos < part3End
		}
		if !inRange || isPos >= consts.SamplesPerGr {
			break
		}
		// The final quadruple in a granule can start as late as isPos==574,
		// leaving room for only its first pair (indices 574/575); it must
		// still be decoded and its bits consumed even then, with just the
		// overflowing v/w or x/y discarded rather than the whole quadruple
		// skipped.
		v, w, x, y := quad.Decode(res)
		vals := [4]int{v, w, x, y}
		for k, val := range vals {
			if val != 0 && res.GetBits(1) == 1 {
				val = -val
			}
			if isPos+k < consts.SamplesPerGr {
				md.Is[gr][ch][isPos+k] = float32(val)
			}
		}
		isPos += 4
	}

	// Drop the last quadruple only if decoding it read past part3End.
	consumed := (res.GetTotalReadBits() - part2Start + reservoir.SizeBits) % reservoir.SizeBits
	if isPos > count1Start && consumed > part23 {
		isPos -= 4
	}
	if isPos > consts.SamplesPerGr {
		isPos = consts.SamplesPerGr
	}
	si.Count1[gr][ch] = isPos
	for i := isPos; i < consts.SamplesPerGr; i++ {
		md.Is[gr][ch][i] = 0
	}
	res.Seek(part3End)
}
