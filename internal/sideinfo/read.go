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

package sideinfo

import (
	"io"

	"github.com/soundkit/mp3dec/internal/bits"
	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frameheader"
)

// FullReader is the minimal source a side-info read needs.
type FullReader interface {
	ReadFull([]byte) (int, error)
}

// Read parses the 17- or 32-byte side-information block that immediately
// follows a frame header (and its optional CRC).
func Read(source FullReader, h frameheader.FrameHeader) (*SideInfo, error) {
	nch := h.NumberOfChannels()
	size := 17
	if nch == 2 {
		size = 32
	}
	buf := make([]byte, size)
	if n, err := source.ReadFull(buf); n < size {
		if err == nil || err == io.EOF {
			return nil, &consts.UnexpectedEOF{At: "sideinfo.Read"}
		}
		return nil, err
	}
	b := bits.New(buf)

	si := &SideInfo{}
	si.MainDataBegin = b.Bits(9)
	if nch == 1 {
		si.PrivateBits = b.Bits(5)
	} else {
		si.PrivateBits = b.Bits(3)
	}
	for ch := 0; ch < nch; ch++ {
		for scfsiBand := 0; scfsiBand < 4; scfsiBand++ {
			si.Scfsi[ch][scfsiBand] = b.Bits(1)
		}
	}
	for gr := 0; gr < 2; gr++ {
		for ch := 0; ch < nch; ch++ {
			si.Part2_3Length[gr][ch] = b.Bits(12)
			si.BigValues[gr][ch] = b.Bits(9)
			si.GlobalGain[gr][ch] = b.Bits(8)
			si.ScalefacCompress[gr][ch] = b.Bits(4)
			si.WinSwitchFlag[gr][ch] = b.Bits(1)

			if si.WinSwitchFlag[gr][ch] == 1 {
				si.BlockType[gr][ch] = b.Bits(2)
				si.MixedBlockFlag[gr][ch] = b.Bits(1)
				for region := 0; region < 2; region++ {
					si.TableSelect[gr][ch][region] = b.Bits(5)
				}
				for window := 0; window < 3; window++ {
					si.SubblockGain[gr][ch][window] = b.Bits(3)
				}
				// When window_switching_flag is set, region0_count is
				// implicit rather than coded: 8 for pure short blocks, 7
				// for mixed blocks, and region1_count fills the rest of
				// the 21-band long table. (The standard's own prose gets
				// this backwards; this is the value every reference
				// decoder actually uses.)
				if si.BlockType[gr][ch] == 2 && si.MixedBlockFlag[gr][ch] == 0 {
					si.Region0Count[gr][ch] = 8
				} else {
					si.Region0Count[gr][ch] = 7
				}
				si.Region1Count[gr][ch] = 20 - si.Region0Count[gr][ch]
			} else {
				for region := 0; region < 3; region++ {
					si.TableSelect[gr][ch][region] = b.Bits(5)
				}
				si.Region0Count[gr][ch] = b.Bits(4)
				si.Region1Count[gr][ch] = b.Bits(3)
				si.BlockType[gr][ch] = 0
			}

			si.Preflag[gr][ch] = b.Bits(1)
			si.ScalefacScale[gr][ch] = b.Bits(1)
			si.Count1TableSelect[gr][ch] = b.Bits(1)
		}
	}
	return si, nil
}
