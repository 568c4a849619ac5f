package sideinfo

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frameheader"
)

// bitPacker builds a byte slice by appending MSB-first fixed-width fields,
// matching the bit order internal/bits.Bits reads in.
type bitPacker struct {
	bytes []byte
	cur   byte
	nbits int
}

func (p *bitPacker) put(val uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		bit := byte((val >> uint(i)) & 1)
		p.cur = (p.cur << 1) | bit
		p.nbits++
		if p.nbits == 8 {
			p.bytes = append(p.bytes, p.cur)
			p.cur = 0
			p.nbits = 0
		}
	}
}

func (p *bitPacker) bytesOut() []byte {
	if p.nbits > 0 {
		p.cur <<= uint(8 - p.nbits)
		return append(append([]byte{}, p.bytes...), p.cur)
	}
	return p.bytes
}

type sliceReader struct {
	data []byte
	pos  int
}

func (s *sliceReader) ReadFull(buf []byte) (int, error) {
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	return n, nil
}

// monoHeader builds a frame header with channel mode single-channel, the
// only field Read inspects via NumberOfChannels.
func monoHeader(t *testing.T) frameheader.FrameHeader {
	t.Helper()
	// Version1, Layer3, no CRC protection, bitrate index 5, sampling 44100,
	// no padding, single-channel mode, mode_extension 0, no copyright/
	// original, emphasis 0. Bit layout matches frameheader's own accessors.
	var word uint32
	word |= 0x7FF << 21 // sync
	word |= uint32(3) << 19 // version 1
	word |= uint32(1) << 17 // layer 3
	word |= uint32(1) << 16 // protection_bit = 1 (no CRC)
	word |= uint32(5) << 12 // bitrate index
	word |= uint32(0) << 10 // sampling 44100
	word |= uint32(0) << 9  // padding
	word |= uint32(0) << 8  // private
	word |= uint32(3) << 6  // mode = single channel
	return frameheader.FrameHeader(word)
}

func TestReadMonoNonSwitchedGranules(t *testing.T) {
	h := monoHeader(t)
	if h.NumberOfChannels() != 1 {
		t.Fatalf("test header has %d channels, want 1", h.NumberOfChannels())
	}

	p := &bitPacker{}
	p.put(100, 9) // main_data_begin
	p.put(7, 5)   // private_bits (mono: 5 bits)
	for i := 0; i < 4; i++ {
		p.put(uint32(i%2), 1) // scfsi
	}
	wantPart2_3 := [2]int{500, 900}
	wantBigValues := [2]int{200, 50}
	wantGlobalGain := [2]int{128, 64}
	wantScalefacCompress := [2]int{10, 3}
	wantTableSelect := [2][3]int{{1, 2, 3}, {30, 31, 0}}
	wantRegion0 := [2]int{9, 2}
	wantRegion1 := [2]int{5, 7}
	wantPreflag := [2]int{1, 0}
	wantScalefacScale := [2]int{0, 1}
	wantCount1Table := [2]int{1, 0}

	for gr := 0; gr < 2; gr++ {
		p.put(uint32(wantPart2_3[gr]), 12)
		p.put(uint32(wantBigValues[gr]), 9)
		p.put(uint32(wantGlobalGain[gr]), 8)
		p.put(uint32(wantScalefacCompress[gr]), 4)
		p.put(0, 1) // window_switching_flag
		for r := 0; r < 3; r++ {
			p.put(uint32(wantTableSelect[gr][r]), 5)
		}
		p.put(uint32(wantRegion0[gr]), 4)
		p.put(uint32(wantRegion1[gr]), 3)
		p.put(uint32(wantPreflag[gr]), 1)
		p.put(uint32(wantScalefacScale[gr]), 1)
		p.put(uint32(wantCount1Table[gr]), 1)
	}

	buf := p.bytesOut()
	if len(buf) != 17 {
		t.Fatalf("packed buffer is %d bytes, want 17 (mono side info size)", len(buf))
	}

	si, err := Read(&sliceReader{data: buf}, h)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	want := &SideInfo{
		MainDataBegin: 100,
		PrivateBits:   7,
	}
	for i := 0; i < 4; i++ {
		want.Scfsi[0][i] = i % 2
	}
	for gr := 0; gr < 2; gr++ {
		want.Part2_3Length[gr][0] = wantPart2_3[gr]
		want.BigValues[gr][0] = wantBigValues[gr]
		want.GlobalGain[gr][0] = wantGlobalGain[gr]
		want.ScalefacCompress[gr][0] = wantScalefacCompress[gr]
		want.TableSelect[gr][0] = wantTableSelect[gr]
		want.Region0Count[gr][0] = wantRegion0[gr]
		want.Region1Count[gr][0] = wantRegion1[gr]
		want.Preflag[gr][0] = wantPreflag[gr]
		want.ScalefacScale[gr][0] = wantScalefacScale[gr]
		want.Count1TableSelect[gr][0] = wantCount1Table[gr]
		// WinSwitchFlag, BlockType, MixedBlockFlag and SubblockGain all stay
		// at their zero value: the packed bitstream above sets
		// window_switching_flag to 0 for both granules.
	}

	if diff := cmp.Diff(want, si); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTruncatedBufferIsUnexpectedEOF(t *testing.T) {
	h := monoHeader(t)
	_, err := Read(&sliceReader{data: make([]byte, 5)}, h)
	if _, ok := err.(*consts.UnexpectedEOF); !ok {
		t.Fatalf("expected *consts.UnexpectedEOF for a truncated side-info buffer, got %v", err)
	}
}
