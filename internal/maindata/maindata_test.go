package maindata

import (
	"testing"

	"github.com/soundkit/mp3dec/internal/consts"
	"github.com/soundkit/mp3dec/internal/frameheader"
	"github.com/soundkit/mp3dec/internal/huffman"
	"github.com/soundkit/mp3dec/internal/reservoir"
	"github.com/soundkit/mp3dec/internal/sideinfo"
)

func TestMainDataSizeMono(t *testing.T) {
	// Layer3, protection_bit=1 (no CRC), bitrate index 5 (64000 for layer3),
	// sampling 44100, no padding, single channel.
	var word uint32
	word |= 0x7FF << 21
	word |= 3 << 19 // version1
	word |= 1 << 17 // layer3
	word |= 1 << 16 // protection_bit=1, no CRC
	word |= 5 << 12 // bitrate index -> 64000
	word |= 0 << 10 // 44100
	word |= 3 << 6  // single channel
	h := frameheader.FrameHeader(word)

	frameSize := h.FrameSize()
	want := frameSize - 4 - 17 - 0
	if got := mainDataSize(h); got != want {
		t.Errorf("mainDataSize = %d, want %d", got, want)
	}
}

func TestMainDataSizeStereoWithCRC(t *testing.T) {
	var word uint32
	word |= 0x7FF << 21
	word |= 3 << 19
	word |= 1 << 17
	word |= 0 << 16 // protection_bit=0 -> CRC present
	word |= 5 << 12
	word |= 0 << 10
	word |= 0 << 6 // stereo
	h := frameheader.FrameHeader(word)

	frameSize := h.FrameSize()
	want := frameSize - 4 - 32 - 2
	if got := mainDataSize(h); got != want {
		t.Errorf("mainDataSize = %d, want %d", got, want)
	}
}

// bitAccumulator packs a sequence of MSB-first fixed-width fields into whole
// bytes, zero-padding the final partial byte, then writes the result into a
// reservoir in one PutData call.
type bitAccumulator struct {
	cur   byte
	nbits int
	out   []byte
}

func (a *bitAccumulator) put(val uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		bit := byte((val >> uint(i)) & 1)
		a.cur = (a.cur << 1) | bit
		a.nbits++
		if a.nbits == 8 {
			a.out = append(a.out, a.cur)
			a.cur = 0
			a.nbits = 0
		}
	}
}

func (a *bitAccumulator) writeTo(res *reservoir.Reservoir) {
	if a.nbits > 0 {
		a.cur <<= uint(8 - a.nbits)
		a.out = append(a.out, a.cur)
		a.nbits = 0
	}
	res.PutData(a.out)
}

func TestReadScaleFactorsLongBlockGranule0(t *testing.T) {
	res := reservoir.New()
	// 21 long bands: slen1 for bands 0-10 (groups 0,1), slen2 for 11-20
	// (groups 2,3), per consts.ScalefacSizes[idx].
	si := &sideinfo.SideInfo{}
	si.ScalefacCompress[0][0] = 9 // ScalefacSizes[9] = {2,2}
	slen1, slen2 := consts.ScalefacSizes[9][0], consts.ScalefacSizes[9][1]
	if slen1 != 2 || slen2 != 2 {
		t.Fatalf("test assumption broken: ScalefacSizes[9] = %d,%d", slen1, slen2)
	}

	var want [21]int
	acc := &bitAccumulator{}
	for sfb := 0; sfb < 21; sfb++ {
		want[sfb] = sfb % 4 // fits in 2 bits
		acc.put(uint32(want[sfb]), 2)
	}
	acc.writeTo(res)

	md := &MainData{}
	readScaleFactors(res, md, si, 0, 0)

	for sfb := 0; sfb < 21; sfb++ {
		if md.ScalefacL[0][0][sfb] != want[sfb] {
			t.Errorf("ScalefacL[0][0][%d] = %d, want %d", sfb, md.ScalefacL[0][0][sfb], want[sfb])
		}
	}
}

func TestReadScaleFactorsGranule1SharesViaScfsi(t *testing.T) {
	res := reservoir.New()
	si := &sideinfo.SideInfo{}
	si.ScalefacCompress[1][0] = 0 // ScalefacSizes[0] = {0,0}: nothing read for non-shared groups
	si.Scfsi[0][0] = 1
	si.Scfsi[0][1] = 1
	si.Scfsi[0][2] = 1
	si.Scfsi[0][3] = 1

	md := &MainData{}
	for sfb := 0; sfb < 21; sfb++ {
		md.ScalefacL[0][0][sfb] = sfb + 1
	}

	// With slen1=slen2=0 and every scfsi flag set, no bits are consumed and
	// every band in granule 1 should equal the granule 0 values already set.
	readScaleFactors(res, md, si, 1, 0)

	for sfb := 0; sfb < 21; sfb++ {
		if md.ScalefacL[1][0][sfb] != md.ScalefacL[0][0][sfb] {
			t.Errorf("ScalefacL[1][0][%d] = %d, want shared value %d", sfb, md.ScalefacL[1][0][sfb], md.ScalefacL[0][0][sfb])
		}
	}
	if res.GetTotalReadBits() != 0 {
		t.Errorf("expected no bits consumed when every scfsi group is shared and slen is 0, got %d", res.GetTotalReadBits())
	}
}

// allZeroReader is a bitReader that always returns 0, used to walk a
// Huffman tree down its leftmost path.
type allZeroReader struct {
	n int
}

func (r *allZeroReader) GetBits(bits int) uint32 {
	r.n += bits
	return 0
}

// TestReadHuffmanDecodesFinalStraddlingQuad exercises the named boundary
// case where the last count1 quadruple in a granule starts at isPos==574:
// only its first pair fits in the 576-line spectrum, but it must still be
// decoded (and its bits consumed) rather than skipped outright, with only
// the overflowing second pair discarded.
func TestReadHuffmanDecodesFinalStraddlingQuad(t *testing.T) {
	var word uint32
	word |= 0x7FF << 21
	word |= 3 << 19 // version1
	word |= 1 << 17 // layer3
	word |= 1 << 16 // no CRC
	word |= 5 << 12
	word |= 0 << 10 // 44100
	word |= 3 << 6  // mono
	h := frameheader.FrameHeader(word)

	si := &sideinfo.SideInfo{}
	// table_select 4 is the reserved, always-(0,0), zero-bit big-values
	// table: 287 big-value pairs (574 lines) decode without consuming any
	// reservoir bits, landing isPos exactly on 574 for the count1 phase.
	si.BigValues[0][0] = 287
	si.TableSelect[0][0] = [3]int{4, 4, 4}
	si.Count1TableSelect[0][0] = 0

	zr := &allZeroReader{}
	wantV, wantW, wantX, wantY := huffman.Count1Tables[0].Decode(zr)
	signBits := 0
	for _, v := range []int{wantV, wantW, wantX, wantY} {
		if v != 0 {
			signBits++
		}
	}
	totalBits := zr.n + signBits
	si.Part2_3Length[0][0] = totalBits

	res := reservoir.New()
	acc := &bitAccumulator{}
	acc.put(0, totalBits+8) // plenty of zero bits for the decode plus padding
	acc.writeTo(res)

	md := &MainData{}
	readHuffman(res, h, si, md, 0, 0, 0)

	if got := md.Is[0][0][574]; got != float32(wantV) {
		t.Errorf("Is[574] = %v, want %v", got, wantV)
	}
	if got := md.Is[0][0][575]; got != float32(wantW) {
		t.Errorf("Is[575] = %v, want %v", got, wantW)
	}
	if si.Count1[0][0] != consts.SamplesPerGr {
		t.Errorf("Count1 = %d, want %d (clamped, overflowing pair discarded)", si.Count1[0][0], consts.SamplesPerGr)
	}
	if res.GetTotalReadBits() == 0 {
		t.Errorf("count1 quadruple at isPos==574 was skipped without consuming its bits")
	}
}
