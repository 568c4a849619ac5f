package reservoir

import "testing"

func TestPutDataAndGetBits(t *testing.T) {
	r := New()
	r.PutData([]byte{0xAB, 0xCD, 0xEF})

	if got := r.GetBits(8); got != 0xAB {
		t.Errorf("GetBits(8) = %#x, want 0xab", got)
	}
	if got := r.GetBits(4); got != 0xC {
		t.Errorf("GetBits(4) = %#x, want 0xc", got)
	}
	if got := r.GetBits(4); got != 0xD {
		t.Errorf("GetBits(4) = %#x, want 0xd", got)
	}
	if got := r.GetBits(8); got != 0xEF {
		t.Errorf("GetBits(8) = %#x, want 0xef", got)
	}
}

func TestGetBitsCrossesByteBoundary(t *testing.T) {
	r := New()
	r.PutData([]byte{0b10110010, 0b01101101})
	r.Skip(4)
	// remaining bits: 0010 01101101
	if got := r.GetBits(12); got != 0b001001101101 {
		t.Errorf("GetBits(12) = %#b, want 0b001001101101", got)
	}
}

func TestWriteWraparound(t *testing.T) {
	r := New()
	filler := make([]byte, Size-2)
	r.PutData(filler)
	if r.WritePos() != Size-2 {
		t.Fatalf("WritePos = %d, want %d", r.WritePos(), Size-2)
	}

	r.PutData([]byte{0x11, 0x22, 0x33, 0x44})
	if r.WritePos() != 2 {
		t.Fatalf("WritePos after wraparound = %d, want 2", r.WritePos())
	}
	if r.buf[Size-2] != 0x11 || r.buf[Size-1] != 0x22 {
		t.Errorf("tail bytes not written before wrap: %#x %#x", r.buf[Size-2], r.buf[Size-1])
	}
	if r.buf[0] != 0x33 || r.buf[1] != 0x44 {
		t.Errorf("head bytes not written after wrap: %#x %#x", r.buf[0], r.buf[1])
	}
}

func TestReadCursorWrapsIndependently(t *testing.T) {
	r := New()
	r.PutData(make([]byte, Size))
	r.Seek(SizeBits - 8)
	r.buf[Size-1] = 0xAA
	r.buf[0] = 0xBB

	if got := r.GetBits(8); got != 0xAA {
		t.Errorf("GetBits before wrap = %#x, want 0xaa", got)
	}
	if got := r.GetBits(8); got != 0xBB {
		t.Errorf("GetBits after read-cursor wrap = %#x, want 0xbb", got)
	}
	if r.GetTotalReadBits() != 8 {
		t.Errorf("GetTotalReadBits = %d, want 8", r.GetTotalReadBits())
	}
}

func TestTotalWrittenNeverWraps(t *testing.T) {
	r := New()
	r.PutData(make([]byte, Size))
	r.PutData(make([]byte, Size))
	if r.TotalWritten() != 2*Size {
		t.Errorf("TotalWritten = %d, want %d", r.TotalWritten(), 2*Size)
	}
	if r.WritePos() != 0 {
		t.Errorf("WritePos = %d, want 0", r.WritePos())
	}
}

func TestAlignNextByte(t *testing.T) {
	r := New()
	r.PutData([]byte{0xFF, 0xFF})
	r.Skip(3)
	r.AlignNextByte()
	if r.GetTotalReadBits() != 8 {
		t.Errorf("GetTotalReadBits after align = %d, want 8", r.GetTotalReadBits())
	}

	r.AlignNextByte()
	if r.GetTotalReadBits() != 8 {
		t.Errorf("AlignNextByte on an aligned cursor moved it: got %d, want 8", r.GetTotalReadBits())
	}
}

func TestSeekWraps(t *testing.T) {
	r := New()
	r.Seek(SizeBits + 5)
	if r.GetTotalReadBits() != 5 {
		t.Errorf("Seek(SizeBits+5) = %d, want 5", r.GetTotalReadBits())
	}
	r.Seek(-3)
	if r.GetTotalReadBits() != SizeBits-3 {
		t.Errorf("Seek(-3) = %d, want %d", r.GetTotalReadBits(), SizeBits-3)
	}
}

func TestReset(t *testing.T) {
	r := New()
	r.PutData([]byte{1, 2, 3})
	r.GetBits(9)
	r.Reset()
	if r.WritePos() != 0 || r.GetTotalReadBits() != 0 || r.TotalWritten() != 0 {
		t.Errorf("Reset did not clear state: writePos=%d readBits=%d totalWritten=%d",
			r.WritePos(), r.GetTotalReadBits(), r.TotalWritten())
	}
}
