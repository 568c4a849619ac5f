package imdct

import "testing"

func TestWinZeroInputIsZeroOutput(t *testing.T) {
	for _, bt := range []int{Normal, Start, Short, Stop} {
		in := make([]float32, 18)
		out := Win(in, bt)
		if len(out) != 36 {
			t.Fatalf("blockType %d: len(out) = %d, want 36", bt, len(out))
		}
		for i, v := range out {
			if v != 0 {
				t.Errorf("blockType %d: out[%d] = %v, want 0 for zero input", bt, i, v)
			}
		}
	}
}

func TestWinOutputLength(t *testing.T) {
	in := make([]float32, 18)
	for i := range in {
		in[i] = float32(i) - 9
	}
	for _, bt := range []int{Normal, Start, Short, Stop} {
		if got := len(Win(in, bt)); got != 36 {
			t.Errorf("blockType %d: len(out) = %d, want 36", bt, got)
		}
	}
}

// Short blocks only populate samples [6:30); the leading 6 carry no energy
// from any of the three sub-blocks and must stay zero regardless of input.
func TestShortBlockLeadingSamplesAreZero(t *testing.T) {
	in := make([]float32, 18)
	for i := range in {
		in[i] = 1
	}
	out := Win(in, Short)
	for i := 0; i < 6; i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 (outside short-block overlap region)", i, out[i])
		}
	}
}

// Every output sample is a windowed sum of bounded cosine terms, so its
// magnitude can never exceed the sum of the input coefficient magnitudes.
func TestWinOutputIsBounded(t *testing.T) {
	in := []float32{2, -3, 1, 0, 4, -1, 2, -2, 1, 0, 3, -3, 1, 1, -1, 2, 0, -2}
	var bound float32
	for _, v := range in {
		if v < 0 {
			v = -v
		}
		bound += v
	}
	for _, bt := range []int{Normal, Start, Short, Stop} {
		out := Win(in, bt)
		for i, v := range out {
			if v < 0 {
				v = -v
			}
			if v > bound+1e-3 {
				t.Errorf("blockType %d: |out[%d]| = %v exceeds bound %v", bt, i, v, bound)
			}
		}
	}
}
