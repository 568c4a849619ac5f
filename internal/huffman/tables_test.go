package huffman

import "testing"

// bitFeeder is a bitReader that replays a fixed sequence of single bits,
// used to drive Decode along a known path through a table's tree.
type bitFeeder struct {
	bits []uint32
	pos  int
}

func (f *bitFeeder) GetBits(n int) uint32 {
	if n != 1 {
		panic("bitFeeder only supports single-bit reads")
	}
	b := f.bits[f.pos]
	f.pos++
	return b
}

// pathToPairLeaf walks n looking for the leaf matching (x, y), returning the
// bit sequence that reaches it (0 = left, 1 = right).
func pathToPairLeaf(n *node, x, y int, path []uint32) ([]uint32, bool) {
	if n == nil {
		return nil, false
	}
	if n.leaf {
		if n.x == x && n.y == y {
			return path, true
		}
		return nil, false
	}
	if p, ok := pathToPairLeaf(n.left, x, y, append(path, 0)); ok {
		return p, true
	}
	return pathToPairLeaf(n.right, x, y, append(path, 1))
}

func pathToQuadLeaf(n *node, v, w, x, y int, path []uint32) ([]uint32, bool) {
	if n == nil {
		return nil, false
	}
	if n.leaf {
		if n.v == v && n.w == w && n.x == x && n.y == y {
			return path, true
		}
		return nil, false
	}
	if p, ok := pathToQuadLeaf(n.left, v, w, x, y, append(path, 0)); ok {
		return p, true
	}
	return pathToQuadLeaf(n.right, v, w, x, y, append(path, 1))
}

func TestPairTableRoundTrip(t *testing.T) {
	for idx, tbl := range Tables {
		if maxVal[idx] == 0 {
			continue // tables 0, 4 and 14 decode trivially
		}
		for _, pair := range [][2]int{{0, 0}, {maxVal[idx], 0}, {0, maxVal[idx]}, {maxVal[idx], maxVal[idx]}} {
			path, ok := pathToPairLeaf(tbl.root, pair[0], pair[1], nil)
			if !ok {
				t.Fatalf("table %d: no path found to leaf (%d,%d)", idx, pair[0], pair[1])
			}
			x, y := tbl.Decode(&bitFeeder{bits: path})
			if x != pair[0] || y != pair[1] {
				t.Errorf("table %d: decoded (%d,%d), want (%d,%d)", idx, x, y, pair[0], pair[1])
			}
		}
	}
}

func TestPairTableEveryLeafReachable(t *testing.T) {
	// Table 1 (maxVal=1) is small enough to exhaustively check every symbol
	// round-trips through its own codeword.
	tbl := Tables[1]
	for x := 0; x <= 1; x++ {
		for y := 0; y <= 1; y++ {
			path, ok := pathToPairLeaf(tbl.root, x, y, nil)
			if !ok {
				t.Fatalf("table 1: no path to (%d,%d)", x, y)
			}
			gx, gy := tbl.Decode(&bitFeeder{bits: path})
			if gx != x || gy != y {
				t.Errorf("table 1: decoded (%d,%d), want (%d,%d)", gx, gy, x, y)
			}
		}
	}
}

func TestQuadTableRoundTrip(t *testing.T) {
	for _, tbl := range Count1Tables {
		for v := 0; v <= 1; v++ {
			for w := 0; w <= 1; w++ {
				for x := 0; x <= 1; x++ {
					for y := 0; y <= 1; y++ {
						path, ok := pathToQuadLeaf(tbl.root, v, w, x, y, nil)
						if !ok {
							t.Fatalf("no path to quad leaf (%d,%d,%d,%d)", v, w, x, y)
						}
						gv, gw, gx, gy := tbl.Decode(&bitFeeder{bits: path})
						if gv != v || gw != w || gx != x || gy != y {
							t.Errorf("decoded (%d,%d,%d,%d), want (%d,%d,%d,%d)", gv, gw, gx, gy, v, w, x, y)
						}
					}
				}
			}
		}
	}
}

func TestZeroMaxValTableDecodesToOrigin(t *testing.T) {
	for idx, mv := range maxVal {
		if mv != 0 {
			continue
		}
		x, y := Tables[idx].Decode(&bitFeeder{bits: nil})
		if x != 0 || y != 0 {
			t.Errorf("table %d (maxVal 0): decoded (%d,%d), want (0,0)", idx, x, y)
		}
	}
}
