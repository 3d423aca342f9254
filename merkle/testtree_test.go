package merkle

import (
	"encoding/binary"
	"testing"
)

// testTree is a dense per layer tree built mandraulically from its leaves.
// Tests may null out any node afterwards to simulate partial knowledge.
type testTree struct {
	t      *testing.T
	layers [][]OptionalHash
}

func newTestTree(t *testing.T, leaves []OptionalHash) *testTree {
	tt := &testTree{t: t}
	alg := Keccak{}
	layer := append([]OptionalHash(nil), leaves...)
	tt.layers = append(tt.layers, layer)
	for height := 0; len(layer) > 1; height++ {
		var next []OptionalHash
		for i := 0; i < len(layer); i += 2 {
			if i+1 < len(layer) {
				next = append(next, alg.Parent(layer[i], layer[i+1]))
			} else {
				next = append(next, ParentSingle[OptionalHash](alg, layer[i], height))
			}
		}
		tt.layers = append(tt.layers, next)
		layer = next
	}
	return tt
}

func (tt *testTree) Node(layer, index int) OptionalHash {
	if layer < 0 || layer >= len(tt.layers) || index < 0 || index >= len(tt.layers[layer]) {
		return NoneHash()
	}
	return tt.layers[layer][index]
}

func (tt *testTree) Height() int { return len(tt.layers) }

func (tt *testTree) LayerLen(layer int) int {
	if layer >= len(tt.layers) {
		return 0
	}
	return len(tt.layers[layer])
}

func (tt *testTree) PaddingNode(height int) OptionalHash {
	return EndPad[OptionalHash](height)
}

func (tt *testTree) mustNode(layer, index int) OptionalHash {
	if layer >= len(tt.layers) || index >= len(tt.layers[layer]) {
		tt.t.Fatalf("node (%d, %d) not present", layer, index)
	}
	return tt.layers[layer][index]
}

func (tt *testTree) forget(layer, index int) {
	tt.mustNode(layer, index)
	tt.layers[layer][index] = NoneHash()
}

func hashNum(num uint64) OptionalHash {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, num)
	return Keccak{}.Leaf(b)
}

func hashNums(n int) []OptionalHash {
	leaves := make([]OptionalHash, n)
	for i := range leaves {
		leaves[i] = hashNum(uint64(i))
	}
	return leaves
}
