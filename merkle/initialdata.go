package merkle

import (
	"fmt"
	"math"
)

// Subtree is the root of a complete subtree of 1 << (Depth-1) leaves.
type Subtree[E comparable] struct {
	Depth int `cbor:"1,keyasint"`
	Root  E   `cbor:"2,keyasint"`
}

type KnownLeaf[E comparable] struct {
	Index int `cbor:"1,keyasint"`
	Hash  E   `cbor:"2,keyasint"`
}

// ExtraNode is a node recovered from a proof.
type ExtraNode[E comparable] struct {
	Layer    int `cbor:"1,keyasint"`
	Position int `cbor:"2,keyasint"`
	Hash     E   `cbor:"3,keyasint"`
}

// InitialData is what is needed to rebuild a tree whose interior may be
// partially unknown.
type InitialData[E comparable] struct {
	// SubtreeList holds the subtree roots left to right. Together they
	// cover every leaf exactly once.
	SubtreeList []Subtree[E] `cbor:"1,keyasint"`
	// KnownLeaves are leaves inside subtrees of depth > 1. Depth 1 subtrees
	// are leaves already and are not repeated here.
	KnownLeaves []KnownLeaf[E] `cbor:"2,keyasint"`
	// ExtraNodes must be applied after the subtrees and known leaves.
	ExtraNodes []ExtraNode[E] `cbor:"3,keyasint"`
}

// Placement locates a subtree root in the tree.
type Placement struct {
	Layer    int
	Position int
	// FirstLeaf is the index of the leftmost leaf under the subtree.
	FirstLeaf int
}

func subtreeLeaves(depth int) int {
	if depth < 1 {
		return 0
	}
	return 1 << (depth - 1)
}

// Leaves returns the number of leaves covered by the subtree list. Depths
// below 1 contribute nothing; Validate rejects them. A count that does not
// fit an int saturates at math.MaxInt.
func (d InitialData[E]) Leaves() int {
	n := 0
	for _, st := range d.SubtreeList {
		size := subtreeLeaves(st.Depth)
		if n > math.MaxInt-size {
			return math.MaxInt
		}
		n += size
	}
	return n
}

// Validate checks that the subtree list tiles the leaves. Each subtree must
// start on a multiple of its own size, otherwise its root would straddle
// two nodes of its layer and overlap its neighbours.
func (d InitialData[E]) Validate() error {
	_, err := d.Placements()
	return err
}

// Placements returns the (layer, position) of every subtree root in list
// order.
func (d InitialData[E]) Placements() ([]Placement, error) {
	placements := make([]Placement, 0, len(d.SubtreeList))
	offset := 0
	for i, st := range d.SubtreeList {
		if st.Depth < 1 || st.Depth >= ZeroHashCount {
			return nil, fmt.Errorf("%w: subtree=%d depth=%d", ErrTilingViolation, i, st.Depth)
		}
		size := subtreeLeaves(st.Depth)
		if offset > math.MaxInt-size {
			return nil, fmt.Errorf(
				"%w: subtree=%d depth=%d offset=%d", ErrLeafCountOverflow, i, st.Depth, offset)
		}
		if offset%size != 0 {
			return nil, fmt.Errorf(
				"%w: subtree=%d depth=%d offset=%d", ErrTilingViolation, i, st.Depth, offset)
		}
		placements = append(placements, Placement{
			Layer:     st.Depth - 1,
			Position:  offset / size,
			FirstLeaf: offset,
		})
		offset += size
	}
	return placements, nil
}
