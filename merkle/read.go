package merkle

import (
	"fmt"
)

// MerkleTreeRead is the read side of a tree. Layer 0 holds the leaves.
//
// Node may return Null() for positions that are not yet known.
type MerkleTreeRead[E HashElement[E]] interface {
	Node(layer, index int) E
	Height() int
	LayerLen(layer int) int
	PaddingNode(height int) E
}

// Leaves returns the number of leaves in t.
func Leaves[E HashElement[E]](t MerkleTreeRead[E]) int {
	return t.LayerLen(0)
}

// Root returns the single node of the top layer.
func Root[E HashElement[E]](t MerkleTreeRead[E]) E {
	return t.Node(t.Height()-1, 0)
}

// GenProof generates the inclusion proof for leafIndex.
//
// For the following tree and leafIndex 1
//
//	2        r
//	       /   \
//	1     p0    p1
//	     / \   /  \
//	0   l0 l1 l2  l3
//
// the lemma is [l1, l0, p1, r] and the path is [false, true].
//
// A trailing left child with no right sibling takes PaddingNode(layer) as
// its sibling.
func GenProof[E HashElement[E]](t MerkleTreeRead[E], leafIndex int) (Proof[E], error) {

	leaves := Leaves(t)
	if leafIndex < 0 || leafIndex >= leaves {
		return Proof[E]{}, fmt.Errorf(
			"%w: leaf_index=%d total_leaves=%d", ErrIndexOutOfBounds, leafIndex, leaves)
	}
	if t.Node(0, leafIndex).IsNull() {
		return Proof[E]{}, fmt.Errorf("%w: leaf_index=%d", ErrNotReady, leafIndex)
	}

	height := t.Height()
	if height == 1 {
		root := Root(t)
		return NewProof([]E{root, root}, []bool{})
	}

	lemma := make([]E, 0, height+1)
	path := make([]bool, 0, height-1)

	index := leafIndex
	lemma = append(lemma, t.Node(0, leafIndex))
	for layer := 0; layer < height-1; layer++ {
		if index%2 == 0 {
			path = append(path, true)
			if index+1 == t.LayerLen(layer) {
				lemma = append(lemma, t.PaddingNode(layer))
			} else {
				lemma = append(lemma, t.Node(layer, index+1))
			}
		} else {
			path = append(path, false)
			lemma = append(lemma, t.Node(layer, index-1))
		}
		index >>= 1
	}
	lemma = append(lemma, Root(t))

	for i, e := range lemma {
		if e.IsNull() {
			return Proof[E]{}, fmt.Errorf(
				"%w: leaf_index=%d lemma_index=%d", ErrIncompleteData, leafIndex, i)
		}
	}
	return NewProof(lemma, path)
}

// GenRangeProof generates the proofs bracketing the leaves [start, end).
//
// The two proofs are generated independently and share no ancestors.
func GenRangeProof[E HashElement[E]](t MerkleTreeRead[E], start, end int) (RangeProof[E], error) {
	if end <= start {
		return RangeProof[E]{}, fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, start, end)
	}
	left, err := GenProof(t, start)
	if err != nil {
		return RangeProof[E]{}, err
	}
	right, err := GenProof(t, end-1)
	if err != nil {
		return RangeProof[E]{}, err
	}
	return RangeProof[E]{LeftProof: left, RightProof: right}, nil
}
