package checkpoint

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/appendtree"
	"github.com/forestrie/go-appendmerkle/merkle"
)

// TreeState is the signed commitment to a tree.
type TreeState struct {
	// Leaves fixes the shape of the tree, and so the path to every leaf.
	// Any larger tree with the same prefix reproduces the same subtree roots.
	Leaves uint64 `cbor:"1,keyasint"`
	Root   []byte `cbor:"2,keyasint"`
	// Timestamp is the unix time in milliseconds at which the state was
	// signed. It allows the same root to be signed again.
	Timestamp int64 `cbor:"3,keyasint"`
}

// NewTreeState reads the current state of tree. The root must be known.
func NewTreeState(tree *appendtree.Tree[merkle.OptionalHash], timestamp int64) (TreeState, error) {
	leaves, head := tree.Head()
	root, ok := head.Unwrap()
	if !ok {
		return TreeState{}, fmt.Errorf("%w: leaves=%d", ErrRootUnknown, leaves)
	}
	return TreeState{
		Leaves:    uint64(leaves),
		Root:      root.Bytes(),
		Timestamp: timestamp,
	}, nil
}
