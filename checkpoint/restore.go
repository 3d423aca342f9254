package checkpoint

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/appendtree"
	"github.com/forestrie/go-appendmerkle/merkle"
	"github.com/forestrie/go-appendmerkle/nodestore"
	"github.com/veraison/go-cose"
)

// Restore rebuilds a tree into store from data, and only keeps it if the
// rebuilt root verifies against the signed checkpoint.
//
// The tree is first rebuilt in memory to recover its root. The store is not
// written unless the signature checks out and data covers exactly the signed
// leaf count. The leaf count is bounded by the tree options (see
// appendtree.WithMaxLeaves) before anything is allocated.
func Restore(
	codec CBORCodec,
	alg merkle.Algorithm[merkle.OptionalHash],
	store appendtree.LayerStore[merkle.OptionalHash],
	data merkle.InitialData[merkle.OptionalHash],
	signedRoot []byte,
	verifier cose.Verifier,
	external []byte,
	opts ...appendtree.Option,
) (*appendtree.Tree[merkle.OptionalHash], TreeState, error) {

	if err := data.Validate(); err != nil {
		return nil, TreeState{}, err
	}
	signed, state, err := DecodeSignedRoot(codec, signedRoot)
	if err != nil {
		return nil, TreeState{}, err
	}
	if uint64(data.Leaves()) != state.Leaves {
		return nil, TreeState{}, fmt.Errorf(
			"%w: initial=%d signed=%d", ErrLeafCountMismatch, data.Leaves(), state.Leaves)
	}

	scratch, err := appendtree.NewFromInitialData(alg, nodestore.NewMemory[merkle.OptionalHash](), data, opts...)
	if err != nil {
		return nil, TreeState{}, err
	}
	root, ok := scratch.Root().Unwrap()
	if !ok {
		return nil, TreeState{}, fmt.Errorf("%w: leaves=%d", ErrRootUnknown, state.Leaves)
	}
	state.Root = root.Bytes()
	if err = VerifySignedRoot(codec, verifier, signed, state, external); err != nil {
		return nil, TreeState{}, err
	}

	tree, err := appendtree.NewFromInitialData(alg, store, data, opts...)
	if err != nil {
		return nil, TreeState{}, err
	}
	return tree, state, nil
}
