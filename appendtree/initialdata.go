package appendtree

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/merkle"
)

// NewFromInitialData rebuilds a tree into an empty store.
//
// The subtrees are appended first, then the known leaves are filled, and
// only then are the extra nodes grafted, as those may hang off interior
// nodes the first two steps create. Nothing is written to the store unless
// every step succeeds.
func NewFromInitialData[E merkle.HashElement[E]](
	alg merkle.Algorithm[E], store LayerStore[E], data merkle.InitialData[E], opts ...Option) (*Tree[E], error) {

	if store.Height() != 0 {
		return nil, fmt.Errorf("%w: height=%d", ErrStoreNotEmpty, store.Height())
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	t := New(alg, store, opts...)
	if data.Leaves() > t.maxLeaves {
		return nil, fmt.Errorf("%w: leaves=%d max=%d", ErrTooManyLeaves, data.Leaves(), t.maxLeaves)
	}
	extra := 0
	err := t.update(func(x *txn[E]) error {
		for _, st := range data.SubtreeList {
			if _, err := appendSubtree(x, alg, st.Depth, st.Root); err != nil {
				return err
			}
		}
		t.debugf("appendtree: restored %d subtrees covering %d leaves", len(data.SubtreeList), x.LayerLen(0))

		for _, kl := range data.KnownLeaves {
			if err := fillLeaf(x, alg, kl.Index, kl.Hash); err != nil {
				return err
			}
		}
		t.debugf("appendtree: filled %d known leaves", len(data.KnownLeaves))

		var err error
		if extra, err = addExtraNodes(x, data.ExtraNodes); err != nil {
			return err
		}
		t.debugf("appendtree: grafted %d of %d extra nodes, %d node writes staged",
			extra, len(data.ExtraNodes), x.changes())
		return nil
	})
	if err != nil {
		return nil, err
	}
	leavesAppended.Add(float64(data.Leaves()))
	nodesGrafted.Add(float64(extra))
	return t, nil
}
