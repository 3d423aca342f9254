// Package appendtree provides an append only binary merkle tree over a
// layer store.
//
// The tree composes the merkle read and write contracts with an Algorithm:
// leaves and subtree roots are appended, unknown leaves are backfilled, and
// proof nodes are grafted in, with every ancestor kept consistent. Proofs may
// be generated from any number of goroutines while a single writer extends
// the tree; readers always observe a whole operation or none of it.
package appendtree

import (
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-appendmerkle/merkle"
)

// LayerStore is the storage a Tree is built over. See the nodestore package.
type LayerStore[E merkle.HashElement[E]] interface {
	merkle.MerkleTreeWrite[E]
	Node(layer, index int) E
	Height() int
	LayerLen(layer int) int
}

type Tree[E merkle.HashElement[E]] struct {
	mu        sync.RWMutex
	alg       merkle.Algorithm[E]
	store     LayerStore[E]
	log       logger.Logger
	maxLeaves int
}

var (
	_ merkle.MerkleTreeRead[merkle.OptionalHash]  = (*Tree[merkle.OptionalHash])(nil)
	_ merkle.MerkleTreeWrite[merkle.OptionalHash] = (*Tree[merkle.OptionalHash])(nil)
)

// New returns a tree over store. The store may already hold a tree, for
// example one reloaded from disk.
func New[E merkle.HashElement[E]](alg merkle.Algorithm[E], store LayerStore[E], opts ...Option) *Tree[E] {
	options := newTreeOptions(opts...)
	return &Tree[E]{
		alg:       alg,
		store:     store,
		log:       options.Log,
		maxLeaves: options.MaxLeaves,
	}
}

// NewWithLeaves returns a tree over store holding leaves.
func NewWithLeaves[E merkle.HashElement[E]](
	alg merkle.Algorithm[E], store LayerStore[E], leaves []E, opts ...Option) (*Tree[E], error) {

	t := New(alg, store, opts...)
	if len(leaves) == 0 {
		return t, nil
	}
	if err := t.AppendList(leaves); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree[E]) debugf(format string, args ...any) {
	if t.log != nil {
		t.log.Debugf(format, args...)
	}
}

// update runs fn against a staged view of the store and commits the staged
// writes only if fn succeeds.
func (t *Tree[E]) update(fn func(x *txn[E]) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	x := newTxn(t.store, t.maxLeaves)
	if err := fn(x); err != nil {
		return err
	}
	return x.commit()
}

// Read side

func (t *Tree[E]) Node(layer, index int) E {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Node(layer, index)
}

func (t *Tree[E]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Height()
}

func (t *Tree[E]) LayerLen(layer int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.LayerLen(layer)
}

func (t *Tree[E]) PaddingNode(height int) E {
	return merkle.EndPad[E](height)
}

func (t *Tree[E]) Leaves() int {
	return t.LayerLen(0)
}

// Root returns the root, or Null() for an empty tree or an unknown root.
func (t *Tree[E]) Root() E {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return merkle.Root[E](storeView[E]{t.store})
}

// Head returns the leaf count and the root as of the same moment.
func (t *Tree[E]) Head() (int, E) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.LayerLen(0), merkle.Root[E](storeView[E]{t.store})
}

// LeafAt returns the leaf at index, which may be Null() when not yet known.
func (t *Tree[E]) LeafAt(index int) (E, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || index >= t.store.LayerLen(0) {
		return merkle.Null[E](), fmt.Errorf(
			"%w: leaf_index=%d total_leaves=%d", merkle.ErrIndexOutOfBounds, index, t.store.LayerLen(0))
	}
	return t.store.Node(0, index), nil
}

func (t *Tree[E]) GenProof(leafIndex int) (merkle.Proof[E], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	proof, err := merkle.GenProof[E](storeView[E]{t.store}, leafIndex)
	proofsGenerated.WithLabelValues("leaf", proofStatus(err)).Inc()
	return proof, err
}

func (t *Tree[E]) GenRangeProof(start, end int) (merkle.RangeProof[E], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	proof, err := merkle.GenRangeProof[E](storeView[E]{t.store}, start, end)
	proofsGenerated.WithLabelValues("range", proofStatus(err)).Inc()
	return proof, err
}

// storeView reads a store directly, for use while the tree lock is held.
type storeView[E merkle.HashElement[E]] struct {
	LayerStore[E]
}

func (v storeView[E]) PaddingNode(height int) E {
	return merkle.EndPad[E](height)
}

// Raw write side. These do not recompute ancestors.

func (t *Tree[E]) PushNode(layer int, node E) error {
	return t.update(func(x *txn[E]) error {
		return x.push(layer, node)
	})
}

func (t *Tree[E]) AppendNodes(layer int, nodes []E) error {
	return t.update(func(x *txn[E]) error {
		return x.push(layer, nodes...)
	})
}

// UpdateNode replaces a null node, or an interior node that reaches past the
// last leaf and so was computed against padding. Leaves and every other
// known node are final.
func (t *Tree[E]) UpdateNode(layer, pos int, node E) error {
	return t.update(func(x *txn[E]) error {
		existing := x.Node(layer, pos)
		if !existing.IsNull() && existing != node && (layer == 0 || isFinal(layer, pos, x.LayerLen(0))) {
			return fmt.Errorf("%w: layer=%d pos=%d", ErrNodeFinalized, layer, pos)
		}
		return x.update(layer, pos, node)
	})
}
