package appendtree

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/merkle"
)

// Append adds a single leaf and recomputes its ancestors.
func (t *Tree[E]) Append(leaf E) error {
	return t.AppendList([]E{leaf})
}

// AppendList adds leaves in order and recomputes their ancestors.
func (t *Tree[E]) AppendList(leaves []E) error {
	err := t.update(func(x *txn[E]) error {
		return appendLeaves(x, t.alg, leaves)
	})
	if err != nil {
		return err
	}
	leavesAppended.Add(float64(len(leaves)))
	return nil
}

func appendLeaves[E merkle.HashElement[E]](x *txn[E], alg merkle.Algorithm[E], leaves []E) error {
	if len(leaves) == 0 {
		return nil
	}
	for i, leaf := range leaves {
		if leaf.IsNull() {
			return fmt.Errorf("%w: leaf=%d", ErrNullNode, i)
		}
	}
	start := x.LayerLen(0)
	if err := x.push(0, leaves...); err != nil {
		return err
	}
	return recompute(x, alg, start, 0, -1, start)
}

// AppendSubtree adds a complete subtree of 1 << (depth-1) leaves of which
// only the root is known. The leaves and interior nodes below the root are
// appended as null and may be filled later.
//
// The subtree must start on a multiple of its size.
func (t *Tree[E]) AppendSubtree(depth int, root E) error {
	return t.AppendSubtreeList([]merkle.Subtree[E]{{Depth: depth, Root: root}})
}

// AppendSubtreeList appends subtrees left to right.
func (t *Tree[E]) AppendSubtreeList(subtrees []merkle.Subtree[E]) error {
	added := 0
	err := t.update(func(x *txn[E]) error {
		for _, st := range subtrees {
			n, err := appendSubtree(x, t.alg, st.Depth, st.Root)
			if err != nil {
				return err
			}
			added += n
		}
		return nil
	})
	if err != nil {
		return err
	}
	leavesAppended.Add(float64(added))
	return nil
}

func appendSubtree[E merkle.HashElement[E]](x *txn[E], alg merkle.Algorithm[E], depth int, root E) (int, error) {
	if root.IsNull() {
		return 0, fmt.Errorf("%w: subtree root", ErrNullNode)
	}
	if depth < 1 || depth >= merkle.ZeroHashCount {
		return 0, fmt.Errorf("%w: depth=%d", merkle.ErrTilingViolation, depth)
	}
	if depth == 1 {
		return 1, appendLeaves(x, alg, []E{root})
	}

	size := 1 << (depth - 1)
	start := x.LayerLen(0)
	if start%size != 0 {
		return 0, fmt.Errorf("%w: depth=%d leaves=%d", merkle.ErrTilingViolation, depth, start)
	}

	if err := x.checkGrow(size); err != nil {
		return 0, err
	}

	rootLayer := depth - 1
	if x.LayerLen(rootLayer) != start>>rootLayer {
		return 0, fmt.Errorf("%w: layer=%d len=%d want=%d",
			ErrInconsistentLayers, rootLayer, x.LayerLen(rootLayer), start>>rootLayer)
	}
	for layer := 0; layer < rootLayer; layer++ {
		nulls := make([]E, 1<<(rootLayer-layer))
		for i := range nulls {
			nulls[i] = merkle.Null[E]()
		}
		if err := x.push(layer, nulls...); err != nil {
			return 0, err
		}
	}
	if err := x.push(rootLayer, root); err != nil {
		return 0, err
	}
	return size, recompute(x, alg, start, rootLayer, -1, start)
}

// FillLeaf sets a leaf that was appended as null, for example one under an
// appended subtree, and recomputes its ancestors. Filling a leaf with the
// value it already has is a no-op.
func (t *Tree[E]) FillLeaf(index int, leaf E) error {
	return t.update(func(x *txn[E]) error {
		return fillLeaf(x, t.alg, index, leaf)
	})
}

func fillLeaf[E merkle.HashElement[E]](x *txn[E], alg merkle.Algorithm[E], index int, leaf E) error {
	if leaf.IsNull() {
		return fmt.Errorf("%w: leaf_index=%d", ErrNullNode, index)
	}
	if index < 0 || index >= x.LayerLen(0) {
		return fmt.Errorf("%w: leaf_index=%d total_leaves=%d", merkle.ErrIndexOutOfBounds, index, x.LayerLen(0))
	}
	existing := x.Node(0, index)
	if existing == leaf {
		return nil
	}
	if !existing.IsNull() {
		return fmt.Errorf("%w: leaf_index=%d existing=%v new=%v", ErrLeafMismatch, index, existing, leaf)
	}
	if err := x.update(0, index, leaf); err != nil {
		return err
	}
	return recompute(x, alg, index, 0, index+1, x.LayerLen(0))
}
