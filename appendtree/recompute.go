package appendtree

import (
	"fmt"
	"math/bits"

	"github.com/forestrie/go-appendmerkle/merkle"
)

type parentUpdate[E any] struct {
	index int
	node  E
}

// isFinal reports whether the node at (layer, index) covers only leaves
// below settled. Such a node was never computed against padding, so its
// value can not change.
func isFinal(layer, index, settled int) bool {
	if layer >= bits.Len(uint(settled)) {
		return false
	}
	return (index+1)<<layer <= settled
}

// recompute refreshes the ancestors of the nodes [start, end) at height.
// start and end are leaf indices; end < 0 means "to the end of the layer".
// settled is the leaf count before the operation began.
//
// A parent of a null child is null and never overwrites anything; it is
// only pushed when it extends its layer. A known parent overwrites a null
// node, or a node that reaches past the settled leaves and so may have been
// computed against padding. Any other difference is ErrNodeMismatch.
func recompute[E merkle.HashElement[E]](x *txn[E], alg merkle.Algorithm[E], start, height, end, settled int) error {

	start >>= height
	if end >= 0 {
		end >>= height
	}

	for x.LayerLen(height) > 1 || height < x.Height()-1 {

		nextStart := start >> 1
		if start%2 == 1 {
			start--
		}
		layerLen := x.LayerLen(height)
		endIndex := end
		if end < 0 {
			endIndex = layerLen
		}
		if endIndex%2 == 1 && endIndex != layerLen {
			endIndex++
		}

		// the parent layer is not modified while the child layer is read
		var updates []parentUpdate[E]
		i := 0
		j := start
		for ; j+1 < endIndex; j += 2 {
			left, right := x.Node(height, j), x.Node(height, j+1)
			parent := merkle.Null[E]()
			if !left.IsNull() && !right.IsNull() {
				parent = alg.Parent(left, right)
			}
			updates = append(updates, parentUpdate[E]{index: nextStart + i, node: parent})
			i++
		}
		if j < endIndex {
			last := x.Node(height, j)
			parent := merkle.Null[E]()
			if !last.IsNull() {
				parent = merkle.ParentSingle(alg, last, height)
			}
			updates = append(updates, parentUpdate[E]{index: nextStart + i, node: parent})
		}

		lastChanged := -1
		for _, u := range updates {
			parentLen := x.LayerLen(height + 1)
			switch {
			case u.index < parentLen:
				if u.node.IsNull() {
					continue
				}
				existing := x.Node(height+1, u.index)
				if existing == u.node {
					continue
				}
				if !existing.IsNull() && isFinal(height+1, u.index, settled) {
					return fmt.Errorf("%w: layer=%d index=%d existing=%v computed=%v",
						ErrNodeMismatch, height+1, u.index, existing, u.node)
				}
				if err := x.update(height+1, u.index, u.node); err != nil {
					return err
				}
				lastChanged = u.index
			case u.index == parentLen:
				if err := x.push(height+1, u.node); err != nil {
					return err
				}
				lastChanged = u.index
			default:
				return fmt.Errorf("%w: layer=%d index=%d len=%d",
					ErrInconsistentLayers, height+1, u.index, parentLen)
			}
		}
		if lastChanged < 0 {
			break
		}
		end = lastChanged + 1
		height++
		start = nextStart
	}
	return nil
}
