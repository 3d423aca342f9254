package checkpoint

import (
	"fmt"
	"math/bits"

	"github.com/forestrie/go-appendmerkle/appendtree"
	"github.com/forestrie/go-appendmerkle/merkle"
)

// CaptureInitialData returns the smallest subtree list that rebuilds tree
// with the same root: one subtree per set bit of the leaf count, largest
// first. A subtree whose root is unknown is split into its two halves.
//
// The tree must not be appended to while it is captured.
func CaptureInitialData(tree *appendtree.Tree[merkle.OptionalHash]) (merkle.InitialData[merkle.OptionalHash], error) {
	var data merkle.InitialData[merkle.OptionalHash]
	leaves := tree.Leaves()
	offset := 0
	for remaining := leaves; remaining > 0; {
		layer := bits.Len(uint(remaining)) - 1
		subtrees, err := captureSubtree(tree, layer, offset>>layer)
		if err != nil {
			return merkle.InitialData[merkle.OptionalHash]{}, err
		}
		data.SubtreeList = append(data.SubtreeList, subtrees...)
		offset += 1 << layer
		remaining -= 1 << layer
	}
	return data, nil
}

func captureSubtree(tree *appendtree.Tree[merkle.OptionalHash], layer, pos int) ([]merkle.Subtree[merkle.OptionalHash], error) {
	root := tree.Node(layer, pos)
	if !root.IsNull() {
		return []merkle.Subtree[merkle.OptionalHash]{{Depth: layer + 1, Root: root}}, nil
	}
	if layer == 0 {
		return nil, fmt.Errorf("%w: leaf_index=%d", merkle.ErrIncompleteData, pos)
	}
	left, err := captureSubtree(tree, layer-1, pos*2)
	if err != nil {
		return nil, err
	}
	right, err := captureSubtree(tree, layer-1, pos*2+1)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}
