package appendtree

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/merkle"
)

// FillWithProof grafts the nodes of a valid proof for position into the
// tree. The proof must commit to the tree's current root. Only unknown nodes
// are written; the grafted nodes are returned so the caller can persist them
// as extra nodes of a checkpoint.
func (t *Tree[E]) FillWithProof(proof merkle.Proof[E], position int) ([]merkle.ExtraNode[E], error) {
	var grafted []merkle.ExtraNode[E]
	err := t.update(func(x *txn[E]) error {
		var err error
		grafted, err = fillWithProof(x, t.alg, proof, position)
		return err
	})
	if err != nil {
		return nil, err
	}
	nodesGrafted.Add(float64(len(grafted)))
	t.debugf("appendtree: grafted %d nodes from the proof for leaf %d", len(grafted), position)
	return grafted, nil
}

func fillWithProof[E merkle.HashElement[E]](
	x *txn[E], alg merkle.Algorithm[E], proof merkle.Proof[E], position int) ([]merkle.ExtraNode[E], error) {

	if _, err := merkle.NewProof(proof.Lemma, proof.Path); err != nil {
		return nil, err
	}
	if err := merkle.ValidateProof(alg, proof, proof.Item(), position); err != nil {
		return nil, err
	}
	if position >= x.LayerLen(0) {
		return nil, fmt.Errorf("%w: leaf_index=%d total_leaves=%d", merkle.ErrIndexOutOfBounds, position, x.LayerLen(0))
	}
	height := x.Height()
	if len(proof.Path) != max(height-1, 0) {
		return nil, fmt.Errorf("%w: path=%d height=%d", ErrProofHeightMismatch, len(proof.Path), height)
	}
	root := merkle.Root[E](x)
	if root != proof.Root() {
		return nil, fmt.Errorf("%w: tree=%v proof=%v", ErrRootMismatch, root, proof.Root())
	}

	var grafted []merkle.ExtraNode[E]
	graft := func(layer, pos int, node E) error {
		changed, err := graftNode(x, layer, pos, node)
		if changed {
			grafted = append(grafted, merkle.ExtraNode[E]{Layer: layer, Position: pos, Hash: node})
		}
		return err
	}

	index := position
	h := proof.Item()
	for layer, left := range proof.Path {
		if err := graft(layer, index, h); err != nil {
			return nil, err
		}
		sibling := proof.Lemma[layer+1]
		// a trailing left child has padding, not a node, as its sibling
		if index^1 < x.LayerLen(layer) {
			if err := graft(layer, index^1, sibling); err != nil {
				return nil, err
			}
		}
		if left {
			h = alg.Parent(h, sibling)
		} else {
			h = alg.Parent(sibling, h)
		}
		index >>= 1
	}
	return grafted, nil
}

// graftNode writes node at (layer, pos) if that position is unknown. It
// reports whether it wrote anything.
func graftNode[E merkle.HashElement[E]](x *txn[E], layer, pos int, node E) (bool, error) {
	if node.IsNull() {
		return false, fmt.Errorf("%w: layer=%d pos=%d", ErrNullNode, layer, pos)
	}
	if layer < 0 || layer >= x.Height() || pos < 0 || pos >= x.LayerLen(layer) {
		return false, fmt.Errorf("%w: layer=%d pos=%d", ErrNodeOutOfRange, layer, pos)
	}
	existing := x.Node(layer, pos)
	if existing == node {
		return false, nil
	}
	if !existing.IsNull() {
		return false, fmt.Errorf("%w: layer=%d pos=%d existing=%v new=%v", ErrNodeMismatch, layer, pos, existing, node)
	}
	return true, x.update(layer, pos, node)
}

// AddExtraNodes grafts nodes recovered from earlier proofs. Nodes already
// known with the same value are skipped.
func (t *Tree[E]) AddExtraNodes(nodes []merkle.ExtraNode[E]) error {
	added := 0
	err := t.update(func(x *txn[E]) error {
		var err error
		added, err = addExtraNodes(x, nodes)
		return err
	})
	if err != nil {
		return err
	}
	nodesGrafted.Add(float64(added))
	return nil
}

func addExtraNodes[E merkle.HashElement[E]](x *txn[E], nodes []merkle.ExtraNode[E]) (int, error) {
	added := 0
	for _, n := range nodes {
		changed, err := graftNode(x, n.Layer, n.Position, n.Hash)
		if err != nil {
			return 0, err
		}
		if changed {
			added++
		}
	}
	return added, nil
}
