package merkle

/*

# Append only binary merkle trees with partial knowledge

This package provides the verification core of an append only, incrementally
built binary merkle tree. It does not store anything. It defines the node
value (the hash element), the hashing algorithm, and a narrow read / write
contract over `(layer, index)` addressed nodes. Proof generation is written
once against the read contract, so any storage approach that can answer
`Node(layer, index)` can produce proofs.

## Layers

Nodes are stored densely per layer. Layer 0 holds the leaves, layer
`Height()-1` holds the single root.

	2            r
	           /   \
	1        p0     p1
	        /  \   /  \
	0      l0  l1 l2   l3

The sibling of a node at index i is at `i+1` when i is even (a left child)
and at `i-1` when i is odd (a right child). The parent is at `i >> 1`.

## Padding

A layer with an odd number of nodes has a trailing left child without a
right sibling. Its parent is computed against a deterministic padding value,
`EndPad(layer)`, which is the root of an all zero subtree of the same height
(see ZeroHashes). Padding is agreed by every party, so a proof for the last
leaf of an odd layer carries the padding as the sibling rather than failing.

	1        p0     p1 = H(l2, EndPad(0))
	        /  \   /
	0      l0  l1 l2

## Unknown nodes

A tree may be rebuilt from a checkpoint in which only some nodes are known.
Unknown nodes are represented by `Null()`, which is a tagged state of the
hash element and never a reachable hash output. A parent of an unknown child
is itself unknown. Proof generation fails with ErrNotReady when the leaf is
unknown and ErrIncompleteData when the leaf is known but a sibling or the
root is not.

## Proof shape

A proof is a lemma and a path. The lemma is the leaf, one sibling per layer
below the root, then the root. The path holds one bit per sibling; true
means the node on the path is the left child at that layer.

For leaves l0..l3 above, the proof for l1 is

	lemma: [l1, l0, p1, r]
	path:  [false, true]

A tree with a single leaf has the leaf as its root and the proof is the self
proof `[r, r]` with an empty path.

## Reconstruction

InitialData describes a tree by the roots of contiguous complete subtrees
(left to right), the known leaves inside the larger subtrees, and the extra
nodes recovered from previously issued proofs. The extra nodes must be
applied last, once the structure they hang off exists.
*/
