package merkle

// MerkleTreeWrite is the raw mutation side of a tree. Positions are
// addressed by (layer, position).
//
// PushNode on layer == Height() starts a new top layer. UpdateNode is for
// backfilling a previously unknown node or replacing the padded tail of a
// layer; finalized values are never altered. Consistency between layers is
// the responsibility of the tree that composes this with an Algorithm.
type MerkleTreeWrite[E HashElement[E]] interface {
	PushNode(layer int, node E) error
	AppendNodes(layer int, nodes []E) error
	UpdateNode(layer, pos int, node E) error
}
