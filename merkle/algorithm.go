package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Algorithm computes leaf and parent hashes for elements of type E.
//
// Implementations must not return Null() for real inputs.
type Algorithm[E HashElement[E]] interface {
	Leaf(data []byte) E
	Parent(left, right E) E
}

// ParentSingle computes the parent of a node that has no right sibling at
// the given height, pairing it with the padding for that height.
func ParentSingle[E HashElement[E]](alg Algorithm[E], node E, height int) E {
	return alg.Parent(node, EndPad[E](height))
}

// Keccak hashes leaves and parents with keccak256.
//
//	leaf   = keccak256(data)
//	parent = keccak256(left[32] || right[32])
//
// The parent of an absent child is absent.
type Keccak struct{}

var _ Algorithm[OptionalHash] = Keccak{}

func (Keccak) Leaf(data []byte) OptionalHash {
	return SomeHash(LeafRaw(data))
}

func (Keccak) Parent(left, right OptionalHash) OptionalHash {
	l, lok := left.Unwrap()
	r, rok := right.Unwrap()
	if !lok || !rok {
		return NoneHash()
	}
	return SomeHash(ParentRaw(l, r))
}

func LeafRaw(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

func ParentRaw(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash(left[:], right[:])
}
