package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Proof is an inclusion proof for a single leaf.
//
// Lemma is the leaf, one sibling per layer below the root, then the root.
// Path[i] is true when the node on the path at layer i is the left child.
type Proof[E comparable] struct {
	Lemma []E    `cbor:"1,keyasint"`
	Path  []bool `cbor:"2,keyasint"`
}

// RangeProof brackets the leaves [start, end) with the proofs for start and
// end-1.
type RangeProof[E comparable] struct {
	LeftProof  Proof[E] `cbor:"1,keyasint"`
	RightProof Proof[E] `cbor:"2,keyasint"`
}

func NewProof[E comparable](lemma []E, path []bool) (Proof[E], error) {
	p := Proof[E]{Lemma: lemma, Path: path}
	if err := p.checkShape(); err != nil {
		return Proof[E]{}, err
	}
	return p, nil
}

func (p Proof[E]) checkShape() error {
	if len(p.Lemma) != len(p.Path)+2 {
		return fmt.Errorf("%w: lemma=%d path=%d", ErrInvalidProof, len(p.Lemma), len(p.Path))
	}
	return nil
}

// Item returns the proven leaf.
func (p Proof[E]) Item() E {
	return p.Lemma[0]
}

func (p Proof[E]) Root() E {
	return p.Lemma[len(p.Lemma)-1]
}

// Position returns the leaf index encoded by the path. A right child at
// layer i contributes bit i.
func (p Proof[E]) Position() int {
	pos := 0
	for i, left := range p.Path {
		if !left {
			pos |= 1 << i
		}
	}
	return pos
}

// ValidateProof checks that p proves item at position and that its lemma
// hashes up to its root.
func ValidateProof[E HashElement[E]](alg Algorithm[E], p Proof[E], item E, position int) error {
	if err := p.checkShape(); err != nil {
		return err
	}
	if p.Item() != item {
		return fmt.Errorf("%w: item=%v lemma=%v", ErrProofItemMismatch, item, p.Item())
	}
	if got := p.Position(); got != position {
		return fmt.Errorf("%w: position=%d proof=%d", ErrProofPositionMismatch, position, got)
	}
	return validateRoot(alg, p)
}

func validateRoot[E HashElement[E]](alg Algorithm[E], p Proof[E]) error {
	h := p.Lemma[0]
	for i, left := range p.Path {
		sibling := p.Lemma[i+1]
		if left {
			h = alg.Parent(h, sibling)
		} else {
			h = alg.Parent(sibling, h)
		}
	}
	if h.IsNull() || h != p.Root() {
		return fmt.Errorf("%w: computed=%v root=%v", ErrProofRootMismatch, h, p.Root())
	}
	return nil
}

// ValidateRangeProof checks that both proofs of rp are valid, that they
// commit to the same root, and that they bracket [start, end).
func ValidateRangeProof[E HashElement[E]](alg Algorithm[E], rp RangeProof[E], start, end int) error {
	if end <= start {
		return fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, start, end)
	}
	if err := rp.LeftProof.checkShape(); err != nil {
		return fmt.Errorf("left proof: %w", err)
	}
	if err := rp.RightProof.checkShape(); err != nil {
		return fmt.Errorf("right proof: %w", err)
	}
	if err := ValidateProof(alg, rp.LeftProof, rp.LeftProof.Item(), start); err != nil {
		return fmt.Errorf("left proof: %w", err)
	}
	if err := ValidateProof(alg, rp.RightProof, rp.RightProof.Item(), end-1); err != nil {
		return fmt.Errorf("right proof: %w", err)
	}
	if rp.LeftProof.Root() != rp.RightProof.Root() {
		return ErrRangeRootMismatch
	}
	return nil
}

// ProofToHashes converts a proof to plain digests, absent elements become
// the zero hash.
func ProofToHashes(p Proof[OptionalHash]) (Proof[common.Hash], error) {
	lemma := make([]common.Hash, len(p.Lemma))
	for i, e := range p.Lemma {
		lemma[i] = e.Hash()
	}
	return NewProof(lemma, append([]bool(nil), p.Path...))
}

func ProofFromHashes(p Proof[common.Hash]) (Proof[OptionalHash], error) {
	lemma := make([]OptionalHash, len(p.Lemma))
	for i, h := range p.Lemma {
		lemma[i] = SomeHash(h)
	}
	return NewProof(lemma, append([]bool(nil), p.Path...))
}

func RangeProofFromHashes(rp RangeProof[common.Hash]) (RangeProof[OptionalHash], error) {
	left, err := ProofFromHashes(rp.LeftProof)
	if err != nil {
		return RangeProof[OptionalHash]{}, err
	}
	right, err := ProofFromHashes(rp.RightProof)
	if err != nil {
		return RangeProof[OptionalHash]{}, err
	}
	return RangeProof[OptionalHash]{LeftProof: left, RightProof: right}, nil
}
