package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProofShape(t *testing.T) {
	_, err := NewProof([]OptionalHash{hashNum(0)}, nil)
	assert.ErrorIs(t, err, ErrInvalidProof)

	_, err = NewProof([]OptionalHash{hashNum(0), hashNum(1), hashNum(2)}, []bool{true, false})
	assert.ErrorIs(t, err, ErrInvalidProof)

	p, err := NewProof([]OptionalHash{hashNum(0), hashNum(0)}, []bool{})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Position())
}

func TestValidateProofRejects(t *testing.T) {
	alg := Keccak{}
	tree := newTestTree(t, hashNums(6))
	proof, err := GenProof[OptionalHash](tree, 5)
	require.NoError(t, err)
	require.NoError(t, ValidateProof[OptionalHash](alg, proof, hashNum(5), 5))

	err = ValidateProof[OptionalHash](alg, proof, hashNum(4), 5)
	assert.ErrorIs(t, err, ErrProofItemMismatch)

	err = ValidateProof[OptionalHash](alg, proof, hashNum(5), 4)
	assert.ErrorIs(t, err, ErrProofPositionMismatch)

	tampered := Proof[OptionalHash]{
		Lemma: append([]OptionalHash(nil), proof.Lemma...),
		Path:  proof.Path,
	}
	tampered.Lemma[1] = hashNum(99)
	err = ValidateProof[OptionalHash](alg, tampered, hashNum(5), 5)
	assert.ErrorIs(t, err, ErrProofRootMismatch)

	tampered.Lemma[1] = NoneHash()
	err = ValidateProof[OptionalHash](alg, tampered, hashNum(5), 5)
	assert.ErrorIs(t, err, ErrProofRootMismatch)

	err = ValidateProof[OptionalHash](alg, Proof[OptionalHash]{}, hashNum(5), 5)
	assert.ErrorIs(t, err, ErrInvalidProof)
}

func TestValidateRangeProofRejects(t *testing.T) {
	alg := Keccak{}
	a := newTestTree(t, hashNums(6))
	b := newTestTree(t, hashNums(7))

	left, err := GenProof[OptionalHash](a, 1)
	require.NoError(t, err)
	right, err := GenProof[OptionalHash](b, 3)
	require.NoError(t, err)
	rp := RangeProof[OptionalHash]{LeftProof: left, RightProof: right}

	assert.ErrorIs(t, ValidateRangeProof[OptionalHash](alg, rp, 1, 4), ErrRangeRootMismatch)
	assert.ErrorIs(t, ValidateRangeProof[OptionalHash](alg, rp, 1, 5), ErrProofPositionMismatch)
	assert.ErrorIs(t, ValidateRangeProof[OptionalHash](alg, rp, 4, 1), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRangeProof[OptionalHash](alg, RangeProof[OptionalHash]{}, 0, 1), ErrInvalidProof)
}

func TestProofHashConversion(t *testing.T) {
	tree := newTestTree(t, hashNums(5))
	proof, err := GenProof[OptionalHash](tree, 2)
	require.NoError(t, err)

	plain, err := ProofToHashes(proof)
	require.NoError(t, err)
	require.Len(t, plain.Lemma, len(proof.Lemma))
	assert.Equal(t, proof.Item().Hash(), plain.Lemma[0])

	back, err := ProofFromHashes(plain)
	require.NoError(t, err)
	assert.Equal(t, proof, back)

	// absent elements flatten to the zero hash
	withNull := Proof[OptionalHash]{Lemma: []OptionalHash{NoneHash(), hashNum(1)}, Path: []bool{}}
	plain, err = ProofToHashes(withNull)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, plain.Lemma[0])

	rp, err := GenRangeProof[OptionalHash](tree, 1, 4)
	require.NoError(t, err)
	l, err := ProofToHashes(rp.LeftProof)
	require.NoError(t, err)
	r, err := ProofToHashes(rp.RightProof)
	require.NoError(t, err)
	rpBack, err := RangeProofFromHashes(RangeProof[common.Hash]{LeftProof: l, RightProof: r})
	require.NoError(t, err)
	assert.Equal(t, rp, rpBack)
}
