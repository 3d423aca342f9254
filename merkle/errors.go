package merkle

import "errors"

var (
	ErrIndexOutOfBounds    = errors.New("merkle: leaf index out of bounds")
	ErrNotReady            = errors.New("merkle: leaf not ready for proof generation")
	ErrIncompleteData      = errors.New("merkle: not enough data to generate proof")
	ErrInvalidRange        = errors.New("merkle: invalid proof range")
	ErrInvalidByteLength   = errors.New("merkle: invalid byte length")
	ErrInvalidDiscriminant = errors.New("merkle: invalid discriminant for optional hash")
	ErrTilingViolation     = errors.New("merkle: subtree list is not a contiguous tiling")
	ErrLeafCountOverflow   = errors.New("merkle: subtree list covers more leaves than an int can count")
)

var (
	ErrInvalidProof          = errors.New("merkle: lemma and path lengths are inconsistent")
	ErrProofItemMismatch     = errors.New("merkle: proof item does not match")
	ErrProofPositionMismatch = errors.New("merkle: proof position does not match")
	ErrProofRootMismatch     = errors.New("merkle: proof does not commit to its root")
	ErrRangeRootMismatch     = errors.New("merkle: range proof roots differ")
)
