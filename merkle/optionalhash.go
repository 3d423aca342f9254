package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// OptionalHashBytes is the encoded width of an OptionalHash: a one byte
// discriminant followed by the digest.
const OptionalHashBytes = 1 + HashBytes

const (
	discriminantNone = 0
	discriminantSome = 1
)

// OptionalHash is a digest that is either present or absent. Absence is its
// own state rather than an all zero digest, so a genuine zero digest is never
// mistaken for an unknown node.
//
// The digest of an absent value is always zero, which keeps == meaningful.
type OptionalHash struct {
	hash    common.Hash
	present bool
}

// OptionalHash satisfies HashElement.
var _ = Null[OptionalHash]

func SomeHash(h common.Hash) OptionalHash {
	return OptionalHash{hash: h, present: true}
}

func NoneHash() OptionalHash {
	return OptionalHash{}
}

func (o OptionalHash) IsSome() bool { return o.present }
func (o OptionalHash) IsNone() bool { return !o.present }

// Unwrap returns the digest and whether it is present.
func (o OptionalHash) Unwrap() (common.Hash, bool) {
	return o.hash, o.present
}

// Hash returns the digest, or the zero hash when absent.
func (o OptionalHash) Hash() common.Hash {
	return o.hash
}

// Bytes returns a copy of the digest. An absent value yields 32 zero bytes;
// callers must use IsNull, not the bytes, to detect absence.
func (o OptionalHash) Bytes() []byte {
	b := make([]byte, HashBytes)
	copy(b, o.hash[:])
	return b
}

// MutBytes returns the digest storage for in place writes. An absent value
// becomes a present zero digest first.
func (o *OptionalHash) MutBytes() []byte {
	o.present = true
	return o.hash[:]
}

func (o OptionalHash) Null() OptionalHash {
	return NoneHash()
}

func (o OptionalHash) EndPad(height int) OptionalHash {
	return SomeHash(ZeroHashes()[height])
}

func (o OptionalHash) IsNull() bool {
	return !o.present
}

// MarshalBinary encodes the value as
//
//	discriminant[1] || digest[32]
//
// with discriminant 0 and a zero digest when absent.
func (o OptionalHash) MarshalBinary() ([]byte, error) {
	return o.AppendBinary(make([]byte, 0, OptionalHashBytes))
}

// AppendBinary appends the 33 byte encoding to b.
func (o OptionalHash) AppendBinary(b []byte) ([]byte, error) {
	if !o.present {
		b = append(b, discriminantNone)
		var zero common.Hash
		return append(b, zero[:]...), nil
	}
	b = append(b, discriminantSome)
	return append(b, o.hash[:]...), nil
}

// UnmarshalBinary decodes the 33 byte form. Discriminant 0 decodes as absent
// whatever the digest bytes hold.
func (o *OptionalHash) UnmarshalBinary(data []byte) error {
	if len(data) != OptionalHashBytes {
		return fmt.Errorf("%w: len=%d expected=%d", ErrInvalidByteLength, len(data), OptionalHashBytes)
	}
	switch data[0] {
	case discriminantNone:
		*o = NoneHash()
	case discriminantSome:
		*o = SomeHash(common.BytesToHash(data[1:]))
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDiscriminant, data[0])
	}
	return nil
}

func (o OptionalHash) String() string {
	if !o.present {
		return "none"
	}
	return o.hash.Hex()
}
