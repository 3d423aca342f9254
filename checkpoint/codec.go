// Package checkpoint signs tree states and restores trees from signed
// checkpoints.
//
// A checkpoint is a COSE Sign1 message over a CBOR encoded TreeState. The
// root is removed from the payload after signing, so a verifier can only
// check the signature by rebuilding the tree and putting its root back.
package checkpoint

import (
	"github.com/forestrie/go-appendmerkle/merkle"
	"github.com/fxamacker/cbor/v2"
)

// CBORCodec encodes deterministically, so the same state always produces
// the same signed bytes.
type CBORCodec struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func NewCBORCodec() (CBORCodec, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return CBORCodec{}, err
	}
	decMode, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		IntDec:      cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		return CBORCodec{}, err
	}
	return CBORCodec{encMode: encMode, decMode: decMode}, nil
}

func (c CBORCodec) MarshalCBOR(v any) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c CBORCodec) UnmarshalInto(data []byte, v any) error {
	return c.decMode.Unmarshal(data, v)
}

// EncodeInitialData encodes the reconstruction data for a tree. Hashes are
// carried in their 33 byte tagged encoding.
func EncodeInitialData(codec CBORCodec, data merkle.InitialData[merkle.OptionalHash]) ([]byte, error) {
	return codec.MarshalCBOR(data)
}

// DecodeInitialData decodes and validates reconstruction data.
func DecodeInitialData(codec CBORCodec, b []byte) (merkle.InitialData[merkle.OptionalHash], error) {
	var data merkle.InitialData[merkle.OptionalHash]
	if err := codec.UnmarshalInto(b, &data); err != nil {
		return merkle.InitialData[merkle.OptionalHash]{}, err
	}
	if err := data.Validate(); err != nil {
		return merkle.InitialData[merkle.OptionalHash]{}, err
	}
	return data, nil
}
