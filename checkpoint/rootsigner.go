package checkpoint

import (
	"crypto/rand"

	"github.com/veraison/go-cose"
)

const (
	HeaderLabelCWTClaims int64 = 15

	cwtClaimIssuer  int64 = 1
	cwtClaimSubject int64 = 2
)

// RootSigner produces signatures over tree states. A state should only be
// signed once it has been checked against the last signed state, as every
// signature is a public commitment to the tree.
type RootSigner struct {
	issuer string
	codec  CBORCodec
}

func NewRootSigner(issuer string, codec CBORCodec) RootSigner {
	return RootSigner{
		issuer: issuer,
		codec:  codec,
	}
}

// Sign1 signs state and returns the encoded COSE Sign1 message. The
// returned payload does not carry the root.
func (rs RootSigner) Sign1(coseSigner cose.Signer, keyIdentifier string, subject string, state TreeState, external []byte) ([]byte, error) {
	payload, err := rs.codec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: coseSigner.Algorithm(),
				cose.HeaderLabelKeyID:     []byte(keyIdentifier),
				HeaderLabelCWTClaims: map[int64]any{
					cwtClaimIssuer:  rs.issuer,
					cwtClaimSubject: subject,
				},
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}

	// The root is detached so that verifiers must obtain it from the tree.
	state.Root = nil
	msg.Payload, err = rs.codec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}
