package checkpoint

import (
	"fmt"

	"github.com/veraison/go-cose"
)

// DecodeSignedRoot decodes a signed checkpoint. The returned state has no
// root and does not verify until one is supplied.
func DecodeSignedRoot(codec CBORCodec, msg []byte) (*cose.Sign1Message, TreeState, error) {
	var signed cose.Sign1Message
	if err := signed.UnmarshalCBOR(msg); err != nil {
		return nil, TreeState{}, err
	}

	var unverifiedState TreeState
	if err := codec.UnmarshalInto(signed.Payload, &unverifiedState); err != nil {
		return nil, TreeState{}, err
	}
	if len(unverifiedState.Root) != 0 {
		return nil, TreeState{}, fmt.Errorf("%w: root=%x", ErrRootPresent, unverifiedState.Root)
	}
	return &signed, unverifiedState, nil
}

// VerifySignedRoot puts state back into the signed message and verifies the
// result.
//
// Verification is a three step process:
//  1. DecodeSignedRoot recovers the state, without its root.
//  2. The caller rebuilds the tree at state.Leaves and sets state.Root.
//  3. VerifySignedRoot checks the signature over the completed state.
func VerifySignedRoot(
	codec CBORCodec, verifier cose.Verifier, signed *cose.Sign1Message, unverifiedState TreeState, external []byte) error {

	payload, err := codec.MarshalCBOR(unverifiedState)
	if err != nil {
		return err
	}
	// work on a copy so a failed attempt leaves the decoded message as it was
	msg := *signed
	msg.Payload = payload
	return msg.Verify(external, verifier)
}

// SignedKeyID returns the key identifier from the protected header.
func SignedKeyID(signed *cose.Sign1Message) string {
	kid, ok := signed.Headers.Protected[cose.HeaderLabelKeyID].([]byte)
	if !ok {
		return ""
	}
	return string(kid)
}
