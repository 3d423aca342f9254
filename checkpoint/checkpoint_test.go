package checkpoint

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-appendmerkle/appendtree"
	"github.com/forestrie/go-appendmerkle/merkle"
	"github.com/forestrie/go-appendmerkle/merkletesting"
	"github.com/forestrie/go-appendmerkle/nodestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

type testSigner struct {
	key      *ecdsa.PrivateKey
	signer   cose.Signer
	verifier cose.Verifier
}

func newTestSigner(t *testing.T) testSigner {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	require.NoError(t, err)
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, key.Public())
	require.NoError(t, err)
	return testSigner{key: key, signer: signer, verifier: verifier}
}

func newTestCodec(t *testing.T) CBORCodec {
	codec, err := NewCBORCodec()
	require.NoError(t, err)
	return codec
}

func newFullTree(t *testing.T, tc merkletesting.TestContext, n int) *appendtree.Tree[merkle.OptionalHash] {
	tree, err := appendtree.NewWithLeaves[merkle.OptionalHash](
		tc.Alg, nodestore.NewMemory[merkle.OptionalHash](), tc.Leaves(11, n), appendtree.WithLogger(tc.Log))
	require.NoError(t, err)
	return tree
}

func TestRootSigner_Sign1(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	tests := []struct {
		name     string
		issuer   string
		kid      string
		state    TreeState
		external []byte
	}{
		{
			name:   "single leaf",
			issuer: "synsation.org",
			kid:    "log attestation key 1",
			state:  TreeState{Leaves: 1, Root: []byte{1}, Timestamp: 1234},
		},
		{
			name:     "external data",
			issuer:   "synsation.org",
			kid:      "log attestation key 2",
			state:    TreeState{Leaves: 13, Root: make([]byte, merkle.HashBytes), Timestamp: 5678},
			external: []byte("tree-1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := newTestCodec(t)
			s := newTestSigner(t)
			rs := NewRootSigner(tt.issuer, codec)

			msg, err := rs.Sign1(s.signer, tt.kid, "appendmerkle", tt.state, tt.external)
			require.NoError(t, err)

			signed, state, err := DecodeSignedRoot(codec, msg)
			require.NoError(t, err)
			assert.Equal(t, tt.state.Leaves, state.Leaves)
			assert.Equal(t, tt.state.Timestamp, state.Timestamp)
			assert.Empty(t, state.Root)
			assert.Equal(t, tt.kid, SignedKeyID(signed))

			// verification must fail if we haven't put the root in
			err = VerifySignedRoot(codec, s.verifier, signed, state, tt.external)
			assert.Error(t, err)

			state.Root = tt.state.Root
			require.NoError(t, VerifySignedRoot(codec, s.verifier, signed, state, tt.external))

			err = VerifySignedRoot(codec, s.verifier, signed, state, []byte("other"))
			assert.Error(t, err)
			err = VerifySignedRoot(codec, newTestSigner(t).verifier, signed, state, tt.external)
			assert.Error(t, err)
		})
	}
}

func TestDecodeSignedRootRejectsAttachedRoot(t *testing.T) {
	codec := newTestCodec(t)
	s := newTestSigner(t)

	payload, err := codec.MarshalCBOR(TreeState{Leaves: 1, Root: []byte{1}})
	require.NoError(t, err)
	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{cose.HeaderLabelAlgorithm: cose.AlgorithmES256},
		},
		Payload: payload,
	}
	require.NoError(t, msg.Sign(rand.Reader, nil, s.signer))
	b, err := msg.MarshalCBOR()
	require.NoError(t, err)

	_, _, err = DecodeSignedRoot(codec, b)
	assert.ErrorIs(t, err, ErrRootPresent)
}

func TestInitialDataEncoding(t *testing.T) {
	tc := merkletesting.NewTestContext(t, merkletesting.TestConfig{TestLabelPrefix: "checkpoint"})
	codec := newTestCodec(t)
	leaves := tc.Leaves(1, 3)

	data := merkle.InitialData[merkle.OptionalHash]{
		SubtreeList: []merkle.Subtree[merkle.OptionalHash]{
			{Depth: 2, Root: leaves[0]},
			{Depth: 1, Root: leaves[1]},
		},
		KnownLeaves: []merkle.KnownLeaf[merkle.OptionalHash]{{Index: 1, Hash: leaves[2]}},
		ExtraNodes:  []merkle.ExtraNode[merkle.OptionalHash]{{Layer: 0, Position: 0, Hash: leaves[2]}},
	}
	b, err := EncodeInitialData(codec, data)
	require.NoError(t, err)
	decoded, err := DecodeInitialData(codec, b)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	again, err := EncodeInitialData(codec, decoded)
	require.NoError(t, err)
	assert.Equal(t, b, again)

	data.SubtreeList = []merkle.Subtree[merkle.OptionalHash]{
		{Depth: 1, Root: leaves[0]},
		{Depth: 2, Root: leaves[1]},
	}
	b, err = EncodeInitialData(codec, data)
	require.NoError(t, err)
	_, err = DecodeInitialData(codec, b)
	assert.ErrorIs(t, err, merkle.ErrTilingViolation)
}

func TestCaptureInitialData(t *testing.T) {
	tc := merkletesting.NewTestContext(t, merkletesting.TestConfig{TestLabelPrefix: "checkpoint"})
	full := newFullTree(t, tc, 13)

	data, err := CaptureInitialData(full)
	require.NoError(t, err)
	assert.Equal(t, []merkle.Subtree[merkle.OptionalHash]{
		{Depth: 4, Root: full.Node(3, 0)},
		{Depth: 3, Root: full.Node(2, 2)},
		{Depth: 1, Root: full.Node(0, 12)},
	}, data.SubtreeList)
	assert.Equal(t, 13, data.Leaves())

	// an unknown subtree root is split into the halves below it
	partial, err := appendtree.NewWithLeaves[merkle.OptionalHash](
		tc.Alg, nodestore.NewMemory[merkle.OptionalHash](), nil, appendtree.WithLogger(tc.Log))
	require.NoError(t, err)
	require.NoError(t, partial.AppendNodes(0, []merkle.OptionalHash{full.Node(0, 0), full.Node(0, 1)}))
	require.NoError(t, partial.AppendNodes(1, []merkle.OptionalHash{merkle.NoneHash()}))

	data, err = CaptureInitialData(partial)
	require.NoError(t, err)
	assert.Equal(t, []merkle.Subtree[merkle.OptionalHash]{
		{Depth: 1, Root: full.Node(0, 0)},
		{Depth: 1, Root: full.Node(0, 1)},
	}, data.SubtreeList)

	// leaves are final, so an unknown leaf has to be written as unknown
	unknown, err := appendtree.NewWithLeaves[merkle.OptionalHash](
		tc.Alg, nodestore.NewMemory[merkle.OptionalHash](), nil, appendtree.WithLogger(tc.Log))
	require.NoError(t, err)
	require.NoError(t, unknown.AppendNodes(0, []merkle.OptionalHash{full.Node(0, 0), merkle.NoneHash()}))
	require.NoError(t, unknown.AppendNodes(1, []merkle.OptionalHash{merkle.NoneHash()}))
	_, err = CaptureInitialData(unknown)
	assert.ErrorIs(t, err, merkle.ErrIncompleteData)
}

func TestRestore(t *testing.T) {
	tc := merkletesting.NewTestContext(t, merkletesting.TestConfig{TestLabelPrefix: "checkpoint"})
	codec := newTestCodec(t)
	s := newTestSigner(t)
	rs := NewRootSigner("synsation.org", codec)
	external := []byte("tree-1")

	full := newFullTree(t, tc, 13)
	state, err := NewTreeState(full, 1234)
	require.NoError(t, err)
	signedRoot, err := rs.Sign1(s.signer, "key-1", "appendmerkle", state, external)
	require.NoError(t, err)

	data, err := CaptureInitialData(full)
	require.NoError(t, err)
	data.KnownLeaves = []merkle.KnownLeaf[merkle.OptionalHash]{
		{Index: 10, Hash: full.Node(0, 10)},
		{Index: 11, Hash: full.Node(0, 11)},
		{Index: 8, Hash: full.Node(0, 8)},
		{Index: 9, Hash: full.Node(0, 9)},
	}

	store := nodestore.NewMemory[merkle.OptionalHash]()
	tree, restoredState, err := Restore(codec, tc.Alg, store, data, signedRoot, s.verifier, external, appendtree.WithLogger(tc.Log))
	require.NoError(t, err)
	assert.Equal(t, state, restoredState)
	assert.Equal(t, full.Root(), tree.Root())

	for _, i := range []int{8, 11, 12} {
		want, err := full.GenProof(i)
		require.NoError(t, err)
		got, err := tree.GenProof(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = tree.GenProof(0)
	assert.ErrorIs(t, err, merkle.ErrNotReady)
}

func TestRestoreErrors(t *testing.T) {
	tc := merkletesting.NewTestContext(t, merkletesting.TestConfig{TestLabelPrefix: "checkpoint"})
	codec := newTestCodec(t)
	s := newTestSigner(t)
	rs := NewRootSigner("synsation.org", codec)

	full := newFullTree(t, tc, 13)
	state, err := NewTreeState(full, 1234)
	require.NoError(t, err)
	signedRoot, err := rs.Sign1(s.signer, "key-1", "appendmerkle", state, nil)
	require.NoError(t, err)
	data, err := CaptureInitialData(full)
	require.NoError(t, err)

	short := merkle.InitialData[merkle.OptionalHash]{SubtreeList: data.SubtreeList[:2]}

	tampered := merkle.InitialData[merkle.OptionalHash]{
		SubtreeList: append([]merkle.Subtree[merkle.OptionalHash]{}, data.SubtreeList...),
	}
	tampered.SubtreeList[2].Root = tc.Alg.Leaf([]byte("tampered"))

	deep := merkle.InitialData[merkle.OptionalHash]{
		SubtreeList: []merkle.Subtree[merkle.OptionalHash]{{Depth: 50, Root: data.SubtreeList[0].Root}},
	}
	deepRoot, err := rs.Sign1(s.signer, "key-1", "appendmerkle",
		TreeState{Leaves: 1 << 49, Root: state.Root, Timestamp: 1234}, nil)
	require.NoError(t, err)

	overflow := merkle.InitialData[merkle.OptionalHash]{
		SubtreeList: []merkle.Subtree[merkle.OptionalHash]{
			{Depth: 63, Root: data.SubtreeList[0].Root},
			{Depth: 63, Root: data.SubtreeList[0].Root},
		},
	}

	tests := []struct {
		name       string
		data       merkle.InitialData[merkle.OptionalHash]
		signedRoot []byte
		verifier   cose.Verifier
		wantErr    error
	}{
		{name: "leaf count", data: short, signedRoot: signedRoot, verifier: s.verifier, wantErr: ErrLeafCountMismatch},
		{name: "tampered subtree", data: tampered, signedRoot: signedRoot, verifier: s.verifier},
		{name: "other key", data: data, signedRoot: signedRoot, verifier: newTestSigner(t).verifier},
		{name: "not a message", data: data, signedRoot: []byte{0x01}, verifier: s.verifier},
		{name: "too many leaves", data: deep, signedRoot: deepRoot, verifier: s.verifier, wantErr: appendtree.ErrTooManyLeaves},
		{name: "leaf count overflow", data: overflow, signedRoot: signedRoot, verifier: s.verifier, wantErr: merkle.ErrLeafCountOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := nodestore.NewMemory[merkle.OptionalHash]()
			_, _, err := Restore(codec, tc.Alg, store, tt.data, tt.signedRoot, tt.verifier, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 0, store.Height())
		})
	}
}

func TestNewTreeStateEmptyTree(t *testing.T) {
	tc := merkletesting.NewTestContext(t, merkletesting.TestConfig{TestLabelPrefix: "checkpoint"})
	tree, err := appendtree.NewWithLeaves[merkle.OptionalHash](
		tc.Alg, nodestore.NewMemory[merkle.OptionalHash](), nil)
	require.NoError(t, err)

	_, err = NewTreeState(tree, 0)
	assert.ErrorIs(t, err, ErrRootUnknown)
}
