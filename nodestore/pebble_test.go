package nodestore

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-appendmerkle/merkle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pebbleOptionalHash = Pebble[merkle.OptionalHash, *merkle.OptionalHash]

func openTestDB(t *testing.T, fs vfs.FS) *pebble.DB {
	db, err := pebble.Open("nodes", &pebble.Options{FS: fs})
	require.NoError(t, err)
	return db
}

func openTestStore(t *testing.T, db *pebble.DB) *pebbleOptionalHash {
	s, err := OpenPebble[merkle.OptionalHash, *merkle.OptionalHash](
		db, WithLogger(logger.Sugar.WithServiceName("nodestore")), WithNoSync())
	require.NoError(t, err)
	return s
}

func TestPebble(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	db := openTestDB(t, vfs.NewMem())
	defer db.Close()

	exerciseStore(t, openTestStore(t, db))
}

func TestPebbleReload(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	fs := vfs.NewMem()
	db := openTestDB(t, fs)

	s := openTestStore(t, db)
	require.NoError(t, s.AppendNodes(0, []merkle.OptionalHash{hashNum(0), merkle.NoneHash(), hashNum(2)}))
	require.NoError(t, s.AppendNodes(1, []merkle.OptionalHash{hashNum(10), hashNum(11)}))
	require.NoError(t, s.PushNode(2, hashNum(20)))
	require.NoError(t, s.UpdateNode(0, 1, hashNum(1)))
	require.NoError(t, db.Close())

	db = openTestDB(t, fs)
	defer db.Close()
	reloaded := openTestStore(t, db)

	require.Equal(t, 3, reloaded.Height())
	for layer := 0; layer < s.Height(); layer++ {
		require.Equal(t, s.LayerLen(layer), reloaded.LayerLen(layer))
		for i := 0; i < s.LayerLen(layer); i++ {
			assert.Equal(t, s.Node(layer, i), reloaded.Node(layer, i), "layer=%d i=%d", layer, i)
		}
	}
	assert.Equal(t, hashNum(1), reloaded.Node(0, 1))
}

func TestPebbleRejectsGaps(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	db := openTestDB(t, vfs.NewMem())
	defer db.Close()

	value, err := hashNum(0).MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, db.Set(NodeKey(0, 0), value, pebble.Sync))
	require.NoError(t, db.Set(NodeKey(0, 2), value, pebble.Sync))

	_, err = OpenPebble[merkle.OptionalHash, *merkle.OptionalHash](db)
	assert.ErrorIs(t, err, ErrStoreCorrupt)
}

func TestPebbleRejectsBadValue(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	db := openTestDB(t, vfs.NewMem())
	defer db.Close()

	require.NoError(t, db.Set(NodeKey(0, 0), []byte{1, 2, 3}, pebble.Sync))

	_, err := OpenPebble[merkle.OptionalHash, *merkle.OptionalHash](db)
	assert.ErrorIs(t, err, merkle.ErrInvalidByteLength)
}

func TestNodeKey(t *testing.T) {
	layer, pos, err := DecodeNodeKey(NodeKey(3, 1<<40))
	require.NoError(t, err)
	assert.Equal(t, 3, layer)
	assert.Equal(t, 1<<40, pos)

	_, _, err = DecodeNodeKey([]byte{nodeKeyPrefix, 0})
	assert.ErrorIs(t, err, ErrBadKey)
}
