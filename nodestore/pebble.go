package nodestore

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-appendmerkle/merkle"
)

const (
	nodeKeyPrefix = 'n'
	// NodeKeyBytes is prefix[1] || layer_be4 || position_be8
	NodeKeyBytes = 1 + 4 + 8
)

// Decodable is satisfied by *E when E can be decoded from its binary form.
type Decodable[E any] interface {
	*E
	encoding.BinaryUnmarshaler
}

// Pebble persists every layer in a pebble database and serves reads from
// memory.
//
// Each mutation is committed as a single batch before the in memory view is
// changed, so a failed write leaves both unchanged.
type Pebble[E merkle.HashElement[E], PE Decodable[E]] struct {
	db   *pebble.DB
	mem  *Memory[E]
	log  logger.Logger
	wopt *pebble.WriteOptions
}

var _ merkle.MerkleTreeWrite[merkle.OptionalHash] = (*Pebble[merkle.OptionalHash, *merkle.OptionalHash])(nil)

// OpenPebble loads the layers persisted in db. The caller owns db and closes
// it after the store is no longer used.
func OpenPebble[E merkle.HashElement[E], PE Decodable[E]](db *pebble.DB, opts ...Option) (*Pebble[E, PE], error) {
	options := PebbleOptions{
		WriteOptions: pebble.Sync,
	}
	if logger.Sugar != nil {
		options.Log = logger.Sugar
	}
	for _, o := range opts {
		o(&options)
	}

	s := &Pebble[E, PE]{
		db:   db,
		mem:  NewMemory[E](),
		log:  options.Log,
		wopt: options.WriteOptions,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Pebble[E, PE]) load() error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{nodeKeyPrefix},
		UpperBound: []byte{nodeKeyPrefix + 1},
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		layer, pos, err := DecodeNodeKey(iter.Key())
		if err != nil {
			return err
		}
		// keys sort by layer then position, so a contiguous store replays
		// as a sequence of appends
		if pos != s.mem.LayerLen(layer) || s.mem.checkAppend(layer) != nil {
			return fmt.Errorf("%w: layer=%d pos=%d", ErrStoreCorrupt, layer, pos)
		}
		var e E
		if err := PE(&e).UnmarshalBinary(iter.Value()); err != nil {
			return fmt.Errorf("layer=%d pos=%d: %w", layer, pos, err)
		}
		if err := s.mem.PushNode(layer, e); err != nil {
			return err
		}
		count++
	}
	if err := iter.Error(); err != nil {
		return err
	}
	if s.log != nil {
		s.log.Debugf("nodestore: loaded %d nodes over %d layers", count, s.mem.Height())
	}
	return nil
}

func (s *Pebble[E, PE]) Node(layer, index int) E {
	return s.mem.Node(layer, index)
}

func (s *Pebble[E, PE]) Height() int {
	return s.mem.Height()
}

func (s *Pebble[E, PE]) LayerLen(layer int) int {
	return s.mem.LayerLen(layer)
}

func (s *Pebble[E, PE]) PushNode(layer int, node E) error {
	return s.AppendNodes(layer, []E{node})
}

func (s *Pebble[E, PE]) AppendNodes(layer int, nodes []E) error {
	if err := s.mem.checkAppend(layer); err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()

	start := s.mem.LayerLen(layer)
	for i, node := range nodes {
		if err := setNode(batch, layer, start+i, node); err != nil {
			return err
		}
	}
	if err := batch.Commit(s.wopt); err != nil {
		return err
	}
	return s.mem.AppendNodes(layer, nodes)
}

func (s *Pebble[E, PE]) UpdateNode(layer, pos int, node E) error {
	if err := s.mem.checkUpdate(layer, pos); err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()

	if err := setNode(batch, layer, pos, node); err != nil {
		return err
	}
	if err := batch.Commit(s.wopt); err != nil {
		return err
	}
	return s.mem.UpdateNode(layer, pos, node)
}

func setNode[E merkle.HashElement[E]](batch *pebble.Batch, layer, pos int, node E) error {
	value, err := node.MarshalBinary()
	if err != nil {
		return err
	}
	return batch.Set(NodeKey(layer, pos), value, nil)
}

// NodeKey returns the database key for (layer, pos). Keys sort by layer
// then position.
func NodeKey(layer, pos int) []byte {
	key := make([]byte, NodeKeyBytes)
	key[0] = nodeKeyPrefix
	binary.BigEndian.PutUint32(key[1:5], uint32(layer))
	binary.BigEndian.PutUint64(key[5:], uint64(pos))
	return key
}

func DecodeNodeKey(key []byte) (layer, pos int, err error) {
	if len(key) != NodeKeyBytes || key[0] != nodeKeyPrefix {
		return 0, 0, fmt.Errorf("%w: %x", ErrBadKey, key)
	}
	return int(binary.BigEndian.Uint32(key[1:5])), int(binary.BigEndian.Uint64(key[5:])), nil
}
