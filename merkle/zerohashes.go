package merkle

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// EntrySize is the size of the data chunk committed by a single leaf. The
// zero hash table starts from the hash of one all zero chunk.
const EntrySize = 256

// ZeroHashCount is the number of heights covered by the zero hash table.
const ZeroHashCount = 64

// ZeroHashes returns the per height padding table. Index 0 is the leaf hash
// of an all zero chunk, index i is the parent of two copies of index i-1.
//
// The table is computed on first use and must not be modified.
var ZeroHashes = sync.OnceValue(func() *[ZeroHashCount]common.Hash {
	var list [ZeroHashCount]common.Hash
	list[0] = LeafRaw(make([]byte, EntrySize))
	for i := 1; i < len(list); i++ {
		list[i] = ParentRaw(list[i-1], list[i-1])
	}
	return &list
})
