// Package merkletesting provides fixtures shared by the tree and store tests.
package merkletesting

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-appendmerkle/merkle"
)

type TestContext struct {
	Log  logger.Logger
	T    *testing.T
	Alg  merkle.Keccak
	Seed int64
}

type TestConfig struct {
	// We seed the RNG of the leaf generator from Seed. It is normal to force
	// it to some fixed value so that the generated data is the same from run
	// to run.
	Seed            int64
	TestLabelPrefix string
	// LogLevel defaults to NOOP
	LogLevel string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T:    t,
		Seed: cfg.Seed,
	}
	level := cfg.LogLevel
	if level == "" {
		level = "NOOP"
	}
	logger.New(level)
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// LeafData returns EntrySize bytes of deterministic leaf content for i.
func LeafData(seed int64, i uint64) []byte {
	data := make([]byte, merkle.EntrySize)
	binary.BigEndian.PutUint64(data, i)
	r := rand.New(rand.NewSource(seed + int64(i)))
	_, _ = r.Read(data[8:])
	return data
}

// Leaves returns the hashes of n generated leaves. Different seeds give
// unrelated leaves.
func (c *TestContext) Leaves(seed int64, n int) []merkle.OptionalHash {
	leaves := make([]merkle.OptionalHash, n)
	for i := range leaves {
		leaves[i] = c.Alg.Leaf(LeafData(c.Seed+seed<<32, uint64(i)))
	}
	return leaves
}

// ReferenceRoot computes the root of leaves top down, without any layer
// storage. A subtree of height h with no leaves is the zero hash for h, and
// a trailing left child is paired with the padding for its height.
func ReferenceRoot(alg merkle.Algorithm[merkle.OptionalHash], leaves []merkle.OptionalHash) merkle.OptionalHash {
	if len(leaves) == 0 {
		return merkle.NoneHash()
	}
	height := 0
	for (1 << height) < len(leaves) {
		height++
	}
	return referenceRoot(alg, leaves, height)
}

func referenceRoot(alg merkle.Algorithm[merkle.OptionalHash], leaves []merkle.OptionalHash, height int) merkle.OptionalHash {
	if height == 0 {
		return leaves[0]
	}
	half := 1 << (height - 1)
	if len(leaves) <= half {
		return merkle.ParentSingle(alg, referenceRoot(alg, leaves, height-1), height-1)
	}
	return alg.Parent(referenceRoot(alg, leaves[:half], height-1), referenceRoot(alg, leaves[half:], height-1))
}
