// Package nodestore provides layer storage for append merkle trees.
//
// A store holds the nodes of every layer densely, addressed by (layer,
// position). Positions that were never written read as Null(). The stores
// implement merkle.MerkleTreeWrite and the storage half of
// merkle.MerkleTreeRead; they do not compute hashes and are not safe for
// concurrent mutation on their own.
package nodestore

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/merkle"
)

// Memory keeps every layer in a slice.
type Memory[E merkle.HashElement[E]] struct {
	layers [][]E
}

var _ merkle.MerkleTreeWrite[merkle.OptionalHash] = (*Memory[merkle.OptionalHash])(nil)

func NewMemory[E merkle.HashElement[E]]() *Memory[E] {
	return &Memory[E]{}
}

func (m *Memory[E]) Node(layer, index int) E {
	if layer < 0 || layer >= len(m.layers) || index < 0 || index >= len(m.layers[layer]) {
		return merkle.Null[E]()
	}
	return m.layers[layer][index]
}

func (m *Memory[E]) Height() int {
	return len(m.layers)
}

func (m *Memory[E]) LayerLen(layer int) int {
	if layer < 0 || layer >= len(m.layers) {
		return 0
	}
	return len(m.layers[layer])
}

func (m *Memory[E]) PushNode(layer int, node E) error {
	return m.AppendNodes(layer, []E{node})
}

func (m *Memory[E]) AppendNodes(layer int, nodes []E) error {
	if err := m.checkAppend(layer); err != nil {
		return err
	}
	if layer == len(m.layers) {
		m.layers = append(m.layers, make([]E, 0, len(nodes)))
	}
	m.layers[layer] = append(m.layers[layer], nodes...)
	return nil
}

func (m *Memory[E]) UpdateNode(layer, pos int, node E) error {
	if err := m.checkUpdate(layer, pos); err != nil {
		return err
	}
	m.layers[layer][pos] = node
	return nil
}

// checkAppend permits appending to an existing layer or starting the next
// one.
func (m *Memory[E]) checkAppend(layer int) error {
	if layer < 0 || layer > len(m.layers) {
		return fmt.Errorf("%w: layer=%d height=%d", ErrLayerOutOfRange, layer, len(m.layers))
	}
	return nil
}

func (m *Memory[E]) checkUpdate(layer, pos int) error {
	if layer < 0 || layer >= len(m.layers) {
		return fmt.Errorf("%w: layer=%d height=%d", ErrLayerOutOfRange, layer, len(m.layers))
	}
	if pos < 0 || pos >= len(m.layers[layer]) {
		return fmt.Errorf("%w: layer=%d pos=%d len=%d", ErrPositionOutOfRange, layer, pos, len(m.layers[layer]))
	}
	return nil
}
