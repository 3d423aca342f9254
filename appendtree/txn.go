package appendtree

import (
	"fmt"

	"github.com/forestrie/go-appendmerkle/merkle"
)

// txn stages the node writes of one tree operation over a store. Reads see
// the staged writes. Nothing reaches the store until commit, so an operation
// that fails validation part way leaves the store untouched.
type txn[E merkle.HashElement[E]] struct {
	store LayerStore[E]
	// updates holds replaced values for positions already in the store,
	// per layer.
	updates []map[int]E
	// appends holds the nodes pushed beyond the end of each store layer.
	appends [][]E
	// maxLeaves bounds layer 0, including staged leaves.
	maxLeaves int
}

func newTxn[E merkle.HashElement[E]](store LayerStore[E], maxLeaves int) *txn[E] {
	return &txn[E]{store: store, maxLeaves: maxLeaves}
}

// checkGrow reports whether n more leaves fit under maxLeaves.
func (x *txn[E]) checkGrow(n int) error {
	if n > x.maxLeaves-x.LayerLen(0) {
		return fmt.Errorf("%w: leaves=%d adding=%d max=%d", ErrTooManyLeaves, x.LayerLen(0), n, x.maxLeaves)
	}
	return nil
}

func (x *txn[E]) Height() int {
	return max(x.store.Height(), len(x.appends))
}

func (x *txn[E]) LayerLen(layer int) int {
	n := x.store.LayerLen(layer)
	if layer >= 0 && layer < len(x.appends) {
		n += len(x.appends[layer])
	}
	return n
}

func (x *txn[E]) Node(layer, index int) E {
	if layer < 0 || index < 0 {
		return merkle.Null[E]()
	}
	base := x.store.LayerLen(layer)
	if index >= base {
		if layer < len(x.appends) && index-base < len(x.appends[layer]) {
			return x.appends[layer][index-base]
		}
		return merkle.Null[E]()
	}
	if layer < len(x.updates) {
		if e, ok := x.updates[layer][index]; ok {
			return e
		}
	}
	return x.store.Node(layer, index)
}

func (x *txn[E]) PaddingNode(height int) E {
	return merkle.EndPad[E](height)
}

func (x *txn[E]) push(layer int, nodes ...E) error {
	if layer < 0 || layer > x.Height() {
		return fmt.Errorf("%w: layer=%d height=%d", ErrNodeOutOfRange, layer, x.Height())
	}
	if len(nodes) == 0 {
		return nil
	}
	if layer == 0 {
		if err := x.checkGrow(len(nodes)); err != nil {
			return err
		}
	}
	for len(x.appends) <= layer {
		x.appends = append(x.appends, nil)
	}
	x.appends[layer] = append(x.appends[layer], nodes...)
	return nil
}

func (x *txn[E]) update(layer, pos int, node E) error {
	if layer < 0 || pos < 0 || pos >= x.LayerLen(layer) {
		return fmt.Errorf("%w: layer=%d pos=%d", ErrNodeOutOfRange, layer, pos)
	}
	base := x.store.LayerLen(layer)
	if pos >= base {
		x.appends[layer][pos-base] = node
		return nil
	}
	for len(x.updates) <= layer {
		x.updates = append(x.updates, nil)
	}
	if x.updates[layer] == nil {
		x.updates[layer] = map[int]E{}
	}
	x.updates[layer][pos] = node
	return nil
}

// changes counts the staged node writes.
func (x *txn[E]) changes() int {
	n := 0
	for _, u := range x.updates {
		n += len(u)
	}
	for _, a := range x.appends {
		n += len(a)
	}
	return n
}

// commit applies the staged writes layer by layer, lowest first, so every
// new layer is started only after the layer below it exists.
func (x *txn[E]) commit() error {
	for layer := 0; layer < max(len(x.updates), len(x.appends)); layer++ {
		if layer < len(x.updates) {
			for pos, node := range x.updates[layer] {
				if err := x.store.UpdateNode(layer, pos, node); err != nil {
					return err
				}
			}
		}
		if layer < len(x.appends) && len(x.appends[layer]) > 0 {
			if err := x.store.AppendNodes(layer, x.appends[layer]); err != nil {
				return err
			}
		}
	}
	x.updates = nil
	x.appends = nil
	return nil
}
