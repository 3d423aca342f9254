package merkle

// HashBytes is the width of every digest handled by the tree.
const HashBytes = 32

// HashElement is the capability set of a tree node value.
//
// Null and EndPad do not depend on the receiver; generic code calls them on
// the zero value of E. Implementations must be plain values that are safe to
// share between goroutines once created.
type HashElement[E any] interface {
	comparable

	// Bytes returns the 32 byte digest view.
	Bytes() []byte
	// MarshalBinary returns the fixed length encoding of the element.
	MarshalBinary() ([]byte, error)

	// Null returns the distinguished "not yet known" value.
	Null() E
	// EndPad returns the padding for a subtree of the given height whose
	// right sibling does not exist.
	EndPad(height int) E
	IsNull() bool
}

// Null returns E's not yet known value.
func Null[E HashElement[E]]() E {
	var e E
	return e.Null()
}

// EndPad returns E's padding value for height.
func EndPad[E HashElement[E]](height int) E {
	var e E
	return e.EndPad(height)
}
