package nodestore

import "errors"

var (
	ErrLayerOutOfRange    = errors.New("nodestore: layer out of range")
	ErrPositionOutOfRange = errors.New("nodestore: position out of range")
	ErrStoreCorrupt       = errors.New("nodestore: persisted layers are not contiguous")
	ErrBadKey             = errors.New("nodestore: malformed node key")
)
