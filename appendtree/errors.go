package appendtree

import "errors"

var (
	ErrNullNode            = errors.New("appendtree: appending or filling a null node is not allowed")
	ErrLeafMismatch        = errors.New("appendtree: leaf is already known with a different value")
	ErrNodeMismatch        = errors.New("appendtree: node is already known with a different value")
	ErrNodeFinalized       = errors.New("appendtree: node is final and can not be updated")
	ErrNodeOutOfRange      = errors.New("appendtree: node position out of range")
	ErrRootMismatch        = errors.New("appendtree: proof root does not match the tree root")
	ErrProofHeightMismatch = errors.New("appendtree: proof height does not match the tree height")
	ErrStoreNotEmpty       = errors.New("appendtree: reconstruction requires an empty store")
	ErrInconsistentLayers  = errors.New("appendtree: layer lengths are inconsistent")
	ErrTooManyLeaves       = errors.New("appendtree: leaf count would exceed the configured maximum")
)
