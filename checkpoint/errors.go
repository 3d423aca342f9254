package checkpoint

import "errors"

var (
	ErrLeafCountMismatch = errors.New("checkpoint: initial data does not cover the signed leaf count")
	ErrRootUnknown       = errors.New("checkpoint: the tree root is not known")
	ErrRootPresent       = errors.New("checkpoint: signed payload must not carry the root")
)
