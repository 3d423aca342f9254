package appendtree

import (
	"github.com/datatrails/go-datatrails-common/logger"
)

// DefaultMaxLeaves bounds a tree unless WithMaxLeaves says otherwise.
// Appending a subtree materializes every node beneath its root, so the bound
// is what keeps a hostile subtree depth from exhausting memory.
const DefaultMaxLeaves = 1 << 28

type TreeOptions struct {
	Log       logger.Logger
	MaxLeaves int
}

// Option is a generic option type. Implementations type assert to their
// options record and ignore options that target a different record.
type Option func(any)

func WithLogger(log logger.Logger) Option {
	return func(opts any) {
		if o, ok := opts.(*TreeOptions); ok {
			o.Log = log
		}
	}
}

// WithMaxLeaves sets the largest leaf count the tree accepts.
func WithMaxLeaves(n int) Option {
	return func(opts any) {
		if o, ok := opts.(*TreeOptions); ok {
			o.MaxLeaves = n
		}
	}
}

func newTreeOptions(opts ...Option) TreeOptions {
	options := TreeOptions{MaxLeaves: DefaultMaxLeaves}
	if logger.Sugar != nil {
		options.Log = logger.Sugar
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
