package nodestore

import (
	"github.com/cockroachdb/pebble"
	"github.com/datatrails/go-datatrails-common/logger"
)

type PebbleOptions struct {
	Log          logger.Logger
	WriteOptions *pebble.WriteOptions
}

// Option is a generic option type used for store implementations.
// Implementations type assert to their options record and ignore options
// that target a different record.
type Option func(any)

func WithLogger(log logger.Logger) Option {
	return func(opts any) {
		if o, ok := opts.(*PebbleOptions); ok {
			o.Log = log
		}
	}
}

// WithNoSync commits batches without waiting for the write ahead log to
// reach stable storage. Intended for tests and bulk rebuilds.
func WithNoSync() Option {
	return func(opts any) {
		if o, ok := opts.(*PebbleOptions); ok {
			o.WriteOptions = pebble.NoSync
		}
	}
}
