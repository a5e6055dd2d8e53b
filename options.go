package kdgo

import "github.com/hupe1980/kdgo/kdtree"

type options struct {
	logger      *Logger
	bucketSize  int
	compression kdtree.CompressionType
}

// Option configures KDTree constructor/load behavior.
type Option func(*options)

// WithLogger configures the logger. If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithBucketSize configures the tree's leaf capacity.
//
// Smaller buckets mean deeper trees with more pruning opportunities; larger
// buckets mean flatter trees with more brute-force scanning per leaf. The
// default suits low-dimensional workloads.
func WithBucketSize(size int) Option {
	return func(o *options) {
		o.bucketSize = size
	}
}

// WithCompression configures the compression used by SaveSnapshot.
// The default is ZSTD.
func WithCompression(c kdtree.CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}
