package kdgo

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kdgo/blobstore"
	"github.com/hupe1980/kdgo/kdtree"
)

// Match is a single search result. Re-exported from the kdtree package.
type Match = kdtree.Match

// SearchOption configures a single search operation.
// Re-exported from the kdtree package (see kdtree.WithAllowList).
type SearchOption = kdtree.SearchOption

// KDTree is a thread-safe k-d tree for exact nearest-neighbor search.
//
// All methods are safe for concurrent use: searches share a read lock,
// mutations take the write lock.
type KDTree struct {
	mu     sync.RWMutex
	tree   *kdtree.Tree
	logger *Logger
	opts   options
}

// New creates an empty KDTree for points of the given dimension.
func New(dim int, optFns ...Option) (*KDTree, error) {
	opts := options{
		logger:      NoopLogger(),
		compression: kdtree.CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var treeOpts []kdtree.Option
	if opts.bucketSize > 0 {
		treeOpts = append(treeOpts, kdtree.WithBucketSize(opts.bucketSize))
	}

	tree, err := kdtree.New(dim, treeOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	return &KDTree{
		tree:   tree,
		logger: opts.logger.WithDimension(dim),
		opts:   opts,
	}, nil
}

// Dim returns the dimensionality of the tree's points.
func (t *KDTree) Dim() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Dim()
}

// Len returns the number of points in the tree.
func (t *KDTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// Add inserts a point under the given id.
func (t *KDTree) Add(ctx context.Context, point []float32, id uint32) error {
	t.mu.Lock()
	err := translateError(t.tree.Add(point, kdtree.ID(id)))
	t.mu.Unlock()

	t.logger.LogAdd(ctx, id, err)
	return err
}

// AddBatch inserts multiple points. points[i] is stored under ids[i].
// Insertion stops at the first failing point.
func (t *KDTree) AddBatch(ctx context.Context, points [][]float32, ids []uint32) error {
	if len(points) != len(ids) {
		return ErrBatchLengthMismatch
	}

	t.mu.Lock()
	var err error
	for i, p := range points {
		if err = translateError(t.tree.Add(p, kdtree.ID(ids[i]))); err != nil {
			err = fmt.Errorf("point %d: %w", i, err)
			break
		}
	}
	t.mu.Unlock()

	t.logger.LogBatchAdd(ctx, len(points), err)
	return err
}

// Nearest returns the single closest point to query.
func (t *KDTree) Nearest(ctx context.Context, query []float32, opts ...SearchOption) (Match, error) {
	t.mu.RLock()
	m, err := t.tree.Nearest(query, opts...)
	t.mu.RUnlock()

	err = translateError(err)
	t.logger.LogSearch(ctx, 1, 1, err)
	return m, err
}

// KNearest returns up to k closest points to query, sorted by ascending
// distance.
func (t *KDTree) KNearest(ctx context.Context, query []float32, k int, opts ...SearchOption) ([]Match, error) {
	t.mu.RLock()
	res, err := t.tree.KNearest(query, k, opts...)
	t.mu.RUnlock()

	err = translateError(err)
	t.logger.LogSearch(ctx, k, len(res), err)
	return res, err
}

// Within returns all points with squared Euclidean distance to query of at
// most radius, sorted by ascending distance.
func (t *KDTree) Within(ctx context.Context, query []float32, radius float32, opts ...SearchOption) ([]Match, error) {
	t.mu.RLock()
	res, err := t.tree.Within(query, radius, opts...)
	t.mu.RUnlock()

	err = translateError(err)
	t.logger.LogSearch(ctx, 0, len(res), err)
	return res, err
}

// KNearestBatch runs KNearest for every query concurrently and returns the
// results in query order. The first failing query aborts the batch.
func (t *KDTree) KNearestBatch(ctx context.Context, queries [][]float32, k int, opts ...SearchOption) ([][]Match, error) {
	results := make([][]Match, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, query := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := t.tree.KNearest(query, k, opts...)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, translateError(err))
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveSnapshot serializes the tree and writes it to the store under name,
// using the compression configured via WithCompression.
func (t *KDTree) SaveSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	t.mu.RLock()
	var buf bytes.Buffer
	err := t.tree.WriteSnapshot(&buf, t.opts.compression)
	t.mu.RUnlock()

	if err == nil {
		err = store.Put(ctx, name, buf.Bytes())
	}

	t.logger.LogSnapshot(ctx, "save", name, err)
	return err
}

// LoadSnapshot reads a snapshot from the store and restores a KDTree from it.
// Options apply to the restored tree; the snapshot's own bucket size is kept.
func LoadSnapshot(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*KDTree, error) {
	opts := options{
		logger:      NoopLogger(),
		compression: kdtree.CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	data, err := store.Get(ctx, name)
	if err != nil {
		opts.logger.LogSnapshot(ctx, "load", name, err)
		return nil, err
	}

	tree, err := kdtree.ReadSnapshot(bytes.NewReader(data))
	opts.logger.LogSnapshot(ctx, "load", name, err)
	if err != nil {
		return nil, err
	}

	return &KDTree{
		tree:   tree,
		logger: opts.logger.WithDimension(tree.Dim()),
		opts:   opts,
	}, nil
}
