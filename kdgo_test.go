package kdgo

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdgo/blobstore"
	"github.com/hupe1980/kdgo/kdtree"
)

func TestNew(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Dim())
	assert.Equal(t, 0, tree.Len())
}

func TestNewInvalidDimension(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	var ide *ErrInvalidDimension
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 0, ide.Dimension)
}

func TestAddAndSearch(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2, WithBucketSize(4))
	require.NoError(t, err)

	require.NoError(t, tree.Add(ctx, []float32{0, 0}, 1))
	require.NoError(t, tree.Add(ctx, []float32{10, 10}, 2))
	require.NoError(t, tree.Add(ctx, []float32{1, 1}, 3))

	m, err := tree.Nearest(ctx, []float32{0.2, 0.2})
	require.NoError(t, err)
	assert.Equal(t, kdtree.ID(1), m.ID)

	res, err := tree.KNearest(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, kdtree.ID(1), res[0].ID)
	assert.Equal(t, kdtree.ID(3), res[1].ID)

	within, err := tree.Within(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, within, 2)
}

func TestAddDimensionMismatch(t *testing.T) {
	ctx := context.Background()

	tree, err := New(3)
	require.NoError(t, err)

	err = tree.Add(ctx, []float32{1, 2}, 1)
	require.Error(t, err)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Error(t, dm.Unwrap())
}

func TestSearchErrorTranslation(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2)
	require.NoError(t, err)

	_, err = tree.Nearest(ctx, []float32{0, 0})
	assert.ErrorIs(t, err, ErrEmptyTree)

	require.NoError(t, tree.Add(ctx, []float32{0, 0}, 1))

	_, err = tree.KNearest(ctx, []float32{0, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestAddBatch(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2)
	require.NoError(t, err)

	points := [][]float32{{0, 0}, {1, 1}, {2, 2}}
	require.NoError(t, tree.AddBatch(ctx, points, []uint32{1, 2, 3}))
	assert.Equal(t, 3, tree.Len())

	t.Run("LengthMismatch", func(t *testing.T) {
		err := tree.AddBatch(ctx, points, []uint32{1})
		assert.ErrorIs(t, err, ErrBatchLengthMismatch)
	})

	t.Run("BadPoint", func(t *testing.T) {
		err := tree.AddBatch(ctx, [][]float32{{1, 2, 3}}, []uint32{4})
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})
}

func TestKNearestBatch(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tree.AddBatch(ctx,
		[][]float32{{0, 0}, {5, 5}, {10, 10}},
		[]uint32{1, 2, 3},
	))

	queries := [][]float32{{0, 1}, {6, 6}, {9, 9}}
	results, err := tree.KNearestBatch(ctx, queries, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, kdtree.ID(1), results[0][0].ID)
	assert.Equal(t, kdtree.ID(2), results[1][0].ID)
	assert.Equal(t, kdtree.ID(3), results[2][0].ID)

	t.Run("BadQuery", func(t *testing.T) {
		_, err := tree.KNearestBatch(ctx, [][]float32{{0, 0}, {1}}, 1)
		require.Error(t, err)
	})
}

func TestSearchWithAllowList(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tree.AddBatch(ctx,
		[][]float32{{1, 0}, {2, 0}},
		[]uint32{1, 2},
	))

	m, err := tree.Nearest(ctx, []float32{0, 0}, kdtree.WithAllowList(roaring.BitmapOf(2)))
	require.NoError(t, err)
	assert.Equal(t, kdtree.ID(2), m.ID)
}

func TestSnapshotRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	compressions := []kdtree.CompressionType{
		kdtree.CompressionNone,
		kdtree.CompressionLZ4,
		kdtree.CompressionZSTD,
	}

	for _, c := range compressions {
		tree, err := New(3, WithCompression(c), WithBucketSize(4))
		require.NoError(t, err)
		require.NoError(t, tree.AddBatch(ctx,
			[][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
			[]uint32{10, 20, 30},
		))

		require.NoError(t, tree.SaveSnapshot(ctx, store, "tree.kdgo"))

		restored, err := LoadSnapshot(ctx, store, "tree.kdgo")
		require.NoError(t, err)
		assert.Equal(t, tree.Len(), restored.Len())
		assert.Equal(t, tree.Dim(), restored.Dim())

		m, err := restored.Nearest(ctx, []float32{4, 5, 6})
		require.NoError(t, err)
		assert.Equal(t, kdtree.ID(20), m.ID)
		assert.Equal(t, float32(0), m.Distance)
	}
}

func TestLoadSnapshotNotFound(t *testing.T) {
	ctx := context.Background()

	_, err := LoadSnapshot(ctx, blobstore.NewMemoryStore(), "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestConcurrentUse(t *testing.T) {
	ctx := context.Background()

	tree, err := New(2)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, tree.Add(ctx, []float32{float32(i), float32(i)}, uint32(i)))
	}

	queries := make([][]float32, 64)
	for i := range queries {
		queries[i] = []float32{float32(i), float32(i)}
	}

	results, err := tree.KNearestBatch(ctx, queries, 3)
	require.NoError(t, err)
	for i, res := range results {
		require.Len(t, res, 3)
		assert.Equal(t, kdtree.ID(i), res[0].ID)
	}
}
