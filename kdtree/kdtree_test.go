package kdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tr, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Dim())
	assert.Equal(t, DefaultBucketSize, tr.BucketSize())
	assert.Equal(t, 0, tr.Len())
}

func TestNewInvalidDimension(t *testing.T) {
	for _, dim := range []int{0, -1} {
		_, err := New(dim)
		require.Error(t, err)

		var ide *ErrInvalidDimension
		require.ErrorAs(t, err, &ide)
		assert.Equal(t, dim, ide.Dimension)
	}
}

func TestWithBucketSize(t *testing.T) {
	tr, err := New(2, WithBucketSize(4))
	require.NoError(t, err)
	assert.Equal(t, 4, tr.BucketSize())

	// Non-positive values keep the default.
	tr, err = New(2, WithBucketSize(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultBucketSize, tr.BucketSize())
}

func TestAdd(t *testing.T) {
	tr, err := New(2, WithBucketSize(2))
	require.NoError(t, err)

	points := [][]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {3, 3}}
	for i, p := range points {
		require.NoError(t, tr.Add(p, ID(i)))
	}
	assert.Equal(t, len(points), tr.Len())

	// Splitting must not lose points.
	for i, p := range points {
		m, err := tr.Nearest(p)
		require.NoError(t, err)
		assert.Equal(t, float32(0), m.Distance, "point %d should find itself", i)
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	tr, err := New(3)
	require.NoError(t, err)

	err = tr.Add([]float32{1, 2}, 0)
	require.Error(t, err)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestAddIdenticalPoints(t *testing.T) {
	// A leaf full of identical points cannot be split and must stay intact.
	tr, err := New(2, WithBucketSize(2))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, tr.Add([]float32{5, 5}, ID(i)))
	}
	assert.Equal(t, 10, tr.Len())

	res, err := tr.KNearest([]float32{5, 5}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 10)
}
