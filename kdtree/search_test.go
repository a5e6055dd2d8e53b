package kdtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdgo/distance"
)

func randomTree(t *testing.T, dim, n int, seed int64) (*Tree, [][]float32) {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	tr, err := New(dim, WithBucketSize(8))
	require.NoError(t, err)

	points := make([][]float32, n)
	for i := range points {
		p := make([]float32, dim)
		for d := range p {
			p[d] = rng.Float32()*20 - 10
		}
		points[i] = p
		require.NoError(t, tr.Add(p, ID(i)))
	}

	return tr, points
}

func bruteForceKNN(points [][]float32, query []float32, k int) []Match {
	res := make([]Match, 0, len(points))
	for i, p := range points {
		res = append(res, Match{ID: ID(i), Distance: distance.SquaredEuclidean(query, p)})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Distance < res[j].Distance })
	if len(res) > k {
		res = res[:k]
	}
	return res
}

func TestKNearestMatchesBruteForce(t *testing.T) {
	tr, points := randomTree(t, 3, 500, 42)
	rng := rand.New(rand.NewSource(43))

	for q := 0; q < 50; q++ {
		query := []float32{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}

		got, err := tr.KNearest(query, 10)
		require.NoError(t, err)
		expected := bruteForceKNN(points, query, 10)

		require.Len(t, got, 10)
		for i := range got {
			// Compare distances, not ids: equidistant points may tie.
			assert.InDelta(t, expected[i].Distance, got[i].Distance, 1e-5)
		}
	}
}

func TestKNearestSorted(t *testing.T) {
	tr, _ := randomTree(t, 2, 200, 7)

	res, err := tr.KNearest([]float32{0, 0}, 25)
	require.NoError(t, err)
	require.Len(t, res, 25)

	for i := 1; i < len(res); i++ {
		assert.LessOrEqual(t, res[i-1].Distance, res[i].Distance)
	}
}

func TestKNearestFewerThanK(t *testing.T) {
	tr, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tr.Add([]float32{1, 1}, 1))
	require.NoError(t, tr.Add([]float32{2, 2}, 2))

	res, err := tr.KNearest([]float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestNearest(t *testing.T) {
	tr, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tr.Add([]float32{1, 0}, 10))
	require.NoError(t, tr.Add([]float32{5, 5}, 20))

	m, err := tr.Nearest([]float32{0, 0})
	require.NoError(t, err)
	assert.Equal(t, ID(10), m.ID)
	assert.InDelta(t, float32(1), m.Distance, 1e-6)
}

func TestSearchErrors(t *testing.T) {
	tr, err := New(2)
	require.NoError(t, err)

	t.Run("EmptyTree", func(t *testing.T) {
		_, err := tr.Nearest([]float32{0, 0})
		assert.ErrorIs(t, err, ErrEmptyTree)

		_, err = tr.Within([]float32{0, 0}, 1)
		assert.ErrorIs(t, err, ErrEmptyTree)
	})

	require.NoError(t, tr.Add([]float32{0, 0}, 0))

	t.Run("InvalidK", func(t *testing.T) {
		_, err := tr.KNearest([]float32{0, 0}, 0)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		var dm *ErrDimensionMismatch

		_, err := tr.KNearest([]float32{0}, 1)
		require.ErrorAs(t, err, &dm)

		_, err = tr.Within([]float32{0, 0, 0}, 1)
		require.ErrorAs(t, err, &dm)
	})
}

func TestWithin(t *testing.T) {
	tr, err := New(2, WithBucketSize(2))
	require.NoError(t, err)

	// Ring of points at squared distances 1, 4, 9 from origin.
	require.NoError(t, tr.Add([]float32{1, 0}, 1))
	require.NoError(t, tr.Add([]float32{0, -2}, 2))
	require.NoError(t, tr.Add([]float32{3, 0}, 3))
	require.NoError(t, tr.Add([]float32{0, 1}, 4))

	res, err := tr.Within([]float32{0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, float32(1), res[0].Distance)
	assert.Equal(t, float32(1), res[1].Distance)
	assert.Equal(t, float32(4), res[2].Distance)
}

func TestWithinMatchesBruteForce(t *testing.T) {
	tr, points := randomTree(t, 3, 300, 11)
	query := []float32{0, 0, 0}
	const radius = 25

	got, err := tr.Within(query, radius)
	require.NoError(t, err)

	var expected int
	for _, p := range points {
		if distance.SquaredEuclidean(query, p) <= radius {
			expected++
		}
	}
	assert.Len(t, got, expected)

	for _, m := range got {
		assert.LessOrEqual(t, m.Distance, float32(radius))
	}
}

func TestAllowList(t *testing.T) {
	tr, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tr.Add([]float32{1, 0}, 1))
	require.NoError(t, tr.Add([]float32{2, 0}, 2))
	require.NoError(t, tr.Add([]float32{3, 0}, 3))

	allow := roaring.BitmapOf(2, 3)

	t.Run("Nearest", func(t *testing.T) {
		m, err := tr.Nearest([]float32{0, 0}, WithAllowList(allow))
		require.NoError(t, err)
		assert.Equal(t, ID(2), m.ID, "id 1 is closer but filtered out")
	})

	t.Run("KNearest", func(t *testing.T) {
		res, err := tr.KNearest([]float32{0, 0}, 3, WithAllowList(allow))
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, ID(2), res[0].ID)
		assert.Equal(t, ID(3), res[1].ID)
	})

	t.Run("Within", func(t *testing.T) {
		res, err := tr.Within([]float32{0, 0}, 100, WithAllowList(allow))
		require.NoError(t, err)
		assert.Len(t, res, 2)
	})

	t.Run("NothingAllowed", func(t *testing.T) {
		_, err := tr.Nearest([]float32{0, 0}, WithAllowList(roaring.New()))
		assert.ErrorIs(t, err, ErrEmptyTree)
	})
}
