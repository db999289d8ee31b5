package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{1, 7, 100, 1031} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	t.Run("sequential below threshold", func(t *testing.T) {
		calls := 0
		ParallelizeWithThreshold(10, 100, func(start, end int) {
			calls++
			assert.Equal(t, 0, start)
			assert.Equal(t, 10, end)
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("no calls for zero items", func(t *testing.T) {
		called := false
		ParallelizeWithThreshold(0, 10, func(start, end int) { called = true })
		Parallelize(0, func(start, end int) { called = true })
		assert.False(t, called)
	})

	t.Run("disjoint writes match sequential", func(t *testing.T) {
		n := 4 * RowThreshold
		par := make([]float64, n)
		ParallelizeWithThreshold(n, RowThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				par[i] = float64(i*i) / 3
			}
		})
		for i := range par {
			assert.Equal(t, float64(i*i)/3, par[i])
		}
	})
}
