package runner

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionEvenSplit(t *testing.T) {
	ranges := Partition(100, 4)
	require.Len(t, ranges, 4)
	for i, r := range ranges {
		assert.Equal(t, int64(25), r.Len(), "range %d", i)
	}
	assert.Equal(t, Range{Start: 0, End: 25}, ranges[0])
	assert.Equal(t, Range{Start: 75, End: 100}, ranges[3])
}

func TestPartitionCeilingDistribution(t *testing.T) {
	// 10 records over 4 workers: the first two workers carry the remainder.
	ranges := Partition(10, 4)
	require.Len(t, ranges, 4)

	sizes := make([]int64, len(ranges))
	for i, r := range ranges {
		sizes[i] = r.Len()
	}
	assert.Equal(t, []int64{3, 3, 2, 2}, sizes)
	assert.Equal(t, Range{Start: 0, End: 3}, ranges[0])
	assert.Equal(t, Range{Start: 8, End: 10}, ranges[3])
}

func TestPartitionSingleWorker(t *testing.T) {
	ranges := Partition(100, 1)
	require.Len(t, ranges, 1)
	assert.Equal(t, Range{Start: 0, End: 100}, ranges[0])
}

func TestPartitionMoreWorkersThanRecords(t *testing.T) {
	// Excess workers receive empty ranges, never get skipped.
	ranges := Partition(3, 5)
	require.Len(t, ranges, 5)

	var total int64
	for _, r := range ranges {
		total += r.Len()
	}
	assert.Equal(t, int64(3), total)
	assert.False(t, ranges[0].Empty())
	assert.True(t, ranges[3].Empty())
	assert.True(t, ranges[4].Empty())
}

func TestPartitionZeroTotal(t *testing.T) {
	ranges := Partition(0, 4)
	require.Len(t, ranges, 4)
	for i, r := range ranges {
		assert.True(t, r.Empty(), "range %d", i)
	}
}

func TestPartitionInvalidWorkerCount(t *testing.T) {
	assert.Nil(t, Partition(10, 0))
	assert.Nil(t, Partition(10, -1))
}

// TestPartitionProperties validates the partition invariants for arbitrary
// inputs: ranges are contiguous, pairwise disjoint, their union is exactly
// [0, total), and sizes never differ by more than one.
func TestPartitionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ranges partition [0, total) exactly", prop.ForAll(
		func(total int64, workers int) bool {
			ranges := Partition(total, workers)
			if len(ranges) != workers {
				return false
			}
			if ranges[0].Start != 0 {
				return false
			}
			for i := 1; i < len(ranges); i++ {
				// Contiguity implies no overlap and no gap.
				if ranges[i].Start != ranges[i-1].End {
					return false
				}
			}
			return ranges[len(ranges)-1].End == total
		},
		gen.Int64Range(0, 100000),
		gen.IntRange(1, 128),
	))

	properties.Property("split is as even as possible", prop.ForAll(
		func(total int64, workers int) bool {
			ranges := Partition(total, workers)
			minLen, maxLen := ranges[0].Len(), ranges[0].Len()
			for _, r := range ranges {
				if r.Len() < 0 {
					return false
				}
				if r.Len() < minLen {
					minLen = r.Len()
				}
				if r.Len() > maxLen {
					maxLen = r.Len()
				}
			}
			return maxLen-minLen <= 1
		},
		gen.Int64Range(0, 100000),
		gen.IntRange(1, 128),
	))

	properties.Property("partition is deterministic", prop.ForAll(
		func(total int64, workers int) bool {
			first := Partition(total, workers)
			second := Partition(total, workers)
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 100000),
		gen.IntRange(1, 128),
	))

	properties.TestingRun(t)
}
