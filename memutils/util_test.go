package memutils_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/battlecode/memutils"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "one"))
	require.NoError(t, memutils.CheckPow2(uint(4096), "block size"))
	require.NoError(t, memutils.CheckPow2(uint64(1)<<32, "block size"))

	err := memutils.CheckPow2(0, "zero")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	err = memutils.CheckPow2(uint(48), "block size")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "block size is 48")
}

func TestAlign(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 16, memutils.AlignUp(16, 8))
	require.Equal(t, 24, memutils.AlignUp(17, 8))
	require.Equal(t, 16, memutils.AlignDown(17, 8))
	require.Equal(t, 5, memutils.AlignUp(5, 1))
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	require.Equal(t, math.MaxInt, stats.AllocationSizeMin)
	require.Equal(t, math.MaxInt, stats.UnusedRangeSizeMin)

	stats.AddAllocation(24)
	stats.AddAllocation(40)
	stats.AddUnusedRange(100)
	stats.BlockCount = 1
	stats.BlockBytes = 164

	var other memutils.DetailedStatistics
	other.Clear()
	other.AddAllocation(8)
	other.AddUnusedRange(1000)
	other.BlockCount = 1
	other.BlockBytes = 1008

	stats.AddDetailedStatistics(&other)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      2,
			AllocationCount: 3,
			BlockBytes:      1172,
			AllocationBytes: 72,
		},
		UnusedRangeCount:   2,
		AllocationSizeMin:  8,
		AllocationSizeMax:  40,
		UnusedRangeSizeMin: 100,
		UnusedRangeSizeMax: 1000,
	}, stats)
	require.Equal(t, 1100, stats.UnusedBytes())
}
