package native

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fragmentHeap leaves a heap with the VecUnit header alone in the first block, an empty second block,
// and the vector's buffer and elements in the third block
func fragmentHeap(t *testing.T, heap *Heap, pushes int) Address {
	vec := heap.NewVecUnit()
	require.NotEqual(t, Null, vec)

	var fillers []Address
	for i := 0; len(heap.blocks) < 3; i++ {
		filler := heap.NewUnit(testUnitData(uint32(i)))
		require.NotEqual(t, Null, filler)
		fillers = append(fillers, filler)
	}

	for i := 0; i < pushes; i++ {
		require.NoError(t, heap.VecUnitPush(vec, fillers[i]))
	}

	for _, filler := range fillers {
		heap.DeleteUnit(filler)
	}

	require.Len(t, heap.blocks, 3)
	require.True(t, heap.blocks[1].metadata.IsEmpty())
	return vec
}

func TestDefragmentCompactsVecUnitContents(t *testing.T) {
	live := map[Address]ObjectKind{}
	heap := newTestHeap(t, CreateOptions{
		BlockSize: 512,
		Callbacks: &CallbackOptions{
			Allocate: func(heap *Heap, kind ObjectKind, address Address, size int, userData interface{}) {
				live[address] = kind
			},
			Free: func(heap *Heap, kind ObjectKind, address Address, size int, userData interface{}) {
				require.Equal(t, live[address], kind)
				delete(live, address)
			},
		},
	})

	vec := fragmentHeap(t, heap, 6)
	before := heap.VecUnitToString(vec)
	reserved := heap.ReservedBytes()

	stats, err := heap.Defragment(DefragmentationInfo{})
	require.NoError(t, err)
	require.Equal(t, 7, stats.AllocationsMoved)
	require.Greater(t, stats.BytesMoved, 0)
	require.Equal(t, 1, stats.BlocksFreed)
	require.Equal(t, 512, stats.BytesFreed)
	require.Equal(t, reserved-512, heap.ReservedBytes())
	require.NoError(t, heap.Validate())
	require.NoError(t, heap.CheckCorruption())

	// The caller's address is stable and every moved object now shares its block
	require.Equal(t, before, heap.VecUnitToString(vec))
	vecBlock := heap.lookup(vec, KindVecUnit).block
	heap.allocations.Iter(func(address Address, alloc *allocation) bool {
		require.Same(t, vecBlock, alloc.block)
		require.Equal(t, alloc.kind, live[address])
		return false
	})
	require.Len(t, live, heap.allocations.Count())

	for i := 0; i < 6; i++ {
		element := heap.VecUnitGet(vec, uint64(i))
		require.Equal(t, testUnitData(uint32(i)), heap.UnitData(element))
		heap.DeleteUnit(element)
	}

	stats, err = heap.Defragment(DefragmentationInfo{})
	require.NoError(t, err)
	require.Equal(t, DefragmentationStats{}, stats)

	heap.DeleteVecUnit(vec)
	require.Empty(t, live)
	requireCleanDestroy(t, heap)
}

func TestDefragmentRespectsBudgets(t *testing.T) {
	heap := newTestHeap(t, CreateOptions{BlockSize: 512})
	vec := fragmentHeap(t, heap, 6)
	before := heap.VecUnitToString(vec)

	var total DefragmentationStats
	stats, err := heap.Defragment(DefragmentationInfo{MaxAllocationsPerPass: 2})
	require.NoError(t, err)
	require.Equal(t, 2, stats.AllocationsMoved)
	require.Equal(t, 0, stats.BlocksFreed)
	total.Add(stats)

	stats, err = heap.Defragment(DefragmentationInfo{MaxBytesPerPass: 1})
	require.NoError(t, err)
	require.Equal(t, 0, stats.AllocationsMoved)
	total.Add(stats)

	for {
		stats, err = heap.Defragment(DefragmentationInfo{MaxAllocationsPerPass: 2})
		require.NoError(t, err)
		total.Add(stats)
		if stats.AllocationsMoved == 0 {
			break
		}
	}

	require.Equal(t, 7, total.AllocationsMoved)
	require.Equal(t, 1, total.BlocksFreed)
	require.Equal(t, before, heap.VecUnitToString(vec))
	require.NoError(t, heap.Validate())

	heap.DeleteVecUnit(vec)
	requireCleanDestroy(t, heap)
}

func TestDefragmentNeverMovesCallerObjects(t *testing.T) {
	heap := newTestHeap(t, CreateOptions{BlockSize: 512})

	var units []Address
	for i := 0; len(heap.blocks) < 2; i++ {
		units = append(units, heap.NewUnit(testUnitData(uint32(i))))
	}

	last := units[len(units)-1]
	for _, unit := range units[:len(units)-1] {
		heap.DeleteUnit(unit)
	}

	stats, err := heap.Defragment(DefragmentationInfo{})
	require.NoError(t, err)
	require.Equal(t, 0, stats.AllocationsMoved)
	require.Equal(t, testUnitData(uint32(len(units)-1)), heap.UnitData(last))

	heap.DeleteUnit(last)
	requireCleanDestroy(t, heap)
}
