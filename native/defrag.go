package native

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/battlecode/memutils"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"golang.org/x/exp/slog"
)

// DefragmentationInfo limits the work done by a single call to Heap.Defragment. Zero values mean no
// limit.
type DefragmentationInfo struct {
	MaxBytesPerPass       int
	MaxAllocationsPerPass int
}

// DefragmentationStats contains basic metrics for a defragmentation pass
type DefragmentationStats struct {
	// BytesMoved is the number of bytes that have been successfully relocated
	BytesMoved int
	// BytesFreed is the number of bytes of blocks released because relocation emptied them
	BytesFreed int
	// AllocationsMoved is the number of successful relocations
	AllocationsMoved int
	// BlocksFreed is the number of blocks released because relocation emptied them
	BlocksFreed int
}

func (s *DefragmentationStats) Add(stats DefragmentationStats) {
	s.BytesMoved += stats.BytesMoved
	s.BytesFreed += stats.BytesFreed
	s.AllocationsMoved += stats.AllocationsMoved
	s.BlocksFreed += stats.BlocksFreed
}

// Defragment performs one compaction pass over the heap. Only objects held inside a VecUnit (its
// element buffer and its Units) are moved, since callers never hold their addresses. Objects are
// moved toward the front of the earliest block that can hold them, and blocks emptied along the way
// are released.
//
// A pass that moves nothing means the heap is as compact as Defragment can make it.
func (h *Heap) Defragment(info DefragmentationInfo) (DefragmentationStats, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var stats DefragmentationStats
	reservedBefore := h.reservedBytes
	blocksBefore := len(h.blocks)

pass:
	for srcIndex := len(h.blocks) - 1; srcIndex >= 0; srcIndex-- {
		src := h.blocks[srcIndex]
		if src.dedicated {
			continue
		}

		for _, alloc := range h.movableAllocations(src) {
			if info.MaxAllocationsPerPass > 0 && stats.AllocationsMoved >= info.MaxAllocationsPerPass {
				break pass
			}

			if info.MaxBytesPerPass > 0 && stats.BytesMoved+alloc.size > info.MaxBytesPerPass {
				continue
			}

			dst, request, found, err := h.findRelocation(alloc, srcIndex)
			if err != nil {
				return stats, err
			}
			if !found {
				continue
			}

			err = h.relocate(alloc, dst, request)
			if err != nil {
				return stats, err
			}

			stats.BytesMoved += alloc.size
			stats.AllocationsMoved++
		}
	}

	h.releaseEmptyBlocks()
	stats.BytesFreed = reservedBefore - h.reservedBytes
	stats.BlocksFreed = blocksBefore - len(h.blocks)

	h.logger.Debug("Heap::Defragment",
		slog.Int("AllocationsMoved", stats.AllocationsMoved),
		slog.Int("BytesMoved", stats.BytesMoved),
		slog.Int("BlocksFreed", stats.BlocksFreed),
	)

	return stats, nil
}

func (h *Heap) movableAllocations(block *heapBlock) []*allocation {
	var allocs []*allocation
	_ = block.metadata.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		if free {
			return nil
		}

		alloc, isAllocation := userData.(*allocation)
		if isAllocation && alloc.owner != nil {
			allocs = append(allocs, alloc)
		}

		return nil
	})

	return allocs
}

// findRelocation finds the first place in a block no later than srcIndex that would put alloc at a
// lower address
func (h *Heap) findRelocation(alloc *allocation, srcIndex int) (*heapBlock, metadata.AllocationRequest, bool, error) {
	for dstIndex := 0; dstIndex <= srcIndex; dstIndex++ {
		dst := h.blocks[dstIndex]
		if dst.dedicated || !dst.metadata.MayHaveFreeBlock(alloc.size) {
			continue
		}

		success, request, err := dst.metadata.CreateAllocationRequest(alloc.size, objectAlignment, metadata.AllocationStrategyMinTime)
		if err != nil {
			return nil, request, false, err
		}

		if !success {
			continue
		}

		if dstIndex == srcIndex && dst.base+Address(request.Offset) >= alloc.address {
			continue
		}

		return dst, request, true, nil
	}

	return nil, metadata.AllocationRequest{}, false, nil
}

func (h *Heap) relocate(alloc *allocation, dst *heapBlock, request metadata.AllocationRequest) error {
	oldAddress := alloc.address
	oldBlock := alloc.block
	oldHandle := alloc.handle

	err := dst.metadata.Alloc(request, alloc)
	if err != nil {
		return err
	}

	copy(dst.bytes(request.Offset, alloc.size), alloc.bytes())
	memutils.WriteMagicValue(dst.data, request.Offset+alloc.size)

	err = oldBlock.metadata.Free(oldHandle)
	if err != nil {
		return errors.Wrapf(err, "failed to release the old location of the %s at %s", alloc.kind, oldAddress)
	}

	alloc.block = dst
	alloc.handle = request.BlockAllocationHandle
	alloc.address = dst.base + Address(request.Offset)

	h.allocations.Delete(oldAddress)
	h.allocations.Put(alloc.address, alloc)
	h.repointOwner(alloc, oldAddress)

	h.callbacks.Free(alloc.kind, oldAddress, alloc.size)
	h.callbacks.Allocate(alloc.kind, alloc.address, alloc.size)

	return nil
}

// repointOwner updates the reference the owning VecUnit holds to an object that has moved
func (h *Heap) repointOwner(alloc *allocation, oldAddress Address) {
	header := readVecUnitHeader(alloc.owner)

	switch alloc.kind {
	case KindVecUnitBuffer:
		header.data = alloc.address
		writeVecUnitHeader(alloc.owner, header)
		return
	case KindUnit:
		for index, element := range h.vecUnitElements(header) {
			if element == oldAddress {
				h.setVecUnitElement(h.lookup(header.data, KindVecUnitBuffer), uint64(index), alloc.address)
				return
			}
		}
	}

	panic(errors.AssertionFailedf("the VecUnit at %s does not refer to the %s that moved from %s", alloc.owner.address, alloc.kind, oldAddress))
}

// releaseEmptyBlocks destroys every empty block but one, starting from the back of the heap
func (h *Heap) releaseEmptyBlocks() {
	for i := len(h.blocks) - 1; i >= 0; i-- {
		block := h.blocks[i]
		if !block.dedicated && block.metadata.IsEmpty() && h.hasOtherEmptyBlock(block) {
			h.destroyBlock(block)
		}
	}
}
