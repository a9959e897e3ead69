package native

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/battlecode/internal/utils"
	"github.com/vkngwrapper/battlecode/memutils"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Heap is the native side of the bindings. It owns every object the bindings can refer to, hands out
// an Address for each one, and stores each object's payload in memory it reserves block by block.
//
// Passing Null, a freed Address, or an Address of the wrong kind to any Heap operation is a contract
// violation and panics. Operations that create objects return Null when the heap cannot hold them.
type Heap struct {
	logger      *slog.Logger
	createFlags CreateFlags
	callbacks   heapCallbacks

	blockSize     int
	heapSizeLimit int
	strategy      metadata.AllocationStrategy

	mutex         utils.OptionalRWMutex
	nextBlockID   int
	reservedBytes int
	blocks        []*heapBlock
	allocations   *swiss.Map[Address, *allocation]
	liveObjects   [objectKindCount]int
}

type allocation struct {
	block   *heapBlock
	handle  metadata.BlockAllocationHandle
	address Address
	kind    ObjectKind
	size    int

	// owner is the VecUnit that refers to this object by address. Objects with an owner are never
	// handed out to callers, so Defragment may move them.
	owner *allocation
}

// bytes returns the payload of the object. The slice aliases heap memory.
func (a *allocation) bytes() []byte {
	return a.block.bytes(int(a.address-a.block.base), a.size)
}

func (h *Heap) alloc(kind ObjectKind, size int) (*allocation, error) {
	h.logger.Debug("Heap::alloc", slog.String("Kind", kind.String()), slog.Int("Size", size))

	if size < 1 {
		return nil, errors.AssertionFailedf("attempted to allocate a %s of size %d", kind, size)
	}

	for _, block := range h.blocks {
		if block.dedicated || !block.metadata.MayHaveFreeBlock(size) {
			continue
		}

		success, request, err := block.metadata.CreateAllocationRequest(size, objectAlignment, h.strategy)
		if err != nil {
			return nil, err
		}

		if success {
			h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Returned from existing block", slog.Int("block.id", block.id))
			return h.commit(block, request, kind, size)
		}
	}

	block, err := h.createBlock(size)
	if err != nil {
		return nil, err
	}

	success, request, err := block.metadata.CreateAllocationRequest(size, objectAlignment, h.strategy)
	if err != nil {
		return nil, err
	}
	if !success {
		return nil, errors.AssertionFailedf("a new heap block of %d bytes could not hold a %s of %d bytes", block.Size(), kind, size)
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Created new block", slog.Int("block.id", block.id), slog.Bool("dedicated", block.dedicated))
	return h.commit(block, request, kind, size)
}

func (h *Heap) createBlock(objectSize int) (*heapBlock, error) {
	size := h.blockSize
	dedicated := false

	if objectSize+memutils.DebugMargin > size {
		size = memutils.AlignUp(objectSize+memutils.DebugMargin, objectAlignment)
		dedicated = true
	}

	if size > MaxBlockSize {
		return nil, errors.Wrapf(memutils.OutOfHeapError, "an object of %d bytes is larger than the maximum block size %d", objectSize, MaxBlockSize)
	}

	if h.heapSizeLimit > 0 && h.reservedBytes+size > h.heapSizeLimit {
		return nil, errors.Wrapf(memutils.OutOfHeapError, "reserving a block of %d bytes would exceed the heap limit of %d bytes (%d reserved)",
			size, h.heapSizeLimit, h.reservedBytes)
	}

	h.nextBlockID++
	block := &heapBlock{}
	block.Init(h.logger, h.nextBlockID, size, dedicated)

	h.blocks = append(h.blocks, block)
	h.reservedBytes += size

	return block, nil
}

func (h *Heap) commit(block *heapBlock, request metadata.AllocationRequest, kind ObjectKind, size int) (*allocation, error) {
	alloc := &allocation{
		block:   block,
		handle:  request.BlockAllocationHandle,
		address: block.base + Address(request.Offset),
		kind:    kind,
		size:    size,
	}

	err := block.metadata.Alloc(request, alloc)
	if err != nil {
		return nil, err
	}

	// Freed memory is reused, so objects never see a previous object's bytes
	payload := alloc.bytes()
	for i := range payload {
		payload[i] = 0
	}
	memutils.WriteMagicValue(block.data, request.Offset+size)

	h.allocations.Put(alloc.address, alloc)
	h.liveObjects[kind]++
	h.callbacks.Allocate(kind, alloc.address, size)

	return alloc, nil
}

func (h *Heap) free(alloc *allocation) {
	h.logger.Debug("Heap::free", slog.String("Kind", alloc.kind.String()), slog.String("Address", alloc.address.String()))

	h.callbacks.Free(alloc.kind, alloc.address, alloc.size)

	block := alloc.block
	err := block.metadata.Free(alloc.handle)
	if err != nil {
		panic(errors.Wrapf(err, "failed to free %s at %s", alloc.kind, alloc.address))
	}

	h.allocations.Delete(alloc.address)
	h.liveObjects[alloc.kind]--
	alloc.block = nil

	if block.metadata.IsEmpty() && (block.dedicated || h.hasOtherEmptyBlock(block)) {
		h.destroyBlock(block)
	}
}

func (h *Heap) hasOtherEmptyBlock(block *heapBlock) bool {
	for _, other := range h.blocks {
		if other != block && !other.dedicated && other.metadata.IsEmpty() {
			return true
		}
	}

	return false
}

func (h *Heap) destroyBlock(block *heapBlock) {
	for i, other := range h.blocks {
		if other != block {
			continue
		}

		h.blocks = append(h.blocks[:i], h.blocks[i+1:]...)
		break
	}

	size := block.Size()
	err := block.Destroy()
	if err != nil {
		panic(errors.Wrapf(err, "attempted to release heap block %d while it was still in use", block.id))
	}

	h.reservedBytes -= size
	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Deleted empty block", slog.Int("block.id", block.id))
}

// lookup resolves an address handed to the heap by a caller. Any address that does not name a live
// object of the expected kind is a contract violation.
func (h *Heap) lookup(address Address, kind ObjectKind) *allocation {
	if address == Null {
		panic(errors.AssertionFailedf("%s operation received the null address", kind))
	}

	alloc, ok := h.allocations.Get(address)
	if !ok {
		panic(errors.AssertionFailedf("%s operation received %s, which is not a live object", kind, address))
	}

	if alloc.kind != kind {
		panic(errors.AssertionFailedf("%s operation received %s, which is a %s", kind, address, alloc.kind))
	}

	return alloc
}

// LiveObjects returns the number of objects of the provided kind that have been created and not yet freed
func (h *Heap) LiveObjects(kind ObjectKind) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.liveObjects[kind]
}

// ReservedBytes returns the number of bytes of blocks currently reserved by the heap
func (h *Heap) ReservedBytes() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.reservedBytes
}

// Validate performs internal consistency checks on every block and on the address table
func (h *Heap) Validate() error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.validate()
}

func (h *Heap) validate() error {
	allocationCount := 0
	reserved := 0
	for _, block := range h.blocks {
		err := block.Validate()
		if err != nil {
			return errors.Wrapf(err, "heap block %d failed validation", block.id)
		}

		allocationCount += block.metadata.AllocationCount()
		reserved += block.Size()
	}

	if allocationCount != h.allocations.Count() {
		return errors.Newf("heap blocks hold %d objects but the address table holds %d", allocationCount, h.allocations.Count())
	}

	if reserved != h.reservedBytes {
		return errors.Newf("heap blocks add up to %d bytes but the heap has recorded %d reserved bytes", reserved, h.reservedBytes)
	}

	liveCount := 0
	for _, count := range h.liveObjects {
		liveCount += count
	}

	if liveCount != allocationCount {
		return errors.Newf("heap has counted %d live objects but its blocks hold %d", liveCount, allocationCount)
	}

	return nil
}

// CheckCorruption verifies the guard bytes following every live object. It can only detect corruption
// when the module is built with the debug_mem_utils tag.
func (h *Heap) CheckCorruption() error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, block := range h.blocks {
		err := block.CheckCorruption()
		if err != nil {
			return err
		}
	}

	return nil
}

// Destroy releases every block held by the heap. If any objects are still live, each one is logged and
// an error is returned; in that case the heap is left untouched so the objects can still be freed.
func (h *Heap) Destroy() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var leakErr error
	for _, block := range h.blocks {
		if block.metadata.IsEmpty() {
			continue
		}

		leakErr = errors.CombineErrors(leakErr, block.Destroy())
	}

	if leakErr != nil {
		return leakErr
	}

	for _, block := range h.blocks {
		err := block.Destroy()
		if err != nil {
			return err
		}
	}

	h.blocks = nil
	h.reservedBytes = 0
	h.allocations.Clear()
	return nil
}
