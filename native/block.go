package native

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/battlecode/memutils"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"golang.org/x/exp/slog"
)

// heapBlock is one contiguous reservation of native memory. Objects are suballocated from it using
// the block's metadata.
type heapBlock struct {
	id        int
	base      Address
	data      []byte
	dedicated bool
	logger    *slog.Logger

	metadata metadata.BlockMetadata
}

func (b *heapBlock) Init(
	logger *slog.Logger,
	id int,
	size int,
	dedicated bool,
) {
	if b.data != nil {
		panic("attempting to initialize a heap block that is already in use")
	}

	b.id = id
	b.base = blockBaseAddress(id)
	b.data = make([]byte, size)
	b.dedicated = dedicated
	b.logger = logger

	b.metadata = metadata.NewFreeListBlockMetadata()
	b.metadata.Init(size)
}

func (b *heapBlock) Size() int {
	return len(b.data)
}

// bytes returns the memory backing size bytes at offset. The slice aliases the block.
func (b *heapBlock) bytes(offset, size int) []byte {
	return b.data[offset : offset+size : offset+size]
}

func (b *heapBlock) Destroy() error {
	if !b.metadata.IsEmpty() {
		// Log all remaining allocations
		err := b.metadata.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
			if free {
				return nil
			}

			b.logUnreleasedMemory(offset, size, userData)
			return nil
		})
		if err != nil {
			b.logger.LogAttrs(context.Background(),
				slog.LevelError,
				"[UNRELEASED MEMORY] error while iterating unreleased memory",
				slog.Any("error", err))
		}

		return errors.Newf("%d objects in heap block %d were not freed before the destruction of the heap",
			b.metadata.AllocationCount(), b.id)
	}

	if b.data == nil {
		panic("attempting to destroy a heap block that has no backing memory")
	}

	b.data = nil
	b.metadata = nil
	return nil
}

func (b *heapBlock) logUnreleasedMemory(offset, size int, userData any) {
	alloc, isAllocation := userData.(*allocation)
	kind := "unknown"
	if isAllocation {
		kind = alloc.kind.String()
	}

	b.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed object",
		slog.Int("block", b.id),
		slog.String("address", (b.base+Address(offset)).String()),
		slog.Int("size", size),
		slog.String("kind", kind),
	)
}

func (b *heapBlock) Validate() error {
	if b.data == nil {
		return errors.Newf("heap block %d has no backing memory", b.id)
	}
	if b.metadata.Size() != len(b.data) {
		return errors.Newf("heap block %d has %d bytes of memory, but its metadata manages %d", b.id, len(b.data), b.metadata.Size())
	}

	err := b.metadata.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset, size int, userData any, free bool) error {
		if free {
			return nil
		}

		alloc, isAllocation := userData.(*allocation)
		if !isAllocation || alloc == nil {
			return errors.Newf("suballocation at offset %d of heap block %d has no allocation attached", offset, b.id)
		}

		if alloc.block != b || alloc.handle != handle {
			return errors.Newf("allocation %s does not point back at its suballocation in heap block %d", alloc.address, b.id)
		}

		if alloc.address != b.base+Address(offset) {
			return errors.Newf("allocation %s is recorded at offset %d of heap block %d", alloc.address, offset, b.id)
		}

		if alloc.size != size {
			return errors.Newf("allocation %s has size %d but its suballocation has size %d", alloc.address, alloc.size, size)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return b.metadata.Validate()
}

// CheckCorruption verifies the guard bytes that follow every live object. Guard bytes are only written
// when the module is built with the debug_mem_utils tag.
func (b *heapBlock) CheckCorruption() error {
	return b.metadata.VisitAllRegions(func(handle metadata.BlockAllocationHandle, offset, size int, userData any, free bool) error {
		if free {
			return nil
		}

		if !memutils.ValidateMagicValue(b.data, offset+size) {
			return errors.Newf("memory corruption detected after the object at %s", b.base+Address(offset))
		}

		return nil
	})
}

func (b *heapBlock) PrintDetailedMap(json *jwriter.ObjectState) {
	json.Name("BaseAddress").String(b.base.String())
	json.Name("Dedicated").Bool(b.dedicated)
	b.metadata.BlockJsonData(json)

	arrayState := json.Name("Suballocations").Array()
	defer arrayState.End()

	_ = b.metadata.VisitAllRegions(
		func(handle metadata.BlockAllocationHandle, offset int, size int, userData any, free bool) error {
			obj := arrayState.Object()
			defer obj.End()

			obj.Name("Offset").Int(offset)
			obj.Name("Size").Int(size)

			if free {
				obj.Name("Type").String("FREE")
				return nil
			}

			alloc, isAllocation := userData.(*allocation)
			if isAllocation && alloc != nil {
				obj.Name("Type").String(alloc.kind.String())
				obj.Name("Address").String(alloc.address.String())
			}

			return nil
		})
}
