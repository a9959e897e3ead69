package metadata

import (
	"sync"

	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/battlecode/memutils"
)

var regionAllocator = sync.Pool{
	New: func() any {
		return &freeListRegion{}
	},
}

type freeListRegion struct {
	offset int
	size   int
	free   bool

	prevPhysical *freeListRegion
	nextPhysical *freeListRegion

	userData     any
	regionHandle BlockAllocationHandle
}

// FreeListBlockMetadata is a BlockMetadata implementation that keeps every region of the block in a
// single offset-ordered list. Free regions are merged with their free neighbours as soon as they are
// released, so allocation is a walk over alternating taken and free regions.
type FreeListBlockMetadata struct {
	BlockMetadataBase

	allocCount      int
	freeRegionCount int
	freeSize        int
	largestFree     int

	nextRegionHandle BlockAllocationHandle
	handleKey        *swiss.Map[BlockAllocationHandle, *freeListRegion]
	head             *freeListRegion
}

var _ BlockMetadata = &FreeListBlockMetadata{}

func NewFreeListBlockMetadata() *FreeListBlockMetadata {
	return &FreeListBlockMetadata{}
}

func (m *FreeListBlockMetadata) allocateRegion(offset, size int) *freeListRegion {
	r := regionAllocator.Get().(*freeListRegion)
	r.offset = offset
	r.size = size
	r.free = true
	r.prevPhysical = nil
	r.nextPhysical = nil
	r.userData = nil
	m.nextRegionHandle++
	r.regionHandle = m.nextRegionHandle
	m.handleKey.Put(r.regionHandle, r)
	return r
}

func (m *FreeListBlockMetadata) releaseRegion(r *freeListRegion) {
	m.handleKey.Delete(r.regionHandle)
	r.prevPhysical = nil
	r.nextPhysical = nil
	r.userData = nil
	regionAllocator.Put(r)
}

func (m *FreeListBlockMetadata) getRegion(handle BlockAllocationHandle) (*freeListRegion, error) {
	region, ok := m.handleKey.Get(handle)
	if !ok {
		return nil, errors.Errorf("handle %d does not belong to a live region of this block", handle)
	}
	return region, nil
}

func (m *FreeListBlockMetadata) getAllocation(handle BlockAllocationHandle) (*freeListRegion, error) {
	region, err := m.getRegion(handle)
	if err != nil {
		return nil, err
	}
	if region.free {
		return nil, errors.Errorf("handle %d refers to a free region, not an allocation", handle)
	}
	return region, nil
}

func (m *FreeListBlockMetadata) Init(size int) {
	m.BlockMetadataBase.Init(size)
	m.handleKey = swiss.NewMap[BlockAllocationHandle, *freeListRegion](42)
	m.nextRegionHandle = 0

	m.head = m.allocateRegion(0, size)
	m.allocCount = 0
	m.freeRegionCount = 1
	m.freeSize = size
	m.largestFree = size
}

func (m *FreeListBlockMetadata) Validate() error {
	if m.head == nil {
		return errors.New("metadata has not been initialized")
	}

	if m.head.prevPhysical != nil {
		return errors.New("the first region in the block has a previous region")
	}

	nextOffset := 0
	var allocCount, freeCount, freeSize, regionCount int
	for region := m.head; region != nil; region = region.nextPhysical {
		regionCount++

		if region.offset != nextOffset {
			return errors.Errorf("region at offset %d does not begin at the previous region's end offset %d", region.offset, nextOffset)
		}
		if region.size < 1 {
			return errors.Errorf("region at offset %d has invalid size %d", region.offset, region.size)
		}
		if region.nextPhysical != nil && region.nextPhysical.prevPhysical != region {
			return errors.Errorf("region at offset %d lists a next region, but the reverse reference is broken", region.offset)
		}

		mapped, ok := m.handleKey.Get(region.regionHandle)
		if !ok || mapped != region {
			return errors.Errorf("region at offset %d is not registered under its handle %d", region.offset, region.regionHandle)
		}

		if region.free {
			if region.nextPhysical != nil && region.nextPhysical.free {
				return errors.Errorf("free region at offset %d was not merged with the free region after it", region.offset)
			}
			freeCount++
			freeSize += region.size
		} else {
			allocCount++
		}

		nextOffset = region.offset + region.size
	}

	if nextOffset != m.size {
		return errors.Errorf("the full size of the metadata is %d, but the regions only added up to %d", m.size, nextOffset)
	}

	if regionCount != m.handleKey.Count() {
		return errors.Errorf("there are %d regions in the block but %d registered handles", regionCount, m.handleKey.Count())
	}

	if allocCount != m.allocCount {
		return errors.Errorf("the allocation count of the metadata is %d, but the taken regions only added up to %d", m.allocCount, allocCount)
	}

	if freeCount != m.freeRegionCount {
		return errors.Errorf("the free region count of the metadata is %d, but there were %d free regions", m.freeRegionCount, freeCount)
	}

	if freeSize != m.freeSize {
		return errors.Errorf("the free size of the metadata is %d, but the free regions added up to %d", m.freeSize, freeSize)
	}

	return nil
}

func (m *FreeListBlockMetadata) AllocationCount() int  { return m.allocCount }
func (m *FreeListBlockMetadata) FreeRegionsCount() int { return m.freeRegionCount }
func (m *FreeListBlockMetadata) SumFreeSize() int      { return m.freeSize }
func (m *FreeListBlockMetadata) IsEmpty() bool         { return m.allocCount == 0 }

// MayHaveFreeBlock checks against the largest free region seen since the last allocation. That value is only
// ever an overestimate, so the check never produces false negatives.
func (m *FreeListBlockMetadata) MayHaveFreeBlock(size int) bool {
	return size+memutils.DebugMargin <= m.largestFree
}

func (m *FreeListBlockMetadata) VisitAllRegions(handleBlock func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error) error {
	for region := m.head; region != nil; region = region.nextPhysical {
		size := region.size
		if !region.free {
			size -= memutils.DebugMargin
		}

		err := handleBlock(region.regionHandle, region.offset, size, region.userData, region.free)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *FreeListBlockMetadata) AllocationOffset(allocHandle BlockAllocationHandle) (int, error) {
	region, err := m.getRegion(allocHandle)
	if err != nil {
		return 0, err
	}
	return region.offset, nil
}

func (m *FreeListBlockMetadata) AllocationSize(allocHandle BlockAllocationHandle) (int, error) {
	region, err := m.getAllocation(allocHandle)
	if err != nil {
		return 0, err
	}
	return region.size - memutils.DebugMargin, nil
}

func (m *FreeListBlockMetadata) AllocationUserData(allocHandle BlockAllocationHandle) (any, error) {
	region, err := m.getAllocation(allocHandle)
	if err != nil {
		return nil, err
	}
	return region.userData, nil
}

func (m *FreeListBlockMetadata) SetAllocationUserData(allocHandle BlockAllocationHandle, userData any) error {
	region, err := m.getAllocation(allocHandle)
	if err != nil {
		return err
	}
	region.userData = userData
	return nil
}

func (m *FreeListBlockMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += m.size

	for region := m.head; region != nil; region = region.nextPhysical {
		if region.free {
			stats.AddUnusedRange(region.size)
		} else {
			stats.AddAllocation(region.size)
		}
	}
}

func (m *FreeListBlockMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += m.allocCount
	stats.BlockBytes += m.size
	stats.AllocationBytes += m.size - m.freeSize
}

func (m *FreeListBlockMetadata) Clear() {
	for region := m.head; region != nil; {
		next := region.nextPhysical
		m.releaseRegion(region)
		region = next
	}

	m.Init(m.size)
}

func (m *FreeListBlockMetadata) BlockJsonData(json *jwriter.ObjectState) {
	m.blockJsonData(json, m.freeSize, m.allocCount, m.freeRegionCount)
}

func (m *FreeListBlockMetadata) CreateAllocationRequest(allocSize int, allocAlignment uint, strategy AllocationStrategy) (bool, AllocationRequest, error) {
	var request AllocationRequest

	if allocSize < 1 {
		return false, request, errors.Errorf("invalid allocSize: %d", allocSize)
	}

	err := memutils.CheckPow2(allocAlignment, "allocAlignment")
	if err != nil {
		return false, request, err
	}

	memutils.DebugValidate(m)

	totalSize := allocSize + memutils.DebugMargin
	if totalSize > m.freeSize || !m.MayHaveFreeBlock(allocSize) {
		return false, request, nil
	}

	var best *freeListRegion
	var bestOffset int
	for region := m.head; region != nil; region = region.nextPhysical {
		if !region.free {
			continue
		}

		alignedOffset := memutils.AlignUp(region.offset, allocAlignment)
		if alignedOffset+totalSize > region.offset+region.size {
			continue
		}

		if best == nil || region.size < best.size {
			best = region
			bestOffset = alignedOffset
		}

		if strategy == AllocationStrategyMinTime || best.size == totalSize {
			break
		}
	}

	if best == nil {
		// Every free region turned out to be too small, so tighten the heuristic
		m.recalculateLargestFree()
		return false, request, nil
	}

	request.BlockAllocationHandle = best.regionHandle
	request.Offset = bestOffset
	request.Size = totalSize
	return true, request, nil
}

func (m *FreeListBlockMetadata) Alloc(request AllocationRequest, userData any) error {
	region, err := m.getRegion(request.BlockAllocationHandle)
	if err != nil {
		return err
	}

	if !region.free {
		return errors.Errorf("the region at offset %d was allocated after the request was created", region.offset)
	}

	if request.Offset < region.offset || request.Offset+request.Size > region.offset+region.size {
		return errors.Errorf("the request for %d bytes at offset %d no longer fits in the free region at offset %d with size %d",
			request.Size, request.Offset, region.offset, region.size)
	}

	// Split off alignment padding before the allocation
	if padding := request.Offset - region.offset; padding > 0 {
		paddingRegion := m.allocateRegion(region.offset, padding)
		paddingRegion.prevPhysical = region.prevPhysical
		paddingRegion.nextPhysical = region
		if region.prevPhysical != nil {
			region.prevPhysical.nextPhysical = paddingRegion
		} else {
			m.head = paddingRegion
		}
		region.prevPhysical = paddingRegion
		region.offset = request.Offset
		region.size -= padding
		m.freeRegionCount++
	}

	// Split off the unused tail after the allocation
	if remainder := region.size - request.Size; remainder > 0 {
		tail := m.allocateRegion(region.offset+request.Size, remainder)
		tail.prevPhysical = region
		tail.nextPhysical = region.nextPhysical
		if region.nextPhysical != nil {
			region.nextPhysical.prevPhysical = tail
		}
		region.nextPhysical = tail
		region.size = request.Size
		m.freeRegionCount++
	}

	region.free = false
	region.userData = userData
	m.freeRegionCount--
	m.freeSize -= region.size
	m.allocCount++

	memutils.DebugValidate(m)
	return nil
}

func (m *FreeListBlockMetadata) Free(allocHandle BlockAllocationHandle) error {
	region, err := m.getAllocation(allocHandle)
	if err != nil {
		return err
	}

	region.free = true
	region.userData = nil
	m.allocCount--
	m.freeSize += region.size
	m.freeRegionCount++

	if next := region.nextPhysical; next != nil && next.free {
		m.mergeWithNext(region)
	}

	if prev := region.prevPhysical; prev != nil && prev.free {
		region = prev
		m.mergeWithNext(region)
	}

	if region.size > m.largestFree {
		m.largestFree = region.size
	}

	memutils.DebugValidate(m)
	return nil
}

// mergeWithNext absorbs the free region following region into region
func (m *FreeListBlockMetadata) mergeWithNext(region *freeListRegion) {
	next := region.nextPhysical
	region.size += next.size
	region.nextPhysical = next.nextPhysical
	if next.nextPhysical != nil {
		next.nextPhysical.prevPhysical = region
	}
	m.freeRegionCount--
	m.releaseRegion(next)
}

func (m *FreeListBlockMetadata) recalculateLargestFree() {
	m.largestFree = 0
	for region := m.head; region != nil; region = region.nextPhysical {
		if region.free && region.size > m.largestFree {
			m.largestFree = region.size
		}
	}
}
