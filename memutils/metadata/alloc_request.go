package metadata

// AllocationRequest is a type returned from BlockMetadata.CreateAllocationRequest which indicates where and how
// the metadata intends to allocate new memory. The consumer can prepare the memory at Offset, and then commit
// the allocation to the metadata with BlockMetadata.Alloc
type AllocationRequest struct {
	// BlockAllocationHandle identifies the free region the allocation will be carved from. After Alloc
	// succeeds, the same handle identifies the new allocation.
	BlockAllocationHandle BlockAllocationHandle
	// Offset is the aligned offset within the block where the allocation will begin
	Offset int
	// Size is the total size of the allocation, including any debug margin
	Size int
}
