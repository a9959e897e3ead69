package metadata

// BlockAllocationHandle identifies a single region, free or allocated, within a BlockMetadata
type BlockAllocationHandle uint64

// Suballocation describes a region of a block as reported to VisitAllRegions callbacks
type Suballocation struct {
	Offset   int
	Size     int
	UserData any
	Free     bool
}
