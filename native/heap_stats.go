package native

import (
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/battlecode/memutils"
)

// CalculateStatistics accumulates statistics for every block of the heap into stats. stats is
// cleared first.
func (h *Heap) CalculateStatistics(stats *memutils.DetailedStatistics) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats.Clear()
	for _, block := range h.blocks {
		block.metadata.AddDetailedStatistics(stats)
	}
}

// BuildStatsString produces a json document describing the heap's current usage. When detailedMap is
// true, every block is listed with all of its suballocations.
func (h *Heap) BuildStatsString(detailedMap bool) string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	for _, block := range h.blocks {
		block.metadata.AddDetailedStatistics(&stats)
	}

	writer := jwriter.NewWriter()
	objState := writer.Object()

	totalObj := objState.Name("Total").Object()
	stats.PrintJson(&totalObj)
	totalObj.End()

	objectsObj := objState.Name("Objects").Object()
	for kind := ObjectKind(0); kind < objectKindCount; kind++ {
		objectsObj.Name(kind.String()).Int(h.liveObjects[kind])
	}
	objectsObj.End()

	if detailedMap {
		blocksObj := objState.Name("Blocks").Object()
		for _, block := range h.blocks {
			blockObj := blocksObj.Name(strconv.Itoa(block.id)).Object()
			block.PrintDetailedMap(&blockObj)
			blockObj.End()
		}
		blocksObj.End()
	}

	objState.End()

	return string(writer.Bytes())
}
