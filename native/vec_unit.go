package native

import (
	"encoding/binary"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	vecUnitHeaderSize    = 24
	vecUnitElementSize   = 8
	vecUnitFirstCapacity = 4
)

// vecUnitHeader is the layout of a VecUnit object in heap memory: the address of the element buffer
// followed by the length and capacity, all little endian. The buffer holds capacity element addresses,
// and the vector owns every Unit object in its first length slots.
type vecUnitHeader struct {
	data     Address
	length   uint64
	capacity uint64
}

func readVecUnitHeader(alloc *allocation) vecUnitHeader {
	payload := alloc.bytes()
	return vecUnitHeader{
		data:     Address(binary.LittleEndian.Uint64(payload[0:8])),
		length:   binary.LittleEndian.Uint64(payload[8:16]),
		capacity: binary.LittleEndian.Uint64(payload[16:24]),
	}
}

func writeVecUnitHeader(alloc *allocation, header vecUnitHeader) {
	payload := alloc.bytes()
	binary.LittleEndian.PutUint64(payload[0:8], uint64(header.data))
	binary.LittleEndian.PutUint64(payload[8:16], header.length)
	binary.LittleEndian.PutUint64(payload[16:24], header.capacity)
}

func (h *Heap) vecUnitElements(header vecUnitHeader) []Address {
	if header.length == 0 {
		return nil
	}

	buffer := h.lookup(header.data, KindVecUnitBuffer)
	payload := buffer.bytes()

	elements := make([]Address, header.length)
	for i := range elements {
		elements[i] = Address(binary.LittleEndian.Uint64(payload[i*vecUnitElementSize:]))
	}

	return elements
}

func (h *Heap) setVecUnitElement(buffer *allocation, index uint64, element Address) {
	binary.LittleEndian.PutUint64(buffer.bytes()[index*vecUnitElementSize:], uint64(element))
}

// freeVecUnit releases the vector along with its buffer and every element it owns
func (h *Heap) freeVecUnit(vec *allocation) {
	header := readVecUnitHeader(vec)

	for _, element := range h.vecUnitElements(header) {
		h.free(h.lookup(element, KindUnit))
	}

	if header.data != Null {
		h.free(h.lookup(header.data, KindVecUnitBuffer))
	}

	h.free(vec)
}

func (h *Heap) cloneVecUnit(src *allocation) (*allocation, error) {
	srcHeader := readVecUnitHeader(src)
	elements := h.vecUnitElements(srcHeader)

	vec, err := h.alloc(KindVecUnit, vecUnitHeaderSize)
	if err != nil {
		return nil, err
	}

	if len(elements) == 0 {
		return vec, nil
	}

	buffer, err := h.alloc(KindVecUnitBuffer, len(elements)*vecUnitElementSize)
	if err != nil {
		h.free(vec)
		return nil, err
	}

	buffer.owner = vec

	// The header always describes the elements copied so far, so a partial copy can be released
	// with freeVecUnit
	header := vecUnitHeader{data: buffer.address, capacity: uint64(len(elements))}
	writeVecUnitHeader(vec, header)

	for _, element := range elements {
		elementCopy, err := h.cloneUnit(h.lookup(element, KindUnit))
		if err != nil {
			h.freeVecUnit(vec)
			return nil, errors.Wrapf(err, "failed to copy element %d of the VecUnit at %s", header.length, src.address)
		}

		elementCopy.owner = vec
		h.setVecUnitElement(buffer, header.length, elementCopy.address)
		header.length++
		writeVecUnitHeader(vec, header)
	}

	return vec, nil
}

func (h *Heap) growVecUnit(vec *allocation, header vecUnitHeader) (vecUnitHeader, error) {
	newCapacity := uint64(vecUnitFirstCapacity)
	if header.capacity > 0 {
		newCapacity = header.capacity * 2
	}

	buffer, err := h.alloc(KindVecUnitBuffer, int(newCapacity)*vecUnitElementSize)
	if err != nil {
		return header, err
	}

	if header.data != Null {
		oldBuffer := h.lookup(header.data, KindVecUnitBuffer)
		copy(buffer.bytes(), oldBuffer.bytes()[:header.length*vecUnitElementSize])
		h.free(oldBuffer)
	}

	buffer.owner = vec
	header.data = buffer.address
	header.capacity = newCapacity
	writeVecUnitHeader(vec, header)

	return header, nil
}

// NewVecUnit creates an empty VecUnit object and returns its address, or Null if the heap cannot hold
// it
func (h *Heap) NewVecUnit() Address {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	vec, err := h.alloc(KindVecUnit, vecUnitHeaderSize)
	if err != nil {
		h.logCreateFailure("NewVecUnit", err)
		return Null
	}

	return vec.address
}

// DeleteVecUnit frees a VecUnit object and every Unit it holds. The address must not be used
// afterward.
func (h *Heap) DeleteVecUnit(vec Address) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.freeVecUnit(h.lookup(vec, KindVecUnit))
}

// VecUnitClone deep copies a VecUnit object, including its elements, and returns the address of the
// copy. If the heap cannot hold the copy, nothing is leaked and Null is returned.
func (h *Heap) VecUnitClone(vec Address) Address {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clone, err := h.cloneVecUnit(h.lookup(vec, KindVecUnit))
	if err != nil {
		h.logCreateFailure("VecUnitClone", err)
		return Null
	}

	return clone.address
}

func (h *Heap) VecUnitToString(vec Address) string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	elements := h.vecUnitElements(readVecUnitHeader(h.lookup(vec, KindVecUnit)))

	var sb strings.Builder
	sb.WriteString("[")
	for i, element := range elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(h.unitData(h.lookup(element, KindUnit)).String())
	}
	sb.WriteString("]")

	return sb.String()
}

func (h *Heap) VecUnitSize(vec Address) uint64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return readVecUnitHeader(h.lookup(vec, KindVecUnit)).length
}

// VecUnitGet returns the address of a new copy of the element at index. The caller owns the copy.
// Null is returned if the index is out of range or the heap cannot hold the copy.
func (h *Heap) VecUnitGet(vec Address, index uint64) Address {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	header := readVecUnitHeader(h.lookup(vec, KindVecUnit))
	if index >= header.length {
		return Null
	}

	element := h.vecUnitElements(header)[index]
	elementCopy, err := h.cloneUnit(h.lookup(element, KindUnit))
	if err != nil {
		h.logCreateFailure("VecUnitGet", err)
		return Null
	}

	return elementCopy.address
}

// VecUnitPush appends a copy of a Unit object to the end of a VecUnit. The caller keeps ownership of
// the Unit it passed in.
func (h *Heap) VecUnitPush(vec Address, unit Address) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	vecAlloc := h.lookup(vec, KindVecUnit)
	unitAlloc := h.lookup(unit, KindUnit)

	unitCopy, err := h.cloneUnit(unitAlloc)
	if err != nil {
		return errors.Wrapf(err, "failed to copy the Unit at %s into the VecUnit at %s", unit, vec)
	}

	header := readVecUnitHeader(vecAlloc)
	if header.length == header.capacity {
		header, err = h.growVecUnit(vecAlloc, header)
		if err != nil {
			h.free(unitCopy)
			return errors.Wrapf(err, "failed to grow the VecUnit at %s past %d elements", vec, header.length)
		}
	}

	unitCopy.owner = vecAlloc
	h.setVecUnitElement(h.lookup(header.data, KindVecUnitBuffer), header.length, unitCopy.address)
	header.length++
	writeVecUnitHeader(vecAlloc, header)

	return nil
}
