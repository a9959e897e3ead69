package bc

import (
	"sync"

	"github.com/vkngwrapper/battlecode/native"
)

// handle is the native address a wrapper refers to, along with whether the wrapper is responsible
// for freeing it
type handle struct {
	lib        Bindings
	mutex      sync.Mutex
	ptr        native.Address
	ownsMemory bool
}

// release frees the native object with destroy if this handle owns it, then forgets the address.
// Only the first call has any effect.
func (h *handle) release(destroy func(native.Address)) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.ptr != native.Null {
		if h.ownsMemory {
			h.ownsMemory = false
			destroy(h.ptr)
		}
		h.ptr = native.Null
	}
}

// Valid is true until the wrapper is deleted. A wrapper around an object the native side failed to
// create is never valid.
func (h *handle) Valid() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.ptr != native.Null
}

// OwnsMemory is true if deleting this wrapper will free the native object
func (h *handle) OwnsMemory() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.ownsMemory
}

func unitAddress(unit *Unit) native.Address {
	if unit == nil {
		return native.Null
	}
	return unit.ptr
}
