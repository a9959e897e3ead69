package bc

import (
	"runtime"

	"github.com/vkngwrapper/battlecode/native"
)

// VecUnit is a sequence of units that lives in native memory. The wrapper holds no state of its own
// beyond the native address: every method delegates to the Bindings it was created with, and keeps
// the wrapper reachable until the native call returns so a finalizer cannot free the object mid-call.
//
// A VecUnit that owns its native object frees it on Delete, or when the wrapper is garbage collected
// if Delete was never called. Calling any method other than Delete, Close, Valid or OwnsMemory after
// Delete is not supported: the native side receives the null address and panics.
type VecUnit struct {
	handle
}

// NewVecUnit creates an empty native sequence and returns an owning wrapper around it
func NewVecUnit(lib Bindings) *VecUnit {
	return newVecUnit(lib, lib.NewVecUnit(), true)
}

func newVecUnit(lib Bindings, ptr native.Address, ownsMemory bool) *VecUnit {
	vec := &VecUnit{
		handle: handle{
			lib:        lib,
			ptr:        ptr,
			ownsMemory: ownsMemory && ptr != native.Null,
		},
	}

	if vec.ownsMemory {
		runtime.SetFinalizer(vec, (*VecUnit).Delete)
	}

	return vec
}

// Delete frees the native sequence if this wrapper owns it. It is safe to call more than once and
// from multiple goroutines.
func (v *VecUnit) Delete() {
	v.release(v.lib.DeleteVecUnit)
	runtime.SetFinalizer(v, nil)
}

// Close deletes the sequence. It always returns nil.
func (v *VecUnit) Close() error {
	v.Delete()
	return nil
}

func (v *VecUnit) String() string {
	defer runtime.KeepAlive(v)
	return v.lib.VecUnitToString(v.ptr)
}

// Clone deep copies the sequence. The bool is false if the native side could not produce a copy.
func (v *VecUnit) Clone() (*VecUnit, bool) {
	defer runtime.KeepAlive(v)

	ptr := v.lib.VecUnitClone(v.ptr)
	if ptr == native.Null {
		return nil, false
	}

	return newVecUnit(v.lib, ptr, true), true
}

func (v *VecUnit) Size() uint64 {
	defer runtime.KeepAlive(v)
	return v.lib.VecUnitSize(v.ptr)
}

// Get returns a new owning wrapper around a copy of the element at index. The bool is false if the
// index is out of range or the native side could not produce a copy.
func (v *VecUnit) Get(index uint64) (*Unit, bool) {
	defer runtime.KeepAlive(v)

	ptr := v.lib.VecUnitGet(v.ptr, index)
	if ptr == native.Null {
		return nil, false
	}

	return newUnit(v.lib, ptr, true), true
}

// Push appends a copy of unit to the end of the sequence. The caller still owns unit and must delete
// it. A nil unit is passed to the native side as the null address.
func (v *VecUnit) Push(unit *Unit) error {
	defer runtime.KeepAlive(unit)
	defer runtime.KeepAlive(v)

	return v.lib.VecUnitPush(v.ptr, unitAddress(unit))
}
