package bc

import (
	"runtime"

	"github.com/vkngwrapper/battlecode/native"
)

// Unit is a single unit record that lives in native memory. It follows the same ownership rules as
// VecUnit.
type Unit struct {
	handle
}

// NewUnit stores data in a new native unit and returns an owning wrapper around it
func NewUnit(lib Bindings, data native.UnitData) *Unit {
	return newUnit(lib, lib.NewUnit(data), true)
}

func newUnit(lib Bindings, ptr native.Address, ownsMemory bool) *Unit {
	unit := &Unit{
		handle: handle{
			lib:        lib,
			ptr:        ptr,
			ownsMemory: ownsMemory && ptr != native.Null,
		},
	}

	if unit.ownsMemory {
		runtime.SetFinalizer(unit, (*Unit).Delete)
	}

	return unit
}

func (u *Unit) Delete() {
	u.release(u.lib.DeleteUnit)
	runtime.SetFinalizer(u, nil)
}

func (u *Unit) Close() error {
	u.Delete()
	return nil
}

func (u *Unit) String() string {
	defer runtime.KeepAlive(u)
	return u.lib.UnitToString(u.ptr)
}

func (u *Unit) Clone() (*Unit, bool) {
	defer runtime.KeepAlive(u)

	ptr := u.lib.UnitClone(u.ptr)
	if ptr == native.Null {
		return nil, false
	}

	return newUnit(u.lib, ptr, true), true
}

// Data returns a copy of the whole native record
func (u *Unit) Data() native.UnitData {
	defer runtime.KeepAlive(u)
	return u.lib.UnitData(u.ptr)
}

func (u *Unit) ID() uint32 {
	return u.Data().ID
}

func (u *Unit) Team() native.Team {
	return u.Data().Team
}

func (u *Unit) Type() native.UnitType {
	return u.Data().Type
}

func (u *Unit) Health() uint32 {
	return u.Data().Health
}

func (u *Unit) MaxHealth() uint32 {
	return u.Data().MaxHealth
}

func (u *Unit) Location() native.Location {
	return u.Data().Location
}
