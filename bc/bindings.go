package bc

import "github.com/vkngwrapper/battlecode/native"

//go:generate mockgen -source bindings.go -destination mocks/bindings.go -package mock_bc

// Bindings is the set of native operations the wrappers in this package delegate to. Every address
// passed in must have been returned by the same Bindings and not yet deleted; anything else is a
// contract violation that the native side is free to panic on. Operations returning an Address
// return native.Null when they have nothing to hand back.
type Bindings interface {
	NewVecUnit() native.Address
	DeleteVecUnit(vec native.Address)
	VecUnitClone(vec native.Address) native.Address
	VecUnitToString(vec native.Address) string
	VecUnitSize(vec native.Address) uint64
	VecUnitGet(vec native.Address, index uint64) native.Address
	VecUnitPush(vec native.Address, unit native.Address) error

	NewUnit(data native.UnitData) native.Address
	DeleteUnit(unit native.Address)
	UnitClone(unit native.Address) native.Address
	UnitToString(unit native.Address) string
	UnitData(unit native.Address) native.UnitData
}

var _ Bindings = &native.Heap{}
