package bc

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	mock_bc "github.com/vkngwrapper/battlecode/bc/mocks"
	"github.com/vkngwrapper/battlecode/native"
	"go.uber.org/mock/gomock"
)

const (
	vecAddress   native.Address = 0x100000000
	cloneAddress native.Address = 0x100000040
	unitAddr     native.Address = 0x200000000
)

func TestVecUnitDelegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().VecUnitSize(vecAddress).Return(uint64(3))
	lib.EXPECT().VecUnitToString(vecAddress).Return("[a, b, c]")
	lib.EXPECT().DeleteVecUnit(vecAddress)

	vec := NewVecUnit(lib)
	require.Equal(t, uint64(3), vec.Size())
	require.Equal(t, "[a, b, c]", vec.String())
	vec.Delete()
	vec.Delete()
}

func TestVecUnitNullResultsAreAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().VecUnitClone(vecAddress).Return(native.Null)
	lib.EXPECT().VecUnitGet(vecAddress, uint64(12)).Return(native.Null)
	lib.EXPECT().DeleteVecUnit(vecAddress)

	vec := NewVecUnit(lib)

	clone, ok := vec.Clone()
	require.False(t, ok)
	require.Nil(t, clone)

	unit, ok := vec.Get(12)
	require.False(t, ok)
	require.Nil(t, unit)

	vec.Delete()
}

func TestVecUnitWrapsReturnedAddresses(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().VecUnitClone(vecAddress).Return(cloneAddress)
	lib.EXPECT().VecUnitGet(vecAddress, uint64(0)).Return(unitAddr)

	vec := NewVecUnit(lib)

	clone, ok := vec.Clone()
	require.True(t, ok)
	require.True(t, clone.OwnsMemory())
	require.Equal(t, cloneAddress, clone.ptr)

	unit, ok := vec.Get(0)
	require.True(t, ok)
	require.True(t, unit.OwnsMemory())
	require.Equal(t, unitAddr, unit.ptr)

	lib.EXPECT().DeleteUnit(unitAddr)
	lib.EXPECT().DeleteVecUnit(cloneAddress)
	lib.EXPECT().DeleteVecUnit(vecAddress)

	unit.Delete()
	clone.Delete()
	vec.Delete()
}

func TestVecUnitConcurrentDeleteFreesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().DeleteVecUnit(vecAddress).Times(1)

	vec := NewVecUnit(lib)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec.Delete()
		}()
	}
	wg.Wait()

	require.False(t, vec.Valid())
	require.False(t, vec.OwnsMemory())
}

func TestVecUnitNonOwningNeverFrees(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	view := newVecUnit(lib, vecAddress, false)
	require.True(t, view.Valid())

	view.Delete()
	require.False(t, view.Valid())
}

func TestVecUnitFailedCreateIsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	lib.EXPECT().NewVecUnit().Return(native.Null)

	vec := NewVecUnit(lib)
	require.False(t, vec.Valid())
	require.False(t, vec.OwnsMemory())
	vec.Delete()

	lib.EXPECT().NewUnit(gomock.Any()).Return(native.Null)

	unit := NewUnit(lib, native.UnitData{ID: 1})
	require.False(t, unit.Valid())
	require.False(t, unit.OwnsMemory())
	unit.Delete()
}

// collectGarbage runs the collector and gives queued finalizers a chance to run until done reports
// true or the attempts run out
func collectGarbage(done func() bool) {
	for i := 0; i < 20 && !done(); i++ {
		runtime.GC()
		time.Sleep(time.Millisecond)
	}
}

func TestVecUnitNotFinalizedDuringNativeCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	var freed, freedDuringCall atomic.Bool
	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().DeleteVecUnit(vecAddress).Do(func(native.Address) { freed.Store(true) }).Times(1)
	lib.EXPECT().VecUnitSize(vecAddress).DoAndReturn(func(native.Address) uint64 {
		collectGarbage(freed.Load)
		freedDuringCall.Store(freed.Load())
		return 3
	})

	require.Equal(t, uint64(3), NewVecUnit(lib).Size())
	require.False(t, freedDuringCall.Load())

	// Once the call has returned the wrapper is unreachable and the finalizer releases it
	require.Eventually(t, func() bool {
		runtime.GC()
		return freed.Load()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestUnitNotFinalizedDuringNativeCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	var freed, freedDuringCall atomic.Bool
	lib.EXPECT().NewUnit(gomock.Any()).Return(unitAddr)
	lib.EXPECT().DeleteUnit(unitAddr).Do(func(native.Address) { freed.Store(true) }).Times(1)
	lib.EXPECT().UnitData(unitAddr).DoAndReturn(func(native.Address) native.UnitData {
		collectGarbage(freed.Load)
		freedDuringCall.Store(freed.Load())
		return native.UnitData{ID: 9}
	})

	require.Equal(t, uint32(9), NewUnit(lib, native.UnitData{ID: 9}).ID())
	require.False(t, freedDuringCall.Load())

	require.Eventually(t, func() bool {
		runtime.GC()
		return freed.Load()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestVecUnitPushPassesAddresses(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	data := native.UnitData{ID: 4}
	lib.EXPECT().NewVecUnit().Return(vecAddress)
	lib.EXPECT().NewUnit(data).Return(unitAddr)
	lib.EXPECT().VecUnitPush(vecAddress, unitAddr).Return(nil)
	lib.EXPECT().VecUnitPush(vecAddress, native.Null).Return(errors.New("out of heap"))

	vec := NewVecUnit(lib)
	unit := NewUnit(lib, data)

	require.NoError(t, vec.Push(unit))
	require.EqualError(t, vec.Push(nil), "out of heap")

	lib.EXPECT().DeleteUnit(unitAddr)
	lib.EXPECT().DeleteVecUnit(vecAddress)
	unit.Delete()
	vec.Delete()
}

func TestUnitDelegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mock_bc.NewMockBindings(ctrl)

	data := native.UnitData{
		ID:        9,
		Team:      native.TeamRed,
		Type:      native.UnitTypeFactory,
		Health:    10,
		MaxHealth: 300,
		Location:  native.Location{Kind: native.LocationInSpace},
	}

	lib.EXPECT().NewUnit(data).Return(unitAddr)
	lib.EXPECT().UnitData(unitAddr).Return(data).Times(6)
	lib.EXPECT().UnitToString(unitAddr).Return("unit")
	lib.EXPECT().UnitClone(unitAddr).Return(native.Null)
	lib.EXPECT().DeleteUnit(unitAddr)

	unit := NewUnit(lib, data)
	require.Equal(t, uint32(9), unit.ID())
	require.Equal(t, native.TeamRed, unit.Team())
	require.Equal(t, native.UnitTypeFactory, unit.Type())
	require.Equal(t, uint32(10), unit.Health())
	require.Equal(t, uint32(300), unit.MaxHealth())
	require.Equal(t, native.Location{Kind: native.LocationInSpace}, unit.Location())
	require.Equal(t, "unit", unit.String())

	clone, ok := unit.Clone()
	require.False(t, ok)
	require.Nil(t, clone)

	require.NoError(t, unit.Close())
	require.NoError(t, unit.Close())
}
