package native

import "fmt"

// Address is an opaque location in the native heap. Callers must treat it as a black box: the only
// meaningful comparison is against Null.
type Address uint64

// Null is the absent address. The heap never hands it out.
const Null Address = 0

// blockAddressShift places every block in its own 4GB window of the address space. Block ids start
// at 1, so no live address is ever Null.
const blockAddressShift = 32

func blockBaseAddress(blockID int) Address {
	return Address(blockID) << blockAddressShift
}

func (a Address) String() string {
	return fmt.Sprintf("%#x", uint64(a))
}
