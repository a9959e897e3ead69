package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// OutOfHeapError is returned when an allocation cannot be placed in any existing block and the heap
// is not permitted to create another one
var OutOfHeapError error = errors.New("native heap is out of memory")
