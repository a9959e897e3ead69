package native

// AllocateCallback is called after the heap hands out a new object
type AllocateCallback func(
	heap *Heap,
	kind ObjectKind,
	address Address,
	size int,
	userData interface{},
)

// FreeCallback is called before the heap releases an object
type FreeCallback func(
	heap *Heap,
	kind ObjectKind,
	address Address,
	size int,
	userData interface{},
)

// CallbackOptions is an optional set of callbacks that observe the heap's object lifetimes. The callbacks
// run while the heap is locked and must not call back into the heap.
type CallbackOptions struct {
	Allocate AllocateCallback
	Free     FreeCallback
	UserData interface{}
}

type heapCallbacks struct {
	Callbacks *CallbackOptions
	Heap      *Heap
}

func (c *heapCallbacks) Allocate(
	kind ObjectKind,
	address Address,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Heap, kind, address, size, c.Callbacks.UserData)
	}
}

func (c *heapCallbacks) Free(
	kind ObjectKind,
	address Address,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Heap, kind, address, size, c.Callbacks.UserData)
	}
}
