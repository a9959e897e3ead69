package native

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/battlecode/memutils"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

var heapCreateFlagsMapping = make(map[CreateFlags]string)

func (f CreateFlags) Register(str string) {
	heapCreateFlagsMapping[f] = str
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}

		name, ok := heapCreateFlagsMapping[bit]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

const (
	// HeapCreateExternallySynchronized ensures that this heap will not be synchronized internally. The
	// consumer must guarantee it is used from only one goroutine at a time or is synchronized by some other
	// mechanism, but performance may improve because internal mutexes are not used.
	HeapCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	HeapCreateExternallySynchronized.Register("HeapCreateExternallySynchronized")
}

const (
	// DefaultBlockSize is the value that is used as the BlockSize when none is provided via CreateOptions.
	// It is equal to 1MB.
	DefaultBlockSize int = 1024 * 1024
	// MaxBlockSize is the largest block the heap will create, including blocks dedicated to a single
	// oversized object
	MaxBlockSize int = 1 << 30

	objectAlignment uint = 8
)

// CreateOptions contains optional settings when creating a heap
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags
	// BlockSize is the size of each block of address space the heap reserves. It must be a power of two
	// no larger than MaxBlockSize. Objects larger than a block receive a dedicated block of their own.
	BlockSize int
	// HeapSizeLimit is the maximum number of bytes of blocks the heap may reserve at once. Zero means
	// there is no limit. Once the limit is reached, operations that create objects return Null.
	HeapSizeLimit int
	// Strategy selects how objects are placed within blocks. Zero selects
	// metadata.AllocationStrategyMinMemory.
	Strategy metadata.AllocationStrategy

	// Callbacks is an optional set of callbacks that will be executed when objects are created and
	// destroyed
	Callbacks *CallbackOptions
}

// NewHeap creates a new, empty native heap. No blocks are reserved until the first object is created.
//
// logger - The logger that receives diagnostics, including reports of unreleased objects. If nil,
// slog.Default() is used.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewHeap(logger *slog.Logger, options CreateOptions) (*Heap, error) {
	if logger == nil {
		logger = slog.Default()
	}

	blockSize := options.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}

	err := memutils.CheckPow2(blockSize, "CreateOptions.BlockSize")
	if err != nil {
		return nil, err
	}

	if blockSize > MaxBlockSize {
		return nil, errors.Newf("CreateOptions.BlockSize is %d, but blocks cannot be larger than %d", blockSize, MaxBlockSize)
	}

	if options.HeapSizeLimit < 0 {
		return nil, errors.Newf("CreateOptions.HeapSizeLimit is %d, but it must be zero or positive", options.HeapSizeLimit)
	}

	strategy := options.Strategy
	if strategy == 0 {
		strategy = metadata.AllocationStrategyMinMemory
	}

	if strategy != metadata.AllocationStrategyMinMemory && strategy != metadata.AllocationStrategyMinTime {
		return nil, errors.Newf("CreateOptions.Strategy has unknown value %d", strategy)
	}

	useMutex := options.Flags&HeapCreateExternallySynchronized == 0

	heap := &Heap{
		logger:        logger,
		createFlags:   options.Flags,
		blockSize:     blockSize,
		heapSizeLimit: options.HeapSizeLimit,
		strategy:      strategy,
		allocations:   swiss.NewMap[Address, *allocation](64),
	}
	heap.mutex.UseMutex = useMutex
	heap.callbacks = heapCallbacks{
		Callbacks: options.Callbacks,
		Heap:      heap,
	}

	logger.Debug("Heap::NewHeap",
		slog.String("Flags", options.Flags.String()),
		slog.Int("BlockSize", blockSize),
		slog.Int("HeapSizeLimit", options.HeapSizeLimit),
		slog.String("Strategy", strategy.String()),
	)

	return heap, nil
}
