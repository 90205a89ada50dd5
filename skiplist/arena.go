package skiplist

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/YzmjY/memkv/x"
)

const (
	// DefaultBlockSize is the size of a standard arena block.
	DefaultBlockSize = 4096

	ptrSize = int(unsafe.Sizeof(uintptr(0)))

	// blockOverhead is charged to the usage counter for every block, on top
	// of the block itself: the slice header the arena keeps for it.
	blockOverhead = int64(unsafe.Sizeof([]byte(nil)))
)

// align is the alignment of AllocateAligned / AllocateRef results.
const align = max(ptrSize, 8)

// Ref is a stable handle to arena memory: (block index + 1) << 32 | offset.
// The zero Ref is nil.
type Ref uint64

func makeRef(block, offset int) Ref {
	return Ref(uint64(block+1)<<32 | uint64(offset))
}

func (r Ref) IsNil() bool { return r == 0 }

func (r Ref) block() int  { return int(r>>32) - 1 }
func (r Ref) offset() int { return int(uint32(r)) }

// ArenaStats describes what an arena has handed out so far.
type ArenaStats struct {
	Blocks          int   // all blocks, dedicated ones included
	DedicatedBlocks int   // blocks holding a single oversized allocation
	BytesRequested  int64 // sum of sizes passed to the allocate calls
	BytesWasted     int64 // alignment slop plus block tails abandoned on refill
	MemoryUsage     int64
}

// Arena is a bump-pointer allocator. Memory is handed out from blocks that
// are never freed or moved; everything goes away with the Arena itself.
//
// Allocation is single-writer: Allocate, AllocateAligned and AllocateRef must
// be serialized by the caller. MemoryUsage, Stats and Bytes may be called from
// any goroutine at any time.
type Arena struct {
	blockSize int

	// bump region, writer only
	cur       int // index of the block being carved, -1 before the first
	allocOff  int
	remaining int

	blocks [][]byte // writer's view
	table  atomic.Pointer[[][]byte]

	usage     atomic.Int64
	requested atomic.Int64
	wasted    atomic.Int64
	dedicated atomic.Int64

	logger *x.Logger
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithBlockSize sets the standard block size. Requests larger than a quarter
// of it get a dedicated block.
func WithBlockSize(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.blockSize = n
		}
	}
}

// WithArenaLogger sets the logger for block allocations.
func WithArenaLogger(l *x.Logger) ArenaOption {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewArena creates an empty arena. No block is allocated until the first request.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{
		blockSize: DefaultBlockSize,
		cur:       -1,
		logger:    x.NoopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	x.AssertTruef(uint64(a.blockSize) < math.MaxUint32, "block size %d does not fit a handle offset", a.blockSize)

	empty := [][]byte{}
	a.table.Store(&empty)
	return a
}

// Allocate returns n fresh bytes. n must be positive.
func (a *Arena) Allocate(n int) []byte {
	block, off := a.allocate(n, false)
	return a.blocks[block][off : off+n : off+n]
}

// AllocateAligned returns n fresh bytes starting at a pointer-aligned address.
func (a *Arena) AllocateAligned(n int) []byte {
	block, off := a.allocate(n, true)
	return a.blocks[block][off : off+n : off+n]
}

// AllocateRef is AllocateAligned returning a handle instead of the bytes.
func (a *Arena) AllocateRef(n int) Ref {
	return makeRef(a.allocate(n, true))
}

// Bytes resolves n bytes at r. Safe for concurrent readers once r has been
// published to them.
func (a *Arena) Bytes(r Ref, n int) []byte {
	b := a.resolve(r)
	return b[:n:n]
}

// resolve returns the block of r from its offset onwards.
func (a *Arena) resolve(r Ref) []byte {
	x.AssertTrue(!r.IsNil())
	blocks := *a.table.Load()
	return blocks[r.block()][r.offset():]
}

// MemoryUsage is the total size of all blocks plus per-block bookkeeping.
func (a *Arena) MemoryUsage() int64 {
	return a.usage.Load()
}

func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Blocks:          len(*a.table.Load()),
		DedicatedBlocks: int(a.dedicated.Load()),
		BytesRequested:  a.requested.Load(),
		BytesWasted:     a.wasted.Load(),
		MemoryUsage:     a.usage.Load(),
	}
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{blocks: %d, dedicated: %d, requested: %d B, wasted: %d B, usage: %d B}",
		s.Blocks, s.DedicatedBlocks, s.BytesRequested, s.BytesWasted, s.MemoryUsage,
	)
}

func (a *Arena) allocate(n int, aligned bool) (int, int) {
	if n <= 0 {
		x.Panicf("arena allocation of %d bytes", n)
	}
	a.requested.Add(int64(n))

	slop := 0
	if aligned {
		// Blocks start word-aligned, so the offset alone decides alignment.
		if mod := a.allocOff & (align - 1); mod != 0 {
			slop = align - mod
		}
	}

	needed := n + slop
	if needed <= a.remaining {
		off := a.allocOff + slop
		a.allocOff += needed
		a.remaining -= needed
		if slop > 0 {
			a.wasted.Add(int64(slop))
		}
		return a.cur, off
	}
	return a.allocateFallback(n)
}

func (a *Arena) allocateFallback(n int) (int, int) {
	if n > a.blockSize/4 {
		// Object is more than a quarter of our block size. Allocate it
		// separately to avoid wasting too much space in leftover bytes.
		a.dedicated.Add(1)
		return a.newBlock(n, true), 0
	}

	// The rest of the current block is abandoned.
	if a.remaining > 0 {
		a.wasted.Add(int64(a.remaining))
	}
	a.cur = a.newBlock(a.blockSize, false)
	a.allocOff = n
	a.remaining = a.blockSize - n
	return a.cur, 0
}

func (a *Arena) newBlock(size int, dedicated bool) int {
	idx := len(a.blocks)
	x.AssertTruef(uint64(idx) < math.MaxUint32-1, "arena exhausted its %d block handles", idx)

	// Back the block with words so that its first byte is 8-aligned.
	words := make([]uint64, (size+7)/8)
	block := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)

	a.blocks = append(a.blocks, block)
	published := a.blocks
	a.table.Store(&published)

	usage := a.usage.Add(int64(size) + blockOverhead)
	a.logger.LogBlockAlloc(size, dedicated, idx+1, usage)
	return idx
}
