// Package bloomfilter implements a bloom filter that is filled while it is
// being read. One goroutine adds keys; any number may probe concurrently.
package bloomfilter

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/YzmjY/memkv/x"
)

// Allocator hands out zeroed, pointer-aligned memory that outlives the filter.
type Allocator interface {
	AllocateAligned(n int) []byte
}

type DynamicBloom struct {
	words []uint32
	nBits uint32
	k     uint32
}

// Probes returns the probe count that minimizes false positives for the
// given number of bits per key.
func Probes(bitsPerKey int) int {
	x.AssertTrue(bitsPerKey > 0)

	k := int(float64(bitsPerKey) * 0.69) // ln(2)
	if k > 30 {
		k = 30
	}
	if k < 1 {
		k = 1
	}
	return k
}

// New carves a filter of at least totalBits bits out of alloc.
func New(alloc Allocator, totalBits, probes int) *DynamicBloom {
	x.AssertTrue(totalBits > 0 && probes > 0)

	if totalBits < 64 {
		totalBits = 64
	}
	nWords := (totalBits + 31) / 32
	x.AssertTruef(uint64(nWords)*32 <= math.MaxUint32, "bloom filter of %d bits", totalBits)
	buf := alloc.AllocateAligned(nWords * 4)
	words := unsafe.Slice((*uint32)(unsafe.Pointer(unsafe.SliceData(buf))), nWords)

	return &DynamicBloom{
		words: words,
		nBits: uint32(nWords * 32),
		k:     uint32(probes),
	}
}

// Add records key. Calls to Add must not race with each other.
func (b *DynamicBloom) Add(key []byte) {
	b.AddHash(Hash(key))
}

func (b *DynamicBloom) AddHash(h uint32) {
	delta := h>>17 | h<<15
	for i := uint32(0); i < b.k; i++ {
		bitPos := h % b.nBits
		atomic.OrUint32(&b.words[bitPos/32], 1<<(bitPos%32))
		h += delta
	}
}

// MayContain reports false only if key was never added.
func (b *DynamicBloom) MayContain(key []byte) bool {
	return b.MayContainHash(Hash(key))
}

func (b *DynamicBloom) MayContainHash(h uint32) bool {
	delta := h>>17 | h<<15
	for i := uint32(0); i < b.k; i++ {
		bitPos := h % b.nBits
		if atomic.LoadUint32(&b.words[bitPos/32])&(1<<(bitPos%32)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

// Bits is the size of the bit array.
func (b *DynamicBloom) Bits() int {
	return int(b.nBits)
}

func Hash(b []byte) uint32 {
	const (
		seed = 0xbc9f1d34
		m    = 0xc6a4a793
	)
	h := uint32(seed) ^ uint32(len(b))*m
	for ; len(b) >= 4; b = b[4:] {
		h += uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		h *= m
		h ^= h >> 16
	}
	switch len(b) {
	case 3:
		h += uint32(b[2]) << 16
		fallthrough
	case 2:
		h += uint32(b[1]) << 8
		fallthrough
	case 1:
		h += uint32(b[0])
		h *= m
		h ^= h >> 24
	}

	return h
}
