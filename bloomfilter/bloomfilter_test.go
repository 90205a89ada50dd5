package bloomfilter

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type heapAllocator struct{ requested int }

func (h *heapAllocator) AllocateAligned(n int) []byte {
	h.requested += n
	return make([]byte, n)
}

func key(i int) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(i))
	return buf[:]
}

func TestHash(t *testing.T) {
	assert.Equal(t, uint32(0xbc9f1d34), Hash(nil))
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}

func TestProbes(t *testing.T) {
	assert.Equal(t, 1, Probes(1))
	assert.Equal(t, 6, Probes(10))
	assert.Equal(t, 30, Probes(100))
	assert.Panics(t, func() { Probes(0) })
}

func TestDynamicBloom_TooManyBits(t *testing.T) {
	alloc := &heapAllocator{}
	assert.Panics(t, func() { New(alloc, 1<<32, 6) })
	assert.Zero(t, alloc.requested)
}

func TestDynamicBloom_Empty(t *testing.T) {
	alloc := &heapAllocator{}
	f := New(alloc, 10, 6)
	assert.Equal(t, 64, f.Bits())
	assert.Equal(t, 8, alloc.requested)
	assert.False(t, f.MayContain([]byte("hello")))
	assert.False(t, f.MayContain([]byte("world")))
}

func TestDynamicBloom_Small(t *testing.T) {
	f := New(&heapAllocator{}, 1024, 6)
	f.Add([]byte("hello"))
	f.Add([]byte("world"))
	assert.True(t, f.MayContain([]byte("hello")))
	assert.True(t, f.MayContain([]byte("world")))
	assert.False(t, f.MayContain([]byte("x")))
	assert.False(t, f.MayContain([]byte("foo")))
}

func TestDynamicBloom_VaryingLengths(t *testing.T) {
	mediocre, good := 0, 0
	for n := 1; n <= 10000; n = nextLength(n) {
		f := New(&heapAllocator{}, n*10, Probes(10))
		for i := 0; i < n; i++ {
			f.Add(key(i))
		}
		for i := 0; i < n; i++ {
			require.True(t, f.MayContain(key(i)), "length %d; key %d", n, i)
		}

		hits := 0
		for i := 0; i < 10000; i++ {
			if f.MayContain(key(i + 1000000000)) {
				hits++
			}
		}
		rate := float64(hits) / 10000
		require.LessOrEqual(t, rate, 0.02, "false positive rate for %d keys", n)
		if rate > 0.0125 {
			mediocre++
		} else {
			good++
		}
	}
	assert.LessOrEqual(t, mediocre, good/5)
}

func TestDynamicBloom_ConcurrentProbes(t *testing.T) {
	const n = 20000
	f := New(&heapAllocator{}, n*10, Probes(10))

	var added atomic.Int64
	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < n; i++ {
			f.Add(key(i))
			added.Store(int64(i + 1))
		}
		return nil
	})
	for r := 0; r < 4; r++ {
		g.Go(func() error {
			for added.Load() < n {
				upto := int(added.Load())
				for i := 0; i < upto; i += 97 {
					if !f.MayContain(key(i)) {
						t.Errorf("key %d added but not found", i)
						return nil
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func nextLength(n int) int {
	switch {
	case n < 10:
		return n + 1
	case n < 100:
		return n + 10
	case n < 1000:
		return n + 100
	}
	return n + 1000
}
