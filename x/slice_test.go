package x

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice_StartsWith(t *testing.T) {
	s := StringSlice("hello world")
	assert.True(t, s.StartsWith(StringSlice("hello")))
	assert.True(t, s.StartsWith(s))
	assert.True(t, s.StartsWith(Slice{}))
	assert.False(t, StringSlice("hello").StartsWith(s))
	assert.False(t, s.StartsWith(StringSlice("world")))
}

func TestSlice_RemovePrefix(t *testing.T) {
	s := StringSlice("hello world")
	s.RemovePrefix(6)
	assert.True(t, s.Equal(StringSlice("world")))
	assert.Equal(t, 5, s.Size())

	before := s
	s.RemovePrefix(0)
	assert.True(t, s.Equal(before))

	s.RemovePrefix(s.Size())
	assert.True(t, s.Empty())
}

func TestSlice_RemovePrefixBeyondSizePanics(t *testing.T) {
	s := StringSlice("abc")
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrAssertion))
	}()
	s.RemovePrefix(4)
}

func TestSlice_Clear(t *testing.T) {
	s := StringSlice("hello")
	s.Clear()
	assert.True(t, s.Empty())
	assert.True(t, s.Equal(Slice{}))
}

func TestSlice_SharesBacking(t *testing.T) {
	buf := []byte("hello")
	a := NewSlice(buf)
	b := a
	b.RemovePrefix(1)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "ello", b.String())

	buf[1] = 'E'
	assert.Equal(t, byte('E'), a.At(1))
	assert.Equal(t, byte('E'), b.At(0))
}

func TestSlice_At(t *testing.T) {
	s := StringSlice("abc")
	assert.Equal(t, byte('a'), s.At(0))
	assert.Equal(t, byte('c'), s.At(2))
	assert.Panics(t, func() { s.At(3) })
	assert.Panics(t, func() { s.At(-1) })
}

func TestSlice_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"hello", "hello, world", -1},
		{"hello, world", "hello", 1},
		{"abc", "abc", 0},
		{"", "", 0},
		{"", "a", -1},
		{"b", "abc", 1},
		{"\xff", "\x01\x02", 1},
	}
	for _, tt := range tests {
		got := StringSlice(tt.a).Compare(StringSlice(tt.b))
		assert.Equal(t, tt.want, got, "%q vs %q", tt.a, tt.b)
	}
}

func TestSlice_OrderingIsTotal(t *testing.T) {
	r := NewRandom(99)
	gen := func() Slice {
		b := make([]byte, r.Uniform(4))
		for i := range b {
			b[i] = byte('a' + r.Uniform(3))
		}
		return NewSlice(b)
	}

	for i := 0; i < 2000; i++ {
		a, b, c := gen(), gen(), gen()

		ab, ba := a.Compare(b), b.Compare(a)
		require.Equal(t, ab, -ba)
		require.Equal(t, ab == 0, a.Equal(b))

		if a.Compare(b) <= 0 && b.Compare(c) <= 0 {
			require.LessOrEqual(t, a.Compare(c), 0, "%q %q %q", a, b, c)
		}
	}
}
