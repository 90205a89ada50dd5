package x

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyWithTs_RoundTrip(t *testing.T) {
	k := KeyWithTs([]byte("user"), 42)
	assert.Equal(t, uint64(42), ParseTs(k))
	assert.Equal(t, []byte("user"), ParseUserKey(k))
}

func TestKeysCompare(t *testing.T) {
	a1 := KeyWithTs([]byte("a"), 1)
	a2 := KeyWithTs([]byte("a"), 2)
	b1 := KeyWithTs([]byte("b"), 1)
	ab := KeyWithTs([]byte("ab"), 9)

	// newer versions of the same user key first
	assert.Negative(t, KeysCompare(a2, a1))
	assert.Positive(t, KeysCompare(a1, a2))
	assert.Zero(t, KeysCompare(a1, KeyWithTs([]byte("a"), 1)))

	assert.Negative(t, KeysCompare(a1, b1))
	assert.Negative(t, KeysCompare(a1, ab))
	assert.Negative(t, KeysCompare(ab, b1))

	assert.True(t, SameUserKey(a1, a2))
	assert.False(t, SameUserKey(a1, ab))
}

func TestKeysCompare_ShortKeyPanics(t *testing.T) {
	assert.Panics(t, func() { KeysCompare([]byte("short"), KeyWithTs(nil, 1)) })
}

func TestBytewiseCompare(t *testing.T) {
	assert.Negative(t, BytewiseCompare([]byte("a"), []byte("b")))
	assert.Negative(t, BytewiseCompare([]byte("a"), []byte("ab")))
	assert.Zero(t, BytewiseCompare(nil, []byte{}))
}
