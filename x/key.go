package x

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Comparator orders two keys: negative if lhs < rhs, zero if equal, positive otherwise.
type Comparator func(lhs, rhs []byte) int

// BytewiseCompare is the default key order, identical to Slice.Compare.
func BytewiseCompare(lhs, rhs []byte) int {
	return NewSlice(lhs).Compare(NewSlice(rhs))
}

// KeyWithTs appends a version to a user key. The version is stored as
// MaxUint64-ts so that, for one user key, newer versions sort first.
// Deletions are recorded the same way, as an ordinary key.
func KeyWithTs(key []byte, ts uint64) []byte {
	out := make([]byte, len(key)+8)
	copy(out, key)
	binary.BigEndian.PutUint64(out[len(key):], math.MaxUint64-ts)
	return out
}

func ParseTs(key []byte) uint64 {
	AssertTrue(len(key) >= 8)
	return math.MaxUint64 - binary.BigEndian.Uint64(key[len(key)-8:])
}

func ParseUserKey(key []byte) []byte {
	AssertTrue(len(key) >= 8)
	return key[:len(key)-8]
}

// KeysCompare orders versioned keys built by KeyWithTs: by user key, then by
// descending timestamp.
func KeysCompare(lhs, rhs []byte) int {
	l := len(lhs)
	r := len(rhs)
	AssertTrue(l >= 8 && r >= 8)
	if cmp := bytes.Compare(lhs[:l-8], rhs[:r-8]); cmp != 0 {
		return cmp
	}
	return bytes.Compare(lhs[l-8:], rhs[r-8:])
}

func SameUserKey(lhs, rhs []byte) bool {
	return bytes.Equal(ParseUserKey(lhs), ParseUserKey(rhs))
}
