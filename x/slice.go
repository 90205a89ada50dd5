package x

import "bytes"

// Slice is a view over externally owned bytes: a start and a length.
//
// The holder of a Slice must keep the backing storage alive and unmodified for
// as long as the Slice (or any copy of it) is used. Read methods may be called
// concurrently. RemovePrefix and Clear mutate the view itself, so any party
// sharing a *Slice with a mutator needs external synchronization.
type Slice struct {
	data []byte
}

// NewSlice returns a view over b. The bytes are not copied.
func NewSlice(b []byte) Slice {
	return Slice{data: b}
}

// StringSlice returns a view over the bytes of s.
func StringSlice(s string) Slice {
	return Slice{data: []byte(s)}
}

func (s Slice) Data() []byte { return s.data }
func (s Slice) Size() int    { return len(s.data) }
func (s Slice) Empty() bool  { return len(s.data) == 0 }

// At returns the byte at offset i. i must be in [0, Size()).
func (s Slice) At(i int) byte {
	if i < 0 || i >= len(s.data) {
		Panicf("slice index %d out of range [0,%d)", i, len(s.data))
	}
	return s.data[i]
}

// RemovePrefix drops the first n bytes from the view. n must not exceed Size().
func (s *Slice) RemovePrefix(n int) {
	if n < 0 || n > len(s.data) {
		Panicf("remove prefix %d from slice of size %d", n, len(s.data))
	}
	s.data = s.data[n:]
}

// Clear resets the view to empty.
func (s *Slice) Clear() {
	s.data = nil
}

// StartsWith reports whether other is a prefix of s.
func (s Slice) StartsWith(other Slice) bool {
	return bytes.HasPrefix(s.data, other.data)
}

// Compare orders two views lexicographically; on a common prefix the shorter
// one sorts first.
func (s Slice) Compare(other Slice) int {
	return bytes.Compare(s.data, other.data)
}

// Equal is ordering equivalence, not identity of the backing storage.
func (s Slice) Equal(other Slice) bool {
	return bytes.Equal(s.data, other.data)
}

func (s Slice) String() string {
	return string(s.data)
}
