// Package skiplist is the sorted in-memory index behind a write buffer: a
// single-writer, lock-free-reader skiplist whose nodes are carved from a
// bump-pointer Arena and referenced by Ref handles instead of Go pointers.
package skiplist
