package x

// Iterator walks an ordered key space in one direction.
type Iterator interface {
	Next()
	Valid() bool
	Rewind()
	Seek(key []byte)
	Key() []byte
	Close()
}
