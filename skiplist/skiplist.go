package skiplist

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/YzmjY/memkv/bloomfilter"
	"github.com/YzmjY/memkv/x"
)

const (
	maxHeight = 12
	branching = 4

	defaultSeed = 0xdeadbeef

	// node layout in the arena, 8-aligned:
	//   height uint32 | key length uint32 | tower [height]uint64 | key bytes
	nodeHeaderSize = 8
	towerSlotSize  = 8
)

// node is a view of a node's arena bytes. Header and key are written once
// before the node is linked in; tower slots are only touched atomically.
type node []byte

func (nd node) height() int {
	return int(binary.NativeEndian.Uint32(nd[0:4]))
}

func (nd node) keySize() int {
	return int(binary.NativeEndian.Uint32(nd[4:8]))
}

func (nd node) key() []byte {
	st := nodeHeaderSize + nd.height()*towerSlotSize
	end := st + nd.keySize()
	return nd[st:end:end]
}

func (nd node) slot(h int) *atomic.Uint64 {
	return (*atomic.Uint64)(unsafe.Pointer(&nd[nodeHeaderSize+h*towerSlotSize]))
}

func (nd node) getNext(h int) Ref {
	return Ref(nd.slot(h).Load())
}

func (nd node) setNext(h int, r Ref) {
	nd.slot(h).Store(uint64(r))
}

// Skiplist is an ordered multiset of byte keys, backed by an Arena.
//
// Concurrency: one writer, many readers. Insert must be serialized by the
// caller; Contains, Len, Height, MemoryUsage and iterators need no locking and
// may run alongside the writer. A node becomes reachable only through an
// atomic store into its predecessor's tower, issued after every field of the
// node has been written, so a reader that can see a node sees all of it.
// Likewise the list height is raised only after the head slots of the new
// levels are known to be nil.
//
// Keys are never removed. Inserting a key that is already present adds
// another copy; copies are adjacent in iteration order.
type Skiplist struct {
	height atomic.Int32
	count  atomic.Int64

	head     Ref
	headNode node

	arena  *Arena
	cmp    x.Comparator
	rnd    *x.Random
	bloom  *bloomfilter.DynamicBloom
	logger *x.Logger
}

type options struct {
	cmp        x.Comparator
	rnd        *x.Random
	bloomBits  int
	bitsPerKey int
	logger     *x.Logger
}

// Option configures a Skiplist.
type Option func(*options)

// WithComparator sets the key order. Defaults to x.BytewiseCompare.
func WithComparator(cmp x.Comparator) Option {
	return func(o *options) {
		if cmp != nil {
			o.cmp = cmp
		}
	}
}

// WithSeed seeds the generator that picks node heights.
func WithSeed(seed uint32) Option {
	return func(o *options) {
		o.rnd = x.NewRandom(seed)
	}
}

// WithRandom hands the skiplist its own height generator. The skiplist takes
// ownership; the generator must not be used elsewhere afterwards.
func WithRandom(rnd *x.Random) Option {
	return func(o *options) {
		if rnd != nil {
			o.rnd = rnd
		}
	}
}

// WithBloom puts a whole-key bloom filter of totalBits bits, sized for
// bitsPerKey, in front of Contains. The filter is carved from the arena.
// It is only correct when comparator equality implies byte equality.
func WithBloom(totalBits, bitsPerKey int) Option {
	return func(o *options) {
		o.bloomBits = totalBits
		o.bitsPerKey = bitsPerKey
	}
}

func WithLogger(l *x.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewSkiplist creates an empty skiplist whose nodes live in arena. The
// skiplist becomes the arena's only writer.
func NewSkiplist(arena *Arena, opts ...Option) *Skiplist {
	o := options{
		cmp:    x.BytewiseCompare,
		logger: x.NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = x.NewRandom(defaultSeed)
	}

	s := &Skiplist{
		arena:  arena,
		cmp:    o.cmp,
		rnd:    o.rnd,
		logger: o.logger,
	}

	// The head is never compared against: it sorts before every key.
	s.head, s.headNode = s.newNode(nil, maxHeight)
	for i := 0; i < maxHeight; i++ {
		s.headNode.setNext(i, 0)
	}

	if o.bloomBits > 0 {
		bitsPerKey := o.bitsPerKey
		if bitsPerKey <= 0 {
			bitsPerKey = 10
		}
		s.bloom = bloomfilter.New(arena, o.bloomBits, bloomfilter.Probes(bitsPerKey))
	}

	s.height.Store(1)
	return s
}

func (s *Skiplist) newNode(key []byte, height int) (Ref, node) {
	x.AssertTruef(uint64(len(key)) <= math.MaxUint32, "key of %d bytes", len(key))

	size := nodeHeaderSize + height*towerSlotSize + len(key)
	ref := s.arena.AllocateRef(size)
	nd := node(s.arena.Bytes(ref, size))

	binary.NativeEndian.PutUint32(nd[0:4], uint32(height))
	binary.NativeEndian.PutUint32(nd[4:8], uint32(len(key)))
	copy(nd[nodeHeaderSize+height*towerSlotSize:], key)
	return ref, nd
}

func (s *Skiplist) getNode(r Ref) node {
	if r.IsNil() {
		return nil
	}
	return node(s.arena.resolve(r))
}

func (s *Skiplist) getNext(nd node, h int) (Ref, node) {
	r := nd.getNext(h)
	return r, s.getNode(r)
}

func (s *Skiplist) randomHeight() int {
	h := 1
	for h < maxHeight && s.rnd.OneIn(branching) {
		// 1/4的概率继续增加高度
		h++
	}
	return h
}

// Height is the current maximum node height, at least 1.
func (s *Skiplist) Height() int {
	return int(s.height.Load())
}

// Len counts inserted keys, duplicates included.
func (s *Skiplist) Len() int64 {
	return s.count.Load()
}

func (s *Skiplist) Empty() bool {
	return s.headNode.getNext(0).IsNil()
}

// MemoryUsage reports the backing arena's usage.
func (s *Skiplist) MemoryUsage() int64 {
	return s.arena.MemoryUsage()
}

func (s *Skiplist) Arena() *Arena {
	return s.arena
}

// Insert copies key into the arena and links it in.
// REQUIRES: no concurrent Insert.
func (s *Skiplist) Insert(key []byte) {
	var prev [maxHeight]Ref
	s.findGreaterOrEqual(key, &prev)

	height := s.randomHeight()
	if cur := s.Height(); height > cur {
		for i := cur; i < height; i++ {
			prev[i] = s.head
		}
		// Readers that see the new height before the node is linked find
		// nil in the head's new slots and just move down a level.
		s.height.Store(int32(height))
		s.logger.LogHeightGrowth(cur, height, s.count.Load())
	}

	// Filter first, so a key reachable in the list never fails the filter.
	if s.bloom != nil {
		s.bloom.Add(key)
	}

	ref, nd := s.newNode(key, height)
	for i := 0; i < height; i++ {
		p := s.getNode(prev[i])
		// Fill in the successor before publishing through the predecessor.
		nd.setNext(i, p.getNext(i))
		p.setNext(i, ref)
	}
	s.count.Add(1)
}

// Contains reports whether a key equal to key has been inserted.
func (s *Skiplist) Contains(key []byte) bool {
	if s.bloom != nil && !s.bloom.MayContain(key) {
		return false
	}
	nd := s.getNode(s.findGreaterOrEqual(key, nil))
	return nd != nil && s.cmp(nd.key(), key) == 0
}

// findGreaterOrEqual returns the first node whose key is >= key, or nil.
// If prev is not nil, prev[h] is set to the last node before it on every
// level h below the current height.
func (s *Skiplist) findGreaterOrEqual(key []byte, prev *[maxHeight]Ref) Ref {
	cur, curNode := s.head, s.headNode
	h := s.Height() - 1

	for {
		next, nextNode := s.getNext(curNode, h)
		if nextNode != nil && s.cmp(nextNode.key(), key) < 0 {
			// keep searching in this level
			cur, curNode = next, nextNode
			continue
		}

		if prev != nil {
			prev[h] = cur
		}
		if h == 0 {
			return next
		}
		h--
	}
}

// findLessThan returns the last node whose key is < key (<= key when
// orEqual is set), or nil if there is none.
func (s *Skiplist) findLessThan(key []byte, orEqual bool) Ref {
	cur, curNode := s.head, s.headNode
	h := s.Height() - 1

	for {
		next, nextNode := s.getNext(curNode, h)
		if nextNode != nil {
			cmp := s.cmp(nextNode.key(), key)
			if cmp < 0 || (orEqual && cmp == 0) {
				cur, curNode = next, nextNode
				continue
			}
		}

		if h == 0 {
			if cur == s.head {
				return 0
			}
			return cur
		}
		h--
	}
}

// findPrev returns the node whose level 0 successor is target, or nil if
// target is the first node. The search starts below key and walks the run
// of equal keys at level 0.
func (s *Skiplist) findPrev(target Ref, key []byte) Ref {
	cur := s.findLessThan(key, false)
	curNode := s.headNode
	if !cur.IsNil() {
		curNode = s.getNode(cur)
	}
	for {
		next, nextNode := s.getNext(curNode, 0)
		if next == target || nextNode == nil {
			return cur
		}
		cur, curNode = next, nextNode
	}
}

// findLast returns the last node, or nil if the list is empty.
func (s *Skiplist) findLast() Ref {
	cur, curNode := s.head, s.headNode
	h := s.Height() - 1

	for {
		next, nextNode := s.getNext(curNode, h)
		if nextNode != nil {
			cur, curNode = next, nextNode
			continue
		}

		if h == 0 {
			if cur == s.head {
				return 0
			}
			return cur
		}
		h--
	}
}

// NewIterator returns an unpositioned iterator. It is a live view: entries
// inserted while it is in use may or may not be seen.
func (s *Skiplist) NewIterator() *Iterator {
	return &Iterator{
		skl: s,
	}
}

type Iterator struct {
	skl *Skiplist
	cur Ref
	nd  node
}

func (iter *Iterator) set(r Ref) {
	iter.cur = r
	iter.nd = iter.skl.getNode(r)
}

func (iter *Iterator) Close() {
	iter.cur = 0
	iter.nd = nil
	iter.skl = nil
}

// Valid 当前迭代器是否有效，即cur是一个有效元素
func (iter *Iterator) Valid() bool {
	return iter.nd != nil
}

// Key returns the current key. The bytes belong to the arena and must not be
// modified. REQUIRES: Valid()
func (iter *Iterator) Key() []byte {
	return iter.nd.key()
}

// Next REQUIRES: Valid()
func (iter *Iterator) Next() {
	iter.set(iter.nd.getNext(0))
}

// Prev moves to the entry linked just before the current one. Copies of an
// equal key are visited one by one. REQUIRES: Valid()
func (iter *Iterator) Prev() {
	iter.set(iter.skl.findPrev(iter.cur, iter.nd.key()))
}

// Seek 移动到第一个大于等于key的位置
func (iter *Iterator) Seek(key []byte) {
	iter.set(iter.skl.findGreaterOrEqual(key, nil))
}

// SeekForPrev 移动到最后一个小于等于key的位置
func (iter *Iterator) SeekForPrev(key []byte) {
	iter.set(iter.skl.findLessThan(key, true))
}

// SeekToFirst 移动到第一个元素
func (iter *Iterator) SeekToFirst() {
	iter.set(iter.skl.headNode.getNext(0))
}

// SeekToLast 移动到最后一个元素
func (iter *Iterator) SeekToLast() {
	iter.set(iter.skl.findLast())
}

// UniIterator 单向迭代器，reversed参数表示迭代的方向
type UniIterator struct {
	reversed bool
	iter     *Iterator
}

var _ x.Iterator = &UniIterator{}

func (s *Skiplist) NewUniIterator(reversed bool) *UniIterator {
	return &UniIterator{
		reversed: reversed,
		iter:     s.NewIterator(),
	}
}

func (ui *UniIterator) Next() {
	if ui.reversed {
		ui.iter.Prev()
	} else {
		ui.iter.Next()
	}
}

func (ui *UniIterator) Valid() bool {
	return ui.iter.Valid()
}

func (ui *UniIterator) Rewind() {
	if !ui.reversed {
		ui.iter.SeekToFirst()
	} else {
		ui.iter.SeekToLast()
	}
}

func (ui *UniIterator) Seek(key []byte) {
	if ui.reversed {
		ui.iter.SeekForPrev(key)
	} else {
		ui.iter.Seek(key)
	}
}

func (ui *UniIterator) Key() []byte {
	return ui.iter.Key()
}

func (ui *UniIterator) Close() {
	ui.iter.Close()
}
