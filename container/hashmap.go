package container

import (
	"iter"
	"math"

	"github.com/plus3/sparsecs/internal/diag"
)

// MaxLoadFactor is the ratio of stored entries to primary slots at which a
// HashMap grows before the next insert.
const MaxLoadFactor = 0.7

// noNext terminates an overflow chain.
const noNext = -1

type record[K comparable, V any] struct {
	next     int
	occupied bool
	key      K
	value    V
}

// HashMap is a hash table with one primary slot per hash bucket. Keys that
// collide on an occupied slot are chained through records kept in an
// overflow BucketArray, linked by index.
type HashMap[K comparable, V any] struct {
	hash     Hasher[K]
	slots    *Array[record[K, V]]
	overflow *BucketArray[record[K, V]]
	free     *Array[int] // vacated overflow records
	count    int
}

// NewHashMap creates a map with capacity primary slots. Non-positive
// capacities use InitialCapacity.
func NewHashMap[K comparable, V any](hash Hasher[K], capacity int) *HashMap[K, V] {
	if hash == nil {
		diag.Failf("hash map requires a hasher")
	}
	if capacity <= 0 {
		capacity = InitialCapacity
	}
	m := &HashMap[K, V]{
		hash:  hash,
		slots: NewArray[record[K, V]](capacity),
		free:  NewArray[int](0),
	}
	m.reset(capacity)
	return m
}

// Len returns the number of stored entries.
func (m *HashMap[K, V]) Len() int {
	return m.count
}

// Cap returns the number of primary slots.
func (m *HashMap[K, V]) Cap() int {
	return m.slots.Cap()
}

// Add stores value under key and returns the address of the stored value.
// It returns false, leaving the map untouched, when key is already present.
func (m *HashMap[K, V]) Add(key K, value V) (*V, bool) {
	if float64(m.count)/float64(m.Cap()) >= MaxLoadFactor {
		m.Resize(max(m.Cap()+1, int(float64(m.Cap())*GoldenRatio)))
	}
	return m.insert(key, value)
}

// Get returns the address of the value stored under key.
func (m *HashMap[K, V]) Get(key K) (*V, bool) {
	head := m.slotFor(key)
	if !head.occupied {
		return nil, false
	}
	if head.key == key {
		return &head.value, true
	}
	for i := head.next; i != noNext; {
		r := m.overflow.Get(i)
		if r.key == key {
			return &r.value, true
		}
		i = r.next
	}
	return nil, false
}

// Remove deletes key from the map. Removing an absent key does nothing.
func (m *HashMap[K, V]) Remove(key K) {
	head := m.slotFor(key)
	if !head.occupied {
		return
	}

	if head.key == key {
		if head.next == noNext {
			*head = record[K, V]{next: noNext}
		} else {
			successor := head.next
			*head = *m.overflow.Get(successor)
			m.release(successor)
		}
		m.count--
		return
	}

	prev := head
	for i := head.next; i != noNext; {
		r := m.overflow.Get(i)
		if r.key == key {
			prev.next = r.next
			m.release(i)
			m.count--
			return
		}
		prev, i = r, r.next
	}
}

// Resize rehashes every entry into a table of capacity primary slots and
// replaces the overflow store with one sized for the new table. Value
// addresses obtained before the call are invalidated.
func (m *HashMap[K, V]) Resize(capacity int) {
	if capacity <= 0 {
		diag.Failf("hash map capacity must be positive, got %d", capacity)
	}

	entries := make([]record[K, V], 0, m.count)
	for _, r := range m.slots.All() {
		if r.occupied {
			entries = append(entries, *r)
		}
	}
	for _, r := range m.overflow.All() {
		if r.occupied {
			entries = append(entries, *r)
		}
	}

	m.slots.Clear()
	m.slots.Resize(capacity)
	m.overflow.Destroy()
	m.reset(capacity)

	for _, r := range entries {
		m.insert(r.key, r.value)
	}
}

// Destroy releases the primary table and every overflow record. The map must
// not be used afterwards.
func (m *HashMap[K, V]) Destroy() {
	m.slots.Destroy()
	m.overflow.Destroy()
	m.free.Destroy()
	m.count = 0
}

// All iterates over every entry, primary slots first, in no particular order.
func (m *HashMap[K, V]) All() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		for _, r := range m.slots.All() {
			if r.occupied && !yield(r.key, &r.value) {
				return
			}
		}
		for _, r := range m.overflow.All() {
			if r.occupied && !yield(r.key, &r.value) {
				return
			}
		}
	}
}

func (m *HashMap[K, V]) reset(capacity int) {
	m.slots.Fill(record[K, V]{next: noNext})
	m.overflow = NewBucketArray[record[K, V]](overflowCapacity(capacity))
	m.free.Clear()
	m.count = 0
}

func (m *HashMap[K, V]) slotFor(key K) *record[K, V] {
	return m.slots.Get(int(m.hash(key) % uint64(m.slots.Cap())))
}

func (m *HashMap[K, V]) insert(key K, value V) (*V, bool) {
	head := m.slotFor(key)
	if !head.occupied {
		*head = record[K, V]{next: noNext, occupied: true, key: key, value: value}
		m.count++
		return &head.value, true
	}
	if head.key == key {
		return nil, false
	}

	tail := head
	for tail.next != noNext {
		tail = m.overflow.Get(tail.next)
		if tail.key == key {
			return nil, false
		}
	}

	index, r := m.acquire()
	*r = record[K, V]{next: noNext, occupied: true, key: key, value: value}
	tail.next = index
	m.count++
	return &r.value, true
}

// acquire returns a vacant overflow record, reusing released ones first.
func (m *HashMap[K, V]) acquire() (int, *record[K, V]) {
	if m.free.Len() > 0 {
		index := m.free.PopBack()
		return index, m.overflow.Get(index)
	}
	r := m.overflow.Add(record[K, V]{})
	return m.overflow.Len() - 1, r
}

func (m *HashMap[K, V]) release(index int) {
	*m.overflow.Get(index) = record[K, V]{next: noNext}
	m.free.Append(index)
}

func overflowCapacity(capacity int) int {
	return max(1, int(math.Ceil(float64(capacity)*(1-MaxLoadFactor))))
}
