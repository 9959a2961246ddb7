// File: table.go
// Title: Open-Addressing String Table
// Description: Implements a string-keyed hash table with open addressing,
//              linear probing and tombstone deletion. The table grows by
//              doubling before an insert would push the fill ratio of
//              occupied plus tombstone slots to 0.75 or above.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package table

import (
	mdwerror "github.com/msto63/lox/foundation/core/error"
)

const (
	// DefaultCapacity is the bucket count of a table created with capacity <= 0
	DefaultCapacity = 8

	// LoadFactor is the maximum (occupied + tombstone) / capacity ratio
	LoadFactor = 0.75

	// GrowthFactor is the capacity multiplier applied on resize
	GrowthFactor = 2

	hashSeed       uint64 = 0x100
	hashMultiplier uint64 = 1111111111111111111
)

var (
	// ErrCapacityExceeded is the cause of every allocation failure; test with errors.Is
	ErrCapacityExceeded = mdwerror.New("table capacity limit reached").WithCode(mdwerror.CodeAllocation)

	// ErrDestroyed is returned by Upsert after Destroy
	ErrDestroyed = mdwerror.New("table has been destroyed").WithCode(mdwerror.CodeInvalidOperation)
)

// State is the state of a bucket
type State uint8

const (
	Empty State = iota
	Occupied
	Tombstone
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	case Tombstone:
		return "tombstone"
	default:
		return "unknown"
	}
}

type entry[V any] struct {
	key   string
	hash  uint64
	value V
	state State
}

// Option configures a Table
type Option func(*config)

type config struct {
	maxCapacity int
}

// WithMaxCapacity caps the bucket count. Creating or growing a table beyond
// the cap fails with an allocation error wrapping ErrCapacityExceeded.
// A value <= 0 means unlimited.
func WithMaxCapacity(n int) Option {
	return func(c *config) {
		c.maxCapacity = n
	}
}

// Table is a string-keyed map with a typed value slot. It is not safe for
// concurrent mutation; callers own one table per goroutine.
type Table[V any] struct {
	buckets     []entry[V]
	count       int
	tombstones  int
	maxCapacity int
	destroyed   bool
}

// Hash returns the 64-bit multiplicative byte-fold hash of key
func Hash(key string) uint64 {
	h := hashSeed
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= hashMultiplier
	}
	return h
}

// New creates an empty table with initialCapacity buckets (DefaultCapacity
// when initialCapacity <= 0).
func New[V any](initialCapacity int, opts ...Option) (*Table[V], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	if cfg.maxCapacity > 0 && initialCapacity > cfg.maxCapacity {
		return nil, mdwerror.Wrap(ErrCapacityExceeded, "create table").
			WithOperation("table.new").
			WithDetail("capacity", initialCapacity).
			WithDetail("limit", cfg.maxCapacity)
	}
	return &Table[V]{
		buckets:     make([]entry[V], initialCapacity),
		maxCapacity: cfg.maxCapacity,
	}, nil
}

// Len returns the number of occupied buckets
func (t *Table[V]) Len() int {
	return t.count
}

// Capacity returns the bucket count
func (t *Table[V]) Capacity() int {
	return len(t.buckets)
}

// Tombstones returns the number of tombstone buckets
func (t *Table[V]) Tombstones() int {
	return t.tombstones
}

// Destroyed reports whether Destroy has been called
func (t *Table[V]) Destroyed() bool {
	return t.destroyed
}

func (t *Table[V]) needsGrow() bool {
	return float64(t.count+t.tombstones) >= float64(len(t.buckets))*LoadFactor
}

// Upsert inserts key or replaces the value of an existing key. An exact key
// match anywhere along the probe sequence takes priority over reusing a
// tombstone. On allocation failure the table is left unchanged.
func (t *Table[V]) Upsert(key string, value V) error {
	if t.destroyed {
		return ErrDestroyed
	}

	var growErr error
	if t.needsGrow() {
		growErr = t.grow()
	}

	h := Hash(key)
	capacity := len(t.buckets)
	index := int(h % uint64(capacity))
	tombstone := -1
	slot := -1

	for probes := 0; probes < capacity; probes++ {
		b := &t.buckets[index]
		if b.state == Empty {
			slot = index
			break
		}
		if b.state == Tombstone {
			if tombstone < 0 {
				tombstone = index
			}
		} else if b.hash == h && b.key == key {
			b.value = value
			return nil
		}
		index = (index + 1) % capacity
	}

	// growth failed and key is new: refuse rather than exceed the load factor
	if growErr != nil {
		return growErr
	}

	if tombstone >= 0 {
		slot = tombstone
		t.tombstones--
	}
	if slot < 0 {
		return mdwerror.Wrap(ErrCapacityExceeded, "table full").
			WithOperation("table.upsert").
			WithDetail("capacity", capacity)
	}

	t.buckets[slot] = entry[V]{key: key, hash: h, value: value, state: Occupied}
	t.count++
	return nil
}

// Lookup returns the value stored under key. Tombstones do not stop the
// probe sequence.
func (t *Table[V]) Lookup(key string) (V, bool) {
	var zero V
	if i := t.find(key); i >= 0 {
		return t.buckets[i].value, true
	}
	return zero, false
}

// Delete turns the bucket holding key into a tombstone. It returns false
// when the key is absent.
func (t *Table[V]) Delete(key string) bool {
	i := t.find(key)
	if i < 0 {
		return false
	}
	var zero V
	t.buckets[i] = entry[V]{value: zero, state: Tombstone}
	t.count--
	t.tombstones++
	return true
}

// Range calls fn for every occupied bucket in bucket order until fn
// returns false.
func (t *Table[V]) Range(fn func(key string, value V) bool) {
	for i := range t.buckets {
		if t.buckets[i].state == Occupied {
			if !fn(t.buckets[i].key, t.buckets[i].value) {
				return
			}
		}
	}
}

// Destroy releases all buckets. Afterwards Lookup and Delete report the key
// as absent and Upsert fails with ErrDestroyed. Calling Destroy twice is safe.
func (t *Table[V]) Destroy() {
	t.buckets = nil
	t.count = 0
	t.tombstones = 0
	t.destroyed = true
}

func (t *Table[V]) find(key string) int {
	if t.count == 0 || len(t.buckets) == 0 {
		return -1
	}
	h := Hash(key)
	capacity := len(t.buckets)
	index := int(h % uint64(capacity))
	for probes := 0; probes < capacity; probes++ {
		b := &t.buckets[index]
		switch {
		case b.state == Empty:
			return -1
		case b.state == Occupied && b.hash == h && b.key == key:
			return index
		}
		index = (index + 1) % capacity
	}
	return -1
}

// grow doubles the capacity, rehashing occupied buckets and dropping
// tombstones. The table is untouched when the limit forbids growth.
func (t *Table[V]) grow() error {
	oldCapacity := len(t.buckets)
	newCapacity := oldCapacity * GrowthFactor
	if t.maxCapacity > 0 && newCapacity > t.maxCapacity {
		return mdwerror.Wrap(ErrCapacityExceeded, "resize table").
			WithOperation("table.grow").
			WithDetail("capacity", oldCapacity).
			WithDetail("limit", t.maxCapacity)
	}

	buckets := make([]entry[V], newCapacity)
	count := 0
	for _, b := range t.buckets {
		if b.state != Occupied {
			continue
		}
		index := int(b.hash % uint64(newCapacity))
		for buckets[index].state == Occupied {
			index = (index + 1) % newCapacity
		}
		buckets[index] = b
		count++
	}

	t.buckets = buckets
	t.count = count
	t.tombstones = 0
	return nil
}
