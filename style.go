package gridsheet

import "sort"

// Style is a pooled cell style record. records are interned by value, so the
// struct must stay comparable.
type Style struct {
	Bold       bool
	Italic     bool
	Underline  bool
	FontSize   float64
	TextColor  string // hex, e.g. "#1a1a1a"
	Background string // hex fill, "" for none
	AlignH     string // "left", "center", "right", "" for default
}

// Format is a pooled number/date format record.
type Format struct {
	Pattern string // e.g. "0.00", "yyyy-mm-dd"
}

// Pool provides interning for style/format records with reference counting.
// the id counter is owned by the pool value itself and travels with it
// through serialization, never through ambient global state.
type Pool[T comparable] struct {
	ids       map[T]uint32
	records   map[uint32]T
	refCounts map[uint32]int
	nextID    uint32
}

// NewPool creates an empty pool. id 0 is reserved for "no record".
func NewPool[T comparable]() *Pool[T] {
	return &Pool[T]{
		ids:       make(map[T]uint32),
		records:   make(map[uint32]T),
		refCounts: make(map[uint32]int),
		nextID:    1,
	}
}

// Intern adds a record to the pool or increments its reference count if it
// already exists. returns the id of the record.
func (p *Pool[T]) Intern(rec T) uint32 {
	if id, exists := p.ids[rec]; exists {
		p.refCounts[id]++
		return id
	}

	id := p.nextID
	p.ids[rec] = id
	p.records[id] = rec
	p.refCounts[id] = 1
	p.nextID++

	return id
}

// Get retrieves a record by its id.
func (p *Pool[T]) Get(id uint32) (T, bool) {
	rec, exists := p.records[id]
	return rec, exists
}

// Contains checks if a record exists in the pool and returns its id.
func (p *Pool[T]) Contains(rec T) (uint32, bool) {
	id, exists := p.ids[rec]
	return id, exists
}

// AddReference increments the reference count for an id.
func (p *Pool[T]) AddReference(id uint32) bool {
	if _, exists := p.records[id]; !exists {
		return false
	}
	p.refCounts[id]++
	return true
}

// RemoveReference decrements the reference count for an id. if the count
// reaches 0 the record is removed. returns true if the record was removed.
func (p *Pool[T]) RemoveReference(id uint32) bool {
	rec, exists := p.records[id]
	if !exists {
		return false
	}

	p.refCounts[id]--
	if p.refCounts[id] <= 0 {
		delete(p.ids, rec)
		delete(p.records, id)
		delete(p.refCounts, id)
		return true
	}

	return false
}

// GetReferenceCount returns the reference count for an id.
func (p *Pool[T]) GetReferenceCount(id uint32) int {
	return p.refCounts[id]
}

// Count returns the number of unique records in the pool.
func (p *Pool[T]) Count() int {
	return len(p.records)
}

// NextID exposes the pool's id counter for serialization.
func (p *Pool[T]) NextID() uint32 {
	return p.nextID
}

// PoolEntry pairs a pooled record with its id for serialization.
type PoolEntry[T comparable] struct {
	ID     uint32 `json:"id"`
	Record T      `json:"record"`
	Refs   int    `json:"refs"`
}

// Entries returns all records ordered by id, for deterministic
// serialization.
func (p *Pool[T]) Entries() []PoolEntry[T] {
	result := make([]PoolEntry[T], 0, len(p.records))
	for id, rec := range p.records {
		result = append(result, PoolEntry[T]{ID: id, Record: rec, Refs: p.refCounts[id]})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Restore rebuilds the pool from serialized entries, preserving ids and the
// id counter.
func (p *Pool[T]) Restore(entries []PoolEntry[T], nextID uint32) {
	p.Clear()
	for _, e := range entries {
		p.ids[e.Record] = e.ID
		p.records[e.ID] = e.Record
		p.refCounts[e.ID] = e.Refs
		if e.ID >= p.nextID {
			p.nextID = e.ID + 1
		}
	}
	if nextID > p.nextID {
		p.nextID = nextID
	}
}

// Clone returns a deep copy of the pool.
func (p *Pool[T]) Clone() *Pool[T] {
	dup := NewPool[T]()
	for rec, id := range p.ids {
		dup.ids[rec] = id
	}
	for id, rec := range p.records {
		dup.records[id] = rec
	}
	for id, n := range p.refCounts {
		dup.refCounts[id] = n
	}
	dup.nextID = p.nextID
	return dup
}

// Clear removes all records from the pool.
func (p *Pool[T]) Clear() {
	p.ids = make(map[T]uint32)
	p.records = make(map[uint32]T)
	p.refCounts = make(map[uint32]int)
	p.nextID = 1
}
