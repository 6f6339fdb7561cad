package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolInterning(t *testing.T) {
	p := NewPool[Style]()

	bold := Style{Bold: true}
	id := p.Intern(bold)
	assert.Equal(t, uint32(1), id, "id 0 is reserved for no record")

	// interning the same record returns the same id and bumps the refcount
	again := p.Intern(bold)
	assert.Equal(t, id, again)
	assert.Equal(t, 2, p.GetReferenceCount(id))

	other := p.Intern(Style{Italic: true})
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, p.Count())

	rec, ok := p.Get(id)
	require.True(t, ok)
	assert.Equal(t, bold, rec)

	foundID, ok := p.Contains(bold)
	require.True(t, ok)
	assert.Equal(t, id, foundID)
}

func TestPoolReferenceCounting(t *testing.T) {
	p := NewPool[Format]()

	id := p.Intern(Format{Pattern: "0.00"})
	require.True(t, p.AddReference(id))
	assert.Equal(t, 2, p.GetReferenceCount(id))

	assert.False(t, p.RemoveReference(id), "record stays while references remain")
	assert.True(t, p.RemoveReference(id), "last reference removes the record")
	_, ok := p.Get(id)
	assert.False(t, ok)

	assert.False(t, p.AddReference(99), "unknown id")
}

func TestPoolEntriesAndRestore(t *testing.T) {
	p := NewPool[Style]()
	a := p.Intern(Style{Bold: true})
	b := p.Intern(Style{Italic: true})
	p.AddReference(b)

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0].ID)
	assert.Equal(t, b, entries[1].ID)
	assert.Equal(t, 2, entries[1].Refs)

	// the id counter travels with the pool through serialization
	restored := NewPool[Style]()
	restored.Restore(entries, p.NextID())
	assert.Equal(t, p.NextID(), restored.NextID())

	rec, ok := restored.Get(b)
	require.True(t, ok)
	assert.Equal(t, Style{Italic: true}, rec)
	assert.Equal(t, 2, restored.GetReferenceCount(b))

	// new records never reuse released ids from before the restore
	c := restored.Intern(Style{Underline: true})
	assert.Equal(t, p.NextID(), c)
}

func TestPoolClone(t *testing.T) {
	p := NewPool[Style]()
	id := p.Intern(Style{Bold: true})

	dup := p.Clone()
	dup.Intern(Style{Italic: true})

	assert.Equal(t, 1, p.Count())
	assert.Equal(t, 2, dup.Count())
	rec, ok := dup.Get(id)
	require.True(t, ok)
	assert.True(t, rec.Bold)
}
