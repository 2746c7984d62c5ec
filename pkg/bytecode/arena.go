package bytecode

import (
	"github.com/google/uuid"
	deadlock "github.com/sasha-s/go-deadlock"
)

// ObjectRef identifies a heap-allocated object (string or table) owned by
// a VM's Arena. It is a value, safe to copy into a Value, but it is only
// meaningful relative to the Arena that minted it.
type ObjectRef struct {
	id uuid.UUID
}

func (r ObjectRef) String() string { return r.id.String() }

// IsZero reports whether r is the unset reference.
func (r ObjectRef) IsZero() bool { return r.id == uuid.Nil }

type objectKind int

const (
	objectString objectKind = iota
	objectTable
)

type object struct {
	kind  objectKind
	str   string
	table *Table
}

// Arena owns every String and Table allocated during a VM's lifetime.
// Objects are reclaimed wholesale on Reset; there is no
// reference counting or GC within a run, matching the spec's "arena,
// reclaimed on reset/destroy" lifetime model. Access is guarded by a
// deadlock-detecting mutex since host native callbacks may legitimately
// hold a VM handle from another goroutine while a script is paused for
// resume-after-Timeout.
type Arena struct {
	mu      deadlock.RWMutex
	objects map[uuid.UUID]*object
	cap     int
}

// NewArena constructs an arena bounded at most capacity live objects; a
// capacity of 0 means unbounded.
func NewArena(capacity int) *Arena {
	return &Arena{
		objects: make(map[uuid.UUID]*object),
		cap:     capacity,
	}
}

// AllocString allocates a new string object (equal strings are not
// deduplicated) and returns its reference.
func (a *Arena) AllocString(s string) (ObjectRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cap > 0 && len(a.objects) >= a.cap {
		return ObjectRef{}, errObjectArenaExhausted(a.cap)
	}
	id := uuid.New()
	a.objects[id] = &object{kind: objectString, str: s}
	return ObjectRef{id: id}, nil
}

// AllocTable allocates a fresh, empty table and returns its reference.
func (a *Arena) AllocTable() (ObjectRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cap > 0 && len(a.objects) >= a.cap {
		return ObjectRef{}, errObjectArenaExhausted(a.cap)
	}
	id := uuid.New()
	a.objects[id] = &object{kind: objectTable, table: NewTable()}
	return ObjectRef{id: id}, nil
}

// String resolves ref to its backing Go string.
func (a *Arena) String(ref ObjectRef) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[ref.id]
	if !ok || obj.kind != objectString {
		return "", false
	}
	return obj.str, true
}

// Table resolves ref to its backing Table. The returned pointer is live:
// mutations through it are visible to every Value referencing the same
// ObjectRef, matching cao-lang's by-reference Table semantics.
func (a *Arena) Table(ref ObjectRef) (*Table, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[ref.id]
	if !ok || obj.kind != objectTable {
		return nil, false
	}
	return obj.table, true
}

// Len reports how many live objects the arena currently holds.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.objects)
}

// Reset discards every object, as if the arena were newly constructed.
// Existing ObjectRef values become dangling; the VM must not hold onto
// Values across a Reset.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects = make(map[uuid.UUID]*object)
}
