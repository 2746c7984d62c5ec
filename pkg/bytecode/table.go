package bytecode

import "fmt"

// TableKey is either an int64 or a string key. Tables preserve insertion
// order regardless of key type, matching an ordered associative container
// rather than a sorted map.
type TableKey struct {
	IsString bool
	IntKey   int64
	StrKey   string
}

// IntKey builds an integer table key.
func IntKey(i int64) TableKey { return TableKey{IntKey: i} }

// StrKey builds a string table key.
func StrKey(s string) TableKey { return TableKey{IsString: true, StrKey: s} }

func (k TableKey) String() string {
	if k.IsString {
		return k.StrKey
	}
	return fmt.Sprintf("%d", k.IntKey)
}

// Table is cao-lang's sole composite value: an ordered-insertion
// associative container keyed by integer or string, holding Values.
// Tables may reference other tables (arena-owned children); the VM's
// SET_PROP/APPEND_TABLE handlers (vm.go's doSetProp/doAppendTable) walk
// the inserted value's descendants before committing an insert and
// reject it with a TableCycleError if it would make the target
// reachable from itself. Table itself has no cycle guard — it trusts
// its caller, matching every other unchecked-by-itself primitive in this
// package (e.g. Get's plain map lookup).
type Table struct {
	order []TableKey
	data  map[TableKey]Value
}

// NewTable constructs an empty table.
func NewTable() *Table {
	return &Table{data: make(map[TableKey]Value)}
}

// Get looks up a value by key. A missing key yields Nil, matching the
// host-callback convention of "absence reads as nil" used elsewhere in
// the runtime (unset globals behave the same way).
func (t *Table) Get(key TableKey) Value {
	v, ok := t.data[key]
	if !ok {
		return Nil()
	}
	return v
}

// Has reports whether key is present.
func (t *Table) Has(key TableKey) bool {
	_, ok := t.data[key]
	return ok
}

// Set inserts or overwrites key. Overwriting an existing key keeps its
// original insertion position; inserting a new key appends it.
func (t *Table) Set(key TableKey, v Value) {
	if _, exists := t.data[key]; !exists {
		t.order = append(t.order, key)
	}
	t.data[key] = v
}

// Append inserts v under the next integer key following the table's
// current highest integer key (or 0 if none), implementing the
// CardAppendTable "push to the end" semantics used for array-like use.
func (t *Table) Append(v Value) TableKey {
	next := int64(0)
	for _, k := range t.order {
		if !k.IsString && k.IntKey >= next {
			next = k.IntKey + 1
		}
	}
	key := IntKey(next)
	t.Set(key, v)
	return key
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.order) }

// Keys returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (t *Table) Keys() []TableKey { return t.order }

// Delete removes key if present, preserving the relative order of the
// remaining keys.
func (t *Table) Delete(key TableKey) {
	if _, ok := t.data[key]; !ok {
		return
	}
	delete(t.data, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
