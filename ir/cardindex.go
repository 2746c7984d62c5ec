package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// CardIndex is the stable address of a card: the name of the function that
// owns it plus a path of child positions descending into nested composite
// cards, branches, and loop bodies. It is the universal handle used by
// error traces and editor tooling — insert/replace/remove and every
// instruction emitted by the compiler carry one.
type CardIndex struct {
	Function string
	Path     []int
}

// NewCardIndex addresses a top-level card of a function by position.
func NewCardIndex(function string, pos int) CardIndex {
	return CardIndex{Function: function, Path: []int{pos}}
}

// WithSubIndex descends into the i-th child of the card this index
// currently addresses, returning a new index. The receiver is unchanged.
func (c CardIndex) WithSubIndex(i int) CardIndex {
	path := make([]int, len(c.Path)+1)
	copy(path, c.Path)
	path[len(c.Path)] = i
	return CardIndex{Function: c.Function, Path: path}
}

// Pop ascends to the parent of the card this index addresses. Popping a
// top-level index (path length 1) returns the zero-length-path index,
// which addresses the function itself and is not a valid card address.
func (c CardIndex) Pop() CardIndex {
	if len(c.Path) == 0 {
		return c
	}
	path := make([]int, len(c.Path)-1)
	copy(path, c.Path[:len(c.Path)-1])
	return CardIndex{Function: c.Function, Path: path}
}

// Current returns the leaf path component: the position of the addressed
// card among its siblings. Panics if the path is empty.
func (c CardIndex) Current() int {
	return c.Path[len(c.Path)-1]
}

// IsZero reports whether this is the zero-value index.
func (c CardIndex) IsZero() bool {
	return c.Function == "" && len(c.Path) == 0
}

// String renders the index as "function#0.2.1". The compiled program's
// in-memory label table is keyed by this form; its serialized form is the
// binary name-plus-varint-path encoding instead.
func (c CardIndex) String() string {
	parts := make([]string, len(c.Path))
	for i, p := range c.Path {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%s#%s", c.Function, strings.Join(parts, "."))
}

// Equal reports whether two indices address the same card.
func (c CardIndex) Equal(o CardIndex) bool {
	if c.Function != o.Function || len(c.Path) != len(o.Path) {
		return false
	}
	for i := range c.Path {
		if c.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

// Trace is an ordered list of CardIndex values, outermost-first: the entry
// of main, then the callsite at each stack level, then the card executing
// at the moment of failure. Compile errors carry zero or one entry;
// runtime errors carry the full call chain.
type Trace []CardIndex

func (t Trace) String() string {
	parts := make([]string, len(t))
	for i, idx := range t {
		parts[i] = idx.String()
	}
	return strings.Join(parts, " -> ")
}
