// Package ir defines the intermediate representation compiled by cao-lang:
// a typed tree of Module -> Function -> Card with an import system, and
// CardIndex, the stable addressing scheme used to reach any sub-card for
// editing and for error reporting.
package ir

// SuperName is the reserved identifier that prefixes an import path to
// ascend the module tree (e.g. "super.ghost" resolves "ghost" in the
// parent module).
const SuperName = "super"

// Function (historically "lane") is a named, callable sequence of cards.
type Function struct {
	Name string
	Args []string
	Body []Card
}

// Module is a namespace of submodules, imports, and functions. Module
// names are simple identifiers; "super" is reserved and may not name a
// submodule.
type Module struct {
	Name       string
	Submodules []Module
	Imports    []string
	Functions  []Function
}

// NewModule constructs an empty, named module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// indexOfSubmodule returns the position of the named submodule, or -1.
func (m *Module) indexOfSubmodule(name string) int {
	for i := range m.Submodules {
		if m.Submodules[i].Name == name {
			return i
		}
	}
	return -1
}

// indexOfFunction returns the position of the named function, or -1.
func (m *Module) indexOfFunction(name string) int {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return i
		}
	}
	return -1
}

// InsertSubmodule adds a new submodule. NameCollision if a submodule with
// that name already exists or the name is "super".
func (m *Module) InsertSubmodule(sub Module) error {
	if sub.Name == SuperName {
		return &NameCollisionError{Name: sub.Name}
	}
	if m.indexOfSubmodule(sub.Name) >= 0 {
		return &NameCollisionError{Name: sub.Name}
	}
	m.Submodules = append(m.Submodules, sub)
	return nil
}

// ReplaceSubmodule overwrites an existing submodule by name, returning the
// previous value. IndexOutOfBounds if no submodule has that name.
func (m *Module) ReplaceSubmodule(name string, sub Module) (Module, error) {
	i := m.indexOfSubmodule(name)
	if i < 0 {
		return Module{}, &IndexOutOfBoundsError{Detail: "submodule " + name}
	}
	old := m.Submodules[i]
	m.Submodules[i] = sub
	return old, nil
}

// RemoveSubmodule removes and returns a submodule by name.
func (m *Module) RemoveSubmodule(name string) (Module, error) {
	i := m.indexOfSubmodule(name)
	if i < 0 {
		return Module{}, &IndexOutOfBoundsError{Detail: "submodule " + name}
	}
	old := m.Submodules[i]
	m.Submodules = append(m.Submodules[:i], m.Submodules[i+1:]...)
	return old, nil
}

// InsertFunction adds a new function. NameCollision if one with that name
// already exists.
func (m *Module) InsertFunction(fn Function) error {
	if m.indexOfFunction(fn.Name) >= 0 {
		return &NameCollisionError{Name: fn.Name}
	}
	m.Functions = append(m.Functions, fn)
	return nil
}

// ReplaceFunction overwrites an existing function by name, returning the
// previous value.
func (m *Module) ReplaceFunction(name string, fn Function) (Function, error) {
	i := m.indexOfFunction(name)
	if i < 0 {
		return Function{}, &IndexOutOfBoundsError{Detail: "function " + name}
	}
	old := m.Functions[i]
	m.Functions[i] = fn
	return old, nil
}

// RemoveFunction removes and returns a function by name.
func (m *Module) RemoveFunction(name string) (Function, error) {
	i := m.indexOfFunction(name)
	if i < 0 {
		return Function{}, &IndexOutOfBoundsError{Detail: "function " + name}
	}
	old := m.Functions[i]
	m.Functions = append(m.Functions[:i], m.Functions[i+1:]...)
	return old, nil
}

// Function looks up a direct child function by name.
func (m *Module) Function(name string) (*Function, bool) {
	i := m.indexOfFunction(name)
	if i < 0 {
		return nil, false
	}
	return &m.Functions[i], true
}

// Submodule looks up a direct child submodule by name.
func (m *Module) Submodule(name string) (*Module, bool) {
	i := m.indexOfSubmodule(name)
	if i < 0 {
		return nil, false
	}
	return &m.Submodules[i], true
}

// GetCard resolves a CardIndex to a read-only card pointer within this
// module's functions.
func (m *Module) GetCard(idx CardIndex) (*Card, error) {
	fn, ok := m.Function(idx.Function)
	if !ok {
		return nil, &IndexOutOfBoundsError{Detail: "function " + idx.Function}
	}
	return navigate(fn, idx.Path)
}

// GetCardMut resolves a CardIndex to a mutable card pointer.
func (m *Module) GetCardMut(idx CardIndex) (*Card, error) {
	return m.GetCard(idx)
}

// InsertCard places a card at the position named by idx, shifting later
// siblings at that level back by one. The parent container (or the
// function body, for a top-level path of length 1) must already have at
// least idx.Current() siblings.
func (m *Module) InsertCard(idx CardIndex, c Card) error {
	fn, ok := m.Function(idx.Function)
	if !ok {
		return &IndexOutOfBoundsError{Detail: "function " + idx.Function}
	}
	if len(idx.Path) == 0 {
		return &IndexOutOfBoundsError{Detail: "empty card path"}
	}
	pos := idx.Current()
	if len(idx.Path) == 1 {
		if pos < 0 || pos > len(fn.Body) {
			return &IndexOutOfBoundsError{Detail: idx.String()}
		}
		fn.Body = append(fn.Body, Card{})
		copy(fn.Body[pos+1:], fn.Body[pos:])
		fn.Body[pos] = c
		return nil
	}
	parent, err := navigate(fn, idx.Path[:len(idx.Path)-1])
	if err != nil {
		return err
	}
	if parent.Kind != CardComposite {
		return &InvalidIndexForCardTypeError{Kind: parent.Kind}
	}
	if pos < 0 || pos > len(parent.Children) {
		return &IndexOutOfBoundsError{Detail: idx.String()}
	}
	parent.Children = append(parent.Children, Card{})
	copy(parent.Children[pos+1:], parent.Children[pos:])
	parent.Children[pos] = c
	return nil
}

// RemoveCard removes and returns the card at idx, shifting later siblings
// forward by one.
func (m *Module) RemoveCard(idx CardIndex) (Card, error) {
	fn, ok := m.Function(idx.Function)
	if !ok {
		return Card{}, &IndexOutOfBoundsError{Detail: "function " + idx.Function}
	}
	if len(idx.Path) == 0 {
		return Card{}, &IndexOutOfBoundsError{Detail: "empty card path"}
	}
	pos := idx.Current()
	if len(idx.Path) == 1 {
		if pos < 0 || pos >= len(fn.Body) {
			return Card{}, &IndexOutOfBoundsError{Detail: idx.String()}
		}
		old := fn.Body[pos]
		fn.Body = append(fn.Body[:pos], fn.Body[pos+1:]...)
		return old, nil
	}
	parent, err := navigate(fn, idx.Path[:len(idx.Path)-1])
	if err != nil {
		return Card{}, err
	}
	if parent.Kind != CardComposite {
		return Card{}, &InvalidIndexForCardTypeError{Kind: parent.Kind}
	}
	if pos < 0 || pos >= len(parent.Children) {
		return Card{}, &IndexOutOfBoundsError{Detail: idx.String()}
	}
	old := parent.Children[pos]
	parent.Children = append(parent.Children[:pos], parent.Children[pos+1:]...)
	return old, nil
}

// ReplaceCard overwrites the card at idx in place, returning the previous
// value. Unlike Insert/Remove this never renumbers siblings.
func (m *Module) ReplaceCard(idx CardIndex, c Card) (Card, error) {
	target, err := m.GetCard(idx)
	if err != nil {
		return Card{}, err
	}
	old := *target
	*target = c
	return old, nil
}

// navigate walks a card path starting at a function's top-level body.
func navigate(fn *Function, path []int) (*Card, error) {
	if len(path) == 0 {
		return nil, &IndexOutOfBoundsError{Detail: "empty card path"}
	}
	pos := path[0]
	if pos < 0 || pos >= len(fn.Body) {
		return nil, &IndexOutOfBoundsError{Detail: "top-level index"}
	}
	cur := &fn.Body[pos]
	for _, step := range path[1:] {
		if cur.NumChildren() == 0 {
			return nil, &InvalidIndexForCardTypeError{Kind: cur.Kind}
		}
		child := cur.ChildAt(step)
		if child == nil {
			return nil, &IndexOutOfBoundsError{Detail: "sub-index"}
		}
		cur = child
	}
	return cur, nil
}

// EnumerateImports returns the module's own import list, each a dotted
// path possibly prefixed by "super.".
func (m *Module) EnumerateImports() []string {
	return m.Imports
}
