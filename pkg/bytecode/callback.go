package bytecode

// NativeFunc is the signature of a host callback registered with a VM.
// It receives a read-only view of the arguments (already popped from the
// value stack in left-to-right order) and a Handle for allocating new
// strings/tables, reading globals, and reporting failure. Its return
// value is pushed as the CallNative card's result.
type NativeFunc func(args []Value, h *Handle) (Value, error)

// nativeEntry pairs a registered callback with its arity, which the VM
// checks against the call site's argument count when the call executes.
type nativeEntry struct {
	fn    NativeFunc
	arity int
}

// RegisterFunction makes fn callable from script code as name, with a
// fixed arity. Re-registering a name replaces the previous callback;
// this is how host applications patch behavior between runs without
// recompiling the program.
func (vm *VM) RegisterFunction(name string, arity int, fn NativeFunc) {
	vm.natives[name] = nativeEntry{fn: fn, arity: arity}
}

// Handle is the mutable façade a native callback uses to interact with
// the VM that invoked it: allocating heap objects, touching globals, and
// reading the table contents of an argument it was handed.
type Handle struct {
	vm *VM
}

// NewString allocates a string in the calling VM's arena.
func (h *Handle) NewString(s string) (Value, error) {
	ref, err := h.vm.arena.AllocString(s)
	if err != nil {
		return Nil(), h.vm.runtimeErr(err)
	}
	return StringRef(ref), nil
}

// NewTable allocates an empty table in the calling VM's arena.
func (h *Handle) NewTable() (Value, error) {
	ref, err := h.vm.arena.AllocTable()
	if err != nil {
		return Nil(), h.vm.runtimeErr(err)
	}
	return TableRef(ref), nil
}

// String resolves a String value to its Go string, for callbacks that
// need to read argument contents.
func (h *Handle) String(v Value) (string, bool) {
	if v.Type != TypeString {
		return "", false
	}
	return h.vm.arena.String(v.Ref)
}

// Table resolves a Table value to its backing *Table.
func (h *Handle) Table(v Value) (*Table, bool) {
	if v.Type != TypeTable {
		return nil, false
	}
	return h.vm.arena.Table(v.Ref)
}

// Global reads a script global by name, Nil if unset.
func (h *Handle) Global(name string) Value {
	v, _ := h.vm.GetGlobal(name)
	return v
}

// SetGlobal writes a script global by name.
func (h *Handle) SetGlobal(name string, v Value) {
	h.vm.SetGlobal(name, v)
}
