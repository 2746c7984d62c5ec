package bytecode

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/chazu/caolang/ir"
	"github.com/google/uuid"
)

// VMOptions configures the bounds a VM enforces. All bounds are
// cooperative limits, not hard OS-level resource caps: they exist so a
// misbehaving or runaway program fails with a typed RuntimeError instead
// of exhausting host memory or recursing forever.
type VMOptions struct {
	// ValueStackCapacity bounds the operand stack. Default 512.
	ValueStackCapacity int
	// CallStackCapacity bounds nested calls and is the effective
	// recursion limit. Default 256.
	CallStackCapacity int
	// ObjectArenaCapacity bounds live String/Table objects. 0 means
	// unbounded.
	ObjectArenaCapacity int
	// StepBudget bounds how many instructions Run/Resume executes
	// before returning a TimeoutError. 0 means unbounded.
	StepBudget int
}

// DefaultVMOptions returns the spec's default bounds.
func DefaultVMOptions() VMOptions {
	return VMOptions{
		ValueStackCapacity: 512,
		CallStackCapacity:  256,
	}
}

// frame is one entry of the call stack: where to resume the caller, this
// call's own local-variable slots, and the card that issued the call (for
// Trace reconstruction).
type frame struct {
	functionName  string
	returnIP      uint32
	locals        []Value
	callCardIndex ir.CardIndex
	haveCallSite  bool
}

// VM executes a compiled Program. A VM is single-goroutine-at-a-time:
// only the arena's object allocations and lookups are guarded by the
// arena's mutex; globals, stacks and the native registry are not locked.
type VM struct {
	id      uuid.UUID
	program *Program
	opts    VMOptions

	valueStack []Value
	callStack  []frame
	globals    map[string]Value
	arena      *Arena
	natives    map[string]nativeEntry

	ip          uint32
	stepsTaken  int
	halted      bool
	haltReason  error

	labelOffsets []uint32
	labelIndices []ir.CardIndex
}

// NewVM constructs a VM bound to program, ready to Run any of its
// exported functions.
func NewVM(program *Program, opts VMOptions) *VM {
	if opts.ValueStackCapacity <= 0 {
		opts.ValueStackCapacity = DefaultVMOptions().ValueStackCapacity
	}
	if opts.CallStackCapacity <= 0 {
		opts.CallStackCapacity = DefaultVMOptions().CallStackCapacity
	}

	vm := &VM{
		id:      uuid.New(),
		program: program,
		opts:    opts,
		globals: make(map[string]Value),
		arena:   NewArena(opts.ObjectArenaCapacity),
		natives: make(map[string]nativeEntry),
	}
	vm.buildLabelIndex()
	return vm
}

// ID returns this VM instance's unique identity, useful for correlating
// log lines and host-side diagnostics across many concurrently running
// VMs sharing one compiled Program.
func (vm *VM) ID() uuid.UUID { return vm.id }

// GetGlobal reads a script global by name, for a host inspecting VM state
// after a run. The bool reports whether the global has ever been written;
// an unset global reads as Nil from script code (OpReadGlobal) but that
// convention doesn't apply here, since a host needs to tell "never set"
// from "explicitly set to Nil".
func (vm *VM) GetGlobal(name string) (Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// SetGlobal writes a script global by name, for a host seeding state
// before a run or patching it between runs.
func (vm *VM) SetGlobal(name string, v Value) {
	vm.globals[name] = v
}

// ValueStack returns a snapshot of the current value stack, bottom
// first, for debugging and test assertions. The returned slice is a
// copy; mutating it has no effect on the VM.
func (vm *VM) ValueStack() []Value {
	out := make([]Value, len(vm.valueStack))
	copy(out, vm.valueStack)
	return out
}

func (vm *VM) buildLabelIndex() {
	type pair struct {
		offset uint32
		idx    ir.CardIndex
	}
	pairs := make([]pair, 0, len(vm.program.Labels))
	for _, e := range vm.program.Labels {
		pairs = append(pairs, pair{offset: e.Off, idx: e.Idx})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].offset < pairs[j].offset })
	vm.labelOffsets = make([]uint32, len(pairs))
	vm.labelIndices = make([]ir.CardIndex, len(pairs))
	for i, p := range pairs {
		vm.labelOffsets[i] = p.offset
		vm.labelIndices[i] = p.idx
	}
}

// cardIndexAt finds the CardIndex whose label is the closest offset at
// or before ip, for error traces.
func (vm *VM) cardIndexAt(ip uint32) (ir.CardIndex, bool) {
	if len(vm.labelOffsets) == 0 {
		return ir.CardIndex{}, false
	}
	i := sort.Search(len(vm.labelOffsets), func(i int) bool { return vm.labelOffsets[i] > ip })
	if i == 0 {
		return ir.CardIndex{}, false
	}
	return vm.labelIndices[i-1], true
}

// currentTrace reconstructs the call chain at the current ip, outermost
// frame first.
func (vm *VM) currentTrace() ir.Trace {
	trace := make(ir.Trace, 0, len(vm.callStack)+1)
	for _, f := range vm.callStack {
		if f.haveCallSite {
			trace = append(trace, f.callCardIndex)
		}
	}
	if idx, ok := vm.cardIndexAt(vm.ip); ok {
		trace = append(trace, idx)
	}
	return trace
}

// runtimeErr attaches the VM's current call trace to a freshly built
// RuntimeError, returning it unchanged if it doesn't carry a trace slot.
func (vm *VM) runtimeErr(err error) error {
	if ts, ok := err.(traceSetter); ok {
		ts.setTrace(vm.currentTrace())
	}
	return err
}

// Reset discards all VM state — stacks, globals, the object arena, and
// halted status — so the VM can be reused from scratch against the same
// Program.
func (vm *VM) Reset() {
	vm.valueStack = nil
	vm.callStack = nil
	vm.globals = make(map[string]Value)
	vm.arena.Reset()
	vm.ip = 0
	vm.stepsTaken = 0
	vm.halted = false
	vm.haltReason = nil
}

func (vm *VM) pushValue(v Value) error {
	if len(vm.valueStack) >= vm.opts.ValueStackCapacity {
		return vm.runtimeErr(&ValueStackExhaustedError{Capacity: vm.opts.ValueStackCapacity})
	}
	vm.valueStack = append(vm.valueStack, v)
	return nil
}

func (vm *VM) popValue() (Value, error) {
	n := len(vm.valueStack)
	if n == 0 {
		return Nil(), vm.runtimeErr(&StackUnderflowError{Wanted: 1, Had: 0})
	}
	v := vm.valueStack[n-1]
	vm.valueStack = vm.valueStack[:n-1]
	return v, nil
}

func (vm *VM) popN(n int) ([]Value, error) {
	if len(vm.valueStack) < n {
		return nil, vm.runtimeErr(&StackUnderflowError{Wanted: n, Had: len(vm.valueStack)})
	}
	start := len(vm.valueStack) - n
	out := make([]Value, n)
	copy(out, vm.valueStack[start:])
	vm.valueStack = vm.valueStack[:start]
	return out, nil
}

// Run invokes the named function with args (logical left-to-right order)
// and executes until it returns, aborts, errors, or exhausts its step
// budget. A Timeout leaves the VM's state intact; call Resume to
// continue the same invocation with a fresh budget.
func (vm *VM) Run(functionName string, args ...Value) (Value, error) {
	fe, ok := vm.program.FunctionByName(functionName)
	if !ok {
		return Nil(), vm.runtimeErr(&NativeNotFoundError{Name: functionName})
	}
	if len(args) != fe.Arity {
		return Nil(), vm.runtimeErr(&TypeMismatchError{
			Op:       "call " + functionName,
			Expected: fmtArity(fe.Arity),
			Got:      fmtArity(len(args)),
		})
	}

	locals := make([]Value, fe.NumLocals)
	for i := fe.Arity - 1; i >= 0; i-- {
		locals[i] = args[i]
	}

	vm.callStack = append(vm.callStack, frame{functionName: functionName, returnIP: 0, locals: locals})
	vm.ip = fe.Entry
	vm.stepsTaken = 0
	vm.halted = false
	vm.haltReason = nil

	return vm.loop()
}

// Resume continues execution after a TimeoutError, with a freshly reset
// step counter.
func (vm *VM) Resume() (Value, error) {
	if !vm.halted {
		return Nil(), vm.runtimeErr(&AbortedError{})
	}
	vm.halted = false
	vm.haltReason = nil
	vm.stepsTaken = 0
	return vm.loop()
}

func fmtArity(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return itoa(n) + " arguments"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// loop is the fetch-decode-execute cycle. It returns the value returned
// by the outermost frame, or a RuntimeError.
func (vm *VM) loop() (Value, error) {
	for {
		if vm.opts.StepBudget > 0 && vm.stepsTaken >= vm.opts.StepBudget {
			vm.halted = true
			err := vm.runtimeErr(&TimeoutError{StepsExecuted: vm.stepsTaken})
			vm.haltReason = err
			return Nil(), err
		}
		if int(vm.ip) >= len(vm.program.Bytecode) {
			return Nil(), vm.runtimeErr(&AbortedError{})
		}

		vm.stepsTaken++
		op := Opcode(vm.program.Bytecode[vm.ip])
		result, done, err := vm.step(op)
		if err != nil {
			return Nil(), err
		}
		if done {
			return result, nil
		}
	}
}

// step decodes and executes a single instruction at vm.ip, advancing ip
// past it (unless it was a jump or call, which set ip themselves). It
// reports done=true with the final return value when the outermost
// frame returns.
func (vm *VM) step(op Opcode) (Value, bool, error) {
	bc := vm.program.Bytecode
	ip := vm.ip

	switch op {
	case OpNop:
		vm.ip++

	case OpPop:
		if _, err := vm.popValue(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpCopyLast:
		v, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		if err := vm.pushValue(v); err != nil {
			return Nil(), false, err
		}
		if err := vm.pushValue(v); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpLoadInt:
		v := int64(binary.LittleEndian.Uint64(bc[ip+1 : ip+9]))
		if err := vm.pushValue(Int(v)); err != nil {
			return Nil(), false, err
		}
		vm.ip += 9

	case OpLoadFloat:
		bits := binary.LittleEndian.Uint64(bc[ip+1 : ip+9])
		if err := vm.pushValue(Float(math.Float64frombits(bits))); err != nil {
			return Nil(), false, err
		}
		vm.ip += 9

	case OpLoadNil:
		if err := vm.pushValue(Nil()); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpLoadString:
		sid := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		ref, err := vm.arena.AllocString(vm.program.Strings[sid])
		if err != nil {
			return Nil(), false, vm.runtimeErr(err)
		}
		if err := vm.pushValue(StringRef(ref)); err != nil {
			return Nil(), false, err
		}
		vm.ip += 5

	case OpLoadLocal:
		slot := binary.LittleEndian.Uint16(bc[ip+1 : ip+3])
		cur := &vm.callStack[len(vm.callStack)-1]
		if err := vm.pushValue(cur.locals[slot]); err != nil {
			return Nil(), false, err
		}
		vm.ip += 3

	case OpStoreLocal:
		slot := binary.LittleEndian.Uint16(bc[ip+1 : ip+3])
		v, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		cur := &vm.callStack[len(vm.callStack)-1]
		cur.locals[slot] = v
		vm.ip += 3

	case OpReadGlobal:
		sid := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		name := vm.program.Strings[sid]
		v, ok := vm.globals[name]
		if !ok {
			v = Nil()
		}
		if err := vm.pushValue(v); err != nil {
			return Nil(), false, err
		}
		vm.ip += 5

	case OpWriteGlobal:
		sid := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		name := vm.program.Strings[sid]
		v, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		vm.globals[name] = v
		vm.ip += 5

	case OpAdd, OpSub, OpMul, OpDiv:
		if err := vm.binArith(op); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpEq:
		b, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		a, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		if err := vm.pushValue(boolValue(valuesEqual(a, b))); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpLt:
		if err := vm.compareLt(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpAnd, OpOr:
		b, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		a, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		var r bool
		if op == OpAnd {
			r = a.IsTruthy() && b.IsTruthy()
		} else {
			r = a.IsTruthy() || b.IsTruthy()
		}
		if err := vm.pushValue(boolValue(r)); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpNot:
		a, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		if err := vm.pushValue(boolValue(!a.IsTruthy())); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpJumpAbs:
		target := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		vm.ip = target

	case OpJumpIf:
		target := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		cond, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		if cond.IsTruthy() {
			vm.ip = target
		} else {
			vm.ip += 5
		}

	case OpJumpIfNot:
		target := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		cond, err := vm.popValue()
		if err != nil {
			return Nil(), false, err
		}
		if !cond.IsTruthy() {
			vm.ip = target
		} else {
			vm.ip += 5
		}

	case OpLoadFunc:
		entry := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		arity := int(bc[ip+5])
		if err := vm.pushValue(Func(entry, arity)); err != nil {
			return Nil(), false, err
		}
		vm.ip += 6

	case OpCall:
		nargs := int(bc[ip+1])
		vm.ip += 2
		if err := vm.doCall(nargs); err != nil {
			return Nil(), false, err
		}

	case OpCallNative:
		sid := binary.LittleEndian.Uint32(bc[ip+1 : ip+5])
		nargs := int(bc[ip+5])
		vm.ip += 6
		if err := vm.doCallNative(vm.program.Strings[sid], nargs); err != nil {
			return Nil(), false, err
		}

	case OpReturn:
		return vm.doReturn()

	case OpAbort:
		return Nil(), true, vm.runtimeErr(&AbortedError{})

	case OpCreateTable:
		ref, err := vm.arena.AllocTable()
		if err != nil {
			return Nil(), false, vm.runtimeErr(err)
		}
		if err := vm.pushValue(TableRef(ref)); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpGetProp:
		if err := vm.doGetProp(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpSetProp:
		if err := vm.doSetProp(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpAppendTable:
		if err := vm.doAppendTable(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	case OpLen:
		if err := vm.doLen(); err != nil {
			return Nil(), false, err
		}
		vm.ip++

	default:
		return Nil(), false, vm.runtimeErr(&AbortedError{})
	}

	return Nil(), false, nil
}

func boolValue(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func valuesEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNil:
		return true
	case TypeInteger:
		return a.IntVal == b.IntVal
	case TypeFloat:
		return a.FloatVal == b.FloatVal
	case TypeString, TypeTable:
		return a.Ref == b.Ref
	case TypeFunction:
		return a.Entry == b.Entry && a.Arity == b.Arity
	default:
		return false
	}
}

func (vm *VM) binArith(op Opcode) error {
	b, err := vm.popValue()
	if err != nil {
		return err
	}
	a, err := vm.popValue()
	if err != nil {
		return err
	}

	if a.Type == TypeInteger && b.Type == TypeInteger {
		var r int64
		switch op {
		case OpAdd:
			r = a.IntVal + b.IntVal
		case OpSub:
			r = a.IntVal - b.IntVal
		case OpMul:
			r = a.IntVal * b.IntVal
		case OpDiv:
			if b.IntVal == 0 {
				return vm.runtimeErr(&DivideByZeroError{})
			}
			r = a.IntVal / b.IntVal
		}
		return vm.pushValue(Int(r))
	}

	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok {
		return vm.runtimeErr(&TypeMismatchError{Op: op.String(), Expected: "Integer or Float", Got: a.TypeName()})
	}
	if !bok {
		return vm.runtimeErr(&TypeMismatchError{Op: op.String(), Expected: "Integer or Float", Got: b.TypeName()})
	}
	var r float64
	switch op {
	case OpAdd:
		r = af + bf
	case OpSub:
		r = af - bf
	case OpMul:
		r = af * bf
	case OpDiv:
		if bf == 0 {
			return vm.runtimeErr(&DivideByZeroError{})
		}
		r = af / bf
	}
	return vm.pushValue(Float(r))
}

func asFloat(v Value) (float64, bool) {
	switch v.Type {
	case TypeFloat:
		return v.FloatVal, true
	case TypeInteger:
		return float64(v.IntVal), true
	default:
		return 0, false
	}
}

func (vm *VM) compareLt() error {
	b, err := vm.popValue()
	if err != nil {
		return err
	}
	a, err := vm.popValue()
	if err != nil {
		return err
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return vm.runtimeErr(&TypeMismatchError{Op: "LT", Expected: "Integer or Float", Got: a.TypeName() + "/" + b.TypeName()})
	}
	return vm.pushValue(boolValue(af < bf))
}

func (vm *VM) doCall(nargs int) error {
	fnVal, err := vm.popValue()
	if err != nil {
		return err
	}
	if fnVal.Type != TypeFunction {
		return vm.runtimeErr(&TypeMismatchError{Op: "CALL", Expected: "Function", Got: fnVal.TypeName()})
	}
	if fnVal.Arity != nargs {
		return vm.runtimeErr(&TypeMismatchError{Op: "CALL", Expected: fmtArity(fnVal.Arity), Got: fmtArity(nargs)})
	}
	args, err := vm.popN(nargs)
	if err != nil {
		return err
	}

	if len(vm.callStack) >= vm.opts.CallStackCapacity {
		return vm.runtimeErr(&StackOverflowError{Limit: vm.opts.CallStackCapacity})
	}

	fe, numLocals := vm.functionEntryAt(fnVal.Entry)
	locals := make([]Value, numLocals)
	for i := nargs - 1; i >= 0; i-- {
		locals[i] = args[i]
	}

	callSite, haveSite := vm.cardIndexAt(vm.ip - 2)
	vm.callStack = append(vm.callStack, frame{
		functionName:  fe,
		returnIP:      vm.ip,
		locals:        locals,
		callCardIndex: callSite,
		haveCallSite:  haveSite,
	})
	vm.ip = fnVal.Entry
	return nil
}

func (vm *VM) functionEntryAt(entry uint32) (string, int) {
	for _, fe := range vm.program.Functions {
		if fe.Entry == entry {
			return fe.Name, fe.NumLocals
		}
	}
	return "", 0
}

func (vm *VM) doCallNative(name string, nargs int) error {
	nat, ok := vm.natives[name]
	if !ok {
		return vm.runtimeErr(&NativeNotFoundError{Name: name})
	}
	if nat.arity != nargs {
		return vm.runtimeErr(&TypeMismatchError{Op: "CALL_NATIVE " + name, Expected: fmtArity(nat.arity), Got: fmtArity(nargs)})
	}
	args, err := vm.popN(nargs)
	if err != nil {
		return err
	}
	result, callErr := nat.fn(args, &Handle{vm: vm})
	if callErr != nil {
		return vm.runtimeErr(&NativeError{Name: name, Cause: callErr})
	}
	return vm.pushValue(result)
}

// doReturn pops the current frame. If it was the outermost frame, the
// top of the value stack is the program's result and execution is done;
// otherwise execution resumes at the caller's return IP.
func (vm *VM) doReturn() (Value, bool, error) {
	result, err := vm.popValue()
	if err != nil {
		return Nil(), false, err
	}

	n := len(vm.callStack)
	returning := vm.callStack[n-1]
	vm.callStack = vm.callStack[:n-1]

	if n == 1 {
		return result, true, nil
	}

	vm.ip = returning.returnIP
	if err := vm.pushValue(result); err != nil {
		return Nil(), false, err
	}
	return Nil(), false, nil
}

func (vm *VM) doGetProp() error {
	key, err := vm.popValue()
	if err != nil {
		return err
	}
	tv, err := vm.popValue()
	if err != nil {
		return err
	}
	if tv.Type != TypeTable {
		return vm.runtimeErr(&TypeMismatchError{Op: "GET_PROP", Expected: "Table", Got: tv.TypeName()})
	}
	tk, err := vm.toTableKey(key)
	if err != nil {
		return err
	}
	tbl, _ := vm.arena.Table(tv.Ref)
	return vm.pushValue(tbl.Get(tk))
}

func (vm *VM) doSetProp() error {
	val, err := vm.popValue()
	if err != nil {
		return err
	}
	key, err := vm.popValue()
	if err != nil {
		return err
	}
	tv, err := vm.popValue()
	if err != nil {
		return err
	}
	if tv.Type != TypeTable {
		return vm.runtimeErr(&TypeMismatchError{Op: "SET_PROP", Expected: "Table", Got: tv.TypeName()})
	}
	tk, err := vm.toTableKey(key)
	if err != nil {
		return err
	}
	if vm.wouldCreateCycle(tv.Ref, val) {
		return vm.runtimeErr(&TableCycleError{})
	}
	tbl, _ := vm.arena.Table(tv.Ref)
	tbl.Set(tk, val)
	return nil
}

func (vm *VM) doAppendTable() error {
	val, err := vm.popValue()
	if err != nil {
		return err
	}
	tv, err := vm.popValue()
	if err != nil {
		return err
	}
	if tv.Type != TypeTable {
		return vm.runtimeErr(&TypeMismatchError{Op: "APPEND_TABLE", Expected: "Table", Got: tv.TypeName()})
	}
	if vm.wouldCreateCycle(tv.Ref, val) {
		return vm.runtimeErr(&TableCycleError{})
	}
	tbl, _ := vm.arena.Table(tv.Ref)
	tbl.Append(val)
	return nil
}

// wouldCreateCycle reports whether inserting val under the table
// identified by target would make target reachable from itself: target
// directly (self-insertion), or any table transitively reachable from
// val already containing target. Insertion of a table into one of its
// own ancestors is the only way a cycle can form, since every table
// starts empty and is only ever populated through SET_PROP/APPEND_TABLE.
func (vm *VM) wouldCreateCycle(target ObjectRef, val Value) bool {
	if val.Type != TypeTable {
		return false
	}
	visited := make(map[ObjectRef]bool)
	var walk func(ref ObjectRef) bool
	walk = func(ref ObjectRef) bool {
		if ref == target {
			return true
		}
		if visited[ref] {
			return false
		}
		visited[ref] = true
		tbl, ok := vm.arena.Table(ref)
		if !ok {
			return false
		}
		for _, k := range tbl.Keys() {
			v := tbl.Get(k)
			if v.Type == TypeTable && walk(v.Ref) {
				return true
			}
		}
		return false
	}
	return walk(val.Ref)
}

func (vm *VM) doLen() error {
	v, err := vm.popValue()
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeTable:
		tbl, _ := vm.arena.Table(v.Ref)
		return vm.pushValue(Int(int64(tbl.Len())))
	case TypeString:
		s, _ := vm.arena.String(v.Ref)
		return vm.pushValue(Int(int64(len(s))))
	default:
		return vm.runtimeErr(&TypeMismatchError{Op: "LEN", Expected: "Table or String", Got: v.TypeName()})
	}
}

func (vm *VM) toTableKey(v Value) (TableKey, error) {
	switch v.Type {
	case TypeInteger:
		return IntKey(v.IntVal), nil
	case TypeString:
		s, _ := vm.arena.String(v.Ref)
		return StrKey(s), nil
	default:
		return TableKey{}, vm.runtimeErr(&InvalidKeyError{KeyType: v.TypeName()})
	}
}
