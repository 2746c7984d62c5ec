package bytecode

import (
	"errors"
	"testing"

	"github.com/chazu/caolang/ir"
)

func TestHandleNewStringAndTable(t *testing.T) {
	p := NewProgram()
	sid := p.InternString("greet")
	p.MarkLabel(ir.NewCardIndex("main", 0))
	p.Emit(OpCallNative)
	p.EmitU32(sid)
	p.EmitByte(0)
	p.Emit(OpReturn)
	p.Functions = append(p.Functions, FunctionEntry{Name: "main", Entry: 0, Arity: 0})

	vm := NewVM(p, DefaultVMOptions())
	vm.RegisterFunction("greet", 0, func(args []Value, h *Handle) (Value, error) {
		return h.NewString("hi")
	})

	result, err := vm.Run("main")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Type != TypeString {
		t.Fatalf("result type = %v, want String", result.Type)
	}
	s, ok := vm.arena.String(result.Ref)
	if !ok || s != "hi" {
		t.Fatalf("String() = %q, %v, want hi, true", s, ok)
	}
}

func TestHandleGlobals(t *testing.T) {
	p := NewProgram()
	sid := p.InternString("touch")
	p.MarkLabel(ir.NewCardIndex("main", 0))
	p.Emit(OpCallNative)
	p.EmitU32(sid)
	p.EmitByte(0)
	p.Emit(OpReturn)
	p.Functions = append(p.Functions, FunctionEntry{Name: "main", Entry: 0, Arity: 0})

	vm := NewVM(p, DefaultVMOptions())
	vm.RegisterFunction("touch", 0, func(args []Value, h *Handle) (Value, error) {
		h.SetGlobal("count", Int(1))
		return h.Global("count"), nil
	})

	result, err := vm.Run("main")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.IntVal != 1 {
		t.Fatalf("result = %d, want 1", result.IntVal)
	}
}

func TestNativeErrorWraps(t *testing.T) {
	p := NewProgram()
	sid := p.InternString("fail")
	p.MarkLabel(ir.NewCardIndex("main", 0))
	p.Emit(OpCallNative)
	p.EmitU32(sid)
	p.EmitByte(0)
	p.Emit(OpReturn)
	p.Functions = append(p.Functions, FunctionEntry{Name: "main", Entry: 0, Arity: 0})

	vm := NewVM(p, DefaultVMOptions())
	cause := errors.New("boom")
	vm.RegisterFunction("fail", 0, func(args []Value, h *Handle) (Value, error) {
		return Nil(), cause
	})

	_, err := vm.Run("main")
	ne, ok := err.(*NativeError)
	if !ok {
		t.Fatalf("got %T, want *NativeError", err)
	}
	if !errors.Is(ne, cause) {
		t.Fatal("NativeError should unwrap to the native's own error")
	}
}
