package bytecode

import (
	"testing"

	"github.com/chazu/caolang/ir"
)

func TestProgramEmitAndPatchJump(t *testing.T) {
	p := NewProgram()
	jmp := p.EmitWithU32(OpJumpIfNot, 0)
	p.Emit(OpLoadNil)
	p.PatchJump(jmp)

	if len(p.Bytecode) != 6 {
		t.Fatalf("bytecode len = %d, want 6", len(p.Bytecode))
	}
	target := uint32(p.Bytecode[jmp+1]) | uint32(p.Bytecode[jmp+2])<<8 | uint32(p.Bytecode[jmp+3])<<16 | uint32(p.Bytecode[jmp+4])<<24
	if target != 6 {
		t.Fatalf("patched target = %d, want 6", target)
	}
}

func TestProgramInternStringDedups(t *testing.T) {
	p := NewProgram()
	a := p.InternString("hello")
	b := p.InternString("world")
	c := p.InternString("hello")

	if a != c {
		t.Fatalf("expected dedup: a=%d c=%d", a, c)
	}
	if a == b {
		t.Fatal("distinct strings must get distinct ids")
	}
	if len(p.Strings) != 2 {
		t.Fatalf("Strings len = %d, want 2", len(p.Strings))
	}
}

func TestProgramSerializeRoundTrip(t *testing.T) {
	p := NewProgram()
	sid := p.InternString("greeting")
	p.MarkLabel(ir.NewCardIndex("main", 0))
	p.Emit(OpLoadString)
	p.EmitU32(sid)
	p.MarkLabel(ir.NewCardIndex("main", 1))
	p.Emit(OpReturn)
	p.Functions = append(p.Functions, FunctionEntry{Name: "main", Entry: 0, Arity: 0, NumLocals: 0})
	p.Hash = [16]byte{1, 2, 3}

	data, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got.Hash != p.Hash {
		t.Fatalf("hash mismatch: got %v want %v", got.Hash, p.Hash)
	}
	if len(got.Strings) != 1 || got.Strings[0] != "greeting" {
		t.Fatalf("strings mismatch: %v", got.Strings)
	}
	if len(got.Bytecode) != len(p.Bytecode) {
		t.Fatalf("bytecode length mismatch: got %d want %d", len(got.Bytecode), len(p.Bytecode))
	}
	off, ok := got.LabelFor(ir.NewCardIndex("main", 1))
	if !ok || off != 5 {
		t.Fatalf("label lookup after round trip: off=%d ok=%v, want 5,true", off, ok)
	}
	fe, ok := got.FunctionByName("main")
	if !ok || fe.Arity != 0 {
		t.Fatalf("function entry after round trip: %+v ok=%v", fe, ok)
	}
}

func TestProgramSerializeDeterministic(t *testing.T) {
	build := func() *Program {
		p := NewProgram()
		p.InternString("a")
		p.InternString("b")
		p.MarkLabel(ir.NewCardIndex("f", 0))
		p.Emit(OpReturn)
		p.Functions = append(p.Functions, FunctionEntry{Name: "f", Entry: 0, Arity: 0})
		return p
	}

	d1, err := build().Serialize()
	if err != nil {
		t.Fatalf("Serialize 1: %v", err)
	}
	d2, err := build().Serialize()
	if err != nil {
		t.Fatalf("Serialize 2: %v", err)
	}
	if string(d1) != string(d2) {
		t.Fatal("two builds of the same program serialized differently")
	}
}
