package hash

import (
	"testing"

	"github.com/chazu/caolang/ir"
)

func TestNormalizeModuleSortsFunctionsByQualifiedName(t *testing.T) {
	mod := ir.NewModule("root")
	mod.InsertFunction(ir.Function{Name: "zeta", Body: []ir.Card{ir.Return()}})
	mod.InsertFunction(ir.Function{Name: "alpha", Body: []ir.Card{ir.Return()}})

	hm := NormalizeModule(mod, "")
	if len(hm.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(hm.Functions))
	}
	if hm.Functions[0].QualifiedName != "root.alpha" || hm.Functions[1].QualifiedName != "root.zeta" {
		t.Fatalf("functions not sorted: %s, %s", hm.Functions[0].QualifiedName, hm.Functions[1].QualifiedName)
	}
}

func TestNormalizeModuleFlattensSubmodules(t *testing.T) {
	mod := ir.NewModule("root")
	mod.InsertFunction(ir.Function{Name: "main", Body: []ir.Card{ir.Return()}})

	sub := ir.Module{Name: "util"}
	sub.InsertFunction(ir.Function{Name: "helper", Body: []ir.Card{ir.Return()}})
	mod.InsertSubmodule(sub)

	hm := NormalizeModule(mod, "")
	names := map[string]bool{}
	for _, fn := range hm.Functions {
		names[fn.QualifiedName] = true
	}
	if !names["root.main"] || !names["root.util.helper"] {
		t.Fatalf("expected root.main and root.util.helper, got %v", names)
	}
}

func TestNormalizeCardPreservesStructure(t *testing.T) {
	c := ir.IfElse(ir.Int(1), ir.Int(2))
	h := normalizeCard(&c)

	ifElse, ok := h.(*HIfElse)
	if !ok {
		t.Fatalf("got %T, want *HIfElse", h)
	}
	then, ok := ifElse.Then.(*HIntLiteral)
	if !ok || then.Value != 1 {
		t.Fatalf("Then = %+v, want HIntLiteral(1)", ifElse.Then)
	}
}

func TestHashModuleInvariantUnderDeclarationOrder(t *testing.T) {
	build := func(swap bool) *ir.Module {
		first := ir.Function{Name: "a", Body: []ir.Card{ir.Int(1), ir.Return()}}
		second := ir.Function{Name: "b", Body: []ir.Card{ir.Int(2), ir.Return()}}
		if swap {
			first, second = second, first
		}
		mod := ir.NewModule("root")
		mod.InsertFunction(first)
		mod.InsertFunction(second)
		return mod
	}

	h1 := HashModule(build(false))
	h2 := HashModule(build(true))

	if h1 != h2 {
		t.Fatal("hash changed when function declaration order was swapped")
	}
}

func TestHashModuleDiffersOnSemanticChange(t *testing.T) {
	mod1 := ir.NewModule("root")
	mod1.InsertFunction(ir.Function{Name: "main", Body: []ir.Card{ir.Int(1), ir.Return()}})

	mod2 := ir.NewModule("root")
	mod2.InsertFunction(ir.Function{Name: "main", Body: []ir.Card{ir.Int(2), ir.Return()}})

	if HashModule(mod1) == HashModule(mod2) {
		t.Fatal("expected different hashes for semantically different modules")
	}
}
