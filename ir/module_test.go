package ir

import "testing"

func TestModuleInsertReplaceRemoveFunction(t *testing.T) {
	m := NewModule("root")
	fn := Function{Name: "main", Body: []Card{Return()}}

	if err := m.InsertFunction(fn); err != nil {
		t.Fatalf("InsertFunction: %v", err)
	}
	if err := m.InsertFunction(fn); err == nil {
		t.Fatal("expected NameCollisionError on duplicate insert")
	}

	replacement := Function{Name: "main", Body: []Card{Int(1), Return()}}
	old, err := m.ReplaceFunction("main", replacement)
	if err != nil {
		t.Fatalf("ReplaceFunction: %v", err)
	}
	if len(old.Body) != 1 {
		t.Fatalf("old.Body len = %d, want 1", len(old.Body))
	}

	removed, err := m.RemoveFunction("main")
	if err != nil {
		t.Fatalf("RemoveFunction: %v", err)
	}
	if len(removed.Body) != 2 {
		t.Fatalf("removed.Body len = %d, want 2", len(removed.Body))
	}
	if len(m.Functions) != 0 {
		t.Fatalf("expected 0 functions after removal, got %d", len(m.Functions))
	}
}

func TestModuleSubmoduleCollisionOnSuper(t *testing.T) {
	m := NewModule("root")
	if err := m.InsertSubmodule(Module{Name: SuperName}); err == nil {
		t.Fatal("expected error inserting submodule named \"super\"")
	}
}

func TestModuleInsertRemoveCardRoundTrip(t *testing.T) {
	m := NewModule("root")
	m.InsertFunction(Function{Name: "main", Body: []Card{Int(1), Return()}})

	idx := NewCardIndex("main", 1)
	c := Int(42)
	if err := m.InsertCard(idx, c); err != nil {
		t.Fatalf("InsertCard: %v", err)
	}

	fn, _ := m.Function("main")
	if len(fn.Body) != 3 {
		t.Fatalf("body len = %d, want 3", len(fn.Body))
	}
	if fn.Body[1].Kind != CardLiteralInt || fn.Body[1].IntValue != 42 {
		t.Fatalf("inserted card wrong: %+v", fn.Body[1])
	}

	removed, err := m.RemoveCard(idx)
	if err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}
	if removed.IntValue != 42 {
		t.Fatalf("removed.IntValue = %d, want 42", removed.IntValue)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("body len after remove = %d, want 2", len(fn.Body))
	}
}

func TestModuleGetCardDescendsIntoComposite(t *testing.T) {
	m := NewModule("root")
	inner := Composite("block", Int(1), Int(2))
	m.InsertFunction(Function{Name: "main", Body: []Card{inner, Return()}})

	idx := NewCardIndex("main", 0).WithSubIndex(1)
	c, err := m.GetCard(idx)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if c.Kind != CardLiteralInt || c.IntValue != 2 {
		t.Fatalf("got %+v, want literal int 2", c)
	}
}

func TestModuleGetCardInvalidIndexForLeaf(t *testing.T) {
	m := NewModule("root")
	m.InsertFunction(Function{Name: "main", Body: []Card{Int(1)}})

	idx := NewCardIndex("main", 0).WithSubIndex(0)
	_, err := m.GetCard(idx)
	if err == nil {
		t.Fatal("expected InvalidIndexForCardTypeError descending into a literal")
	}
	if _, ok := err.(*InvalidIndexForCardTypeError); !ok {
		t.Fatalf("got %T, want *InvalidIndexForCardTypeError", err)
	}
}

func TestModuleReplaceCardDoesNotRenumber(t *testing.T) {
	m := NewModule("root")
	m.InsertFunction(Function{Name: "main", Body: []Card{Int(1), Int(2), Int(3)}})

	idx := NewCardIndex("main", 1)
	old, err := m.ReplaceCard(idx, Int(99))
	if err != nil {
		t.Fatalf("ReplaceCard: %v", err)
	}
	if old.IntValue != 2 {
		t.Fatalf("old.IntValue = %d, want 2", old.IntValue)
	}

	fn, _ := m.Function("main")
	if len(fn.Body) != 3 {
		t.Fatalf("body len = %d, want 3 (replace must not renumber)", len(fn.Body))
	}
	if fn.Body[2].IntValue != 3 {
		t.Fatalf("sibling at index 2 shifted unexpectedly: %+v", fn.Body[2])
	}
}
