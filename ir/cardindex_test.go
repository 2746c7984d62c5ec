package ir

import "testing"

func TestCardIndexWithSubIndexAndPop(t *testing.T) {
	root := NewCardIndex("main", 2)
	child := root.WithSubIndex(1)

	if child.Function != "main" {
		t.Fatalf("function = %q, want main", child.Function)
	}
	if len(child.Path) != 2 || child.Path[0] != 2 || child.Path[1] != 1 {
		t.Fatalf("path = %v, want [2 1]", child.Path)
	}
	if child.Current() != 1 {
		t.Fatalf("Current() = %d, want 1", child.Current())
	}

	back := child.Pop()
	if !back.Equal(root) {
		t.Fatalf("Pop() = %v, want %v", back, root)
	}
}

func TestCardIndexString(t *testing.T) {
	idx := NewCardIndex("sub", 0).WithSubIndex(3).WithSubIndex(1)
	if got, want := idx.String(), "sub#0.3.1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestCardIndexEqual(t *testing.T) {
	a := NewCardIndex("main", 0).WithSubIndex(2)
	b := NewCardIndex("main", 0).WithSubIndex(2)
	c := NewCardIndex("main", 0).WithSubIndex(3)

	if !a.Equal(b) {
		t.Fatal("expected a.Equal(b)")
	}
	if a.Equal(c) {
		t.Fatal("expected !a.Equal(c)")
	}
}

func TestCardIndexIsZero(t *testing.T) {
	if !(CardIndex{}).IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if NewCardIndex("main", 0).IsZero() {
		t.Fatal("non-empty index should not report IsZero")
	}
}

func TestTraceString(t *testing.T) {
	tr := Trace{NewCardIndex("main", 0), NewCardIndex("sub", 1)}
	if got, want := tr.String(), "main#0 -> sub#1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
