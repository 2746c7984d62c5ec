package bytecode

import "testing"

func TestTableInsertionOrderPreservedOnOverwrite(t *testing.T) {
	tbl := NewTable()
	tbl.Set(StrKey("a"), Int(1))
	tbl.Set(StrKey("b"), Int(2))
	tbl.Set(StrKey("a"), Int(99))

	keys := tbl.Keys()
	if len(keys) != 2 || keys[0].StrKey != "a" || keys[1].StrKey != "b" {
		t.Fatalf("keys = %v, want [a b]", keys)
	}
	if tbl.Get(StrKey("a")).IntVal != 99 {
		t.Fatalf("a = %v, want 99", tbl.Get(StrKey("a")))
	}
}

func TestTableGetMissingIsNil(t *testing.T) {
	tbl := NewTable()
	if !tbl.Get(IntKey(0)).IsNil() {
		t.Fatal("expected Nil for missing key")
	}
	if tbl.Has(IntKey(0)) {
		t.Fatal("expected Has() false for missing key")
	}
}

func TestTableAppendAssignsIncreasingIntKeys(t *testing.T) {
	tbl := NewTable()
	k0 := tbl.Append(placeholderString())
	k1 := tbl.Append(placeholderString())

	if k0.IntKey != 0 || k1.IntKey != 1 {
		t.Fatalf("keys = %v, %v, want 0, 1", k0, k1)
	}
	if tbl.Len() != 2 {
		t.Fatalf("len = %d, want 2", tbl.Len())
	}
}

func TestTableDeletePreservesRemainingOrder(t *testing.T) {
	tbl := NewTable()
	tbl.Set(IntKey(0), Int(1))
	tbl.Set(IntKey(1), Int(2))
	tbl.Set(IntKey(2), Int(3))

	tbl.Delete(IntKey(1))

	keys := tbl.Keys()
	if len(keys) != 2 || keys[0].IntKey != 0 || keys[1].IntKey != 2 {
		t.Fatalf("keys after delete = %v", keys)
	}
}

// placeholderString builds a String-typed Value with no real arena
// reference — table storage never dereferences Values, so tests that
// only exercise ordering/keys don't need a live Arena.
func placeholderString() Value { return Value{Type: TypeString} }
