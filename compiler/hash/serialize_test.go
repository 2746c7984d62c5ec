package hash

import (
	"bytes"
	"testing"
)

func TestSerializeDeterministic(t *testing.T) {
	build := func() HNode {
		return &HFunction{
			QualifiedName: "root.foo",
			Arity:         1,
			Body: []HNode{
				&HReadVar{Name: "x"},
				&HIntLiteral{Value: 1},
				&HBinOp{Kind: OpTagAdd},
				&HReturn{},
			},
		}
	}

	a := Serialize(build())
	b := Serialize(build())
	if !bytes.Equal(a, b) {
		t.Fatal("two serializations of an equivalent tree differ")
	}
}

func TestSerializeDistinguishesStructure(t *testing.T) {
	a := Serialize(&HIfTrue{Child: &HIntLiteral{Value: 1}})
	b := Serialize(&HIfFalse{Child: &HIntLiteral{Value: 1}})
	if bytes.Equal(a, b) {
		t.Fatal("HIfTrue and HIfFalse must serialize differently")
	}
}

func TestSerializeStartsWithHashVersion(t *testing.T) {
	data := Serialize(&HNilLiteral{})
	if len(data) == 0 || data[0] != HashVersion {
		t.Fatalf("first byte = %v, want HashVersion", data)
	}
}

func TestSerializeComposite(t *testing.T) {
	node := &HComposite{Children: []HNode{&HIntLiteral{Value: 1}, &HIntLiteral{Value: 2}}}
	data := Serialize(node)
	if len(data) == 0 {
		t.Fatal("expected non-empty serialization")
	}
}
