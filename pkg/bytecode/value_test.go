package bytecode

import "testing"

func TestValueIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil(), false},
		{Int(0), false},
		{Int(1), true},
		{Float(0), false},
		{Float(0.1), true},
		{Func(0, 0), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("%s IsTruthy() = %v, want %v", c.v.DebugString(), got, c.want)
		}
	}
}

func TestValueTypeName(t *testing.T) {
	if Int(1).TypeName() != "Integer" {
		t.Fatalf("got %q", Int(1).TypeName())
	}
	if Nil().TypeName() != "Nil" {
		t.Fatalf("got %q", Nil().TypeName())
	}
}
