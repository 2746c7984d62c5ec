package bytecode

import (
	"fmt"
	"strconv"
)

// ValueType tags the variant held by a Value.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeTable
	TypeFunction
)

func (t ValueType) String() string {
	switch t {
	case TypeNil:
		return "Nil"
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	case TypeTable:
		return "Table"
	case TypeFunction:
		return "Function"
	default:
		return "Unknown"
	}
}

// Value is cao-lang's tagged-union runtime value. It has copy semantics:
// assigning or passing a Value never aliases state, except for String and
// Table, which hold a reference (ObjectRef) into the owning VM's arena.
type Value struct {
	Type ValueType

	IntVal   int64
	FloatVal float64

	// String, Table
	Ref ObjectRef

	// Function
	Entry uint32
	Arity int
}

// Nil is the singular Nil value.
func Nil() Value { return Value{Type: TypeNil} }

// Int creates an Integer value.
func Int(v int64) Value { return Value{Type: TypeInteger, IntVal: v} }

// Float creates a Float value.
func Float(v float64) Value { return Value{Type: TypeFloat, FloatVal: v} }

// StringRef creates a String value referencing arena object ref.
func StringRef(ref ObjectRef) Value { return Value{Type: TypeString, Ref: ref} }

// TableRef creates a Table value referencing arena object ref.
func TableRef(ref ObjectRef) Value { return Value{Type: TypeTable, Ref: ref} }

// Func creates a Function value: a bytecode entry offset plus arity,
// pushed by OpLoadFunc and consumed by OpCall.
func Func(entry uint32, arity int) Value {
	return Value{Type: TypeFunction, Entry: entry, Arity: arity}
}

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.Type == TypeNil }

// IsTruthy implements cao-lang's conditional-branch predicate: Nil is
// false, integer/float zero is false, and every String, Table and
// Function value is true regardless of contents (the empty string
// included).
func (v Value) IsTruthy() bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeInteger:
		return v.IntVal != 0
	case TypeFloat:
		return v.FloatVal != 0
	default:
		return true
	}
}

// TypeName returns the display name of v's type, used in TypeMismatch
// error messages.
func (v Value) TypeName() string { return v.Type.String() }

// DebugString renders v for disassembly and error messages. It never
// dereferences the arena — String/Table show only their identity, not
// their contents — so it is safe to call with no VM in scope.
func (v Value) DebugString() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeInteger:
		return strconv.FormatInt(v.IntVal, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.FloatVal, 'g', -1, 64)
	case TypeString:
		return fmt.Sprintf("string(%s)", v.Ref)
	case TypeTable:
		return fmt.Sprintf("table(%s)", v.Ref)
	case TypeFunction:
		return fmt.Sprintf("function(entry=%d, arity=%d)", v.Entry, v.Arity)
	default:
		return "<invalid>"
	}
}
