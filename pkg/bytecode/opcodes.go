// Package bytecode holds cao-lang's compiled-program representation: the
// opcode set, the Program (bytecode + label table + interned strings +
// hash), its binary wire format, a disassembler, and the stack-based VM
// that executes it.
package bytecode

import "fmt"

// Opcode is a single bytecode instruction tag. Opcodes are grouped into
// ranges by category, matching the spec's representative instruction set
// (§4.3) plus the stack/constant plumbing needed to support it.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop     Opcode = 0x00 // No operation
	OpPop     Opcode = 0x01 // Pop top of stack
	OpCopyLast Opcode = 0x02 // Duplicate top of stack

	// ========================================================================
	// Literals (0x10-0x1F)
	// ========================================================================

	OpLoadInt    Opcode = 0x10 // OpLoadInt <value:i64>
	OpLoadFloat  Opcode = 0x11 // OpLoadFloat <value:f64>
	OpLoadNil    Opcode = 0x12 // push Nil
	OpLoadString Opcode = 0x13 // OpLoadString <sid:u32> push interned string

	// ========================================================================
	// Locals / globals (0x20-0x2F)
	// ========================================================================

	OpLoadLocal   Opcode = 0x20 // OpLoadLocal <slot:u16>
	OpStoreLocal  Opcode = 0x21 // OpStoreLocal <slot:u16>
	OpReadGlobal  Opcode = 0x22 // OpReadGlobal <sid:u32> push global, unset = Nil
	OpWriteGlobal Opcode = 0x23 // OpWriteGlobal <sid:u32>

	// ========================================================================
	// Arithmetic / comparison / logic (0x30-0x4F)
	// ========================================================================

	OpAdd Opcode = 0x30
	OpSub Opcode = 0x31
	OpMul Opcode = 0x32
	OpDiv Opcode = 0x33
	OpEq  Opcode = 0x38
	OpLt  Opcode = 0x39
	OpAnd Opcode = 0x3A
	OpOr  Opcode = 0x3B
	OpNot Opcode = 0x3C

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpJumpAbs   Opcode = 0x50 // OpJumpAbs <offset:u32> unconditional
	OpJumpIf    Opcode = 0x51 // OpJumpIf <offset:u32> pop Bool, jump if true
	OpJumpIfNot Opcode = 0x52 // OpJumpIfNot <offset:u32> pop Bool, jump if false

	// ========================================================================
	// Calls / return (0x60-0x6F)
	// ========================================================================

	OpCall       Opcode = 0x60 // OpCall <nargs:u8> a1..an fn -> r
	OpCallNative Opcode = 0x61 // OpCallNative <idx:u32> <nargs:u8>
	OpReturn     Opcode = 0x62
	OpAbort      Opcode = 0x63
	OpLoadFunc   Opcode = 0x64 // OpLoadFunc <entry:u32> <arity:u8> push function value

	// ========================================================================
	// Table ops (0x70-0x7F)
	// ========================================================================

	OpCreateTable Opcode = 0x70
	OpGetProp     Opcode = 0x71
	OpSetProp     Opcode = 0x72
	OpAppendTable Opcode = 0x73
	OpLen         Opcode = 0x74
)

// OpcodeInfo documents the static shape of an instruction for
// disassembly and validation.
type OpcodeInfo struct {
	Name       string
	StackPop   int // -1 = variable, read from the operand
	StackPush  int
	OperandLen int // fixed operand length in bytes, -1 = variable
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop:      {"NOP", 0, 0, 0},
	OpPop:      {"POP", 1, 0, 0},
	OpCopyLast: {"COPY_LAST", 1, 2, 0},

	OpLoadInt:    {"LOAD_INT", 0, 1, 8},
	OpLoadFloat:  {"LOAD_FLOAT", 0, 1, 8},
	OpLoadNil:    {"LOAD_NIL", 0, 1, 0},
	OpLoadString: {"LOAD_STRING", 0, 1, 4},

	OpLoadLocal:   {"LOAD_LOCAL", 0, 1, 2},
	OpStoreLocal:  {"STORE_LOCAL", 1, 0, 2},
	OpReadGlobal:  {"READ_GLOBAL", 0, 1, 4},
	OpWriteGlobal: {"WRITE_GLOBAL", 1, 0, 4},

	OpAdd: {"ADD", 2, 1, 0},
	OpSub: {"SUB", 2, 1, 0},
	OpMul: {"MUL", 2, 1, 0},
	OpDiv: {"DIV", 2, 1, 0},
	OpEq:  {"EQ", 2, 1, 0},
	OpLt:  {"LT", 2, 1, 0},
	OpAnd: {"AND", 2, 1, 0},
	OpOr:  {"OR", 2, 1, 0},
	OpNot: {"NOT", 1, 1, 0},

	OpJumpAbs:   {"JUMP", 0, 0, 4},
	OpJumpIf:    {"JUMP_IF", 1, 0, 4},
	OpJumpIfNot: {"JUMP_IF_NOT", 1, 0, 4},

	OpCall:       {"CALL", -1, 1, 1},
	OpCallNative: {"CALL_NATIVE", -1, 1, 5},
	OpReturn:     {"RETURN", -1, 0, 0},
	OpAbort:      {"ABORT", 0, 0, 0},
	OpLoadFunc:   {"LOAD_FUNC", 0, 1, 5},

	OpCreateTable: {"CREATE_TABLE", 0, 1, 0},
	OpGetProp:     {"GET_PROP", 2, 1, 0},
	OpSetProp:     {"SET_PROP", 3, 0, 0},
	OpAppendTable: {"APPEND_TABLE", 2, 0, 0},
	OpLen:         {"LEN", 1, 1, 0},
}

// GetOpcodeInfo returns metadata for an opcode, or a synthetic "UNKNOWN"
// entry if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

func (op Opcode) String() string { return GetOpcodeInfo(op).Name }

// IsJump reports whether op edits the instruction pointer directly.
func (op Opcode) IsJump() bool {
	return op == OpJumpAbs || op == OpJumpIf || op == OpJumpIfNot
}
