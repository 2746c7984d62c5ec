package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Disassemble renders a Program's bytecode as a human-readable listing,
// one instruction per line, annotated with the byte offset and — where
// the program's label table names it — the originating card index.
func Disassemble(p *Program) string {
	return DisassembleWithName(p, "<program>")
}

// DisassembleWithName is Disassemble with a caller-supplied header name,
// for embedding a listing inside larger tooling output.
func DisassembleWithName(p *Program, name string) string {
	reverse := make(map[uint32]string, len(p.Labels))
	for _, e := range p.Labels {
		reverse[e.Off] = e.Idx.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%s bytecode) ==\n", name, humanize.Bytes(uint64(len(p.Bytecode))))

	offset := uint32(0)
	for int(offset) < len(p.Bytecode) {
		if label, ok := reverse[offset]; ok {
			fmt.Fprintf(&b, "%s:\n", label)
		}
		n := disasmInstruction(&b, p, offset)
		offset += n
	}
	return b.String()
}

// disasmInstruction writes one instruction's text and returns its total
// length in bytes (opcode + operand).
func disasmInstruction(b *strings.Builder, p *Program, offset uint32) uint32 {
	op := Opcode(p.Bytecode[offset])
	info := GetOpcodeInfo(op)
	bc := p.Bytecode

	switch op {
	case OpLoadInt:
		v := int64(binary.LittleEndian.Uint64(bc[offset+1 : offset+9]))
		fmt.Fprintf(b, "%04d  %-14s %d\n", offset, info.Name, v)
		return 9
	case OpLoadFloat:
		bits := binary.LittleEndian.Uint64(bc[offset+1 : offset+9])
		fmt.Fprintf(b, "%04d  %-14s %g\n", offset, info.Name, math.Float64frombits(bits))
		return 9
	case OpLoadString:
		sid := binary.LittleEndian.Uint32(bc[offset+1 : offset+5])
		str := "?"
		if int(sid) < len(p.Strings) {
			str = p.Strings[sid]
		}
		fmt.Fprintf(b, "%04d  %-14s %d %q\n", offset, info.Name, sid, str)
		return 5
	case OpReadGlobal, OpWriteGlobal:
		sid := binary.LittleEndian.Uint32(bc[offset+1 : offset+5])
		name := "?"
		if int(sid) < len(p.Strings) {
			name = p.Strings[sid]
		}
		fmt.Fprintf(b, "%04d  %-14s %s\n", offset, info.Name, name)
		return 5
	case OpLoadLocal, OpStoreLocal:
		slot := binary.LittleEndian.Uint16(bc[offset+1 : offset+3])
		fmt.Fprintf(b, "%04d  %-14s slot %d\n", offset, info.Name, slot)
		return 3
	case OpJumpAbs, OpJumpIf, OpJumpIfNot:
		target := binary.LittleEndian.Uint32(bc[offset+1 : offset+5])
		fmt.Fprintf(b, "%04d  %-14s -> %04d\n", offset, info.Name, target)
		return 5
	case OpCall:
		nargs := bc[offset+1]
		fmt.Fprintf(b, "%04d  %-14s argc=%d\n", offset, info.Name, nargs)
		return 2
	case OpCallNative:
		sid := binary.LittleEndian.Uint32(bc[offset+1 : offset+5])
		nargs := bc[offset+5]
		name := "?"
		if int(sid) < len(p.Strings) {
			name = p.Strings[sid]
		}
		fmt.Fprintf(b, "%04d  %-14s %s argc=%d\n", offset, info.Name, name, nargs)
		return 6
	case OpLoadFunc:
		entry := binary.LittleEndian.Uint32(bc[offset+1 : offset+5])
		arity := bc[offset+5]
		fmt.Fprintf(b, "%04d  %-14s entry=%04d arity=%d\n", offset, info.Name, entry, arity)
		return 6
	default:
		fmt.Fprintf(b, "%04d  %s\n", offset, info.Name)
		return uint32(1 + info.OperandLen)
	}
}
