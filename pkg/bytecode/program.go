package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/caolang/ir"
	"github.com/pkg/errors"
)

// magic identifies the compiled-program binary format. "CAOL" in ASCII.
var magic = [4]byte{'C', 'A', 'O', 'L'}

const formatVersion uint16 = 1

// FunctionEntry records where a compiled function starts and how many
// arguments it takes, keyed by its qualified name in Program.Functions.
type FunctionEntry struct {
	Name      string
	Entry     uint32
	Arity     int
	NumLocals int
}

// Program is a compiled unit: flat bytecode plus everything needed to run
// and introspect it without the original ir.Module. Labels map a card's
// stable address to the byte offset of the first instruction it emitted,
// so runtime errors can report a Trace and tooling can jump from an
// instruction back to the card that produced it.
type Program struct {
	Bytecode []byte
	Strings  []string
	Labels   map[string]labelEntry
	Functions []FunctionEntry
	Hash     [16]byte
}

// labelEntry pairs a label's byte offset with the CardIndex it was
// recorded under. ir.CardIndex embeds a slice (Path), so it isn't a
// valid map key; labels are keyed by idx.String() instead, with the
// original CardIndex retained here for serialization and iteration.
type labelEntry struct {
	Idx ir.CardIndex
	Off uint32
}

// NewProgram returns an empty program ready for emission.
func NewProgram() *Program {
	return &Program{
		Labels: make(map[string]labelEntry),
	}
}

// Emit appends a single opcode byte, returning its offset.
func (p *Program) Emit(op Opcode) uint32 {
	off := uint32(len(p.Bytecode))
	p.Bytecode = append(p.Bytecode, byte(op))
	return off
}

// EmitByte appends a raw byte operand.
func (p *Program) EmitByte(b byte) {
	p.Bytecode = append(p.Bytecode, b)
}

// EmitU16 appends a little-endian u16 operand.
func (p *Program) EmitU16(v uint16) {
	p.Bytecode = binary.LittleEndian.AppendUint16(p.Bytecode, v)
}

// EmitU32 appends a little-endian u32 operand.
func (p *Program) EmitU32(v uint32) {
	p.Bytecode = binary.LittleEndian.AppendUint32(p.Bytecode, v)
}

// EmitI64 appends a little-endian i64 operand.
func (p *Program) EmitI64(v int64) {
	p.Bytecode = binary.LittleEndian.AppendUint64(p.Bytecode, uint64(v))
}

// EmitF64 appends a little-endian f64 operand (IEEE-754 bit pattern).
func (p *Program) EmitF64(v float64) {
	p.Bytecode = binary.LittleEndian.AppendUint64(p.Bytecode, math.Float64bits(v))
}

// EmitWithU32 emits an opcode followed by a u32 operand, returning the
// opcode's offset. Used for jump-style instructions so PatchJump can find
// the operand at off+1.
func (p *Program) EmitWithU32(op Opcode, operand uint32) uint32 {
	off := p.Emit(op)
	p.EmitU32(operand)
	return off
}

// PatchJump overwrites the u32 operand of the jump instruction at off
// (the offset returned by EmitWithU32) with the current end of the
// bytecode stream. Used for forward jumps whose target isn't known until
// the body has been emitted.
func (p *Program) PatchJump(off uint32) {
	target := uint32(len(p.Bytecode))
	binary.LittleEndian.PutUint32(p.Bytecode[off+1:off+5], target)
}

// PatchJumpTo overwrites the u32 operand that follows the opcode at off
// with an explicit target. The compiler uses it to fill in OpLoadFunc
// entry operands once every callee's offset is known.
func (p *Program) PatchJumpTo(off, target uint32) {
	binary.LittleEndian.PutUint32(p.Bytecode[off+1:off+5], target)
}

// Here returns the offset the next Emit call will use.
func (p *Program) Here() uint32 { return uint32(len(p.Bytecode)) }

// InternString deduplicates and returns the string table index for s.
func (p *Program) InternString(s string) uint32 {
	for i, existing := range p.Strings {
		if existing == s {
			return uint32(i)
		}
	}
	p.Strings = append(p.Strings, s)
	return uint32(len(p.Strings) - 1)
}

// MarkLabel records that idx's first instruction starts at the program's
// current offset.
func (p *Program) MarkLabel(idx ir.CardIndex) {
	p.Labels[idx.String()] = labelEntry{Idx: idx, Off: p.Here()}
}

// LabelFor resolves a CardIndex to its byte offset, for tooling that wants
// to jump from source to disassembly.
func (p *Program) LabelFor(idx ir.CardIndex) (uint32, bool) {
	e, ok := p.Labels[idx.String()]
	return e.Off, ok
}

// FunctionByName looks up a compiled function's entry point and arity.
func (p *Program) FunctionByName(name string) (FunctionEntry, bool) {
	for _, fe := range p.Functions {
		if fe.Name == name {
			return fe, true
		}
	}
	return FunctionEntry{}, false
}

// Serialize encodes the program to the binary wire format:
//
//	magic(4) | version(u16) | hash(16) | n_strings(u32) | strings... |
//	n_labels(u32) | labels{card_index(varint path)->offset(u32)}... |
//	n_functions(u32) | functions{name, entry(u32), arity(u8), num_locals(u32)}... |
//	n_bytes(u32) | bytecode
//
// Each string is length-prefixed (u32) UTF-8. Each card-index path is a
// name (length-prefixed) followed by a varint path length and varint path
// components. Labels and functions are written in a stable, sorted order
// so two semantically identical programs serialize identically.
func (p *Program) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	writeU16(&buf, formatVersion)
	buf.Write(p.Hash[:])

	writeU32(&buf, uint32(len(p.Strings)))
	for _, s := range p.Strings {
		writeU32(&buf, uint32(len(s)))
		buf.WriteString(s)
	}

	keys := make([]string, 0, len(p.Labels))
	for k := range p.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writeU32(&buf, uint32(len(keys)))
	for _, k := range keys {
		e := p.Labels[k]
		writeCardIndex(&buf, e.Idx)
		writeU32(&buf, e.Off)
	}

	funcs := make([]FunctionEntry, len(p.Functions))
	copy(funcs, p.Functions)
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })

	writeU32(&buf, uint32(len(funcs)))
	for _, fe := range funcs {
		writeU32(&buf, uint32(len(fe.Name)))
		buf.WriteString(fe.Name)
		writeU32(&buf, fe.Entry)
		buf.WriteByte(byte(fe.Arity))
		writeU32(&buf, uint32(fe.NumLocals))
	}

	writeU32(&buf, uint32(len(p.Bytecode)))
	buf.Write(p.Bytecode)

	return buf.Bytes(), nil
}

// Deserialize decodes a program previously produced by Serialize.
func Deserialize(data []byte) (*Program, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := r.Read(gotMagic[:]); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("bad magic %q, expected %q", gotMagic, magic)
	}

	version, err := readU16(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading version")
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported program format version %d", version)
	}

	p := NewProgram()
	if _, err := r.Read(p.Hash[:]); err != nil {
		return nil, errors.Wrap(err, "reading hash")
	}

	nStrings, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading string count")
	}
	p.Strings = make([]string, nStrings)
	for i := range p.Strings {
		s, err := readString(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading string %d", i)
		}
		p.Strings[i] = s
	}

	nLabels, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading label count")
	}
	for i := uint32(0); i < nLabels; i++ {
		idx, err := readCardIndex(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading label %d index", i)
		}
		off, err := readU32(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading label %d offset", i)
		}
		p.Labels[idx.String()] = labelEntry{Idx: idx, Off: off}
	}

	nFuncs, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading function count")
	}
	p.Functions = make([]FunctionEntry, nFuncs)
	for i := range p.Functions {
		name, err := readString(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading function %d name", i)
		}
		entry, err := readU32(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading function %d entry", i)
		}
		arityByte, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrapf(err, "reading function %d arity", i)
		}
		numLocals, err := readU32(r)
		if err != nil {
			return nil, errors.Wrapf(err, "reading function %d local count", i)
		}
		p.Functions[i] = FunctionEntry{Name: name, Entry: entry, Arity: int(arityByte), NumLocals: int(numLocals)}
	}

	nBytes, err := readU32(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading bytecode length")
	}
	p.Bytecode = make([]byte, nBytes)
	if _, err := r.Read(p.Bytecode); err != nil {
		return nil, errors.Wrap(err, "reading bytecode")
	}

	return p, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func readU16(r *bytes.Reader) (uint16, error) {
	var tmp [2]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(tmp[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

// writeCardIndex encodes a CardIndex as a length-prefixed function name
// followed by a varint-count, varint-component path.
func writeCardIndex(buf *bytes.Buffer, idx ir.CardIndex) {
	writeU32(buf, uint32(len(idx.Function)))
	buf.WriteString(idx.Function)
	writeVarint(buf, uint64(len(idx.Path)))
	for _, p := range idx.Path {
		writeVarint(buf, uint64(p))
	}
}

func readCardIndex(r *bytes.Reader) (ir.CardIndex, error) {
	name, err := readString(r)
	if err != nil {
		return ir.CardIndex{}, err
	}
	n, err := readVarint(r)
	if err != nil {
		return ir.CardIndex{}, err
	}
	path := make([]int, n)
	for i := range path {
		v, err := readVarint(r)
		if err != nil {
			return ir.CardIndex{}, err
		}
		path[i] = int(v)
	}
	return ir.CardIndex{Function: name, Path: path}, nil
}

func writeVarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readVarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}
