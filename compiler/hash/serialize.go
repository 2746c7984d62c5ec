package hash

import (
	"encoding/binary"
	"math"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the frozen hashing AST.
//
// Encoding conventions:
//   - First byte: HashVersion
//   - Integers: big-endian fixed-width (int64=8B, uint32=4B)
//   - Floats: IEEE 754 big-endian 8B
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Child nodes: serialized inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an HNode tree,
// suitable for hashing.
func Serialize(node HNode) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeInt(v int) {
	s.writeInt64(int64(v))
}

func (s *serializer) serializeNode(node HNode) {
	switch n := node.(type) {
	case *HIntLiteral:
		s.writeByte(TagIntLiteral)
		s.writeInt64(n.Value)

	case *HFloatLiteral:
		s.writeByte(TagFloatLiteral)
		s.writeFloat64(n.Value)

	case *HStringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)

	case *HNilLiteral:
		s.writeByte(TagNilLiteral)

	case *HReadVar:
		s.writeByte(TagReadVar)
		s.writeString(n.Name)

	case *HSetVar:
		s.writeByte(TagSetVar)
		s.writeString(n.Name)

	case *HReadGlobalVar:
		s.writeByte(TagReadGlobalVar)
		s.writeString(n.Name)

	case *HSetGlobalVar:
		s.writeByte(TagSetGlobalVar)
		s.writeString(n.Name)

	case *HBinOp:
		s.writeByte(TagBinOp)
		s.writeByte(n.Kind)

	case *HUnaryOp:
		s.writeByte(TagUnaryOp)
		s.writeByte(n.Kind)

	case *HCopyLast:
		s.writeByte(TagCopyLast)

	case *HPop:
		s.writeByte(TagPop)

	case *HJump:
		s.writeByte(TagJump)
		s.writeString(n.Target)

	case *HDynamicJump:
		s.writeByte(TagDynamicJump)
		s.writeInt(n.ArgCount)

	case *HReturn:
		s.writeByte(TagReturn)

	case *HAbort:
		s.writeByte(TagAbort)

	case *HLen:
		s.writeByte(TagLen)

	case *HIfTrue:
		s.writeByte(TagIfTrue)
		s.serializeNode(n.Child)

	case *HIfFalse:
		s.writeByte(TagIfFalse)
		s.serializeNode(n.Child)

	case *HIfElse:
		s.writeByte(TagIfElse)
		s.serializeNode(n.Then)
		s.serializeNode(n.Else)

	case *HRepeat:
		s.writeByte(TagRepeat)
		s.writeString(n.IndexVar)
		s.serializeNode(n.Count)
		s.serializeNode(n.Body)

	case *HWhile:
		s.writeByte(TagWhile)
		s.serializeNode(n.Cond)
		s.serializeNode(n.Body)

	case *HForEach:
		s.writeByte(TagForEach)
		s.writeString(n.IndexVar)
		s.writeString(n.KeyVar)
		s.writeString(n.ValueVar)
		s.serializeNode(n.Iterable)
		s.serializeNode(n.Body)

	case *HCreateTable:
		s.writeByte(TagCreateTable)

	case *HGetProperty:
		s.writeByte(TagGetProperty)

	case *HSetProperty:
		s.writeByte(TagSetProperty)

	case *HAppendTable:
		s.writeByte(TagAppendTable)

	case *HCallNative:
		s.writeByte(TagCallNative)
		s.writeString(n.Name)
		s.writeInt(n.ArgCount)

	case *HComposite:
		s.writeByte(TagComposite)
		s.writeUint32(uint32(len(n.Children)))
		for _, child := range n.Children {
			s.serializeNode(child)
		}

	case *HFunction:
		s.writeByte(TagFunction)
		s.writeString(n.QualifiedName)
		s.writeInt(n.Arity)
		s.writeUint32(uint32(len(n.Body)))
		for _, card := range n.Body {
			s.serializeNode(card)
		}

	case *HModule:
		s.writeByte(TagModule)
		s.writeUint32(uint32(len(n.Functions)))
		for _, fn := range n.Functions {
			s.serializeNode(fn)
		}
	}
}
