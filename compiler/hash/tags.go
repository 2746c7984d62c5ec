package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagIntLiteral    byte = 0x01
	TagFloatLiteral  byte = 0x02
	TagStringLiteral byte = 0x03
	TagNilLiteral    byte = 0x04

	// Variable access
	TagReadVar       byte = 0x05
	TagSetVar        byte = 0x06
	TagReadGlobalVar byte = 0x07
	TagSetGlobalVar  byte = 0x08

	// Arithmetic / comparison / logic
	TagBinOp   byte = 0x09
	TagUnaryOp byte = 0x0A

	// Stack ops
	TagCopyLast byte = 0x0B
	TagPop      byte = 0x0C

	// Reserved 0x0D-0x0F

	// Flow
	TagJump        byte = 0x10
	TagDynamicJump byte = 0x11
	TagReturn      byte = 0x12
	TagAbort       byte = 0x13
	TagIfTrue      byte = 0x14
	TagIfFalse     byte = 0x15
	TagIfElse      byte = 0x16
	TagRepeat      byte = 0x17
	TagWhile       byte = 0x18
	TagForEach     byte = 0x19
	TagLen         byte = 0x1A

	// Table ops
	TagCreateTable  byte = 0x1B
	TagGetProperty  byte = 0x1C
	TagSetProperty  byte = 0x1D
	TagAppendTable  byte = 0x1E

	// Host calls
	TagCallNative byte = 0x1F

	// Inline block
	TagComposite byte = 0x20

	// Top-level
	TagFunction byte = 0x21
	TagModule   byte = 0x22

	// Reserved 0xFE-0xFF
)

// Binary-/unary-op sub-tags distinguish which operation an HBinOp/HUnaryOp
// node performs; written as the node's payload byte, a distinct space
// from the tags above.
const (
	OpTagAdd byte = iota + 1
	OpTagSub
	OpTagMul
	OpTagDiv
	OpTagEquals
	OpTagLess
	OpTagAnd
	OpTagOr
	OpTagNot
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagIntLiteral, TagFloatLiteral, TagStringLiteral, TagNilLiteral,
	TagReadVar, TagSetVar, TagReadGlobalVar, TagSetGlobalVar,
	TagBinOp, TagUnaryOp,
	TagCopyLast, TagPop,
	TagJump, TagDynamicJump, TagReturn, TagAbort,
	TagIfTrue, TagIfFalse, TagIfElse, TagRepeat, TagWhile, TagForEach, TagLen,
	TagCreateTable, TagGetProperty, TagSetProperty, TagAppendTable,
	TagCallNative,
	TagComposite,
	TagFunction, TagModule,
}
