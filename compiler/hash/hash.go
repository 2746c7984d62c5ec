package hash

import (
	"crypto/sha256"

	"github.com/chazu/caolang/ir"
)

// HashModule computes the content hash of a compiled module: a 128-bit
// fingerprint over a deterministic serialization of its normalized card
// tree. Two modules with the same functions and cards, declared in any
// order, hash identically as long as every function keeps the same
// qualified name (module path plus function name).
//
// The fingerprint is the first 16 bytes of the SHA-256 digest of the
// serialized hashing AST. SHA-256 is used (rather than a native 128-bit
// hash) because it's already the content-hashing primitive this codebase
// reaches for elsewhere; truncating to 16 bytes satisfies the documented
// 128-bit program fingerprint without adding a second hash algorithm.
func HashModule(mod *ir.Module) [16]byte {
	hm := NormalizeModule(mod, "")
	data := Serialize(hm)
	full := sha256.Sum256(data)
	var out [16]byte
	copy(out[:], full[:16])
	return out
}
