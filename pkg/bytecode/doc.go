// Package bytecode is cao-lang's compiled-program representation and
// stack-based virtual machine.
//
// A Program is emitted by the compiler package from an ir.Module: flat
// bytecode plus a string table, a card-index label table for error
// traces and tooling, and a content hash. A VM loads a Program and
// executes one of its functions via Run, enforcing configurable bounds
// on the operand stack, call depth, object arena, and instruction
// budget so a misbehaving script fails with a typed error instead of
// exhausting host resources.
package bytecode
