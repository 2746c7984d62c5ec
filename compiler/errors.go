package compiler

import (
	"fmt"

	"github.com/chazu/caolang/ir"
)

// CompileError is satisfied by every error the compiler raises. CardIndex
// reports the card responsible, when the error can be attributed to one; a
// module-level error (EmptyProgram, UnresolvedImport against a whole
// module) may have none.
type CompileError interface {
	error
	CardIndex() (ir.CardIndex, bool)
}

type baseCompileError struct {
	at    ir.CardIndex
	haveAt bool
}

func (e baseCompileError) CardIndex() (ir.CardIndex, bool) { return e.at, e.haveAt }

func at(idx ir.CardIndex) baseCompileError {
	return baseCompileError{at: idx, haveAt: true}
}

// EmptyProgramError: the root module has no functions anywhere in its
// tree, so there is nothing to compile.
type EmptyProgramError struct{ baseCompileError }

func (e *EmptyProgramError) Error() string { return "empty program: module tree has no functions" }

// UnresolvedFunctionError: a CardJump target does not resolve to any
// function reachable from the calling module.
type UnresolvedFunctionError struct {
	baseCompileError
	Target string
}

func (e *UnresolvedFunctionError) Error() string {
	return fmt.Sprintf("unresolved function %q", e.Target)
}

// UnresolvedImportError: a module import names a submodule or "super."
// path that does not exist.
type UnresolvedImportError struct {
	baseCompileError
	Import string
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("unresolved import %q", e.Import)
}

// AmbiguousImportError: an unqualified function reference matches more
// than one imported module.
type AmbiguousImportError struct {
	baseCompileError
	Name       string
	Candidates []string
}

func (e *AmbiguousImportError) Error() string {
	return fmt.Sprintf("ambiguous reference %q: matches %v", e.Name, e.Candidates)
}

// DuplicateNameError: two sibling functions, submodules, or locals in
// the same scope share a name.
type DuplicateNameError struct {
	baseCompileError
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate name %q", e.Name)
}

// BadArityError: a call site's argument count does not match the
// callee's declared arity.
type BadArityError struct {
	baseCompileError
	Function string
	Want     int
	Got      int
}

func (e *BadArityError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Function, e.Want, e.Got)
}

// InvalidJumpTargetError: a jump or branch card's target cannot be
// lowered to a valid instruction offset (e.g. the target function's
// body is empty).
type InvalidJumpTargetError struct {
	baseCompileError
	Target string
}

func (e *InvalidJumpTargetError) Error() string {
	return fmt.Sprintf("invalid jump target %q", e.Target)
}

// RecursionLimitReachedError: CompositeCard nesting exceeds
// CompileOptions.RecursionLimit while lowering a single function body.
type RecursionLimitReachedError struct {
	baseCompileError
	Limit int
}

func (e *RecursionLimitReachedError) Error() string {
	return fmt.Sprintf("composite-card nesting exceeded recursion limit %d", e.Limit)
}

// InvalidCardIndexError: a CardIndex supplied by the caller (e.g. to
// re-lower a single edited card) does not resolve within the module.
type InvalidCardIndexError struct {
	baseCompileError
	Cause error
}

func (e *InvalidCardIndexError) Error() string {
	return fmt.Sprintf("invalid card index: %v", e.Cause)
}
