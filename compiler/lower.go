package compiler

import (
	"fmt"

	"github.com/chazu/caolang/ir"
	"github.com/chazu/caolang/pkg/bytecode"
)

// funcPatch records a forward-referenced call site: the offset of an
// OpLoadFunc's entry operand and the qualified name whose entry point
// fills it in, once every function has been emitted and its entry is
// known.
type funcPatch struct {
	offset uint32
	target string
}

// funcContext carries the per-function state lowerCard needs: which
// module declared the function (for "super."-relative Jump resolution)
// and its dense local-slot assignment.
type funcContext struct {
	qualifiedName string
	modulePath    string
	slots         *slotAssigner
}

// slotAssigner hands out dense per-function local slots, reusing the
// same slot for a name seen more than once — a local rebound later in
// the body overwrites its existing slot rather than growing the frame.
type slotAssigner struct {
	slots map[string]uint16
	next  uint16
}

func newSlotAssigner() *slotAssigner {
	return &slotAssigner{slots: make(map[string]uint16)}
}

func (s *slotAssigner) slotFor(name string) uint16 {
	if slot, ok := s.slots[name]; ok {
		return slot
	}
	slot := s.next
	s.slots[name] = slot
	s.next++
	return slot
}

type lowerer struct {
	prog         *bytecode.Program
	st           *symbolTable
	opts         CompileOptions
	pendingCalls []funcPatch
	entryOf      map[string]uint32
	tmpCounter   int
}

// tmpSlot allocates a fresh local slot for loop-control bookkeeping
// (CardRepeat's counter, CardForEach's cursor) that no card author can
// name, since the card model only ever contributes identifier-shaped
// names to the symbol.
func (l *lowerer) tmpSlot(fc *funcContext) uint16 {
	name := fmt.Sprintf(" tmp%d", l.tmpCounter)
	l.tmpCounter++
	return fc.slots.slotFor(name)
}

func (l *lowerer) lowerFunction(u funcUnit) CompileError {
	slots := newSlotAssigner()
	for _, arg := range u.fn.Args {
		slots.slotFor(arg)
	}

	fc := &funcContext{
		qualifiedName: u.qualifiedName,
		modulePath:    u.modulePath,
		slots:         slots,
	}

	entry := l.prog.Here()
	for i := range u.fn.Body {
		idx := ir.NewCardIndex(u.qualifiedName, i)
		if err := l.lowerCard(fc, idx, &u.fn.Body[i], 0); err != nil {
			return err
		}
	}

	if !endsInReturnOrAbort(l.prog.Bytecode) {
		l.prog.Emit(bytecode.OpLoadNil)
		l.prog.Emit(bytecode.OpReturn)
	}

	l.prog.Functions = append(l.prog.Functions, bytecode.FunctionEntry{
		Name:      u.qualifiedName,
		Entry:     entry,
		Arity:     len(u.fn.Args),
		NumLocals: int(slots.next),
	})
	l.entryOf[u.qualifiedName] = entry
	return nil
}

func endsInReturnOrAbort(bc []byte) bool {
	if len(bc) == 0 {
		return false
	}
	switch bytecode.Opcode(bc[len(bc)-1]) {
	case bytecode.OpReturn, bytecode.OpAbort:
		return true
	default:
		return false
	}
}

// attachIndex re-raises a resolution error (raised without card context
// by resolve.go, which only knows qualified paths) carrying the CardIndex
// of the Jump card that triggered it.
func attachIndex(err error, idx ir.CardIndex) CompileError {
	switch e := err.(type) {
	case *UnresolvedFunctionError:
		return &UnresolvedFunctionError{baseCompileError: at(idx), Target: e.Target}
	case *AmbiguousImportError:
		return &AmbiguousImportError{baseCompileError: at(idx), Name: e.Name, Candidates: e.Candidates}
	case *UnresolvedImportError:
		return &UnresolvedImportError{baseCompileError: at(idx), Import: e.Import}
	case CompileError:
		return e
	default:
		return &InvalidCardIndexError{baseCompileError: at(idx), Cause: err}
	}
}

// lowerCard emits one card's instructions at the program's current
// offset, recursing into children for container cards. compositeDepth
// counts only CardComposite nesting, matching CompileOptions.RecursionLimit.
func (l *lowerer) lowerCard(fc *funcContext, idx ir.CardIndex, c *ir.Card, compositeDepth int) CompileError {
	l.prog.MarkLabel(idx)

	switch c.Kind {
	case ir.CardLiteralInt:
		l.prog.Emit(bytecode.OpLoadInt)
		l.prog.EmitI64(c.IntValue)

	case ir.CardLiteralFloat:
		l.prog.Emit(bytecode.OpLoadFloat)
		l.prog.EmitF64(c.FloatValue)

	case ir.CardLiteralNil:
		l.prog.Emit(bytecode.OpLoadNil)

	case ir.CardLiteralString:
		sid := l.prog.InternString(c.Name)
		l.prog.Emit(bytecode.OpLoadString)
		l.prog.EmitU32(sid)

	case ir.CardReadVar:
		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(fc.slots.slotFor(c.Name))

	case ir.CardSetVar:
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(fc.slots.slotFor(c.Name))

	case ir.CardReadGlobalVar:
		sid := l.prog.InternString(c.Name)
		l.prog.Emit(bytecode.OpReadGlobal)
		l.prog.EmitU32(sid)

	case ir.CardSetGlobalVar:
		sid := l.prog.InternString(c.Name)
		l.prog.Emit(bytecode.OpWriteGlobal)
		l.prog.EmitU32(sid)

	case ir.CardAdd:
		l.prog.Emit(bytecode.OpAdd)
	case ir.CardSub:
		l.prog.Emit(bytecode.OpSub)
	case ir.CardMul:
		l.prog.Emit(bytecode.OpMul)
	case ir.CardDiv:
		l.prog.Emit(bytecode.OpDiv)
	case ir.CardEquals:
		l.prog.Emit(bytecode.OpEq)
	case ir.CardLess:
		l.prog.Emit(bytecode.OpLt)
	case ir.CardAnd:
		l.prog.Emit(bytecode.OpAnd)
	case ir.CardOr:
		l.prog.Emit(bytecode.OpOr)
	case ir.CardNot:
		l.prog.Emit(bytecode.OpNot)

	case ir.CardCopyLast:
		l.prog.Emit(bytecode.OpCopyLast)
	case ir.CardPop:
		l.prog.Emit(bytecode.OpPop)

	case ir.CardJump:
		target, err := l.st.ResolveFunction(fc.modulePath, c.Target)
		if err != nil {
			return attachIndex(err, idx)
		}
		callee := l.st.functions[target]
		off := l.prog.EmitWithU32(bytecode.OpLoadFunc, 0)
		l.prog.EmitByte(byte(len(callee.Args)))
		l.pendingCalls = append(l.pendingCalls, funcPatch{offset: off, target: target})
		l.prog.Emit(bytecode.OpCall)
		l.prog.EmitByte(byte(len(callee.Args)))

	case ir.CardDynamicJump:
		l.prog.Emit(bytecode.OpCall)
		l.prog.EmitByte(byte(c.ArgCount))

	case ir.CardReturn:
		l.prog.Emit(bytecode.OpReturn)

	case ir.CardAbort:
		l.prog.Emit(bytecode.OpAbort)

	case ir.CardIfTrue:
		jmp := l.prog.EmitWithU32(bytecode.OpJumpIfNot, 0)
		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Child, compositeDepth); err != nil {
			return err
		}
		l.prog.PatchJump(jmp)

	case ir.CardIfFalse:
		jmp := l.prog.EmitWithU32(bytecode.OpJumpIf, 0)
		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Child, compositeDepth); err != nil {
			return err
		}
		l.prog.PatchJump(jmp)

	case ir.CardIfElse:
		jmp := l.prog.EmitWithU32(bytecode.OpJumpIfNot, 0)
		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Then, compositeDepth); err != nil {
			return err
		}
		skip := l.prog.EmitWithU32(bytecode.OpJumpAbs, 0)
		l.prog.PatchJump(jmp)
		if err := l.lowerCard(fc, idx.WithSubIndex(1), c.Else, compositeDepth); err != nil {
			return err
		}
		l.prog.PatchJump(skip)

	case ir.CardRepeat:
		countSlot := l.tmpSlot(fc)
		idxSlot := l.tmpSlot(fc)
		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Count, compositeDepth); err != nil {
			return err
		}
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(countSlot)
		l.prog.Emit(bytecode.OpLoadInt)
		l.prog.EmitI64(0)
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(idxSlot)

		head := l.prog.Here()
		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(countSlot)
		l.prog.Emit(bytecode.OpLt)
		exit := l.prog.EmitWithU32(bytecode.OpJumpIfNot, 0)

		if c.IndexVar != "" {
			l.prog.Emit(bytecode.OpLoadLocal)
			l.prog.EmitU16(idxSlot)
			l.prog.Emit(bytecode.OpStoreLocal)
			l.prog.EmitU16(fc.slots.slotFor(c.IndexVar))
		}

		if err := l.lowerCard(fc, idx.WithSubIndex(1), c.Body, compositeDepth); err != nil {
			return err
		}

		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.Emit(bytecode.OpLoadInt)
		l.prog.EmitI64(1)
		l.prog.Emit(bytecode.OpAdd)
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.EmitWithU32(bytecode.OpJumpAbs, head)
		l.prog.PatchJump(exit)

	case ir.CardWhile:
		head := l.prog.Here()
		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Cond, compositeDepth); err != nil {
			return err
		}
		exit := l.prog.EmitWithU32(bytecode.OpJumpIfNot, 0)
		if err := l.lowerCard(fc, idx.WithSubIndex(1), c.Body, compositeDepth); err != nil {
			return err
		}
		l.prog.EmitWithU32(bytecode.OpJumpAbs, head)
		l.prog.PatchJump(exit)

	case ir.CardForEach:
		iterSlot := l.tmpSlot(fc)
		idxSlot := l.tmpSlot(fc)

		if err := l.lowerCard(fc, idx.WithSubIndex(0), c.Iterable, compositeDepth); err != nil {
			return err
		}
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(iterSlot)
		l.prog.Emit(bytecode.OpLoadInt)
		l.prog.EmitI64(0)
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(idxSlot)

		head := l.prog.Here()
		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(iterSlot)
		l.prog.Emit(bytecode.OpLen)
		l.prog.Emit(bytecode.OpLt)
		exit := l.prog.EmitWithU32(bytecode.OpJumpIfNot, 0)

		if c.IndexVar != "" {
			l.prog.Emit(bytecode.OpLoadLocal)
			l.prog.EmitU16(idxSlot)
			l.prog.Emit(bytecode.OpStoreLocal)
			l.prog.EmitU16(fc.slots.slotFor(c.IndexVar))
		}
		if c.KeyVar != "" {
			l.prog.Emit(bytecode.OpLoadLocal)
			l.prog.EmitU16(idxSlot)
			l.prog.Emit(bytecode.OpStoreLocal)
			l.prog.EmitU16(fc.slots.slotFor(c.KeyVar))
		}
		if c.ValueVar != "" {
			l.prog.Emit(bytecode.OpLoadLocal)
			l.prog.EmitU16(iterSlot)
			l.prog.Emit(bytecode.OpLoadLocal)
			l.prog.EmitU16(idxSlot)
			l.prog.Emit(bytecode.OpGetProp)
			l.prog.Emit(bytecode.OpStoreLocal)
			l.prog.EmitU16(fc.slots.slotFor(c.ValueVar))
		}

		if err := l.lowerCard(fc, idx.WithSubIndex(1), c.Body, compositeDepth); err != nil {
			return err
		}

		l.prog.Emit(bytecode.OpLoadLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.Emit(bytecode.OpLoadInt)
		l.prog.EmitI64(1)
		l.prog.Emit(bytecode.OpAdd)
		l.prog.Emit(bytecode.OpStoreLocal)
		l.prog.EmitU16(idxSlot)
		l.prog.EmitWithU32(bytecode.OpJumpAbs, head)
		l.prog.PatchJump(exit)

	case ir.CardLen:
		l.prog.Emit(bytecode.OpLen)

	case ir.CardCreateTable:
		l.prog.Emit(bytecode.OpCreateTable)
	case ir.CardGetProperty:
		l.prog.Emit(bytecode.OpGetProp)
	case ir.CardSetProperty:
		l.prog.Emit(bytecode.OpSetProp)
	case ir.CardAppendTable:
		l.prog.Emit(bytecode.OpAppendTable)

	case ir.CardCallNative:
		sid := l.prog.InternString(c.Name)
		l.prog.Emit(bytecode.OpCallNative)
		l.prog.EmitU32(sid)
		l.prog.EmitByte(byte(c.ArgCount))

	case ir.CardComposite:
		if compositeDepth+1 > l.opts.RecursionLimit {
			return &RecursionLimitReachedError{baseCompileError: at(idx), Limit: l.opts.RecursionLimit}
		}
		for i := range c.Children {
			if err := l.lowerCard(fc, idx.WithSubIndex(i), &c.Children[i], compositeDepth+1); err != nil {
				return err
			}
		}

	default:
		l.prog.Emit(bytecode.OpNop)
	}

	return nil
}
