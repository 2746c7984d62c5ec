package hash

import (
	"sort"

	"github.com/chazu/caolang/ir"
)

// ---------------------------------------------------------------------------
// IR normalization: ir.Module -> frozen hashing AST
//
// Walks a module tree and produces an HModule with every function
// flattened to its dotted qualified name and sorted, so two modules that
// declare the same functions and submodules in a different order (or
// nest them differently, as long as the qualified names agree) hash
// identically.
// ---------------------------------------------------------------------------

// NormalizeModule flattens a module tree into an HModule. prefix is the
// dotted path of mod itself (empty for the root module).
func NormalizeModule(mod *ir.Module, prefix string) *HModule {
	qualified := mod.Name
	if prefix != "" {
		qualified = prefix + "." + mod.Name
	}

	hm := &HModule{}
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		hm.Functions = append(hm.Functions, normalizeFunction(fn, qualified))
	}
	for i := range mod.Submodules {
		sub := NormalizeModule(&mod.Submodules[i], qualified)
		hm.Functions = append(hm.Functions, sub.Functions...)
	}

	sort.Slice(hm.Functions, func(i, j int) bool {
		return hm.Functions[i].QualifiedName < hm.Functions[j].QualifiedName
	})
	return hm
}

func normalizeFunction(fn *ir.Function, modulePath string) *HFunction {
	name := fn.Name
	if modulePath != "" {
		name = modulePath + "." + fn.Name
	}
	hf := &HFunction{QualifiedName: name, Arity: len(fn.Args)}
	for i := range fn.Body {
		hf.Body = append(hf.Body, normalizeCard(&fn.Body[i]))
	}
	return hf
}

func binOpTag(k ir.CardKind) byte {
	switch k {
	case ir.CardAdd:
		return OpTagAdd
	case ir.CardSub:
		return OpTagSub
	case ir.CardMul:
		return OpTagMul
	case ir.CardDiv:
		return OpTagDiv
	case ir.CardEquals:
		return OpTagEquals
	case ir.CardLess:
		return OpTagLess
	case ir.CardAnd:
		return OpTagAnd
	case ir.CardOr:
		return OpTagOr
	default:
		return 0
	}
}

func normalizeCard(c *ir.Card) HNode {
	switch c.Kind {
	case ir.CardLiteralInt:
		return &HIntLiteral{Value: c.IntValue}
	case ir.CardLiteralFloat:
		return &HFloatLiteral{Value: c.FloatValue}
	case ir.CardLiteralNil:
		return &HNilLiteral{}
	case ir.CardLiteralString:
		return &HStringLiteral{Value: c.Name}

	case ir.CardReadVar:
		return &HReadVar{Name: c.Name}
	case ir.CardSetVar:
		return &HSetVar{Name: c.Name}
	case ir.CardReadGlobalVar:
		return &HReadGlobalVar{Name: c.Name}
	case ir.CardSetGlobalVar:
		return &HSetGlobalVar{Name: c.Name}

	case ir.CardAdd, ir.CardSub, ir.CardMul, ir.CardDiv, ir.CardEquals, ir.CardLess, ir.CardAnd, ir.CardOr:
		return &HBinOp{Kind: binOpTag(c.Kind)}
	case ir.CardNot:
		return &HUnaryOp{Kind: OpTagNot}

	case ir.CardCopyLast:
		return &HCopyLast{}
	case ir.CardPop:
		return &HPop{}

	case ir.CardJump:
		return &HJump{Target: c.Target}
	case ir.CardDynamicJump:
		return &HDynamicJump{ArgCount: c.ArgCount}
	case ir.CardReturn:
		return &HReturn{}
	case ir.CardAbort:
		return &HAbort{}
	case ir.CardLen:
		return &HLen{}

	case ir.CardIfTrue:
		return &HIfTrue{Child: normalizeCard(c.Child)}
	case ir.CardIfFalse:
		return &HIfFalse{Child: normalizeCard(c.Child)}
	case ir.CardIfElse:
		return &HIfElse{Then: normalizeCard(c.Then), Else: normalizeCard(c.Else)}
	case ir.CardRepeat:
		return &HRepeat{IndexVar: c.IndexVar, Count: normalizeCard(c.Count), Body: normalizeCard(c.Body)}
	case ir.CardWhile:
		return &HWhile{Cond: normalizeCard(c.Cond), Body: normalizeCard(c.Body)}
	case ir.CardForEach:
		return &HForEach{
			IndexVar: c.IndexVar, KeyVar: c.KeyVar, ValueVar: c.ValueVar,
			Iterable: normalizeCard(c.Iterable), Body: normalizeCard(c.Body),
		}

	case ir.CardCreateTable:
		return &HCreateTable{}
	case ir.CardGetProperty:
		return &HGetProperty{}
	case ir.CardSetProperty:
		return &HSetProperty{}
	case ir.CardAppendTable:
		return &HAppendTable{}

	case ir.CardCallNative:
		return &HCallNative{Name: c.Name, ArgCount: c.ArgCount}

	case ir.CardComposite:
		children := make([]HNode, len(c.Children))
		for i := range c.Children {
			children[i] = normalizeCard(&c.Children[i])
		}
		return &HComposite{Children: children}

	default:
		return &HNilLiteral{}
	}
}
