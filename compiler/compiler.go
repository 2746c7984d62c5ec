// Package compiler lowers an ir.Module tree to a bytecode.Program: name
// and import resolution (resolve.go), a content hash over the normalized
// card tree (hash/), and single-pass instruction emission (lower.go).
package compiler

import (
	"sort"

	"github.com/chazu/caolang/compiler/hash"
	"github.com/chazu/caolang/ir"
	"github.com/chazu/caolang/pkg/bytecode"
)

// CompileOptions configures a single Compile call.
type CompileOptions struct {
	// RecursionLimit bounds how deeply CardComposite blocks may nest
	// within a single function body. Default 64.
	RecursionLimit int
}

// DefaultCompileOptions returns the compiler's default bounds.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{RecursionLimit: 64}
}

// funcUnit is one function flattened out of the module tree, tagged with
// its fully qualified name and the dotted path of the module that
// declares it (needed to resolve "super."-relative Jump targets).
type funcUnit struct {
	qualifiedName string
	modulePath    string
	fn            *ir.Function
}

func collectFunctions(mod *ir.Module, prefix string) []funcUnit {
	path := mod.Name
	if prefix != "" {
		path = prefix + "." + mod.Name
	}
	var units []funcUnit
	for i := range mod.Functions {
		units = append(units, funcUnit{
			qualifiedName: path + "." + mod.Functions[i].Name,
			modulePath:    path,
			fn:            &mod.Functions[i],
		})
	}
	for i := range mod.Submodules {
		units = append(units, collectFunctions(&mod.Submodules[i], path)...)
	}
	return units
}

// Compile lowers an entire module tree to a bytecode.Program in a single
// pass over each function: dense local-slot assignment, instruction
// emission with back-patched branches and forward-referenced calls, and
// finally a content hash over the normalized card tree. Functions are
// visited in qualified-name order so that a given module tree always
// compiles to byte-identical output.
func Compile(root *ir.Module, opts CompileOptions) (*bytecode.Program, CompileError) {
	if opts.RecursionLimit <= 0 {
		opts.RecursionLimit = DefaultCompileOptions().RecursionLimit
	}

	st := buildSymbolTable(root)
	if err := st.ValidateImports(root); err != nil {
		return nil, err.(CompileError)
	}

	units := collectFunctions(root, "")
	if len(units) == 0 {
		return nil, &EmptyProgramError{}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].qualifiedName < units[j].qualifiedName })

	l := &lowerer{
		prog:    bytecode.NewProgram(),
		st:      st,
		opts:    opts,
		entryOf: make(map[string]uint32),
	}

	for _, u := range units {
		if err := l.lowerFunction(u); err != nil {
			return nil, err
		}
	}

	for _, patch := range l.pendingCalls {
		entry, ok := l.entryOf[patch.target]
		if !ok {
			return nil, &UnresolvedFunctionError{Target: patch.target}
		}
		l.prog.PatchJumpTo(patch.offset, entry)
	}

	l.prog.Hash = hash.HashModule(root)
	return l.prog, nil
}
