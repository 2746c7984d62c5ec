package compiler

import (
	"strings"

	"github.com/chazu/caolang/ir"
)

// symbolTable indexes every function and module in a tree by its dotted
// qualified path, built once per Compile call and consulted by both
// import validation and call-target resolution.
type symbolTable struct {
	functions map[string]*ir.Function
	modules   map[string]*ir.Module
}

func buildSymbolTable(root *ir.Module) *symbolTable {
	st := &symbolTable{
		functions: make(map[string]*ir.Function),
		modules:   make(map[string]*ir.Module),
	}
	st.index(root, "")
	return st
}

func (st *symbolTable) index(mod *ir.Module, prefix string) {
	path := mod.Name
	if prefix != "" {
		path = prefix + "." + mod.Name
	}
	st.modules[path] = mod
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		st.functions[path+"."+fn.Name] = fn
	}
	for i := range mod.Submodules {
		st.index(&mod.Submodules[i], path)
	}
}

// parentPath drops the last dotted segment of path, returning "" (the
// root) if path has only one segment.
func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func joinPath(base, rest string) string {
	if base == "" {
		return rest
	}
	return base + "." + rest
}

// resolveSuperPrefix walks "super." prefixes on target, ascending base
// once per prefix. Returns the ascended base and the stripped target.
func resolveSuperPrefix(base, target string) (string, string, error) {
	for strings.HasPrefix(target, ir.SuperName+".") {
		if base == "" {
			return "", "", &UnresolvedImportError{Import: target}
		}
		base = parentPath(base)
		target = strings.TrimPrefix(target, ir.SuperName+".")
	}
	return base, target, nil
}

// ResolveFunction resolves a Jump target named from within
// the module at contextPath to a fully qualified function name.
//
// Resolution order: a "super."-prefixed target ascends the module tree
// first; the remaining path is then tried (1) relative to the calling
// module itself, (2) relative to each module the calling module imports,
// and (3) as an absolute path from the root. Matching more than one
// import is an AmbiguousImportError; matching none is an
// UnresolvedFunctionError.
func (st *symbolTable) ResolveFunction(contextPath, target string) (string, error) {
	base, rest, err := resolveSuperPrefix(contextPath, target)
	if err != nil {
		return "", err
	}

	if fn := joinPath(base, rest); st.functions[fn] != nil {
		return fn, nil
	}

	var candidates []string
	if mod := st.modules[base]; mod != nil {
		for _, imp := range mod.Imports {
			impBase, impRest, err := resolveSuperPrefix(base, imp)
			if err != nil {
				continue
			}
			impPath := joinPath(impBase, impRest)
			candidate := impPath + "." + rest
			if st.functions[candidate] != nil {
				candidates = append(candidates, candidate)
			}
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		if st.functions[rest] != nil {
			return rest, nil
		}
		return "", &UnresolvedFunctionError{Target: target}
	default:
		return "", &AmbiguousImportError{Name: target, Candidates: candidates}
	}
}

// ValidateImports checks that every import declared anywhere in the tree
// resolves to an existing module or function.
func (st *symbolTable) ValidateImports(root *ir.Module) error {
	return st.validateImportsIn(root, "")
}

func (st *symbolTable) validateImportsIn(mod *ir.Module, prefix string) error {
	path := mod.Name
	if prefix != "" {
		path = prefix + "." + mod.Name
	}
	for _, imp := range mod.Imports {
		base, rest, err := resolveSuperPrefix(path, imp)
		if err != nil {
			return err
		}
		full := joinPath(base, rest)
		if st.modules[full] == nil && st.functions[full] == nil {
			return &UnresolvedImportError{Import: imp}
		}
	}
	for i := range mod.Submodules {
		if err := st.validateImportsIn(&mod.Submodules[i], path); err != nil {
			return err
		}
	}
	return nil
}
