package transform

import (
	"github.com/alephjs/aleph-compiler/internal/js_ast"
)

const refreshReg = "$RefreshReg$"

// registerComponents appends a `$RefreshReg$(Component, "Component")` call for
// every top-level component of the module, a component is a function with a
// PascalCase name.
func registerComponents(s *state) error {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if isComponentName(name) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for i := range s.tree.Stmts {
		raw, ok := s.tree.Stmts[i].Data.(*js_ast.SRaw)
		if !ok {
			continue
		}
		switch raw.Kind {
		case "function_declaration", "lexical_declaration", "variable_declaration":
			componentNames(raw.Kind, raw.Parts, add)
		case "export_statement":
			for _, hole := range raw.Holes() {
				if r, ok := hole.Data.(*js_ast.ERaw); ok {
					componentNames(r.Kind, r.Parts, add)
				}
			}
		}
	}
	for _, name := range names {
		s.tree.Stmts = append(s.tree.Stmts, js_ast.CallStmt(refreshReg, js_ast.Identifier(name), js_ast.String(name)))
	}
	return nil
}

func componentNames(kind string, parts []js_ast.RawPart, add func(string)) {
	switch kind {
	case "function_declaration", "function", "function_expression":
		if name := fieldOf(parts, "name"); name != nil {
			if text, ok := js_ast.LeafText(*name); ok {
				add(text)
			}
		}
	case "lexical_declaration", "variable_declaration":
		for i := range parts {
			if parts[i].Expr == nil {
				continue
			}
			decl, ok := parts[i].Expr.Data.(*js_ast.ERaw)
			if !ok || decl.Kind != "variable_declarator" {
				continue
			}
			name := decl.Field("name")
			value := decl.Field("value")
			if name == nil || value == nil {
				continue
			}
			switch js_ast.RawKind(*value) {
			case "arrow_function", "function", "function_expression":
				if id, ok := name.Data.(*js_ast.EIdentifier); ok {
					add(id.Name)
				}
			}
		}
	}
}

func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
