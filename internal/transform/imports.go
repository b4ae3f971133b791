package transform

import (
	"fmt"
	"sort"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
)

// substituteSpecifiers resolves the specifiers of the imports, the exports
// from other modules and the dynamic imports, then prepends the imports of
// the used magic components, the css module helper and the extra imports.
func substituteSpecifiers(s *state) error {
	var leading []js_ast.Stmt

	tags := s.magicTags.Values()
	sort.Strings(tags)
	for _, tag := range tags {
		component, ok := magicComponents[tag]
		if !ok {
			return &TransformInvariantViolation{Pass: "imports", Message: fmt.Sprintf("unknown magic tag <%s>", tag)}
		}
		importURL, _ := s.ctx.Resolve(frameworkModule(s.options.JSXRuntime+"/components/"+component+".ts"), false)
		leading = append(leading, js_ast.ImportStmt(magicIdent(component), nil, importURL))
	}
	if s.useCSSModuleHelper {
		importURL, _ := s.ctx.Resolve(frameworkModule("core/style.ts"), false)
		leading = append(leading, js_ast.ImportStmt("", []js_ast.ImportItem{
			{Name: "cssModuleClassNames", Alias: cssModuleHelper},
		}, importURL))
	}

	s.tree.Walk(js_ast.Visitor{
		Stmt: func(st *js_ast.Stmt) bool {
			switch d := st.Data.(type) {
			case *js_ast.SImport:
				if !d.IsTypeOnly {
					importURL, _ := s.ctx.Resolve(d.Path.Value, false)
					d.Path = js_ast.EString{Value: importURL}
				}
				return false
			case *js_ast.SExportFrom:
				if !d.IsTypeOnly {
					importURL, _ := s.ctx.Resolve(d.Path.Value, false)
					d.Path = js_ast.EString{Value: importURL}
				}
				return false
			}
			return true
		},
		Expr: func(e *js_ast.Expr) bool {
			call, ok := e.Data.(*js_ast.EImportCall)
			if !ok {
				return true
			}
			// only string literal specifiers can be resolved at compile time
			if specifier, ok := js_ast.StringValue(call.Expr); ok {
				importURL, _ := s.ctx.Resolve(specifier, true)
				call.Expr = js_ast.Expr{Loc: call.Expr.Loc, Data: &js_ast.EString{Value: importURL}}
			}
			return true
		},
	})

	for _, importURL := range s.ctx.ExtraImports() {
		leading = append(leading, js_ast.ImportStmt("", nil, importURL))
	}
	if len(leading) > 0 {
		s.tree.Stmts = append(leading, s.tree.Stmts...)
	}
	return nil
}
