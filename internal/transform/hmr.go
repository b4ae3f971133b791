package transform

import (
	"fmt"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/ije/esbuild-internal/helpers"
)

// instrumentHMR creates the hot context of the module. A module registering
// components for react refresh also installs the refresh runtime and accepts
// the hot updates.
func instrumentHMR(s *state) error {
	specifier := string(helpers.QuoteForJSON(s.ctx.Specifier(), false))

	hmrURL, _ := s.ctx.Resolve(frameworkModule("core/hmr.ts"), false)
	leading := []js_ast.Stmt{
		js_ast.ImportStmt("", []js_ast.ImportItem{{Name: "createHotContext", Alias: "__ALEPH__createHotContext"}}, hmrURL),
	}

	if !hasFreeCall(s.tree, refreshReg) {
		leading = append(leading, js_ast.RawStmt(fmt.Sprintf("import.meta.hot = __ALEPH__createHotContext(%s);", specifier)))
		s.tree.Stmts = append(leading, s.tree.Stmts...)
		return nil
	}

	refreshURL, _ := s.ctx.Resolve(frameworkModule("react/refresh.ts"), false)
	leading = append(
		leading,
		js_ast.ImportStmt("", []js_ast.ImportItem{
			{Name: "RefreshRuntime", Alias: "__ALEPH__RefreshRuntime"},
			{Name: "performReactRefresh", Alias: "__ALEPH__performReactRefresh"},
		}, refreshURL),
		js_ast.RawStmt(fmt.Sprintf("import.meta.hot = __ALEPH__createHotContext(%s);", specifier)),
		js_ast.RawStmt("const __ALEPH__prevRefreshReg = window.$RefreshReg$;"),
		js_ast.RawStmt("const __ALEPH__prevRefreshSig = window.$RefreshSig$;"),
		js_ast.RawStmt(fmt.Sprintf(
			"Object.assign(window, {\n  $RefreshReg$: (type, id) => __ALEPH__RefreshRuntime.register(type, %s + \" \" + id),\n  $RefreshSig$: __ALEPH__RefreshRuntime.createSignatureFunctionForTransform\n});",
			specifier,
		)),
	)
	s.tree.Stmts = append(leading, s.tree.Stmts...)
	s.tree.Stmts = append(
		s.tree.Stmts,
		js_ast.RawStmt("window.$RefreshReg$ = __ALEPH__prevRefreshReg;"),
		js_ast.RawStmt("window.$RefreshSig$ = __ALEPH__prevRefreshSig;"),
		js_ast.RawStmt("if (import.meta.hot) {\n  import.meta.hot.accept(__ALEPH__performReactRefresh);\n}"),
	)
	return nil
}

// hasFreeCall returns true if the module calls the global function of the given name.
func hasFreeCall(tree *js_ast.AST, name string) bool {
	found := false
	tree.Walk(js_ast.Visitor{Expr: func(e *js_ast.Expr) bool {
		if found {
			return false
		}
		var callee *js_ast.Expr
		switch d := e.Data.(type) {
		case *js_ast.ECall:
			callee = &d.Target
		case *js_ast.ERaw:
			if d.Kind == "call_expression" {
				callee = d.Field("function")
			}
		}
		if callee != nil {
			if id, ok := callee.Data.(*js_ast.EIdentifier); ok && id.Name == name && id.Free {
				found = true
				return false
			}
		}
		return true
	}})
	return found
}
