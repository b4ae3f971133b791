package transform

import (
	"regexp"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
)

var scopeKinds = map[string]bool{
	"statement_block":                true,
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"for_statement":                  true,
	"for_in_statement":               true,
	"catch_clause":                   true,
	"class_body":                     true,
}

var declKeywordRe = regexp.MustCompile(`\b(const|let|var|using)\b`)

type scope struct {
	parent *scope
	names  map[string]struct{}
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]struct{}{}}
}

func (sc *scope) declare(name string) {
	if name != "" {
		sc.names[name] = struct{}{}
	}
}

func (sc *scope) has(name string) bool {
	for s := sc; s != nil; s = s.parent {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	return false
}

// bindScopes marks every identifier that is not declared by an enclosing
// scope as free.
func bindScopes(s *state) error {
	root := newScope(nil)
	for i := range s.tree.Stmts {
		collectStmtDecls(&s.tree.Stmts[i], root)
	}
	for i := range s.tree.Stmts {
		bindStmt(&s.tree.Stmts[i], root)
	}
	return nil
}

func bindStmt(st *js_ast.Stmt, sc *scope) {
	raw, ok := st.Data.(*js_ast.SRaw)
	if !ok {
		return
	}
	bindRaw(raw.Kind, raw.Parts, sc)
}

func bindExpr(e *js_ast.Expr, sc *scope) {
	switch d := e.Data.(type) {
	case *js_ast.EIdentifier:
		d.Free = !sc.has(d.Name)
	case *js_ast.ERaw:
		bindRaw(d.Kind, d.Parts, sc)
	case *js_ast.ETemplate:
		for i := range d.Parts {
			bindExpr(&d.Parts[i].Value, sc)
		}
	case *js_ast.EImportCall:
		bindExpr(&d.Expr, sc)
		if d.OptionsOrNil != nil {
			bindExpr(d.OptionsOrNil, sc)
		}
	case *js_ast.ECall:
		bindExpr(&d.Target, sc)
		for i := range d.Args {
			bindExpr(&d.Args[i], sc)
		}
	case *js_ast.EArray:
		for i := range d.Items {
			bindExpr(&d.Items[i], sc)
		}
	case *js_ast.EJSXElement:
		for i := range d.Attrs {
			if d.Attrs[i].Value != nil {
				bindExpr(d.Attrs[i].Value, sc)
			}
		}
		for i := range d.Children {
			bindExpr(&d.Children[i], sc)
		}
	case *js_ast.EJSXExprContainer:
		if d.Expr != nil {
			bindExpr(d.Expr, sc)
		}
	}
}

func bindRaw(kind string, parts []js_ast.RawPart, sc *scope) {
	if scopeKinds[kind] {
		sc = newScope(sc)
		declareHeader(kind, parts, sc)
		collectDecls(parts, sc)
	}
	for i := range parts {
		if parts[i].Expr != nil {
			bindExpr(parts[i].Expr, sc)
		} else if parts[i].Stmt != nil {
			bindStmt(parts[i].Stmt, sc)
		}
	}
}

// declareHeader declares the names a scope node introduces for its body:
// parameters, the name of a function expression, the catch parameter and
// the left side of `for (const x of xs)`.
func declareHeader(kind string, parts []js_ast.RawPart, sc *scope) {
	switch kind {
	case "function", "function_expression", "generator_function":
		if name := fieldOf(parts, "name"); name != nil {
			collectPattern(*name, sc)
		}
	case "for_in_statement":
		for i, part := range parts {
			if part.Field == "left" && part.Expr != nil {
				if i > 0 && declKeywordRe.MatchString(parts[i-1].Text) {
					collectPattern(*part.Expr, sc)
				}
			}
		}
		return
	}
	if params := fieldOf(parts, "parameters"); params != nil {
		collectPattern(*params, sc)
	}
	if param := fieldOf(parts, "parameter"); param != nil {
		collectPattern(*param, sc)
	}
}

func fieldOf(parts []js_ast.RawPart, name string) *js_ast.Expr {
	for i := range parts {
		if parts[i].Field == name && parts[i].Expr != nil {
			return parts[i].Expr
		}
	}
	return nil
}

// collectDecls declares the names of the declarations in the parts, it
// doesn't look into nested scopes.
func collectDecls(parts []js_ast.RawPart, sc *scope) {
	for i := range parts {
		if parts[i].Stmt != nil {
			collectStmtDecls(parts[i].Stmt, sc)
		} else if parts[i].Expr != nil {
			collectExprDecls(parts[i].Expr, sc)
		}
	}
}

func collectStmtDecls(st *js_ast.Stmt, sc *scope) {
	switch d := st.Data.(type) {
	case *js_ast.SImport:
		if d.IsTypeOnly {
			return
		}
		sc.declare(d.DefaultName)
		sc.declare(d.NamespaceName)
		for _, item := range d.Items {
			if item.Alias != "" {
				sc.declare(item.Alias)
			} else {
				sc.declare(item.Name)
			}
		}
	case *js_ast.SRaw:
		collectRawDecls(d.Kind, d.Parts, sc)
	}
}

func collectExprDecls(e *js_ast.Expr, sc *scope) {
	if raw, ok := e.Data.(*js_ast.ERaw); ok {
		collectRawDecls(raw.Kind, raw.Parts, sc)
	}
}

func collectRawDecls(kind string, parts []js_ast.RawPart, sc *scope) {
	switch kind {
	case "variable_declarator":
		if name := fieldOf(parts, "name"); name != nil {
			collectPattern(*name, sc)
		}
		return
	case "function_declaration", "generator_function_declaration", "class_declaration",
		"abstract_class_declaration", "enum_declaration", "class":
		if name := fieldOf(parts, "name"); name != nil {
			if text, ok := js_ast.LeafText(*name); ok {
				sc.declare(text)
			}
		}
		return
	}
	if scopeKinds[kind] {
		return
	}
	collectDecls(parts, sc)
}

// collectPattern declares the bindings of a destructuring pattern or a parameter list.
func collectPattern(e js_ast.Expr, sc *scope) {
	switch d := e.Data.(type) {
	case *js_ast.EIdentifier:
		sc.declare(d.Name)
	case *js_ast.ERaw:
		switch d.Kind {
		case "object_pattern", "array_pattern", "rest_pattern", "formal_parameters":
			for _, hole := range d.Holes() {
				collectPattern(*hole, sc)
			}
		case "pair_pattern":
			if value := d.Field("value"); value != nil {
				collectPattern(*value, sc)
			}
		case "assignment_pattern", "object_assignment_pattern":
			if left := d.Field("left"); left != nil {
				collectPattern(*left, sc)
			}
		case "required_parameter", "optional_parameter":
			if pattern := d.Field("pattern"); pattern != nil {
				collectPattern(*pattern, sc)
			}
		}
	}
}
