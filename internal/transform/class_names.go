package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
)

var cssModuleRe = regexp.MustCompile(`\.module\.(css|pcss|postcss)(\?|#|$)`)

const cssModuleHelper = "__ALEPH__cssModuleClassNames"

// extractClassNames records the static class names of the JSX elements. In a
// module importing css modules the string class names are mapped by the css
// module helper.
func extractClassNames(s *state) error {
	for i := range s.tree.Stmts {
		imp, ok := s.tree.Stmts[i].Data.(*js_ast.SImport)
		if !ok || imp.IsTypeOnly || !imp.IsSideEffectOnly() || !cssModuleRe.MatchString(imp.Path.Value) {
			continue
		}
		imp.DefaultName = fmt.Sprintf("__ALEPH__CSS_MODULE_%d", len(s.cssModuleIds))
		s.cssModuleIds = append(s.cssModuleIds, imp.DefaultName)
	}

	s.tree.Walk(js_ast.Visitor{Expr: func(e *js_ast.Expr) bool {
		el, ok := e.Data.(*js_ast.EJSXElement)
		if !ok {
			return true
		}
		for i := range el.Attrs {
			attr := &el.Attrs[i]
			if (attr.Name != "class" && attr.Name != "className") || attr.Value == nil {
				continue
			}
			collectClassNames(*attr.Value, s.ctx.AddStaticClassName)
			if len(s.cssModuleIds) > 0 {
				if value, ok := classNameLiteral(*attr.Value); ok {
					attr.Value = s.cssModuleClassNames(value)
				}
			}
		}
		return true
	}})

	// an unused default import would be dropped by the TypeScript loader
	// together with the side effect
	if !s.useCSSModuleHelper {
		for i := range s.tree.Stmts {
			if imp, ok := s.tree.Stmts[i].Data.(*js_ast.SImport); ok && strings.HasPrefix(imp.DefaultName, "__ALEPH__CSS_MODULE_") {
				imp.DefaultName = ""
			}
		}
		s.cssModuleIds = nil
	}
	return nil
}

func classNameLiteral(e js_ast.Expr) (string, bool) {
	switch d := e.Data.(type) {
	case *js_ast.EString:
		return d.Value, true
	case *js_ast.EJSXExprContainer:
		if d.Expr != nil {
			if str, ok := d.Expr.Data.(*js_ast.EString); ok {
				return str.Value, true
			}
		}
	}
	return "", false
}

// cssModuleClassNames returns `{__ALEPH__cssModuleClassNames([modules], "names")}`.
func (s *state) cssModuleClassNames(value string) *js_ast.Expr {
	modules := make([]js_ast.Expr, len(s.cssModuleIds))
	for i, id := range s.cssModuleIds {
		modules[i] = js_ast.Identifier(id)
	}
	call := js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.ECall{
		Target: js_ast.Identifier(cssModuleHelper),
		Args: []js_ast.Expr{
			{Loc: js_ast.SyntheticLoc, Data: &js_ast.EArray{Items: modules}},
			js_ast.String(value),
		},
	}}
	s.useCSSModuleHelper = true
	return &js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EJSXExprContainer{Expr: &call}}
}

// collectClassNames collects the class names that are known at compile time.
// A name glued to an embedded expression (`btn-${size}`) is not static.
func collectClassNames(e js_ast.Expr, add func(string)) {
	switch d := e.Data.(type) {
	case *js_ast.EString:
		for _, name := range strings.Fields(d.Value) {
			add(name)
		}
	case *js_ast.EJSXExprContainer:
		if d.Expr != nil {
			collectClassNames(*d.Expr, add)
		}
	case *js_ast.ETemplate:
		quasis := make([]string, 0, len(d.Parts)+1)
		quasis = append(quasis, d.HeadRaw)
		for _, part := range d.Parts {
			quasis = append(quasis, part.TailRaw)
		}
		collectQuasiNames(quasis, add)
		for _, part := range d.Parts {
			collectClassNames(part.Value, add)
		}
	case *js_ast.ERaw:
		switch d.Kind {
		case "parenthesized_expression":
			for _, hole := range d.Holes() {
				collectClassNames(*hole, add)
			}
		case "ternary_expression":
			if consequence := d.Field("consequence"); consequence != nil {
				collectClassNames(*consequence, add)
			}
			if alternative := d.Field("alternative"); alternative != nil {
				collectClassNames(*alternative, add)
			}
		case "binary_expression":
			switch binaryOperator(d) {
			case "+":
				collectConcatNames(flattenConcat(e, nil), add)
			case "&&":
				if right := d.Field("right"); right != nil {
					collectClassNames(*right, add)
				}
			case "||", "??":
				for _, hole := range d.Holes() {
					collectClassNames(*hole, add)
				}
			}
		}
	}
}

// collectQuasiNames adds the names of the literal segments, a dynamic value
// sits between two segments. A name glued to a dynamic value is not static.
func collectQuasiNames(quasis []string, add func(string)) {
	for i, quasi := range quasis {
		names := strings.Fields(quasi)
		if len(names) == 0 {
			continue
		}
		if i > 0 && !startsWithSpace(quasi) {
			names = names[1:]
		}
		if i < len(quasis)-1 && len(names) > 0 && !endsWithSpace(quasi) {
			names = names[:len(names)-1]
		}
		for _, name := range names {
			add(name)
		}
	}
}

// collectConcatNames scans the operands of a string concatenation, adjacent
// string literals are joined into one segment.
func collectConcatNames(operands []js_ast.Expr, add func(string)) {
	quasis := []string{""}
	for _, operand := range operands {
		if str, ok := operand.Data.(*js_ast.EString); ok {
			quasis[len(quasis)-1] += str.Value
			continue
		}
		collectClassNames(operand, add)
		quasis = append(quasis, "")
	}
	collectQuasiNames(quasis, add)
}

func flattenConcat(e js_ast.Expr, operands []js_ast.Expr) []js_ast.Expr {
	if d, ok := e.Data.(*js_ast.ERaw); ok && d.Kind == "binary_expression" && binaryOperator(d) == "+" {
		if left := d.Field("left"); left != nil {
			operands = flattenConcat(*left, operands)
		}
		if right := d.Field("right"); right != nil {
			operands = flattenConcat(*right, operands)
		}
		return operands
	}
	return append(operands, e)
}

func binaryOperator(d *js_ast.ERaw) string {
	operator := ""
	for _, part := range d.Parts {
		if !part.IsHole() {
			operator += strings.TrimSpace(part.Text)
		}
	}
	return operator
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsAny(s[:1], " \t\r\n")
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsAny(s[len(s)-1:], " \t\r\n")
}
