package transform

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/ije/esbuild-internal/helpers"
)

// annotateJSXSource adds the `__source` attribute to the JSX elements, react
// shows the location in the component stacks of the development build.
func annotateJSXSource(s *state) error {
	if s.tree.Source == nil {
		return nil
	}
	contents := s.tree.Source.Contents
	lineOffsets := []int{0}
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			lineOffsets = append(lineOffsets, i+1)
		}
	}
	fileName := string(helpers.QuoteForJSON(s.ctx.Specifier(), false))

	s.tree.Walk(js_ast.Visitor{Expr: func(e *js_ast.Expr) bool {
		el, ok := e.Data.(*js_ast.EJSXElement)
		if !ok || el.TagName == "" || e.Loc.IsSynthetic() || el.Attr("__source") >= 0 {
			return true
		}
		offset := int(e.Loc.Start)
		if offset > len(contents) {
			return true
		}
		line := sort.Search(len(lineOffsets), func(i int) bool { return lineOffsets[i] > offset }) - 1
		column := utf8.RuneCountInString(contents[lineOffsets[line]:offset]) + 1
		value := js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EJSXExprContainer{
			Expr: ptr(js_ast.RawExpr(fmt.Sprintf("{ fileName: %s, lineNumber: %d, columnNumber: %d }", fileName, line+1, column))),
		}}
		el.SetAttr("__source", &value)
		return true
	}})
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
