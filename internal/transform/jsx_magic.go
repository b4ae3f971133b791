package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/alephjs/aleph-compiler/internal/js_printer"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/ije/esbuild-internal/xxhash"
)

// the framework components replacing the magic tags
var magicComponents = map[string]string{
	"a":      "Anchor",
	"head":   "Head",
	"link":   "StyleLink",
	"style":  "InlineStyle",
	"script": "CustomScript",
}

// rel tokens of `<a>` that become boolean props of the Anchor component
var anchorRelProps = map[string]bool{
	"nav":      true,
	"replace":  true,
	"prefetch": true,
	"exact":    true,
}

var externalHrefRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z\d+\-.]*:|//)`)

func magicIdent(component string) string {
	return "__ALEPH__" + component
}

// substituteMagicTags replaces the `a`, `head`, `link`, `style` and `script`
// tags with the framework components.
func substituteMagicTags(s *state) error {
	var err error
	s.tree.Walk(js_ast.Visitor{Expr: func(e *js_ast.Expr) bool {
		if err != nil {
			return false
		}
		el, ok := e.Data.(*js_ast.EJSXElement)
		if !ok || e.Loc.IsSynthetic() {
			return true
		}
		component, ok := magicComponents[el.TagName]
		if !ok {
			return true
		}
		tag := el.TagName
		var substitute bool
		switch tag {
		case "head", "script":
			substitute = true
		case "a":
			substitute = s.rewriteAnchor(el)
		case "link":
			substitute = s.rewriteStyleLink(el)
		case "style":
			substitute, err = s.rewriteInlineStyle(el)
		}
		if substitute {
			el.TagName = magicIdent(component)
			s.magicTags.Add(tag)
		}
		return true
	}})
	return err
}

func (s *state) rewriteAnchor(el *js_ast.EJSXElement) bool {
	if target, _ := el.StringAttr("target"); target == "_blank" {
		return false
	}
	href, ok := el.StringAttr("href")
	if ok && externalHrefRe.MatchString(href) {
		return false
	}
	if i := el.Attr("href"); i >= 0 {
		el.Attrs[i].Name = "to"
	}
	if i := el.Attr("rel"); i >= 0 {
		rel, ok := el.StringAttr("rel")
		if !ok {
			s.log.Warnf("%s: the rel attribute of <a> should be a string literal", s.ctx.Specifier())
		} else {
			var rest []string
			var props []string
			for _, token := range strings.Fields(rel) {
				if anchorRelProps[token] {
					props = append(props, token)
				} else {
					rest = append(rest, token)
				}
			}
			if len(rest) == 0 {
				el.RemoveAttr("rel")
			} else if len(props) > 0 {
				el.SetAttr("rel", ptr(js_ast.String(strings.Join(rest, " "))))
			}
			for _, prop := range props {
				if el.Attr(prop) < 0 {
					el.Attrs = append(el.Attrs, js_ast.JSXAttr{Loc: js_ast.SyntheticLoc, Name: prop, ValueLoc: js_ast.SyntheticLoc})
				}
			}
		}
	}
	if i := el.Attr("data-active-className"); i >= 0 {
		el.Attrs[i].Name = "activeClassName"
	}
	if i := el.Attr("data-active-style"); i >= 0 {
		el.Attrs[i].Name = "activeStyle"
	}
	return true
}

func (s *state) rewriteStyleLink(el *js_ast.EJSXElement) bool {
	rel, ok := el.StringAttr("rel")
	if !ok {
		return false
	}
	isStyle := false
	for _, token := range strings.Fields(rel) {
		if token == "stylesheet" || token == "style" {
			isStyle = true
			break
		}
	}
	if !isStyle {
		return false
	}
	href, ok := el.StringAttr("href")
	if !ok {
		s.log.Warnf("%s: the href attribute of <link rel=%q> should be a string literal", s.ctx.Specifier(), rel)
		return true
	}
	importURL, canonical := s.ctx.Resolve(href, false)
	el.SetAttr("href", ptr(js_ast.String(canonical)))
	s.ctx.AddExtraImport(importURL)
	return true
}

func (s *state) rewriteInlineStyle(el *js_ast.EJSXElement) (bool, error) {
	if el.Attr("__styleId") >= 0 {
		return true, nil
	}
	index := s.ctx.NextStyleIndex()
	xx := xxhash.New()
	xx.Write([]byte(fmt.Sprintf("%s:%d", s.ctx.Specifier(), index)))
	id := fmt.Sprintf("inline-style-%x", xx.Sum(nil))

	kind := "css"
	lang, ok := el.StringAttr("lang")
	if !ok {
		lang, ok = el.StringAttr("type")
	}
	if ok && lang != "" {
		kind = strings.TrimPrefix(lang, "text/")
	}

	var content []*js_ast.Expr
	for i := range el.Children {
		child := &el.Children[i]
		if text, ok := child.Data.(*js_ast.EJSXText); ok && strings.TrimSpace(text.Raw) == "" {
			continue
		}
		if c, ok := child.Data.(*js_ast.EJSXExprContainer); ok && c.Expr == nil {
			// a comment `{/* ... */}`
			continue
		}
		content = append(content, child)
	}

	el.SetAttr("__styleId", ptr(js_ast.String(id)))
	if len(content) == 0 {
		return true, nil
	}
	if len(content) > 1 {
		s.log.Warnf("%s: <style> should have a single template literal child", s.ctx.Specifier())
		return true, nil
	}

	style := &resolver.InlineStyle{Kind: kind, Quasis: []string{}, Exprs: []string{}}
	switch d := content[0].Data.(type) {
	case *js_ast.EJSXText:
		style.Quasis = append(style.Quasis, d.Raw)
	case *js_ast.EJSXExprContainer:
		switch v := d.Expr.Data.(type) {
		case *js_ast.ETemplate:
			style.Quasis = append(style.Quasis, v.HeadRaw)
			for _, part := range v.Parts {
				style.Exprs = append(style.Exprs, js_printer.PrintExpr(part.Value))
				style.Quasis = append(style.Quasis, part.TailRaw)
			}
		case *js_ast.EString:
			style.Quasis = append(style.Quasis, v.Value)
		default:
			s.log.Warnf("%s: <style> should have a template literal child", s.ctx.Specifier())
			return true, nil
		}
	default:
		s.log.Warnf("%s: <style> should have a template literal child", s.ctx.Specifier())
		return true, nil
	}

	s.ctx.AddInlineStyle(id, style)
	el.Children = []js_ast.Expr{{Loc: js_ast.SyntheticLoc, Data: &js_ast.EJSXExprContainer{
		Expr: ptr(js_ast.String("%%" + id + "-placeholder%%")),
	}}}
	return true, nil
}
