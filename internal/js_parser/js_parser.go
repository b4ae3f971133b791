package js_parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/alephjs/aleph-compiler/internal/mime"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ParseError is a syntax error of the source, the location is 1-based.
type ParseError struct {
	Specifier string
	Line      int
	Column    int
	Message   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Specifier, e.Line, e.Column, e.Message)
}

// the grammar fields the compiler passes look up
var knownFields = []string{
	"name", "value", "function", "arguments", "declaration", "source",
	"left", "right", "consequence", "alternative", "condition", "body",
	"parameter", "parameters", "pattern", "object", "property", "key",
}

// Parse parses a JavaScript/TypeScript module, the grammar is chosen by the
// lang or the extension of the source key path: `.ts`, `.mts` and `.cts` use
// the TypeScript grammar, everything else the TSX grammar.
func Parse(ctx context.Context, source *js_ast.Source) (*js_ast.AST, error) {
	psr := sitter.NewParser()
	if isTypeScript(source) {
		psr.SetLanguage(typescript.GetLanguage())
	} else {
		psr.SetLanguage(tsx.GetLanguage())
	}

	src := []byte(source.Contents)
	tree, err := psr.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source.KeyPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, newParseError(source.KeyPath, src, root)
	}

	p := &parser{src: source.Contents}
	return &js_ast.AST{
		Source: source,
		Stmts:  p.stmtList(root),
	}, nil
}

func isTypeScript(source *js_ast.Source) bool {
	if source.Lang != "" {
		return source.Lang == "ts"
	}
	return mime.GetLang(source.KeyPath) == "ts"
}

func newParseError(specifier string, src []byte, root *sitter.Node) *ParseError {
	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	pos := node.StartPoint()
	msg := "syntax error"
	if node.IsMissing() {
		msg = fmt.Sprintf("expected %q", node.Type())
	} else if node.Type() == "ERROR" {
		text := string(src[node.StartByte():node.EndByte()])
		if i := strings.IndexAny(text, "\r\n"); i >= 0 {
			text = text[:i]
		}
		if len(text) > 24 {
			text = text[:24] + "..."
		}
		msg = fmt.Sprintf("unexpected %q", text)
	}
	return &ParseError{
		Specifier: specifier,
		Line:      int(pos.Row) + 1,
		Column:    int(pos.Column) + 1,
		Message:   msg,
	}
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

type parser struct {
	src string
}

func (p *parser) text(n *sitter.Node) string {
	return p.src[n.StartByte():n.EndByte()]
}

func loc(n *sitter.Node) js_ast.Loc {
	return js_ast.Loc{Start: int32(n.StartByte())}
}

// namedChildren returns the named children of the node, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		children = append(children, c)
	}
	return children
}

func sameNode(a *sitter.Node, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (p *parser) fieldNames(n *sitter.Node) map[uint32]string {
	var fields map[uint32]string
	for _, name := range knownFields {
		if c := n.ChildByFieldName(name); c != nil {
			if fields == nil {
				fields = make(map[uint32]string)
			}
			// the start byte identifies a named child, except for empty nodes
			fields[c.StartByte()] = name
		}
	}
	return fields
}

// stmtList converts the children of a `program` or a `statement_block`
// node, the text between the statements is kept as text-only statements.
func (p *parser) stmtList(n *sitter.Node) []js_ast.Stmt {
	var stmts []js_ast.Stmt
	pos := n.StartByte()
	for _, c := range namedChildren(n) {
		if c.StartByte() > pos {
			stmts = append(stmts, p.gap(pos, c.StartByte()))
		}
		stmts = append(stmts, p.stmt(c))
		pos = c.EndByte()
	}
	if n.EndByte() > pos {
		stmts = append(stmts, p.gap(pos, n.EndByte()))
	}
	return stmts
}

func (p *parser) gap(start uint32, end uint32) js_ast.Stmt {
	l := js_ast.Loc{Start: int32(start)}
	return js_ast.Stmt{Loc: l, Data: &js_ast.SRaw{Parts: []js_ast.RawPart{{Loc: l, Text: p.src[start:end]}}}}
}

func (p *parser) stmt(n *sitter.Node) js_ast.Stmt {
	switch n.Type() {
	case "import_statement":
		if s, ok := p.importStmt(n); ok {
			return js_ast.Stmt{Loc: loc(n), Data: s}
		}
	case "export_statement":
		if n.ChildByFieldName("source") != nil {
			if s, ok := p.exportFromStmt(n); ok {
				return js_ast.Stmt{Loc: loc(n), Data: s}
			}
		}
	}
	return js_ast.Stmt{Loc: loc(n), Data: &js_ast.SRaw{Kind: n.Type(), Parts: p.parts(n)}}
}

// parts splits the node into verbatim text and holes for its named children.
func (p *parser) parts(n *sitter.Node) []js_ast.RawPart {
	kind := n.Type()
	stmtHoles := kind == "statement_block" || kind == "program"
	fields := p.fieldNames(n)
	children := namedChildren(n)
	parts := make([]js_ast.RawPart, 0, len(children)*2+1)
	pos := n.StartByte()
	for _, c := range children {
		if c.StartByte() > pos {
			parts = append(parts, js_ast.RawPart{Loc: js_ast.Loc{Start: int32(pos)}, Text: p.src[pos:c.StartByte()]})
		}
		hole := js_ast.RawPart{Loc: loc(c), Field: fields[c.StartByte()]}
		if stmtHoles {
			s := p.stmt(c)
			hole.Stmt = &s
		} else {
			e := p.expr(c)
			hole.Expr = &e
		}
		parts = append(parts, hole)
		pos = c.EndByte()
	}
	if n.EndByte() > pos {
		parts = append(parts, js_ast.RawPart{Loc: js_ast.Loc{Start: int32(pos)}, Text: p.src[pos:n.EndByte()]})
	}
	return parts
}

func (p *parser) expr(n *sitter.Node) js_ast.Expr {
	l := loc(n)
	switch n.Type() {
	case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		return js_ast.Expr{Loc: l, Data: &js_ast.EIdentifier{Name: p.text(n)}}
	case "string":
		raw := p.text(n)
		return js_ast.Expr{Loc: l, Data: &js_ast.EString{Value: unquote(raw), Raw: raw}}
	case "template_string":
		return js_ast.Expr{Loc: l, Data: p.template(n)}
	case "call_expression":
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "import" {
			if args := n.ChildByFieldName("arguments"); args != nil {
				if list := namedChildren(args); len(list) > 0 {
					call := &js_ast.EImportCall{Expr: p.expr(list[0])}
					if len(list) > 1 {
						options := p.expr(list[1])
						call.OptionsOrNil = &options
					}
					return js_ast.Expr{Loc: l, Data: call}
				}
			}
		}
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return js_ast.Expr{Loc: l, Data: p.jsxElement(n)}
	case "jsx_expression":
		return js_ast.Expr{Loc: l, Data: p.jsxExprContainer(n)}
	case "jsx_text":
		return js_ast.Expr{Loc: l, Data: &js_ast.EJSXText{Raw: p.text(n)}}
	}
	return js_ast.Expr{Loc: l, Data: &js_ast.ERaw{Kind: n.Type(), Parts: p.parts(n)}}
}

func (p *parser) template(n *sitter.Node) *js_ast.ETemplate {
	tpl := &js_ast.ETemplate{HeadLoc: js_ast.Loc{Start: int32(n.StartByte()) + 1}}
	pos := n.StartByte() + 1
	end := n.EndByte() - 1
	head := true
	for _, c := range namedChildren(n) {
		if c.Type() != "template_substitution" {
			continue
		}
		raw := p.src[pos:c.StartByte()]
		if head {
			tpl.HeadRaw = raw
			head = false
		} else {
			tpl.Parts[len(tpl.Parts)-1].TailRaw = raw
		}
		value := js_ast.Expr{Loc: loc(c), Data: &js_ast.EMissing{}}
		if inner := namedChildren(c); len(inner) > 0 {
			value = p.expr(inner[0])
		}
		pos = c.EndByte()
		tpl.Parts = append(tpl.Parts, js_ast.TemplatePart{Value: value, TailLoc: js_ast.Loc{Start: int32(pos)}})
	}
	if end < pos {
		end = pos
	}
	if head {
		tpl.HeadRaw = p.src[pos:end]
	} else {
		tpl.Parts[len(tpl.Parts)-1].TailRaw = p.src[pos:end]
	}
	return tpl
}

func (p *parser) importStmt(n *sitter.Node) (*js_ast.SImport, bool) {
	source := n.ChildByFieldName("source")
	if source == nil || source.Type() != "string" {
		return nil, false
	}
	s := &js_ast.SImport{}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "type", "typeof":
			if !c.IsNamed() {
				s.IsTypeOnly = true
			}
		case "import_clause":
			for _, cc := range namedChildren(c) {
				switch cc.Type() {
				case "identifier":
					s.DefaultName = p.text(cc)
				case "namespace_import":
					if ids := namedChildren(cc); len(ids) > 0 {
						s.NamespaceName = p.text(ids[len(ids)-1])
					}
				case "named_imports":
					s.HasItems = true
					for _, spec := range namedChildren(cc) {
						if spec.Type() != "import_specifier" {
							continue
						}
						item := js_ast.ImportItem{}
						if name := spec.ChildByFieldName("name"); name != nil {
							item.Name = p.text(name)
						}
						if alias := spec.ChildByFieldName("alias"); alias != nil {
							item.Alias = p.text(alias)
						}
						for j := 0; j < int(spec.ChildCount()); j++ {
							if t := spec.Child(j); !t.IsNamed() && (t.Type() == "type" || t.Type() == "typeof") {
								item.IsType = true
							}
						}
						s.Items = append(s.Items, item)
					}
				}
			}
		case "import_require_clause":
			return nil, false
		}
	}
	raw := p.text(source)
	s.Path = js_ast.EString{Value: unquote(raw), Raw: raw}
	s.PathLoc = loc(source)
	s.Tail = p.src[source.EndByte():n.EndByte()]
	return s, true
}

func (p *parser) exportFromStmt(n *sitter.Node) (*js_ast.SExportFrom, bool) {
	source := n.ChildByFieldName("source")
	if source == nil || source.Type() != "string" {
		return nil, false
	}
	s := &js_ast.SExportFrom{}
	clauseStart := n.StartByte()
	clauseEnd := uint32(0)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		switch c.Type() {
		case "export":
			clauseStart = c.EndByte()
		case "type":
			s.IsTypeOnly = true
			clauseStart = c.EndByte()
		case "from":
			clauseEnd = c.StartByte()
		}
	}
	if clauseEnd <= clauseStart {
		return nil, false
	}
	raw := p.text(source)
	s.Clause = strings.TrimSpace(p.src[clauseStart:clauseEnd])
	s.Path = js_ast.EString{Value: unquote(raw), Raw: raw}
	s.PathLoc = loc(source)
	s.Tail = p.src[source.EndByte():n.EndByte()]
	return s, true
}

func (p *parser) jsxElement(n *sitter.Node) *js_ast.EJSXElement {
	el := &js_ast.EJSXElement{CloseLoc: js_ast.Loc{Start: int32(n.EndByte())}}
	switch n.Type() {
	case "jsx_self_closing_element":
		el.SelfClosing = true
		p.jsxTag(n, el)
		return el

	case "jsx_fragment":
		text := p.text(n)
		start := n.StartByte() + uint32(strings.IndexByte(text, '>')+1)
		end := n.StartByte() + uint32(strings.LastIndex(text, "</"))
		el.CloseLoc = js_ast.Loc{Start: int32(end)}
		el.Children = p.jsxChildren(n, nil, start, end)
		return el
	}

	open := n.ChildByFieldName("open_tag")
	closeTag := n.ChildByFieldName("close_tag")
	children := namedChildren(n)
	if open == nil && len(children) > 0 && children[0].Type() == "jsx_opening_element" {
		open = children[0]
	}
	if closeTag == nil && len(children) > 0 && children[len(children)-1].Type() == "jsx_closing_element" {
		closeTag = children[len(children)-1]
	}
	start, end := n.StartByte(), n.EndByte()
	if open != nil {
		p.jsxTag(open, el)
		start = open.StartByte() + uint32(strings.LastIndexByte(p.text(open), '>')+1)
	}
	if closeTag != nil {
		end = closeTag.StartByte()
		if i := strings.Index(p.text(closeTag), "</"); i > 0 {
			end += uint32(i)
		}
		el.CloseLoc = js_ast.Loc{Start: int32(end)}
	}
	el.Children = p.jsxChildren(n, []*sitter.Node{open, closeTag}, start, end)
	return el
}

func (p *parser) jsxTag(n *sitter.Node, el *js_ast.EJSXElement) {
	name := n.ChildByFieldName("name")
	if name != nil {
		el.TagName = p.text(name)
	}
	for _, c := range namedChildren(n) {
		if name != nil && sameNode(c, name) {
			continue
		}
		switch c.Type() {
		case "jsx_attribute":
			attr := js_ast.JSXAttr{Loc: loc(c), ValueLoc: js_ast.SyntheticLoc}
			parts := namedChildren(c)
			if len(parts) > 0 {
				attr.Name = p.text(parts[0])
			}
			if len(parts) > 1 {
				value := p.expr(parts[1])
				attr.ValueLoc = value.Loc
				attr.Value = &value
			}
			el.Attrs = append(el.Attrs, attr)
		case "jsx_expression":
			value := p.expr(c)
			el.Attrs = append(el.Attrs, js_ast.JSXAttr{Loc: loc(c), ValueLoc: value.Loc, Value: &value})
		}
	}
}

// jsxChildren converts the children in the byte range, the text between
// them is kept as JSX text. Whitespace at the edges of a child node belongs
// to the surrounding text, adjacent texts are merged.
func (p *parser) jsxChildren(n *sitter.Node, skip []*sitter.Node, start uint32, end uint32) []js_ast.Expr {
	var children []js_ast.Expr
	addText := func(from uint32, to uint32) {
		if to <= from {
			return
		}
		if len(children) > 0 {
			if text, ok := children[len(children)-1].Data.(*js_ast.EJSXText); ok {
				text.Raw += p.src[from:to]
				return
			}
		}
		children = append(children, js_ast.Expr{Loc: js_ast.Loc{Start: int32(from)}, Data: &js_ast.EJSXText{Raw: p.src[from:to]}})
	}
	pos := start
	for _, c := range namedChildren(n) {
		if c.StartByte() < start || c.EndByte() > end {
			continue
		}
		skipped := false
		for _, s := range skip {
			if s != nil && sameNode(c, s) {
				skipped = true
			}
		}
		if skipped {
			continue
		}
		if c.Type() == "jsx_text" {
			addText(pos, c.EndByte())
			pos = c.EndByte()
			continue
		}
		text := p.text(c)
		lead := uint32(len(text) - len(strings.TrimLeft(text, " \t\r\n")))
		trail := uint32(len(text) - len(strings.TrimRight(text, " \t\r\n")))
		addText(pos, c.StartByte()+lead)
		children = append(children, p.expr(c))
		pos = c.EndByte() - trail
	}
	addText(pos, end)
	return children
}

func (p *parser) jsxExprContainer(n *sitter.Node) *js_ast.EJSXExprContainer {
	container := &js_ast.EJSXExprContainer{EndLoc: js_ast.Loc{Start: int32(n.EndByte())}}
	children := namedChildren(n)
	if len(children) != 1 {
		container.Open = p.text(n)
		return container
	}
	c := children[0]
	e := p.expr(c)
	container.Open = p.src[n.StartByte():c.StartByte()]
	container.Expr = &e
	container.Close = p.src[c.EndByte():n.EndByte()]
	return container
}
