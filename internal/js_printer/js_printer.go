package js_printer

import (
	"bytes"
	"sort"
	"strings"

	"github.com/alephjs/aleph-compiler/internal/js_ast"
	"github.com/ije/esbuild-internal/helpers"
)

type Options struct {
	// AddSourceMappings collects the mappings from the printed code to the
	// source of the tree.
	AddSourceMappings bool
}

type PrintResult struct {
	JS []byte

	// SourceMap is a source map v3 JSON, only set when AddSourceMappings is true
	SourceMap []byte
}

type printer struct {
	js      []byte
	options Options
	source  *js_ast.Source

	// byte offsets of the line starts in the source
	lineOffsets []int32

	genLine  int
	genCol   int
	mappings []mapping
}

type mapping struct {
	genLine  int
	genCol   int
	origLine int
	origCol  int
}

// Print prints the tree as JavaScript/TypeScript code. Untouched raw nodes
// are printed verbatim.
func Print(tree *js_ast.AST, options Options) PrintResult {
	p := &printer{options: options, source: tree.Source}
	if options.AddSourceMappings && tree.Source != nil {
		p.lineOffsets = computeLineOffsets(tree.Source.Contents)
	} else {
		p.options.AddSourceMappings = false
	}
	for i := range tree.Stmts {
		p.printStmt(&tree.Stmts[i])
	}
	result := PrintResult{JS: p.js}
	if p.options.AddSourceMappings {
		result.SourceMap = p.sourceMapJSON()
	}
	return result
}

// PrintExpr prints a single expression without source mappings.
func PrintExpr(e js_ast.Expr) string {
	p := &printer{}
	p.printExpr(&e, false)
	return string(p.js)
}

func computeLineOffsets(contents string) []int32 {
	offsets := []int32{0}
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			offsets = append(offsets, int32(i+1))
		}
	}
	return offsets
}

func (p *printer) print(text string) {
	if text == "" {
		return
	}
	p.js = append(p.js, text...)
	for _, r := range text {
		if r == '\n' {
			p.genLine++
			p.genCol = 0
		} else if r >= 0x10000 {
			p.genCol += 2
		} else {
			p.genCol++
		}
	}
}

// printAt prints text that starts at the given location of the source, every
// line of the text gets a mapping.
func (p *printer) printAt(text string, loc js_ast.Loc) {
	if !p.options.AddSourceMappings || loc.IsSynthetic() || text == "" {
		p.print(text)
		return
	}
	offset := loc.Start
	for {
		p.addMapping(offset)
		i := strings.IndexByte(text, '\n')
		if i < 0 || i == len(text)-1 {
			p.print(text)
			return
		}
		p.print(text[:i+1])
		text = text[i+1:]
		offset += int32(i + 1)
	}
}

func (p *printer) addMapping(offset int32) {
	if !p.options.AddSourceMappings || offset < 0 || int(offset) > len(p.source.Contents) {
		return
	}
	line := sort.Search(len(p.lineOffsets), func(i int) bool { return p.lineOffsets[i] > offset }) - 1
	lineStart := p.lineOffsets[line]
	col := 0
	for _, r := range p.source.Contents[lineStart:offset] {
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
	}
	m := mapping{genLine: p.genLine, genCol: p.genCol, origLine: line, origCol: col}
	if n := len(p.mappings); n > 0 && p.mappings[n-1].genLine == m.genLine && p.mappings[n-1].genCol == m.genCol {
		p.mappings[n-1] = m
		return
	}
	p.mappings = append(p.mappings, m)
}

func (p *printer) printStmt(s *js_ast.Stmt) {
	synthetic := s.Loc.IsSynthetic()
	if synthetic && len(p.js) > 0 && p.js[len(p.js)-1] != '\n' {
		p.print("\n")
	}
	switch d := s.Data.(type) {
	case *js_ast.SRaw:
		p.printParts(d.Parts)

	case *js_ast.SImport:
		p.printAt("import ", s.Loc)
		if d.IsTypeOnly {
			p.print("type ")
		}
		if !d.IsSideEffectOnly() {
			p.printImportClause(d)
			p.print(" from ")
		}
		p.printString(&d.Path, d.PathLoc, false)
		p.print(d.Tail)

	case *js_ast.SExportFrom:
		p.printAt("export ", s.Loc)
		if d.IsTypeOnly {
			p.print("type ")
		}
		p.print(d.Clause)
		p.print(" from ")
		p.printString(&d.Path, d.PathLoc, false)
		p.print(d.Tail)
	}
	if synthetic {
		p.print("\n")
	}
}

func (p *printer) printImportClause(s *js_ast.SImport) {
	needComma := false
	if s.DefaultName != "" {
		p.print(s.DefaultName)
		needComma = true
	}
	if s.NamespaceName != "" {
		if needComma {
			p.print(", ")
		}
		p.print("* as " + s.NamespaceName)
		needComma = true
	}
	if s.HasItems {
		if needComma {
			p.print(", ")
		}
		p.print("{")
		for i, item := range s.Items {
			if i > 0 {
				p.print(",")
			}
			p.print(" ")
			if item.IsType {
				p.print("type ")
			}
			p.print(item.Name)
			if item.Alias != "" && item.Alias != item.Name {
				p.print(" as " + item.Alias)
			}
		}
		if len(s.Items) > 0 {
			p.print(" ")
		}
		p.print("}")
	}
}

func (p *printer) printParts(parts []js_ast.RawPart) {
	for i := range parts {
		part := &parts[i]
		if part.Expr != nil {
			p.printExpr(part.Expr, false)
		} else if part.Stmt != nil {
			p.printStmt(part.Stmt)
		} else {
			p.printAt(part.Text, part.Loc)
		}
	}
}

func (p *printer) printString(s *js_ast.EString, loc js_ast.Loc, inJSXAttr bool) {
	if s.Raw != "" {
		p.printAt(s.Raw, loc)
		return
	}
	if p.options.AddSourceMappings && !loc.IsSynthetic() {
		p.addMapping(loc.Start)
	}
	quoted := string(helpers.QuoteForJSON(s.Value, false))
	if inJSXAttr {
		// escapes are not allowed in JSX attribute strings
		p.print("{" + quoted + "}")
	} else {
		p.print(quoted)
	}
}

func (p *printer) printExpr(e *js_ast.Expr, inJSXAttr bool) {
	switch d := e.Data.(type) {
	case *js_ast.ERaw:
		p.printParts(d.Parts)

	case *js_ast.EIdentifier:
		p.printAt(d.Name, e.Loc)

	case *js_ast.EString:
		p.printString(d, e.Loc, inJSXAttr)

	case *js_ast.ETemplate:
		p.printAt("`", e.Loc)
		p.printAt(d.HeadRaw, d.HeadLoc)
		for i := range d.Parts {
			part := &d.Parts[i]
			p.print("${")
			p.printExpr(&part.Value, false)
			p.print("}")
			p.printAt(part.TailRaw, part.TailLoc)
		}
		p.print("`")

	case *js_ast.EImportCall:
		p.printAt("import(", e.Loc)
		p.printExpr(&d.Expr, false)
		if d.OptionsOrNil != nil {
			p.print(", ")
			p.printExpr(d.OptionsOrNil, false)
		}
		p.print(")")

	case *js_ast.ECall:
		p.printExpr(&d.Target, false)
		p.print("(")
		for i := range d.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(&d.Args[i], false)
		}
		p.print(")")

	case *js_ast.EArray:
		p.printAt("[", e.Loc)
		for i := range d.Items {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(&d.Items[i], false)
		}
		p.print("]")

	case *js_ast.EJSXElement:
		p.printJSXElement(d, e.Loc)

	case *js_ast.EJSXText:
		p.printAt(d.Raw, e.Loc)

	case *js_ast.EJSXExprContainer:
		if d.Expr == nil {
			p.printAt(d.Open, e.Loc)
			break
		}
		if d.Open == "" && d.Close == "" {
			p.printAt("{", e.Loc)
			p.printExpr(d.Expr, false)
			p.print("}")
			break
		}
		p.printAt(d.Open, e.Loc)
		p.printExpr(d.Expr, false)
		p.print(d.Close)

	case *js_ast.EMissing:
	}
}

func (p *printer) printJSXElement(el *js_ast.EJSXElement, loc js_ast.Loc) {
	p.printAt("<", loc)
	p.print(el.TagName)
	for i := range el.Attrs {
		attr := &el.Attrs[i]
		p.print(" ")
		if attr.Name == "" {
			if attr.Value != nil {
				p.printExpr(attr.Value, false)
			}
			continue
		}
		p.printAt(attr.Name, attr.Loc)
		if attr.Value != nil {
			p.print("=")
			p.printExpr(attr.Value, true)
		}
	}
	if el.SelfClosing && len(el.Children) == 0 {
		if len(el.Attrs) > 0 || el.TagName != "" {
			p.print(" ")
		}
		p.print("/>")
		return
	}
	p.print(">")
	for i := range el.Children {
		p.printExpr(&el.Children[i], false)
	}
	p.printAt("</", el.CloseLoc)
	p.print(el.TagName + ">")
}

func (p *printer) sourceMapJSON() []byte {
	buf := bytes.NewBufferString(`{"version":3,"sources":[`)
	buf.Write(helpers.QuoteForJSON(p.source.KeyPath, false))
	buf.WriteString(`],"sourcesContent":[`)
	buf.Write(helpers.QuoteForJSON(p.source.Contents, false))
	buf.WriteString(`],"names":[],"mappings":"`)
	buf.WriteString(encodeMappings(p.mappings))
	buf.WriteString(`"}`)
	return buf.Bytes()
}

func encodeMappings(mappings []mapping) string {
	var buf []byte
	prevGenLine := 0
	prevGenCol := 0
	prevOrigLine := 0
	prevOrigCol := 0
	first := true
	for _, m := range mappings {
		if m.genLine > prevGenLine {
			for ; prevGenLine < m.genLine; prevGenLine++ {
				buf = append(buf, ';')
			}
			prevGenCol = 0
			first = true
		}
		if !first {
			buf = append(buf, ',')
		}
		first = false
		buf = appendVLQ(buf, m.genCol-prevGenCol)
		buf = appendVLQ(buf, 0) // source index
		buf = appendVLQ(buf, m.origLine-prevOrigLine)
		buf = appendVLQ(buf, m.origCol-prevOrigCol)
		prevGenCol = m.genCol
		prevOrigLine = m.origLine
		prevOrigCol = m.origCol
	}
	return string(buf)
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func appendVLQ(buf []byte, value int) []byte {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}
	for {
		digit := vlq & 31
		vlq >>= 5
		if vlq != 0 {
			digit |= 32
		}
		buf = append(buf, base64Chars[digit])
		if vlq == 0 {
			return buf
		}
	}
}
