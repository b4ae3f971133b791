package js_ast

import "strings"

// Field returns the hole of the given grammar field.
func (raw *ERaw) Field(name string) *Expr {
	return fieldOf(raw.Parts, name)
}

// Holes returns the child expressions of the raw node.
func (raw *ERaw) Holes() []*Expr {
	return holesOf(raw.Parts)
}

// Field returns the hole of the given grammar field.
func (raw *SRaw) Field(name string) *Expr {
	return fieldOf(raw.Parts, name)
}

// Holes returns the child expressions of the raw statement.
func (raw *SRaw) Holes() []*Expr {
	return holesOf(raw.Parts)
}

func fieldOf(parts []RawPart, name string) *Expr {
	for i := range parts {
		if parts[i].Field == name && parts[i].Expr != nil {
			return parts[i].Expr
		}
	}
	return nil
}

func holesOf(parts []RawPart) []*Expr {
	var holes []*Expr
	for i := range parts {
		if parts[i].Expr != nil {
			holes = append(holes, parts[i].Expr)
		}
	}
	return holes
}

// RawKind returns the grammar node type of a raw expression, or "".
func RawKind(e Expr) string {
	if raw, ok := e.Data.(*ERaw); ok {
		return raw.Kind
	}
	return ""
}

// LeafText returns the text of a raw node without holes, e.g. a `type_identifier`.
func LeafText(e Expr) (string, bool) {
	switch d := e.Data.(type) {
	case *EIdentifier:
		return d.Name, true
	case *ERaw:
		var sb strings.Builder
		for _, part := range d.Parts {
			if part.IsHole() {
				return "", false
			}
			sb.WriteString(part.Text)
		}
		return sb.String(), true
	}
	return "", false
}

// Attr returns the index of the attribute with the given name, or -1.
func (e *EJSXElement) Attr(name string) int {
	for i, attr := range e.Attrs {
		if attr.Name == name {
			return i
		}
	}
	return -1
}

// StringAttr returns the value of a string literal attribute.
// The second result is false when the attribute is missing or not a literal.
func (e *EJSXElement) StringAttr(name string) (string, bool) {
	i := e.Attr(name)
	if i < 0 || e.Attrs[i].Value == nil {
		return "", false
	}
	return StringValue(*e.Attrs[i].Value)
}

// RemoveAttr removes the attribute with the given name.
func (e *EJSXElement) RemoveAttr(name string) {
	if i := e.Attr(name); i >= 0 {
		e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
	}
}

// SetAttr replaces the value of the attribute with the given name, the
// attribute is appended if missing.
func (e *EJSXElement) SetAttr(name string, value *Expr) {
	if i := e.Attr(name); i >= 0 {
		e.Attrs[i].Value = value
		return
	}
	e.Attrs = append(e.Attrs, JSXAttr{Loc: SyntheticLoc, Name: name, ValueLoc: SyntheticLoc, Value: value})
}

// StringValue returns the value of a string literal, a template literal
// without substitutions, or an expression container holding one of those.
func StringValue(e Expr) (string, bool) {
	switch d := e.Data.(type) {
	case *EString:
		return d.Value, true
	case *ETemplate:
		if len(d.Parts) == 0 {
			return d.HeadRaw, true
		}
	case *EJSXExprContainer:
		if d.Expr != nil {
			return StringValue(*d.Expr)
		}
	}
	return "", false
}

// Synthetic expression and statement constructors.

func Identifier(name string) Expr {
	return Expr{Loc: SyntheticLoc, Data: &EIdentifier{Name: name, Free: true}}
}

func String(value string) Expr {
	return Expr{Loc: SyntheticLoc, Data: &EString{Value: value}}
}

func RawExpr(text string) Expr {
	return Expr{Loc: SyntheticLoc, Data: &ERaw{Parts: []RawPart{{Loc: SyntheticLoc, Text: text}}}}
}

// RawStmt creates a statement printed as the given text.
func RawStmt(text string) Stmt {
	return Stmt{Loc: SyntheticLoc, Data: &SRaw{Parts: []RawPart{{Loc: SyntheticLoc, Text: text}}}}
}

// CallStmt creates `callee(args...);`.
func CallStmt(callee string, args ...Expr) Stmt {
	call := Expr{Loc: SyntheticLoc, Data: &ECall{Target: Identifier(callee), Args: args}}
	return Stmt{Loc: SyntheticLoc, Data: &SRaw{Kind: "expression_statement", Parts: []RawPart{
		{Loc: SyntheticLoc, Expr: &call},
		{Loc: SyntheticLoc, Text: ";"},
	}}}
}

// ImportStmt creates a synthetic import statement, all of the names may be empty.
func ImportStmt(defaultName string, items []ImportItem, path string) Stmt {
	return Stmt{Loc: SyntheticLoc, Data: &SImport{
		DefaultName: defaultName,
		Items:       items,
		HasItems:    len(items) > 0,
		Path:        EString{Value: path},
		PathLoc:     SyntheticLoc,
		Tail:        ";",
	}}
}
