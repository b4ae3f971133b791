package js_ast

// Visitor is called for every node in depth-first, source order. Returning
// false skips the children of the node. Either callback may be nil.
type Visitor struct {
	Expr func(e *Expr) bool
	Stmt func(s *Stmt) bool
}

func (tree *AST) Walk(v Visitor) {
	for i := range tree.Stmts {
		WalkStmt(&tree.Stmts[i], v)
	}
}

func WalkStmt(s *Stmt, v Visitor) {
	if v.Stmt != nil && !v.Stmt(s) {
		return
	}
	if raw, ok := s.Data.(*SRaw); ok {
		walkParts(raw.Parts, v)
	}
}

func WalkExpr(e *Expr, v Visitor) {
	if v.Expr != nil && !v.Expr(e) {
		return
	}
	switch d := e.Data.(type) {
	case *ERaw:
		walkParts(d.Parts, v)
	case *ETemplate:
		for i := range d.Parts {
			WalkExpr(&d.Parts[i].Value, v)
		}
	case *EImportCall:
		WalkExpr(&d.Expr, v)
		if d.OptionsOrNil != nil {
			WalkExpr(d.OptionsOrNil, v)
		}
	case *ECall:
		WalkExpr(&d.Target, v)
		for i := range d.Args {
			WalkExpr(&d.Args[i], v)
		}
	case *EArray:
		for i := range d.Items {
			WalkExpr(&d.Items[i], v)
		}
	case *EJSXElement:
		for i := range d.Attrs {
			if d.Attrs[i].Value != nil {
				WalkExpr(d.Attrs[i].Value, v)
			}
		}
		for i := range d.Children {
			WalkExpr(&d.Children[i], v)
		}
	case *EJSXExprContainer:
		if d.Expr != nil {
			WalkExpr(d.Expr, v)
		}
	}
}

func walkParts(parts []RawPart, v Visitor) {
	for i := range parts {
		if parts[i].Expr != nil {
			WalkExpr(parts[i].Expr, v)
		} else if parts[i].Stmt != nil {
			WalkStmt(parts[i].Stmt, v)
		}
	}
}
