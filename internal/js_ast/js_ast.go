package js_ast

// The tree models the nodes the compiler rewrites (imports, exports, dynamic
// imports, string and template literals, identifiers and JSX). Every other
// syntax node is kept as a raw node: the verbatim source text of the node
// with holes for its child nodes. Printing an untouched tree gives back the
// original source.

type Loc struct {
	// This is the 0-based index of this location from the start of the file, in bytes
	Start int32
}

// SyntheticLoc marks nodes created by the compiler, they are not present in the source.
var SyntheticLoc = Loc{Start: -1}

func (loc Loc) IsSynthetic() bool {
	return loc.Start < 0
}

type Source struct {
	// KeyPath is the specifier of the module
	KeyPath  string
	Contents string

	// Lang is one of "js", "jsx", "ts" and "tsx", the extension of the key
	// path is used when it's empty.
	Lang string
}

type AST struct {
	Source *Source
	Stmts  []Stmt
}

type Expr struct {
	Loc  Loc
	Data E
}

type E interface{ isExpr() }

type Stmt struct {
	Loc  Loc
	Data S
}

type S interface{ isStmt() }

// RawPart is either a piece of verbatim text or a hole holding a child node.
type RawPart struct {
	// Loc is the location of Text in the source
	Loc  Loc
	Text string

	// Field is the grammar field name of the hole, may be empty
	Field string
	Expr  *Expr
	Stmt  *Stmt
}

func (part *RawPart) IsHole() bool {
	return part.Expr != nil || part.Stmt != nil
}

type ERaw struct {
	// Kind is the node type of the grammar, e.g. "call_expression"
	Kind  string
	Parts []RawPart
}

type EIdentifier struct {
	Name string

	// Free is true when no enclosing scope declares the name. It's set by the
	// scope pass and is false before the pass runs.
	Free bool
}

type EString struct {
	Value string

	// Raw is the source text including the quotes. It's cleared when Value
	// changes so the printer quotes the new value.
	Raw string
}

type TemplatePart struct {
	Value   Expr
	TailLoc Loc
	TailRaw string
}

type ETemplate struct {
	HeadLoc Loc
	HeadRaw string
	Parts   []TemplatePart
}

type EImportCall struct {
	Expr         Expr
	OptionsOrNil *Expr
}

// ECall is only created by the compiler, calls in the source are raw nodes.
type ECall struct {
	Target Expr
	Args   []Expr
}

type EArray struct {
	Items []Expr
}

type JSXAttr struct {
	Loc Loc

	// Name is empty for spread attributes (`{...props}`), the spread
	// expression container is the value then.
	Name     string
	ValueLoc Loc
	Value    *Expr
}

type EJSXElement struct {
	// TagName is empty for fragments
	TagName     string
	Attrs       []JSXAttr
	Children    []Expr
	SelfClosing bool
	CloseLoc    Loc
}

type EJSXText struct {
	Raw string
}

type EJSXExprContainer struct {
	// Open is the text from the `{` to the expression, Close is the text
	// from the end of the expression to the `}`.
	Open   string
	Expr   *Expr
	Close  string
	EndLoc Loc
}

type EMissing struct{}

func (*ERaw) isExpr()              {}
func (*EIdentifier) isExpr()       {}
func (*EString) isExpr()           {}
func (*ETemplate) isExpr()         {}
func (*EImportCall) isExpr()       {}
func (*ECall) isExpr()             {}
func (*EArray) isExpr()            {}
func (*EJSXElement) isExpr()       {}
func (*EJSXText) isExpr()          {}
func (*EJSXExprContainer) isExpr() {}
func (*EMissing) isExpr()          {}

type SRaw struct {
	Kind  string
	Parts []RawPart
}

type ImportItem struct {
	Name   string
	Alias  string
	IsType bool
}

// SImport is `import [clause from] "path" [tail]`.
type SImport struct {
	DefaultName   string
	NamespaceName string
	Items         []ImportItem
	HasItems      bool
	Path          EString
	PathLoc       Loc
	IsTypeOnly    bool

	// Tail is the text after the path, e.g. ` with { type: "json" };`
	Tail string
}

func (s *SImport) IsSideEffectOnly() bool {
	return s.DefaultName == "" && s.NamespaceName == "" && !s.HasItems
}

// SExportFrom is `export <clause> from "path" [tail]`, the clause is kept
// verbatim: `*`, `* as ns` or `{ a, b as c }`.
type SExportFrom struct {
	Clause     string
	Path       EString
	PathLoc    Loc
	IsTypeOnly bool
	Tail       string
}

func (*SRaw) isStmt()        {}
func (*SImport) isStmt()     {}
func (*SExportFrom) isStmt() {}
