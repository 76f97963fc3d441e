package pyast

import "strings"

// --- Enums ---

// Kind classifies a structural node.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// StmtKind classifies a statement inside a module or definition body.
type StmtKind string

const (
	StmtOther     StmtKind = "other"
	StmtImport    StmtKind = "import"
	StmtAssign    StmtKind = "assign"
	StmtAnnAssign StmtKind = "annassign"
	StmtDocstring StmtKind = "docstring" // bare string literal expression
	StmtDef       StmtKind = "def"       // function or class, see Stmt.Node
)

// --- Models ---

// Range is a half-open range of 0-based line indices [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether r and o share at least one line.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && r.End > o.Start
}

// Stmt is one statement of a module or definition body.
type Stmt struct {
	Kind  StmtKind
	Range Range
	Node  *Node // set when Kind is StmtDef
}

// Node is a function, async function, or class definition.
type Node struct {
	Kind  Kind
	Name  string
	Async bool

	// Range runs from the first decorator (or the def/class keyword when
	// undecorated) through the last line of the body.
	Range Range

	// HeaderLine is the line holding the def/class keyword.
	HeaderLine int

	Decorators []Range

	// Docstring is set when the first body statement is a plain string literal.
	Docstring *Range

	// BodyLine is the first line of the first body statement, -1 if there is none.
	BodyLine int

	Body   []Stmt
	Parent *Node
}

// IsPrivate reports whether the name is excluded from interface views.
// Underscore-prefixed names are private; the constructor never is.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_") && name != "__init__"
}

// Module is the structural view of one parsed Python source file.
type Module struct {
	// Body holds the top-level statements in source order.
	Body []Stmt

	// Nodes holds every function and class at any depth, in pre-order.
	Nodes []*Node
}

// Functions returns every function or async function named name, at any
// nesting depth, in source order.
func (m *Module) Functions(name string) []*Node {
	return m.find(KindFunction, name)
}

// Classes returns every class named name, at any nesting depth.
func (m *Module) Classes(name string) []*Node {
	return m.find(KindClass, name)
}

func (m *Module) find(kind Kind, name string) []*Node {
	var out []*Node
	for _, n := range m.Nodes {
		if n.Kind == kind && n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// Methods returns the functions named name defined directly in the class
// body. Deeper nesting is not searched.
func (n *Node) Methods(name string) []*Node {
	var out []*Node
	for _, st := range n.Body {
		if st.Kind == StmtDef && st.Node.Kind == KindFunction && st.Node.Name == name {
			out = append(out, st.Node)
		}
	}
	return out
}
