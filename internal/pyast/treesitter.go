package pyast

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// SyntaxError reports source that the Python grammar could not parse.
type SyntaxError struct {
	Line   int // 1-based
	Column int // 1-based
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Msg, e.Line, e.Column)
}

// Parser builds Modules from Python source using the tree-sitter grammar.
// A new tree-sitter parser is created per Parse call, so a Parser is safe
// for concurrent use.
type Parser struct {
	language *tree_sitter.Language
}

// NewParser creates a Parser with the Python grammar loaded.
func NewParser() *Parser {
	return &Parser{
		language: tree_sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

// Parse builds the structural model of source. Source that does not parse
// cleanly returns a *SyntaxError naming the first offending position.
// The returned Module holds no tree-sitter memory.
func (p *Parser) Parse(source []byte) (*Module, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set language python: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, source)
	}
	if legacy := firstLegacyStatement(root); legacy != nil {
		pos := legacy.StartPosition()
		return nil, &SyntaxError{
			Line:   int(pos.Row) + 1,
			Column: int(pos.Column) + 1,
			Msg:    fmt.Sprintf("Python 2 %s statement is not valid Python 3", strings.TrimSuffix(legacy.Kind(), "_statement")),
		}
	}

	b := &builder{source: source}
	mod := &Module{}
	mod.Body = b.block(root, nil)
	mod.Nodes = b.nodes
	return mod, nil
}

// builder converts a tree-sitter tree into Module values.
type builder struct {
	source []byte
	nodes  []*Node
}

// block converts the statements directly under n. Definitions nested inside
// compound statements are still registered on the builder.
func (b *builder) block(n *tree_sitter.Node, parent *Node) []Stmt {
	var stmts []Stmt
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		stmts = append(stmts, b.statement(child, parent))
	}
	return stmts
}

func (b *builder) statement(n *tree_sitter.Node, parent *Node) Stmt {
	switch n.Kind() {
	case "function_definition", "class_definition":
		node := b.definition(n, nil, parent)
		return Stmt{Kind: StmtDef, Range: node.Range, Node: node}

	case "decorated_definition":
		def := n.ChildByFieldName("definition")
		if def == nil {
			return Stmt{Kind: StmtOther, Range: lineRange(n)}
		}
		node := b.definition(def, n, parent)
		return Stmt{Kind: StmtDef, Range: node.Range, Node: node}

	case "import_statement", "import_from_statement", "future_import_statement":
		return Stmt{Kind: StmtImport, Range: lineRange(n)}

	case "expression_statement":
		return b.expression(n)
	}

	b.nested(n, parent)
	return Stmt{Kind: StmtOther, Range: lineRange(n)}
}

// expression classifies an expression statement holding a single expression.
func (b *builder) expression(n *tree_sitter.Node) Stmt {
	only := soleNamedChild(n)
	if only == nil {
		return Stmt{Kind: StmtOther, Range: lineRange(n)}
	}
	switch only.Kind() {
	case "assignment":
		if only.ChildByFieldName("type") != nil {
			return Stmt{Kind: StmtAnnAssign, Range: lineRange(n)}
		}
		return Stmt{Kind: StmtAssign, Range: lineRange(n)}
	case "string", "concatenated_string", "parenthesized_expression":
		if lit := stringLiteral(only, b.source); lit != nil {
			return Stmt{Kind: StmtDocstring, Range: lineRange(lit)}
		}
	}
	return Stmt{Kind: StmtOther, Range: lineRange(n)}
}

// nested registers definitions found anywhere below a compound statement
// (if/for/while/try/with/match bodies).
func (b *builder) nested(n *tree_sitter.Node, parent *Node) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition", "class_definition":
			b.definition(child, nil, parent)
		case "decorated_definition":
			if def := child.ChildByFieldName("definition"); def != nil {
				b.definition(def, child, parent)
			}
		default:
			b.nested(child, parent)
		}
	}
}

// definition converts a function_definition or class_definition. decorated
// is the wrapping decorated_definition, or nil.
func (b *builder) definition(def, decorated *tree_sitter.Node, parent *Node) *Node {
	node := &Node{
		Kind:       KindFunction,
		HeaderLine: int(def.StartPosition().Row),
		BodyLine:   -1,
		Parent:     parent,
	}
	if def.Kind() == "class_definition" {
		node.Kind = KindClass
	}
	if nameNode := def.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Utf8Text(b.source)
	}
	if first := def.Child(0); first != nil && first.Kind() == "async" {
		node.Async = true
	}

	node.Range = lineRange(def)
	if decorated != nil {
		node.Range.Start = int(decorated.StartPosition().Row)
		for i := uint(0); i < decorated.NamedChildCount(); i++ {
			child := decorated.NamedChild(i)
			if child != nil && child.Kind() == "decorator" {
				node.Decorators = append(node.Decorators, lineRange(child))
			}
		}
	}

	// Register before descending so Nodes stays in pre-order.
	b.nodes = append(b.nodes, node)

	if body := def.ChildByFieldName("body"); body != nil {
		node.Body = b.block(body, node)
	}
	if len(node.Body) > 0 {
		first := node.Body[0]
		node.BodyLine = first.Range.Start
		if first.Kind == StmtDef {
			node.BodyLine = first.Node.HeaderLine
		}
		if first.Kind == StmtDocstring {
			ds := first.Range
			node.Docstring = &ds
		}
	}
	return node
}

// stringLiteral returns the string node when n is a plain (non-f, non-bytes)
// string literal, possibly implicitly concatenated or parenthesized.
func stringLiteral(n *tree_sitter.Node, source []byte) *tree_sitter.Node {
	switch n.Kind() {
	case "string":
		if plainString(n, source) {
			return n
		}
	case "concatenated_string":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil || child.Kind() == "comment" {
				continue
			}
			if child.Kind() != "string" || !plainString(child, source) {
				return nil
			}
		}
		return n
	case "parenthesized_expression":
		if inner := soleNamedChild(n); inner != nil {
			return stringLiteral(inner, source)
		}
	}
	return nil
}

// plainString reports whether the string's prefix makes it a str constant.
func plainString(n *tree_sitter.Node, source []byte) bool {
	start := n.Child(0)
	if start == nil {
		return false
	}
	text := start.Utf8Text(source)
	prefix := strings.ToLower(strings.TrimRight(text, `"'`))
	return !strings.ContainsAny(prefix, "fbt")
}

// soleNamedChild returns n's only named non-comment child, or nil.
func soleNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	var only *tree_sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if only != nil {
			return nil
		}
		only = child
	}
	return only
}

// lineRange returns the lines n's own tokens occupy.
func lineRange(n *tree_sitter.Node) Range {
	return Range{
		Start: int(n.StartPosition().Row),
		End:   int(lastRow(n)) + 1,
	}
}

// lastRow returns the row of the last token belonging to n. Trailing
// comments and the newline tokens that blocks and decorators absorb are not
// part of the node.
func lastRow(n *tree_sitter.Node) uint {
	for i := int(n.ChildCount()) - 1; i >= 0; i-- {
		child := n.Child(uint(i))
		if child == nil || child.Kind() == "comment" || child.StartByte() == child.EndByte() {
			continue
		}
		return lastRow(child)
	}
	end := n.EndPosition()
	if end.Column == 0 && end.Row > n.StartPosition().Row {
		return end.Row - 1
	}
	return end.Row
}

// syntaxError locates the first ERROR or MISSING node below root.
func syntaxError(root *tree_sitter.Node, source []byte) *SyntaxError {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPosition()
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("expected '%s'", bad.Kind())
	} else if text := strings.TrimSpace(bad.Utf8Text(source)); text != "" && !strings.Contains(text, "\n") {
		msg = fmt.Sprintf("invalid syntax near '%s'", text)
	}
	return &SyntaxError{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Msg:    msg,
	}
}

func firstError(n *tree_sitter.Node) *tree_sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// firstLegacyStatement finds the first print or exec statement. The grammar
// still accepts both Python 2 forms, so they never show up as ERROR nodes.
func firstLegacyStatement(n *tree_sitter.Node) *tree_sitter.Node {
	switch n.Kind() {
	case "print_statement", "exec_statement":
		return n
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if found := firstLegacyStatement(child); found != nil {
			return found
		}
	}
	return nil
}
