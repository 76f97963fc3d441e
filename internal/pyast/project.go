package pyast

import (
	"strings"
	"unicode"
)

// Elision replaces a definition body in interface views.
const Elision = "..."

const indentUnit = "    "

// Project returns the interface view of a single function or class:
// decorators, signature, docstring and an elided body.
func Project(n *Node, lines []string) []string {
	if n.Kind == KindClass {
		return projectClass(n, lines)
	}
	return projectFunction(n, lines)
}

// ProjectModule returns the interface view of a whole module. Imports,
// module docstrings and module-level assignments are kept verbatim; public
// top-level functions and classes are projected; private ones are dropped.
func ProjectModule(m *Module, lines []string) []string {
	var out []string
	for _, st := range m.Body {
		switch st.Kind {
		case StmtImport, StmtAssign, StmtAnnAssign, StmtDocstring:
			out = append(out, slice(lines, st.Range)...)
		case StmtDef:
			if IsPrivate(st.Node.Name) {
				continue
			}
			out = appendSeparated(out, Project(st.Node, lines))
		}
	}
	return out
}

// ProjectSelected projects every function or class that overlaps one of the
// selected ranges, in source order. Methods of a projected class are not
// repeated, with one exception: a private method is projected after its
// class when a selected range lies entirely inside it. It returns nil when
// nothing overlaps.
func ProjectSelected(m *Module, lines []string, selected []Range) []string {
	var out []string
	covered := make(map[*Node]bool)
	for _, n := range m.Nodes {
		if covered[n] || !overlapsAny(n.Range, selected) {
			continue
		}
		out = appendSeparated(out, Project(n, lines))
		if n.Kind != KindClass {
			continue
		}
		for _, st := range n.Body {
			if st.Kind != StmtDef || st.Node.Kind != KindFunction {
				continue
			}
			method := st.Node
			if IsPrivate(method.Name) && withinAny(method.Range, selected) {
				continue
			}
			covered[method] = true
		}
	}
	return out
}

// withinAny reports whether some selected range lies inside r.
func withinAny(r Range, selected []Range) bool {
	for _, s := range selected {
		if s.Start >= r.Start && s.End <= r.End {
			return true
		}
	}
	return false
}

func projectFunction(n *Node, lines []string) []string {
	out := decoratorLines(n, lines)
	out = append(out, signature(n, lines)...)
	if n.Docstring != nil {
		out = append(out, slice(lines, *n.Docstring)...)
	}
	return append(out, bodyIndent(n, lines)+Elision)
}

func projectClass(n *Node, lines []string) []string {
	out := decoratorLines(n, lines)

	headerEnd := n.HeaderLine
	for i := n.HeaderLine; i < n.Range.End && i < len(lines); i++ {
		if strings.Contains(lines[i], ":") {
			headerEnd = i
			break
		}
	}
	out = append(out, slice(lines, Range{Start: n.HeaderLine, End: headerEnd + 1})...)

	if n.Docstring != nil {
		out = append(out, slice(lines, *n.Docstring)...)
	}

	for _, st := range n.Body {
		switch {
		case st.Kind == StmtDef && st.Node.Kind == KindFunction:
			if IsPrivate(st.Node.Name) {
				continue
			}
			out = append(out, projectFunction(st.Node, lines)...)
		case st.Kind == StmtAnnAssign:
			out = append(out, slice(lines, st.Range)...)
		}
	}
	return out
}

func decoratorLines(n *Node, lines []string) []string {
	var out []string
	for _, dec := range n.Decorators {
		out = append(out, slice(lines, dec)...)
	}
	return out
}

// signature returns the lines from the def keyword until parentheses are
// balanced on a line that holds a colon.
func signature(n *Node, lines []string) []string {
	end := n.HeaderLine
	depth := 0
	for i := n.HeaderLine; i < n.Range.End && i < len(lines); i++ {
		line := lines[i]
		depth += strings.Count(line, "(") - strings.Count(line, ")")
		if depth <= 0 && strings.Contains(line, ":") {
			end = i
			break
		}
	}
	return slice(lines, Range{Start: n.HeaderLine, End: end + 1})
}

// bodyIndent is the indentation of the first body statement, or one level
// deeper than the definition when the body is empty.
func bodyIndent(n *Node, lines []string) string {
	if n.BodyLine >= 0 && n.BodyLine < len(lines) {
		return leadingSpace(lines[n.BodyLine])
	}
	if n.HeaderLine < len(lines) {
		return leadingSpace(lines[n.HeaderLine]) + indentUnit
	}
	return indentUnit
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// appendSeparated appends block to out with a blank line in between unless
// out already ends in one.
func appendSeparated(out, block []string) []string {
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	return append(out, block...)
}

func overlapsAny(r Range, selected []Range) bool {
	for _, s := range selected {
		if r.Overlaps(s) {
			return true
		}
	}
	return false
}

// slice returns lines[r.Start:r.End] clamped to the available lines.
func slice(lines []string, r Range) []string {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}
