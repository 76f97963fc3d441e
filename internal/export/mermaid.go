package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/excerpt/internal/pyast"
)

// GenerateMermaid produces a Mermaid graph TD diagram of a Python module's
// definitions. Classes become subgraphs holding their methods; definitions
// nested inside functions or below other classes hang off their parent by
// an arrow.
func GenerateMermaid(file string, mod *pyast.Module) string {
	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[*pyast.Node]string)
	getID := func(n *pyast.Node) string {
		if id, ok := nodeIDs[n]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[n] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if file != "" {
		sb.WriteString(fmt.Sprintf("  %%%% %s\n", shortPath(file)))
	}

	// Methods are drawn inside their class subgraph.
	inSubgraph := make(map[*pyast.Node]bool)
	for _, n := range mod.Nodes {
		if n.Kind != pyast.KindClass {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID(n), nodeLabel(n)))
		for _, st := range n.Body {
			if st.Kind == pyast.StmtDef && st.Node.Kind == pyast.KindFunction {
				inSubgraph[st.Node] = true
				sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(st.Node), nodeLabel(st.Node)))
			}
		}
		sb.WriteString("  end\n")
	}

	for _, n := range mod.Nodes {
		if n.Kind == pyast.KindFunction && !inSubgraph[n] {
			sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(n), nodeLabel(n)))
		}
	}

	// Emit nesting edges for everything not already drawn inside its parent.
	for _, n := range mod.Nodes {
		if n.Parent == nil || inSubgraph[n] {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(n.Parent), getID(n)))
	}

	return sb.String()
}

func nodeLabel(n *pyast.Node) string {
	switch {
	case n.Kind == pyast.KindClass:
		return "class " + n.Name
	case n.Async:
		return "async " + n.Name + "()"
	}
	return n.Name + "()"
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
