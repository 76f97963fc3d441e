package selector

import "github.com/dusk-indust/excerpt/internal/pyast"

// resolveDef returns the span of every function or async function with the
// requested name, at any nesting depth.
func resolveDef(mod *pyast.Module, s DefSelector) ([]Span, error) {
	nodes := mod.Functions(s.Name)
	if len(nodes) == 0 {
		return nil, newError(ErrFunctionNotFound, "Function '%s' not found in source", s.Name)
	}
	return nodeSpans(nodes), nil
}

// resolveClass returns the span of every class with the requested name, or
// of the named method within each such class.
func resolveClass(mod *pyast.Module, s ClassSelector) ([]Span, error) {
	classes := mod.Classes(s.Class)
	if len(classes) == 0 {
		if s.Method == "" {
			return nil, newError(ErrClassNotFound, "Class '%s' not found in source", s.Class)
		}
		return nil, newError(ErrClassNotFound, "Class '%s' (for method '%s') not found in source", s.Class, s.Method)
	}
	if s.Method == "" {
		return nodeSpans(classes), nil
	}

	var spans []Span
	for _, class := range classes {
		methods := class.Methods(s.Method)
		if len(methods) == 0 {
			return nil, newError(ErrMethodNotFound, "Method '%s' not found in class '%s'", s.Method, s.Class)
		}
		spans = append(spans, nodeSpans(methods)...)
	}
	return spans, nil
}

func nodeSpans(nodes []*pyast.Node) []Span {
	spans := make([]Span, len(nodes))
	for i, n := range nodes {
		spans[i] = Span{Start: n.Range.Start, End: n.Range.End}
	}
	return spans
}
