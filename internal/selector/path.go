package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind classifies a document value for path traversal.
type ValueKind int

const (
	ValueScalar ValueKind = iota
	ValueObject
	ValueArray
)

// Document is a parsed JSON or YAML value that path expressions walk.
type Document interface {
	Kind() ValueKind
	// TypeName names the value's type in error messages.
	TypeName() string
	// Len returns the number of elements of an array.
	Len() int
	// Index returns the i-th array element.
	Index(i int) Document
	// Get returns the value stored under key in an object.
	Get(key string) (Document, bool)
}

// YAMLSupport is the optional capability that lets path selectors read YAML.
// Engines built without it reject YAML paths with ErrYAMLUnsupported.
type YAMLSupport interface {
	ParseYAML(content string) (Document, error)
	// EncodeYAML renders a value from ParseYAML as block-style YAML without
	// a trailing newline.
	EncodeYAML(doc Document) (string, error)
}

// PathSegment is one step of a path expression: an object key or an array
// index.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s PathSegment) String() string {
	if s.IsIndex {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// ParsePath parses expressions such as "a.b[2].c" or "[0].name". The first
// key may omit its leading dot.
func ParsePath(expr string) ([]PathSegment, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, newError(ErrEmptyPath, "Empty path expression")
	}

	var segs []PathSegment
	for i := 0; i < len(expr); {
		switch {
		case expr[i] == '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return nil, newError(ErrInvalidIndex, "Invalid array index in path '%s': missing ']'", expr)
			}
			raw := strings.TrimSpace(expr[i+1 : i+end])
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || strings.HasPrefix(raw, "+") {
				return nil, newError(ErrInvalidIndex, "Invalid array index '%s' in path '%s'", raw, expr)
			}
			segs = append(segs, PathSegment{Index: n, IsIndex: true})
			i += end + 1

		case expr[i] == '.' || i == 0:
			if expr[i] == '.' {
				i++
			}
			j := i
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			key := strings.TrimSpace(expr[i:j])
			if key == "" {
				return nil, newError(ErrInvalidPath, "Invalid path expression '%s': empty key at offset %d", expr, i)
			}
			segs = append(segs, PathSegment{Key: key})
			i = j

		default:
			return nil, newError(ErrInvalidPath, "Invalid path expression '%s': unexpected '%c' at offset %d", expr, expr[i], i)
		}
	}
	return segs, nil
}

// walkPath follows segs from root.
func walkPath(root Document, segs []PathSegment) (Document, error) {
	cur := root
	for i, seg := range segs {
		at := traversed(segs[:i])
		if seg.IsIndex {
			if cur.Kind() != ValueArray {
				return nil, newError(ErrExpectedArray, "Expected array at '%s' for index [%d], found %s", at, seg.Index, cur.TypeName())
			}
			if seg.Index >= cur.Len() {
				return nil, newError(ErrIndexOutOfRange, "Array index %d out of range at '%s' (length %d)", seg.Index, at, cur.Len())
			}
			cur = cur.Index(seg.Index)
			continue
		}

		if cur.Kind() != ValueObject {
			return nil, newError(ErrExpectedObject, "Expected object at '%s' for key '%s', found %s", at, seg.Key, cur.TypeName())
		}
		next, ok := cur.Get(seg.Key)
		if !ok {
			return nil, newError(ErrKeyNotFound, "Key '%s' not found at '%s'", seg.Key, at)
		}
		cur = next
	}
	return cur, nil
}

// traversed renders the path walked so far, or "root" at depth zero.
func traversed(segs []PathSegment) string {
	if len(segs) == 0 {
		return "root"
	}
	var b strings.Builder
	for i, seg := range segs {
		if !seg.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// resolvePath evaluates a path: selector against JSON or YAML content and
// re-serializes the result in the source format.
func (e *Engine) resolvePath(content string, ft FileType, expr string) (string, error) {
	segs, err := ParsePath(expr)
	if err != nil {
		return "", err
	}

	switch ft {
	case FileJSON:
		doc, err := parseJSON(content)
		if err != nil {
			return "", err
		}
		val, err := walkPath(doc, segs)
		if err != nil {
			return "", err
		}
		return encodeJSON(val.(*jsonValue)), nil

	case FileYAML:
		if e.yaml == nil {
			return "", newError(ErrYAMLUnsupported, "Path selector on YAML requires YAML support, which this build does not provide")
		}
		doc, err := e.yaml.ParseYAML(content)
		if err != nil {
			return "", wrapError(ErrYAMLParse, err, "Failed to parse YAML: %v", err)
		}
		val, err := walkPath(doc, segs)
		if err != nil {
			return "", err
		}
		return e.yaml.EncodeYAML(val)
	}
	return "", newError(ErrPathFileType, "Path selector requires a JSON or YAML file")
}
