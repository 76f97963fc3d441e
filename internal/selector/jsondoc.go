package selector

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// jsonValue is an order-preserving JSON value. Numbers keep their source text.
type jsonValue struct {
	kind   ValueKind
	scalar any // string, json.Number, bool or nil
	keys   []string
	fields map[string]*jsonValue
	items  []*jsonValue
}

func (v *jsonValue) Kind() ValueKind { return v.kind }

func (v *jsonValue) TypeName() string {
	switch v.kind {
	case ValueObject:
		return "object"
	case ValueArray:
		return "array"
	}
	switch v.scalar.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	}
	return "null"
}

func (v *jsonValue) Len() int { return len(v.items) }

func (v *jsonValue) Index(i int) Document { return v.items[i] }

func (v *jsonValue) Get(key string) (Document, bool) {
	f, ok := v.fields[key]
	return f, ok
}

// parseJSON decodes exactly one JSON value from content.
func parseJSON(content string) (*jsonValue, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, wrapError(ErrJSONParse, err, "Failed to parse JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(ErrJSONParse, "Failed to parse JSON: extra data after offset %d", dec.InputOffset())
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			arr := &jsonValue{kind: ValueArray}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}

		obj := &jsonValue{kind: ValueObject, fields: make(map[string]*jsonValue)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			// Duplicate keys keep their first position and their last value.
			if _, seen := obj.fields[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.fields[key] = val
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return &jsonValue{kind: ValueScalar, scalar: tok}, nil
}

// encodeJSON renders v with a two-space indent, leaving non-ASCII text and
// HTML characters unescaped.
func encodeJSON(v *jsonValue) string {
	var buf bytes.Buffer
	writeJSON(&buf, v, 0)
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, v *jsonValue, depth int) {
	switch v.kind {
	case ValueObject:
		if len(v.keys) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, key := range v.keys {
			writeIndent(buf, depth+1)
			writeJSONString(buf, key)
			buf.WriteString(": ")
			writeJSON(buf, v.fields[key], depth+1)
			if i < len(v.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')

	case ValueArray:
		if len(v.items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range v.items {
			writeIndent(buf, depth+1)
			writeJSON(buf, item, depth+1)
			if i < len(v.items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')

	default:
		switch s := v.scalar.(type) {
		case string:
			writeJSONString(buf, s)
		case json.Number:
			buf.WriteString(s.String())
		case bool:
			if s {
				buf.WriteString("true")
			} else {
				buf.WriteString("false")
			}
		default:
			buf.WriteString("null")
		}
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString("  ")
	}
}
