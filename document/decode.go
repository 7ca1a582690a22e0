package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/erraggy/tvmerge/mergeerrors"
	"go.yaml.in/yaml/v4"
)

// maxDepth bounds nesting while decoding untrusted input.
const maxDepth = 512

var (
	errEmptyDocument = errors.New("empty document")
	errTooDeep       = fmt.Errorf("nesting exceeds %d levels", maxDepth)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes data as JSON when it starts with '{' or '[' and as YAML
// otherwise.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level fixtures.
func MustParse(data string) Document {
	doc, err := Parse([]byte(data))
	if err != nil {
		panic(fmt.Sprintf("document: MustParse: %v", err))
	}
	return doc
}

// ParseJSON decodes a single JSON value, preserving object key order.
// Duplicate keys keep their first position and their last value.
func ParseJSON(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyDocument
		}
		return Null(), jsonError(dec, err)
	}
	doc, err := decodeJSONToken(dec, tok, 0)
	if err != nil {
		return Null(), jsonError(dec, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Null(), &mergeerrors.ParseError{
			Format:  "json",
			Offset:  dec.InputOffset(),
			Message: "unexpected data after top-level value",
		}
	}
	return doc, nil
}

func jsonError(dec *json.Decoder, err error) error {
	return &mergeerrors.ParseError{Format: "json", Offset: dec.InputOffset(), Cause: err}
}

func decodeJSONToken(dec *json.Decoder, tok json.Token, depth int) (Document, error) {
	if depth > maxDepth {
		return Null(), errTooDeep
	}
	switch v := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		if doc, ok := NumberText(string(v)); ok {
			return doc, nil
		}
		return Null(), fmt.Errorf("number %s out of range", v)
	case json.Delim:
		switch v {
		case '[':
			var items []Document
			for dec.More() {
				next, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				item, err := decodeJSONToken(dec, next, depth+1)
				if err != nil {
					return Null(), err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return Document{kind: KindList, items: items}, nil
		case '{':
			m := NewMap(0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				next, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				value, err := decodeJSONToken(dec, next, depth+1)
				if err != nil {
					return Null(), err
				}
				m.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return Object(m), nil
		}
	}
	return Null(), fmt.Errorf("unexpected token %v", tok)
}

// ParseYAML decodes a single YAML document, preserving mapping key order.
// Aliases are expanded; scalars follow the YAML 1.2 core schema.
func ParseYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Null(), &mergeerrors.ParseError{Format: "yaml", Cause: err}
	}
	if root.Kind == 0 {
		return Null(), &mergeerrors.ParseError{Format: "yaml", Cause: errEmptyDocument}
	}
	doc, err := fromNode(&root, 0)
	if err != nil {
		return Null(), &mergeerrors.ParseError{Format: "yaml", Cause: err}
	}
	return doc, nil
}

func fromNode(n *yaml.Node, depth int) (Document, error) {
	if depth > maxDepth {
		return Null(), errTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		if n.Alias == nil {
			return Null(), fmt.Errorf("line %d: dangling alias", n.Line)
		}
		return fromNode(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Document, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromNode(child, depth+1)
			if err != nil {
				return Null(), err
			}
			items = append(items, item)
		}
		return Document{kind: KindList, items: items}, nil
	case yaml.MappingNode:
		m := NewMap(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
				keyNode = keyNode.Alias
			}
			if keyNode.Kind != yaml.ScalarNode {
				return Null(), fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			value, err := fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return Null(), err
			}
			m.Set(keyNode.Value, value)
		}
		return Object(m), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return Null(), fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (Document, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Null(), err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return Number(f), nil
		}
		return String(n.Value), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return String(n.Value), nil
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}

// isJSONNumber reports whether literal is a JSON number literal.
func isJSONNumber(literal string) bool {
	if literal == "" || literal != strings.TrimSpace(literal) {
		return false
	}
	switch literal[0] {
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
	default:
		return false
	}
	return json.Valid([]byte(literal))
}
