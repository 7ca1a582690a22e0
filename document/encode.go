package document

import (
	"bytes"
	"encoding/json"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON encodes the document with map keys in insertion order.
// HTML characters are not escaped.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes JSON into the document, preserving key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// MarshalIndent encodes the document like MarshalJSON and indents the
// result.
func MarshalIndent(d Document, prefix, indent string) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, d); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, d Document) error {
	switch d.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(d.flag))
	case KindNumber:
		buf.WriteString(d.text)
	case KindString:
		return writeJSONString(buf, d.text)
	case KindList:
		buf.WriteByte('[')
		for i, item := range d.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		first := true
		for k, v := range d.m.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// MarshalYAML builds an ordered yaml.Node tree for the document.
func (d Document) MarshalYAML() (any, error) {
	return toNode(d), nil
}

// UnmarshalYAML decodes a YAML node into the document, preserving key order.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	doc, err := fromNode(node, 0)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toNode(d Document) *yaml.Node {
	switch d.kind {
	case KindBool:
		return scalarNode("!!bool", strconv.FormatBool(d.flag))
	case KindNumber:
		if _, err := strconv.ParseInt(d.text, 10, 64); err == nil {
			return scalarNode("!!int", d.text)
		}
		return scalarNode("!!float", d.text)
	case KindString:
		return scalarNode("!!str", d.text)
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(d.items))}
		for _, item := range d.items {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*d.m.Len())}
		for k, v := range d.m.All() {
			n.Content = append(n.Content, scalarNode("!!str", k), toNode(v))
		}
		return n
	default:
		return scalarNode("!!null", "null")
	}
}
