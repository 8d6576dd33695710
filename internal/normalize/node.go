package normalize

import (
	"bytes"
	"encoding/json"
	"math"
)

// Kind identifies the variant held by a Node
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a normalized JSON value. Object keys are canonical and kept in the
// order they were first seen. The zero Node is JSON null.
type Node struct {
	kind   Kind
	keys   []string
	fields map[string]Node
	items  []Node
	scalar any
}

func newObject(size int) Node {
	return Node{
		kind:   KindObject,
		keys:   make([]string, 0, size),
		fields: make(map[string]Node, size),
	}
}

// set stores value under key. A repeated key overwrites the value but keeps
// the position of its first occurrence.
func (n *Node) set(key string, value Node) {
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = value
}

func (n Node) Kind() Kind { return n.kind }

func (n Node) IsNull() bool { return n.kind == KindNull }

// Len returns the number of fields of an object or elements of an array
func (n Node) Len() int {
	switch n.kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.items)
	default:
		return 0
	}
}

// Get looks up a field of an object node by canonical key
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Path follows a chain of object keys
func (n Node) Path(keys ...string) (Node, bool) {
	cur := n
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}

// Keys returns the canonical keys of an object node in first-seen order
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Items returns the elements of an array node
func (n Node) Items() []Node {
	if n.kind != KindArray {
		return nil
	}
	out := make([]Node, len(n.items))
	copy(out, n.items)
	return out
}

func (n Node) Index(i int) (Node, bool) {
	if n.kind != KindArray || i < 0 || i >= len(n.items) {
		return Node{}, false
	}
	return n.items[i], true
}

func (n Node) AsString() (string, bool) {
	s, ok := n.scalar.(string)
	return s, ok && n.kind == KindString
}

func (n Node) AsBool() (bool, bool) {
	b, ok := n.scalar.(bool)
	return b, ok && n.kind == KindBool
}

func (n Node) AsFloat() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if i, ok := n.AsInt(); ok {
		return float64(i), true
	}
	return 0, false
}

// AsInt returns the value of a number node that holds an integral value
func (n Node) AsInt() (int64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	}
	return 0, false
}

func uintToInt(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Export converts the node back to plain Go values: map[string]any, []any,
// string, bool, nil and the original number representation.
func (n Node) Export() any {
	switch n.kind {
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Export()
		}
		return out
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Export()
		}
		return out
	default:
		return n.scalar
	}
}

// MarshalJSON encodes the node with object keys in first-seen order
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) encode(buf *bytes.Buffer) error {
	switch n.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := n.fields[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		raw, err := json.Marshal(n.scalar)
		if err != nil {
			return err
		}
		buf.Write(raw)
	}
	return nil
}
