// Package normalize turns raw API payloads into canonical, navigable trees.
//
// Object keys are rewritten from mixed case into lower-case words joined by
// underscores ("ResultsPerPage" -> "results_per_page") and whitespace runs in
// string values are collapsed to a single space.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"torgmailru/client/internal/apierrors"
)

var (
	keyWordPattern    = regexp.MustCompile(`[A-Z][a-z]*|[a-z]+`)
	whitespacePattern = regexp.MustCompile(`[\t\n\v\f\r ]{2,}|[\r\n]`)
)

// CanonicalKey splits key into words (an upper-case letter followed by
// lower-case letters, or a run of lower-case letters) and joins them with
// underscores in lower case. Characters outside those runs are dropped.
func CanonicalKey(key string) string {
	return strings.ToLower(strings.Join(keyWordPattern.FindAllString(key, -1), "_"))
}

// asciiSpace is what trimming removes; non-breaking and other Unicode spaces
// are content and stay.
const asciiSpace = " \t\n\v\f\r\x00"

// CollapseWhitespace replaces every run of two or more ASCII whitespace
// characters and every CR or LF with one space, then trims ASCII whitespace
// from both ends.
func CollapseWhitespace(s string) string {
	return strings.Trim(whitespacePattern.ReplaceAllString(s, " "), asciiSpace)
}

// Normalize converts an in-memory JSON-compatible value (as produced by
// encoding/json) into a Node. Map keys are visited in sorted order so that
// colliding canonical keys resolve deterministically, the lexically last one
// winning.
//
// Normalize panics on values that JSON cannot represent.
func Normalize(value any) Node {
	switch v := value.(type) {
	case nil:
		return Node{}
	case Node:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		n := newObject(len(keys))
		for _, k := range keys {
			n.set(CanonicalKey(k), Normalize(v[k]))
		}
		return n
	case []any:
		items := make([]Node, len(v))
		for i, item := range v {
			items[i] = Normalize(item)
		}
		return Node{kind: KindArray, items: items}
	case string:
		return Node{kind: KindString, scalar: CollapseWhitespace(v)}
	case bool:
		return Node{kind: KindBool, scalar: v}
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Node{kind: KindNumber, scalar: v}
	default:
		panic(fmt.Sprintf("normalize: unsupported value of type %T", value))
	}
}

// NormalizeJSON decodes a single JSON document and normalizes it while
// streaming, so keys that collide after canonicalization resolve in document
// order: the later one overwrites the earlier. Numbers are kept as json.Number.
func NormalizeJSON(data []byte) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Node{}, apierrors.NewDecodeError("empty JSON document", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeValue(dec)
	if err != nil {
		return Node{}, apierrors.NewDecodeError("invalid JSON document", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, apierrors.NewDecodeError("unexpected data after JSON document", err)
	}

	return node, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Node{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return Node{kind: KindString, scalar: CollapseWhitespace(t)}, nil
	case json.Number:
		return Node{kind: KindNumber, scalar: t}, nil
	case bool:
		return Node{kind: KindBool, scalar: t}, nil
	case nil:
		return Node{}, nil
	default:
		return Node{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	n := newObject(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key is %T, not string", tok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return Node{}, fmt.Errorf("field %q: %w", key, err)
		}
		n.set(CanonicalKey(key), value)
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return n, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	items := make([]Node, 0)
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Node{}, fmt.Errorf("index %d: %w", len(items), err)
		}
		items = append(items, item)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return Node{kind: KindArray, items: items}, nil
}

// Export is the inverse walk of Normalize: it returns plain Go values keyed by
// canonical keys. The result shares no memory with node.
func Export(node Node) any {
	return node.Export()
}

// UnwrapEnvelope returns the payload of an API envelope: the value of the
// single top-level key (the resource name). When the server sends more than
// one key, the first one in document order is used.
func UnwrapEnvelope(envelope Node) (Node, error) {
	if envelope.Kind() != KindObject {
		return Node{}, apierrors.NewMalformedEnvelopeError(
			fmt.Sprintf("envelope is a JSON %s, not an object", envelope.Kind()), nil)
	}
	if envelope.Len() == 0 {
		return Node{}, apierrors.NewMalformedEnvelopeError("envelope has no resource key", nil)
	}
	first := envelope.keys[0]
	return envelope.fields[first], nil
}
