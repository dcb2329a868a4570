// Package canonical produces byte-stable JSON for arbitrary values and
// derives content hashes from it. Two values that are deep-equal up to
// object key order always canonicalize to the same bytes.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object whose members marshal in slice order.
// SortKeysDeep returns Objects with members sorted by key.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the members in order without HTML escaping.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeTo(&buf, m.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeTo(&buf, m.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToValue converts v into generic JSON form (map[string]any, []any,
// string, json.Number, bool, nil) by a JSON round trip.
func ToValue(v any) (any, error) {
	if isGeneric(v, 0) {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "canonical: marshal value")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, eris.Wrap(err, "canonical: decode value")
	}
	return out, nil
}

// SortKeysDeep returns a copy of v in which every object has its keys sorted
// in ascending code-point order. Arrays keep their order and primitives pass
// through. Shared sub-objects are processed once per call; a reference back
// into an object still being sorted is replaced with nil.
func SortKeysDeep(v any) any {
	s := sorter{done: make(map[uintptr]Object), active: make(map[uintptr]bool)}
	return s.sort(v)
}

type sorter struct {
	done   map[uintptr]Object
	active map[uintptr]bool
}

func (s *sorter) sort(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number, float64, float32,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return t
	case Object:
		return t
	case map[string]any:
		return s.sortMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = s.sort(e)
		}
		return out
	default:
		g, err := ToValue(v)
		if err != nil {
			return v
		}
		return s.sort(g)
	}
}

func (s *sorter) sortMap(m map[string]any) any {
	id := reflect.ValueOf(m).Pointer()
	if obj, ok := s.done[id]; ok {
		return obj
	}
	if s.active[id] {
		return nil
	}
	s.active[id] = true
	defer delete(s.active, id)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := make(Object, 0, len(keys))
	for _, k := range keys {
		obj = append(obj, Member{Key: k, Value: s.sort(m[k])})
	}
	s.done[id] = obj
	return obj
}

// Canonicalize serializes the key-sorted form of v with no extra whitespace.
func Canonicalize(v any) (string, error) {
	data, err := canonicalBytes(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StableHash returns the lower-case hex SHA-256 of Canonicalize(v).
func StableHash(v any) (string, error) {
	data, err := canonicalBytes(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SerializeDeterministic is Canonicalize pretty-printed with a two-space
// indent, for artifacts written to disk.
func SerializeDeterministic(v any) (string, error) {
	data, err := canonicalBytes(v)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", eris.Wrap(err, "canonical: indent")
	}
	return out.String(), nil
}

// HashWithout hashes v after dropping the named top-level keys. Reports and
// bundles use it to hash themselves minus their own hash field.
func HashWithout(v any, keys ...string) (string, error) {
	g, err := ToValue(v)
	if err != nil {
		return "", err
	}
	m, ok := g.(map[string]any)
	if !ok {
		return "", eris.New("canonical: value is not an object")
	}
	trimmed := make(map[string]any, len(m))
	for k, val := range m {
		trimmed[k] = val
	}
	for _, k := range keys {
		delete(trimmed, k)
	}
	return StableHash(trimmed)
}

func canonicalBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(&buf, SortKeysDeep(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTo(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "canonical: encode")
	}
	// Encoder always appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// maxGenericDepth bounds the generic-form check so cyclic maps fall through
// to json.Marshal, which reports the cycle as an error.
const maxGenericDepth = 64

func isGeneric(v any, depth int) bool {
	if depth > maxGenericDepth {
		return false
	}
	switch t := v.(type) {
	case nil, string, bool, json.Number, Object:
		return true
	case map[string]any:
		for _, e := range t {
			if !isGeneric(e, depth+1) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range t {
			if !isGeneric(e, depth+1) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
