package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"sort"

	"gopkg.in/yaml.v3"
)

// InputKey is the conventional key holding the primary input of a function and
// the most recent step result of a plan.
const InputKey = "input"

// KeyValue is a single key/value pair used to seed an Arguments store.
type KeyValue struct {
	Key   string
	Value any
}

// KV is shorthand for constructing a KeyValue.
func KV(key string, value any) KeyValue { return KeyValue{Key: key, Value: value} }

// Arguments is an ordered string-keyed store used as the working memory of
// plans and as the bound input of functions. Iteration follows insertion
// order; re-setting an existing key keeps its original position.
//
// Arguments is not safe for concurrent mutation. Read methods accept a nil
// receiver and behave like an empty store.
type Arguments struct {
	keys   []string
	values map[string]any
}

// NewArguments creates a store pre-populated with the given pairs in order.
func NewArguments(pairs ...KeyValue) *Arguments {
	a := &Arguments{values: make(map[string]any, len(pairs))}
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// ArgumentsFromMap converts a plain map into a store. Go maps carry no order,
// so keys are inserted in lexical order to keep iteration deterministic.
func ArgumentsFromMap(m map[string]any) *Arguments {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a := &Arguments{values: make(map[string]any, len(m))}
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// Len returns the number of keys.
func (a *Arguments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Has reports whether key is present (even with a nil value).
func (a *Arguments) Has(key string) bool {
	if a == nil {
		return false
	}
	_, ok := a.values[key]
	return ok
}

// Get returns the value for key and whether it was present.
func (a *Arguments) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Value returns the value for key or def when the key is absent.
func (a *Arguments) Value(key string, def any) any {
	if v, ok := a.Get(key); ok {
		return v
	}
	return def
}

// GetString returns the value for key rendered as a string, or def when the
// key is absent or nil.
func (a *Arguments) GetString(key, def string) string {
	v, ok := a.Get(key)
	if !ok || v == nil {
		return def
	}
	return Stringify(v)
}

// Set stores value under key. New keys are appended to the iteration order.
func (a *Arguments) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Merge copies every key of other into a, overwriting existing values. Keys
// new to a are appended in other's order.
func (a *Arguments) Merge(other *Arguments) {
	for k, v := range other.All() {
		a.Set(k, v)
	}
}

// MergeMissing copies only the keys of other that are absent or empty in a.
func (a *Arguments) MergeMissing(other *Arguments) {
	for k, v := range other.All() {
		if cur, ok := a.Get(k); ok && !IsEmptyValue(cur) {
			continue
		}
		a.Set(k, v)
	}
}

// Keys returns a copy of the keys in insertion order.
func (a *Arguments) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// All iterates over the key/value pairs in insertion order.
func (a *Arguments) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if a == nil {
			return
		}
		for _, k := range a.keys {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy that can be mutated independently.
func (a *Arguments) Clone() *Arguments {
	c := &Arguments{values: make(map[string]any, a.Len())}
	c.Merge(a)
	return c
}

// ToMap returns the contents as an unordered map.
func (a *Arguments) ToMap() map[string]any {
	m := make(map[string]any, a.Len())
	for k, v := range a.All() {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the store as a JSON object preserving key order.
func (a *Arguments) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range a.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal argument %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // null
		*a = Arguments{values: map[string]any{}}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("arguments: expected JSON object, got %v", tok)
	}

	out := Arguments{values: map[string]any{}}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("arguments: expected string key, got %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("arguments: decode %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	*a = out
	return nil
}

// UnmarshalYAML decodes a YAML mapping keeping the document's key order.
func (a *Arguments) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	out := Arguments{values: map[string]any{}}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return fmt.Errorf("arguments: line %d: expected mapping", node.Line)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			var v any
			if err := node.Content[i+1].Decode(&v); err != nil {
				return fmt.Errorf("arguments: decode %q: %w", node.Content[i].Value, err)
			}
			out.Set(node.Content[i].Value, v)
		}
	default:
		return fmt.Errorf("arguments: line %d: expected mapping", node.Line)
	}
	*a = out
	return nil
}

// MarshalYAML encodes the store as an ordered YAML mapping.
func (a *Arguments) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range a.All() {
		var vn yaml.Node
		if err := vn.Encode(v); err != nil {
			return nil, fmt.Errorf("marshal argument %q: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &vn)
	}
	return node, nil
}

// IsEmptyValue reports whether v is nil or an empty string.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Stringify renders an argument or result value as text. Strings are returned
// verbatim, fmt.Stringer values via String, maps and slices as JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any, []string, *Arguments:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}
