package waf

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ValueKind identifies the node type of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindScalar
	KindList
	KindMap
	KindObject
)

// Value is untrusted request input: a scalar string, an ordered list, an
// ordered map, or an opaque object that may or may not have a string form.
// Only scalar leaves are inspected; lists and maps recurse structurally.
type Value struct {
	kind   ValueKind
	scalar string
	list   []Value
	pairs  []Pair
	object any
}

// Pair is one key/value entry of a map Value.
type Pair struct {
	Key   string
	Value Value
}

// Null returns the absent value. It is always accepted as-is.
func Null() Value { return Value{} }

// String returns a scalar Value.
func String(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns a list Value preserving element order.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Strings is a shortcut for a list of scalars.
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return List(list...)
}

// MapOf returns a map Value. Iteration order is the order of pairs.
func MapOf(pairs ...Pair) Value {
	return Value{kind: KindMap, pairs: pairs}
}

// P builds a Pair.
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// Object wraps an arbitrary Go value. Objects implementing fmt.Stringer are
// treated as their string form; anything else is rejected by the pipeline.
func Object(v any) Value {
	return Value{kind: KindObject, object: v}
}

// FromAny converts common Go input shapes into a Value.
// Maps without a defined order (map[string]string, url.Values) are sorted by key.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case []string:
		return Strings(t...)
	case []any:
		list := make([]Value, len(t))
		for i, item := range t {
			list[i] = FromAny(item)
		}
		return List(list...)
	case map[string]string:
		keys := sortedKeys(t)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, P(k, String(t[k])))
		}
		return MapOf(pairs...)
	case map[string]any:
		keys := sortedKeys(t)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, P(k, FromAny(t[k])))
		}
		return MapOf(pairs...)
	case url.Values:
		keys := sortedKeys(t)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			vals := t[k]
			if len(vals) == 1 {
				pairs = append(pairs, P(k, String(vals[0])))
				continue
			}
			pairs = append(pairs, P(k, Strings(vals...)))
		}
		return MapOf(pairs...)
	case int:
		return String(strconv.Itoa(t))
	case int64:
		return String(strconv.FormatInt(t, 10))
	case float64:
		return String(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		if t {
			return String("1")
		}
		return String("")
	default:
		return Object(v)
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Kind reports the node type.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Scalar returns the string of a scalar node, or the string form of a
// stringable object.
func (v Value) Scalar() (string, bool) {
	switch v.kind {
	case KindScalar:
		return v.scalar, true
	case KindObject:
		if s, ok := v.object.(fmt.Stringer); ok {
			return s.String(), true
		}
	}
	return "", false
}

// Str returns the scalar string or "" for any other node.
func (v Value) Str() string {
	s, _ := v.Scalar()
	return s
}

// Items returns the elements of a list node.
func (v Value) Items() []Value { return v.list }

// Pairs returns the entries of a map node.
func (v Value) Pairs() []Pair { return v.pairs }

// Get looks up a key in a map node.
func (v Value) Get(key string) (Value, bool) {
	for _, p := range v.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return v.scalar == o.scalar
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		return slices.EqualFunc(v.pairs, o.pairs, func(a, b Pair) bool {
			return a.Key == b.Key && a.Value.Equal(b.Value)
		})
	case KindObject:
		as, aok := v.Scalar()
		bs, bok := o.Scalar()
		return aok && bok && as == bs
	}
	return false
}

// Interface converts the value back to plain Go types:
// string, []any, map[string]any or the wrapped object.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.pairs))
		for _, p := range v.pairs {
			out[p.Key] = p.Value.Interface()
		}
		return out
	case KindObject:
		return v.object
	}
	return nil
}

// sample renders a value for threat logging.
func (v Value) sample() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindScalar:
		return v.scalar
	case KindObject:
		if s, ok := v.Scalar(); ok {
			return s
		}
		return objectPlaceholder
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.sample()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		parts := make([]string, len(v.pairs))
		for i, p := range v.pairs {
			parts[i] = p.Key + "=" + p.Value.sample()
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}
