// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Object is a decoded JSON object. All accessors are safe on a nil Object and
// fall back to the caller's default when a key is absent, null or of the wrong
// type, so each field's default is stated once at the call site.
type Object map[string]any

// AsObject returns v as an Object if it is a JSON object.
func AsObject(v any) (Object, bool) {
	switch m := v.(type) {
	case Object:
		return m, m != nil
	case map[string]any:
		return Object(m), m != nil
	}
	return nil, false
}

// AsArray returns v as a slice if it is a JSON array.
func AsArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// KindOf names the JSON kind of v.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case Object, map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, uint64, json.Number:
		return "number"
	}
	return "unsupported"
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Get returns the first non-null value among keys.
func (o Object) Get(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Lookup walks a nested path of object keys.
func (o Object) Lookup(path ...string) (any, bool) {
	var cur any = o
	for _, k := range path {
		obj, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		v, ok := obj[k]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Object returns the nested object under the first matching key, or nil.
func (o Object) Object(keys ...string) Object {
	v, _ := o.Get(keys...)
	obj, _ := AsObject(v)
	return obj
}

// Array returns the array under the first matching key, or nil.
func (o Object) Array(keys ...string) []any {
	v, _ := o.Get(keys...)
	a, _ := AsArray(v)
	return a
}

// Objects returns the object elements of the array under the first matching
// key. Non-object elements are skipped.
func (o Object) Objects(keys ...string) []Object {
	arr := o.Array(keys...)
	out := make([]Object, 0, len(arr))
	for _, el := range arr {
		if obj, ok := AsObject(el); ok {
			out = append(out, obj)
		}
	}
	return out
}

// String returns the first key holding a non-blank scalar, rendered as text.
func (o Object) String(def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := ScalarString(o[k]); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

// Float returns the first key holding a finite number or numeric string.
func (o Object) Float(def float64, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := Number(o[k]); ok {
			return f
		}
	}
	return def
}

// Int is Float truncated to an int.
func (o Object) Int(def int, keys ...string) int {
	for _, k := range keys {
		if f, ok := Number(o[k]); ok {
			return int(f)
		}
	}
	return def
}

// Strings returns the string elements of the array under the first matching
// key. A bare string is treated as a one-element list. Never returns nil.
func (o Object) Strings(keys ...string) []string {
	v, ok := o.Get(keys...)
	if !ok {
		return []string{}
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}
		}
		return []string{s}
	}
	arr, _ := AsArray(v)
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := ScalarString(el); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Number converts a JSON number or numeric string to a finite float64.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%")), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ScalarString renders strings, numbers and booleans as text.
func ScalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case nil:
		return "", false
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}
