package govalid

import (
	"cmp"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// toValues copies an object-shaped value into Values. Maps with string keys
// are copied, slices and arrays are keyed by index, and structs are keyed by
// ResolveStructKey. A nil source yields an empty object.
func toValues(v any) (Values, bool) {
	switch x := v.(type) {
	case nil:
		return Values{}, true
	case Values:
		return maps.Clone(x), true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Values{}, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(Values, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Slice, reflect.Array:
		out := make(Values, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Struct:
		rt := rv.Type()
		out := make(Values, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := ResolveStructKey(sf)
			if name == "-" {
				continue
			}
			out[name] = rv.Field(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// ResolveStructKey returns the key a struct field is validated under.
// Priority: govalid:"name=..." > json tag name > field name; "-" skips the
// field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("govalid"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if name, ok := strings.CutPrefix(p, "name="); ok {
				return name
			}
			if p == "-" {
				return "-"
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}

// sortedKeys orders keys the way object keys enumerate: non-negative integer
// keys ascending, then the rest lexically.
func sortedKeys(v Values) []string {
	keys := slices.Collect(maps.Keys(v))
	slices.SortFunc(keys, func(a, b string) int {
		ai, aErr := strconv.ParseUint(a, 10, 32)
		bi, bErr := strconv.ParseUint(b, 10, 32)
		switch {
		case aErr == nil && bErr == nil:
			return cmp.Compare(ai, bi)
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}
