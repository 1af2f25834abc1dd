package govalid

import (
	"math"
	"reflect"
	"strconv"
)

// floater matches decoded JSON numbers (encoding/json and goccy/go-json).
type floater interface {
	Float64() (float64, error)
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// toNumber reports v as a float64 when v is a Go number or a decoded JSON
// number. NaN is not a number.
func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if f, ok := v.(floater); ok {
		n, err := f.Float64()
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	rv := reflect.ValueOf(v)
	var n float64
	switch k := rv.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		n = float64(rv.Int())
	case isIntKind(k):
		n = float64(rv.Uint())
	case isFloatKind(k):
		n = rv.Float()
	default:
		return 0, false
	}
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func isInteger(v any) bool {
	n, ok := toNumber(v)
	return ok && !math.IsInf(n, 0) && n == math.Trunc(n)
}

// isFloat reports whether v is a number with a fractional part.
func isFloat(v any) bool {
	n, ok := toNumber(v)
	return ok && !math.IsInf(n, 0) && n != math.Trunc(n)
}

// sameValue compares enum candidates. Numbers compare by value whatever
// their Go type; everything else uses deep equality.
func sameValue(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	if _, ok := toNumber(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// formatBound renders a range bound the way numbers print in messages:
// integral values carry no fraction.
func formatBound(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// truthy decides whether a value is worth descending into: nil, false, zero,
// the empty string and nil references are not.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := toNumber(v); ok {
		return n != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	case reflect.Float32, reflect.Float64:
		return false // NaN
	}
	return true
}
