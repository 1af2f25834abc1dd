package messages

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

var placeholder = regexp.MustCompile(`%[sdj%]`)

// Format fills %s, %d and %j placeholders in template with args, in order.
// %% yields a literal percent sign. Placeholders without a matching
// argument are left untouched.
//
//	Format("%s must be between %s and %s", "age", 1, 3) // "age must be between 1 and 3"
func Format(template string, args ...any) string {
	i := 0
	return placeholder.ReplaceAllStringFunc(template, func(x string) string {
		if x == "%%" {
			return "%"
		}
		if i >= len(args) {
			return x
		}
		arg := args[i]
		i++
		switch x {
		case "%s":
			return String(arg)
		case "%d":
			return formatNumber(toNumber(arg))
		case "%j":
			b, err := gojson.Marshal(arg)
			if err != nil {
				return "[Circular]"
			}
			return string(b)
		}
		return x
	})
}

// String renders v the way messages display values: integral floats drop
// their fraction, regular expressions are wrapped in slashes, and slices are
// joined with commas.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case fmt.Stringer:
		if re, ok := x.(*regexp.Regexp); ok {
			return "/" + re.String() + "/"
		}
		if t, ok := x.(time.Time); ok {
			return t.Format(time.RFC3339)
		}
		return x.String()
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case error:
		return x.Error()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = String(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return math.NaN()
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
