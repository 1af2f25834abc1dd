package govalid

import (
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reoring/govalid/messages"
)

func init() {
	RegisterType(TypeString, validateString)
	RegisterType(TypeNumber, validateNumber)
	RegisterType(TypeBoolean, validatePlainType)
	RegisterType(TypeMethod, validatePlainType)
	RegisterType(TypeRegexp, validatePlainType)
	RegisterType(TypeInteger, validateRanged)
	RegisterType(TypeFloat, validateRanged)
	RegisterType(TypeArray, validateArray)
	RegisterType(TypeObject, validatePlainType)
	RegisterType(TypeEnum, validateEnum)
	RegisterType(TypeDate, validateDate)
	RegisterType(TypePattern, validatePattern)
	RegisterType(TypeURL, validateFormat)
	RegisterType(TypeHex, validateFormat)
	RegisterType(TypeEmail, validateFormat)
	RegisterType(TypeAny, validateAny)
}

var (
	emailRe = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}])|(([a-zA-Z\-0-9\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}]+\.)+[a-zA-Z\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}]{2,}))$`)
	hexRe   = regexp.MustCompile(`(?i)^#?([a-f0-9]{6}|[a-f0-9]{3})$`)
	urlRe   = regexp.MustCompile(urlPattern())

	blankRe = regexp.MustCompile(`^\s+$`)
)

func urlPattern() string {
	const (
		word     = `a-z\x{00a1}-\x{ffff}`
		protocol = `(?:(?:[a-z]+:)?//)`
		auth     = `(?:\S+(?::\S*)?@)?`
		octet    = `(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]\d|\d)`
		host     = `(?:[` + word + `0-9][-_]*)*[` + word + `0-9]+`
		domain   = `(?:\.(?:[` + word + `0-9]-*)*[` + word + `0-9]+)*`
		tld      = `(?:\.(?:[` + word + `]{2,}))`
		port     = `(?::\d{2,5})?`
		path     = `(?:[/?#][^\s"]*)?`
	)
	ipv4 := octet + `(?:\.` + octet + `){3}`
	ipv6 := `\[[0-9a-f:.]+\]`
	return `(?i)^` + protocol + auth + `(?:localhost|` + ipv4 + `|` + ipv6 + `|` + host + domain + tld + `)` + port + path + `$`
}

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// isStringType reports the types for which "" counts as empty.
func isStringType(t Type) bool {
	switch t {
	case TypeString, TypeURL, TypeHex, TypeEmail, TypeDate, TypePattern:
		return true
	}
	return false
}

// isEmptyValue reports whether v counts as absent for a rule of type t: nil
// always, an empty slice for arrays, and "" for string-like types.
func isEmptyValue(v any, t Type) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return true
		}
	}
	if t == TypeArray && isSequence(v) && rv.Len() == 0 {
		return true
	}
	if s, ok := v.(string); ok && s == "" && isStringType(t) {
		return true
	}
	return false
}

// hasField reports whether source holds a key for the rule's field.
func hasField(rule *InternalRule, source Values) bool {
	_, ok := source[rule.Field]
	return ok
}

// shouldCheck is the gate every built-in applies first: required rules are
// always checked, optional ones only when the field is present.
func shouldCheck(rule *InternalRule, source Values) bool {
	return rule.Required || hasField(rule, source)
}

// checkRequired appends the required message when a required value is
// missing or empty for type t. It reports whether the value passed.
func checkRequired(rule *InternalRule, value any, source Values, t Type, table *messages.Messages, errs *[]string) bool {
	if rule.Required && (!hasField(rule, source) || isEmptyValue(value, t)) {
		*errs = append(*errs, messages.Format(table.Required, rule.FullField))
		return false
	}
	return true
}

func isSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return true
	case reflect.Struct:
		_, isTime := rv.Interface().(time.Time)
		return !isTime
	}
	return false
}

func isRegexp(v any) bool {
	switch x := v.(type) {
	case *regexp.Regexp:
		return x != nil
	case string:
		_, err := regexp.Compile(x)
		return err == nil
	}
	return false
}

func isMethod(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// asDate converts v into a time. Numbers are Unix milliseconds.
func asDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if n, ok := toNumber(v); ok {
		return time.UnixMilli(int64(n)), true
	}
	return time.Time{}, false
}

// matchesType reports whether value has the shape type t names.
func matchesType(t Type, value any) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		_, ok := toNumber(value)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeMethod:
		return isMethod(value)
	case TypeRegexp:
		return isRegexp(value)
	case TypeInteger:
		return isInteger(value)
	case TypeFloat:
		return isFloat(value)
	case TypeArray:
		return isSequence(value)
	case TypeObject:
		return isObject(value)
	case TypeDate:
		_, ok := asDate(value)
		return ok
	case TypeEmail:
		s, ok := value.(string)
		return ok && len(s) <= 320 && emailRe.MatchString(s)
	case TypeURL:
		s, ok := value.(string)
		return ok && len(s) <= 2048 && urlRe.MatchString(s)
	case TypeHex:
		s, ok := value.(string)
		return ok && hexRe.MatchString(s)
	}
	return true
}

// checkType appends the type message for the rule's type when value does
// not match it.
func checkType(rule *InternalRule, value any, source Values, table *messages.Messages, errs *[]string) {
	if rule.Required && value == nil {
		checkRequired(rule, value, source, rule.Type, table, errs)
		return
	}
	if !matchesType(rule.Type, value) {
		*errs = append(*errs, messages.Format(table.Types.For(string(rule.Type)), rule.FullField, string(rule.Type)))
	}
}

// checkRange applies Len, Min and Max. Strings are measured in runes,
// sequences by element count, and numbers by value. Other values are left
// alone.
func checkRange(rule *InternalRule, value any, table *messages.Messages, errs *[]string) {
	if rule.Len == nil && rule.Min == nil && rule.Max == nil {
		return
	}
	var (
		kind string
		val  float64
	)
	if n, ok := toNumber(value); ok {
		kind, val = "number", n
	} else if s, ok := value.(string); ok {
		kind, val = "string", float64(utf8.RuneCountInString(s))
	} else if isSequence(value) {
		kind, val = "array", float64(reflect.ValueOf(value).Len())
	} else {
		return
	}
	tpl := table.RangeFor(kind)
	switch {
	case rule.Len != nil:
		if val != *rule.Len {
			*errs = append(*errs, messages.Format(tpl.Len, rule.FullField, formatBound(*rule.Len)))
		}
	case rule.Min != nil && rule.Max == nil:
		if val < *rule.Min {
			*errs = append(*errs, messages.Format(tpl.Min, rule.FullField, formatBound(*rule.Min)))
		}
	case rule.Max != nil && rule.Min == nil:
		if val > *rule.Max {
			*errs = append(*errs, messages.Format(tpl.Max, rule.FullField, formatBound(*rule.Max)))
		}
	default:
		if val < *rule.Min || val > *rule.Max {
			*errs = append(*errs, messages.Format(tpl.Range, rule.FullField, formatBound(*rule.Min), formatBound(*rule.Max)))
		}
	}
}

// checkPattern tests string values against the rule's pattern. The pattern is
// not anchored implicitly.
func checkPattern(rule *InternalRule, value any, table *messages.Messages, errs *[]string) {
	if rule.Pattern == nil {
		return
	}
	s, ok := value.(string)
	if !ok {
		s = messages.String(value)
	}
	if !rule.Pattern.MatchString(s) {
		*errs = append(*errs, messages.Format(table.Pattern.Mismatch, rule.FullField, s, rule.Pattern))
	}
}

func checkWhitespace(rule *InternalRule, value any, table *messages.Messages, errs *[]string) {
	s, ok := value.(string)
	if ok && (s == "" || blankRe.MatchString(s)) {
		*errs = append(*errs, messages.Format(table.Whitespace, rule.FullField))
	}
}

func checkEnum(rule *InternalRule, value any, table *messages.Messages, errs *[]string) {
	if slices.ContainsFunc(rule.Enum, func(e any) bool { return sameValue(e, value) }) {
		return
	}
	allowed := make([]string, len(rule.Enum))
	for i, e := range rule.Enum {
		allowed[i] = messages.String(e)
	}
	*errs = append(*errs, messages.Format(table.Enum, rule.FullField, strings.Join(allowed, ", ")))
}

// result converts collected messages into a validator Result.
func result(errs []string) Result {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateRequired is used for rules that only check presence. Emptiness is
// judged by the value's runtime shape.
func validateRequired(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	var errs []string
	t := Type("")
	switch {
	case isSequence(value):
		t = TypeArray
	case isStringValue(value):
		t = TypeString
	}
	checkRequired(rule, value, source, t, opts.Table(), &errs)
	return result(errs)
}

func isStringValue(v any) bool {
	_, ok := v.(string)
	return ok
}

func validateString(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, TypeString) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, TypeString, table, &errs) {
		return result(errs)
	}
	checkType(rule, value, source, table, &errs)
	checkRange(rule, value, table, &errs)
	checkPattern(rule, value, table, &errs)
	if rule.Whitespace {
		checkWhitespace(rule, value, table, &errs)
	}
	return result(errs)
}

func validateNumber(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if s, ok := value.(string); ok && s == "" {
		value = nil
	}
	return validateRanged(rule, value, nil, source, opts)
}

// validateRanged checks presence, type, and range. It serves number, integer
// and float.
func validateRanged(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, rule.Type) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, rule.Type, table, &errs) {
		return result(errs)
	}
	checkType(rule, value, source, table, &errs)
	checkRange(rule, value, table, &errs)
	return result(errs)
}

// validatePlainType checks presence and type. It serves boolean, method,
// regexp and object.
func validatePlainType(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, rule.Type) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, rule.Type, table, &errs) {
		return result(errs)
	}
	checkType(rule, value, source, table, &errs)
	return result(errs)
}

func validateArray(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, "") && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, TypeArray, table, &errs) {
		return result(errs)
	}
	checkType(rule, value, source, table, &errs)
	checkRange(rule, value, table, &errs)
	return result(errs)
}

func validateEnum(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, "") && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, "", table, &errs) {
		return result(errs)
	}
	checkEnum(rule, value, table, &errs)
	return result(errs)
}

func validateDate(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, TypeDate) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, TypeDate, table, &errs) {
		return result(errs)
	}
	t, ok := asDate(value)
	if !ok {
		errs = append(errs, messages.Format(table.Types.Date, rule.FullField, string(TypeDate)))
		return result(errs)
	}
	checkRange(rule, t.UnixMilli(), table, &errs)
	return result(errs)
}

func validatePattern(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, TypeString) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, TypeString, table, &errs) {
		return result(errs)
	}
	checkPattern(rule, value, table, &errs)
	return result(errs)
}

// validateFormat checks presence and a textual format. It serves url, hex
// and email.
func validateFormat(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, rule.Type) && !rule.Required {
		return nil
	}
	table := opts.Table()
	var errs []string
	if !checkRequired(rule, value, source, rule.Type, table, &errs) {
		return result(errs)
	}
	checkType(rule, value, source, table, &errs)
	checkPattern(rule, value, table, &errs)
	return result(errs)
}

func validateAny(rule *InternalRule, value any, _ Reporter, source Values, opts *Options) Result {
	if !shouldCheck(rule, source) {
		return nil
	}
	if isEmptyValue(value, "") && !rule.Required {
		return nil
	}
	var errs []string
	checkRequired(rule, value, source, "", opts.Table(), &errs)
	return result(errs)
}
