package govalid

import (
	"regexp"
	"slices"

	"github.com/reoring/govalid/messages"
)

// Type names the built-in validator a rule is checked with.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeMethod  Type = "method" // A Go func value.
	TypeRegexp  Type = "regexp" // A *regexp.Regexp or a string that compiles.
	TypeInteger Type = "integer"
	TypeFloat   Type = "float" // A number with a fractional part.
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeEnum    Type = "enum"
	TypeDate    Type = "date"
	TypeURL     Type = "url"
	TypeHex     Type = "hex"
	TypeEmail   Type = "email"
	TypePattern Type = "pattern"
	TypeAny     Type = "any"
)

// Values is the object shape validated by a Schema: field name to value.
type Values = map[string]any

// Message renders a rule's custom error text. It receives the rule's full
// field path.
type Message func(args ...any) string

// Text returns a Message that always yields s. An empty s is a valid
// message and is reported verbatim.
func Text(s string) Message {
	return func(...any) string { return s }
}

// Bound returns a pointer to v for use as Rule.Min, Rule.Max or Rule.Len.
func Bound(v float64) *float64 { return &v }

// Rule is a single validation descriptor for one field. A zero Rule (or one
// with only Required and Message set) checks presence only.
type Rule struct {
	// Type selects the built-in validator. When empty it is inferred:
	// TypePattern if a pattern is set, TypeString otherwise.
	Type     Type
	Required bool

	Pattern *regexp.Regexp
	// PatternString is compiled at schema construction when Pattern is nil.
	PatternString string

	// Min, Max and Len bound string length (in runes), numeric value,
	// sequence length, or a date's Unix milliseconds.
	Min *float64
	Max *float64
	Len *float64

	Enum       []any
	Whitespace bool // Reject strings made only of whitespace.

	// Message replaces every error this rule produces with a single error.
	Message Message

	// Transform rewrites the field value before any validator sees it.
	Transform func(any) any

	// Validator replaces the built-in validator for Type.
	Validator ValidatorFunc
	// AsyncValidator runs on the concurrent path. A rule carrying one is
	// checked by it alone.
	AsyncValidator AsyncValidatorFunc

	// Fields and DefaultField describe nested values of object and array
	// rules. Array elements are addressed by index ("0", "1", ...).
	Fields       Rules
	DefaultField []Rule

	// Options overrides the options passed to nested validation.
	Options *Options
}

// presenceOnly reports whether r sets nothing beyond Required and Message.
func (r Rule) presenceOnly() bool {
	return r.Type == "" &&
		r.Pattern == nil && r.PatternString == "" &&
		r.Min == nil && r.Max == nil && r.Len == nil &&
		r.Enum == nil && !r.Whitespace &&
		r.Transform == nil && r.Validator == nil && r.AsyncValidator == nil &&
		r.Fields == nil && r.DefaultField == nil && r.Options == nil
}

// Field binds a field name to its rules.
type Field struct {
	Name  string
	Rules []Rule
}

// On is shorthand for Field{Name: name, Rules: rules}.
func On(name string, rules ...Rule) Field {
	return Field{Name: name, Rules: rules}
}

// Rules is an ordered schema. Declaration order is the order fields are
// validated and reported in.
type Rules []Field

// Options tunes a single validate call.
type Options struct {
	// Keys restricts validation to these fields, in this order.
	Keys []string
	// First stops at the first failing field across the whole object and
	// reports only its first error.
	First bool
	// FirstFields stops each field at its first failing rule.
	FirstFields bool
	// FirstFieldsIn is FirstFields for the named fields only.
	FirstFieldsIn []string
	// Messages is deep-merged over the default table for this call.
	Messages *messages.Messages

	SuppressWarning        bool
	SuppressValidatorError bool
	// NoTransformSource keeps transformed values out of the returned source.
	// Validators still see the transformed value.
	NoTransformSource bool
	// AllowTruthy accepts any non-zero validator result as success.
	AllowTruthy bool
	// ReturnDeepFields also reports nested errors in the field map under
	// their full paths.
	ReturnDeepFields bool

	// OnValidatorError receives validator panics unless
	// SuppressValidatorError is set. It is called from its own goroutine.
	OnValidatorError func(error)

	table *messages.Messages
}

// Table returns the message table in effect for the call.
func (o *Options) Table() *messages.Messages {
	if o == nil || o.table == nil {
		return messages.Default()
	}
	return o.table
}

func (o *Options) stopsField(name string) bool {
	return o.FirstFields || slices.Contains(o.FirstFieldsIn, name)
}

// resolve returns a private copy of o with the effective table settled.
func (o *Options) resolve() *Options {
	var out Options
	if o != nil {
		out = *o
	}
	if b := baseline.Load(); b != nil {
		out.SuppressWarning = out.SuppressWarning || b.SuppressWarning
		out.SuppressValidatorError = out.SuppressValidatorError || b.SuppressValidatorError
	}
	if out.table == nil {
		if out.Messages != nil {
			out.table = messages.Merge(messages.Default(), out.Messages)
		} else {
			out.table = messages.Default()
		}
	}
	return &out
}

// nested derives the options for a sub-schema call of rule.
func (o *Options) nested(rule *InternalRule) *Options {
	var out Options
	if rule.Options != nil {
		out = *rule.Options
		if out.Messages == nil {
			out.table = o.table
		} else {
			out.table = nil
		}
	} else {
		out = *o
	}
	out.Keys = nil
	return out.resolve()
}
