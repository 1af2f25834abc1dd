package messages

import "reflect"

// Messages is a table of message templates used by the built-in validators.
// Templates use the placeholders understood by Format.
type Messages struct {
	Default    string          `yaml:"default,omitempty" json:"default,omitempty"`
	Required   string          `yaml:"required,omitempty" json:"required,omitempty"`
	Enum       string          `yaml:"enum,omitempty" json:"enum,omitempty"`
	Whitespace string          `yaml:"whitespace,omitempty" json:"whitespace,omitempty"`
	Date       DateMessages    `yaml:"date,omitempty" json:"date,omitempty"`
	Types      TypeMessages    `yaml:"types,omitempty" json:"types,omitempty"`
	String     RangeMessages   `yaml:"string,omitempty" json:"string,omitempty"`
	Number     RangeMessages   `yaml:"number,omitempty" json:"number,omitempty"`
	Array      RangeMessages   `yaml:"array,omitempty" json:"array,omitempty"`
	Pattern    PatternMessages `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// DateMessages holds date parsing templates.
type DateMessages struct {
	Format  string `yaml:"format,omitempty" json:"format,omitempty"`
	Parse   string `yaml:"parse,omitempty" json:"parse,omitempty"`
	Invalid string `yaml:"invalid,omitempty" json:"invalid,omitempty"`
}

// TypeMessages holds one "is not a <type>" template per rule type.
type TypeMessages struct {
	String  string `yaml:"string,omitempty" json:"string,omitempty"`
	Method  string `yaml:"method,omitempty" json:"method,omitempty"`
	Array   string `yaml:"array,omitempty" json:"array,omitempty"`
	Object  string `yaml:"object,omitempty" json:"object,omitempty"`
	Number  string `yaml:"number,omitempty" json:"number,omitempty"`
	Date    string `yaml:"date,omitempty" json:"date,omitempty"`
	Boolean string `yaml:"boolean,omitempty" json:"boolean,omitempty"`
	Integer string `yaml:"integer,omitempty" json:"integer,omitempty"`
	Float   string `yaml:"float,omitempty" json:"float,omitempty"`
	Regexp  string `yaml:"regexp,omitempty" json:"regexp,omitempty"`
	Email   string `yaml:"email,omitempty" json:"email,omitempty"`
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Hex     string `yaml:"hex,omitempty" json:"hex,omitempty"`
}

// For returns the template for the named type, or "" when none exists.
func (t TypeMessages) For(name string) string {
	switch name {
	case "string":
		return t.String
	case "method":
		return t.Method
	case "array":
		return t.Array
	case "object":
		return t.Object
	case "number":
		return t.Number
	case "date":
		return t.Date
	case "boolean":
		return t.Boolean
	case "integer":
		return t.Integer
	case "float":
		return t.Float
	case "regexp":
		return t.Regexp
	case "email":
		return t.Email
	case "url":
		return t.URL
	case "hex":
		return t.Hex
	}
	return ""
}

// RangeMessages holds len/min/max templates for one value kind.
type RangeMessages struct {
	Len   string `yaml:"len,omitempty" json:"len,omitempty"`
	Min   string `yaml:"min,omitempty" json:"min,omitempty"`
	Max   string `yaml:"max,omitempty" json:"max,omitempty"`
	Range string `yaml:"range,omitempty" json:"range,omitempty"`
}

// PatternMessages holds the pattern mismatch template.
type PatternMessages struct {
	Mismatch string `yaml:"mismatch,omitempty" json:"mismatch,omitempty"`
}

// RangeFor returns the range templates for "string", "number" or "array".
func (m *Messages) RangeFor(kind string) RangeMessages {
	switch kind {
	case "string":
		return m.String
	case "number":
		return m.Number
	case "array":
		return m.Array
	}
	return RangeMessages{}
}

// Clone returns a copy of the table. All fields are strings, so a value copy
// is a deep copy.
func (m *Messages) Clone() *Messages {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Merge returns a new table with every non-empty template of override laid
// over base. Neither argument is modified.
func Merge(base, override *Messages) *Messages {
	out := base.Clone()
	if out == nil {
		out = &Messages{}
	}
	if override == nil {
		return out
	}
	mergeStruct(reflect.ValueOf(out).Elem(), reflect.ValueOf(override).Elem())
	return out
}

func mergeStruct(dst, src reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		df, sf := dst.Field(i), src.Field(i)
		switch df.Kind() {
		case reflect.String:
			if s := sf.String(); s != "" {
				df.SetString(s)
			}
		case reflect.Struct:
			mergeStruct(df, sf)
		}
	}
}
