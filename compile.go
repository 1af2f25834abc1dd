package govalid

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// InternalRule is the compiled form of a Rule: its resolved type and path,
// the validators selected for it, and the compiled nested schema if any.
// The embedded Rule is a private copy; Type and Pattern hold resolved values.
type InternalRule struct {
	Rule

	// Field is the key of the field within its enclosing object.
	Field string
	// FullField is the dotted path from the root, fixed at compile time.
	FullField string
	// FullFields is FullField split into segments.
	FullFields []string

	Validators []ValidatorFunc
	Async      AsyncValidatorFunc

	// SubSchema validates nested fields of object and array values.
	SubSchema *Schema
}

// compileField compiles the rules declared for one field of s. Rules that
// select no validator are dropped.
func (s *Schema) compileField(name string, raw []Rule) ([]*InternalRule, error) {
	out := make([]*InternalRule, 0, len(raw))
	for _, r := range raw {
		ir, err := s.compileRule(name, r)
		if err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, &SchemaError{Field: s.fullPath(name), Err: err}
		}
		if ir != nil {
			out = append(out, ir)
		}
	}
	return out, nil
}

func (s *Schema) compileRule(name string, r Rule) (*InternalRule, error) {
	ir := &InternalRule{
		Rule:       r,
		Field:      name,
		FullField:  s.fullPath(name),
		FullFields: append(slices.Clone(s.pathSegments), name),
	}
	if ir.Pattern == nil && ir.PatternString != "" {
		re, err := regexp.Compile(ir.PatternString)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		ir.Pattern = re
	}
	if ir.Type == "" && ir.Pattern != nil {
		ir.Type = TypePattern
	}
	if ir.Validator == nil && ir.AsyncValidator == nil && ir.Type != "" {
		if _, ok := LookupType(ir.Type); !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownType, ir.Type)
		}
	}
	presenceOnly := r.presenceOnly()
	if ir.Type == "" {
		ir.Type = TypeString
	}

	switch {
	case ir.AsyncValidator != nil:
		ir.Async = ir.AsyncValidator
	case ir.Validator != nil:
		ir.Validators = []ValidatorFunc{ir.Validator}
	case presenceOnly:
		ir.Validators = []ValidatorFunc{validateRequired}
	default:
		if fn, ok := LookupType(ir.Type); ok {
			ir.Validators = []ValidatorFunc{fn}
		}
	}
	if len(ir.Validators) == 0 && ir.Async == nil {
		return nil, nil
	}

	if (ir.Type == TypeObject || ir.Type == TypeArray) && (ir.Fields != nil || ir.DefaultField != nil) {
		sub, err := newSchema(ir.Fields, schemaConfig{
			prefix:       ir.FullField,
			segments:     ir.FullFields,
			defaultField: ir.DefaultField,
			logger:       s.logger,
		})
		if err != nil {
			return nil, err
		}
		ir.SubSchema = sub
	}
	return ir, nil
}

func (s *Schema) fullPath(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "." + name
}
