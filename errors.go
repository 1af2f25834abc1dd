package govalid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilRules is returned by New when no rules are given.
	ErrNilRules = errors.New("govalid: rules are required")
	// ErrUnknownType is returned for a rule type with no registered validator.
	ErrUnknownType = errors.New("govalid: unknown rule type")
	// ErrDuplicateField is returned when a field is declared twice.
	ErrDuplicateField = errors.New("govalid: duplicate field")
	// ErrInvalidPattern is returned when Rule.PatternString does not compile.
	ErrInvalidPattern = errors.New("govalid: invalid pattern")
	// ErrUnsupportedSource is returned for sources that are not objects.
	ErrUnsupportedSource = errors.New("govalid: source must be a map, slice or struct")
	// ErrDecodeSource is returned by ValidateJSON for malformed documents.
	ErrDecodeSource = errors.New("govalid: cannot decode source")
	// ErrValidatorPanic wraps panics recovered from validators and transforms.
	ErrValidatorPanic = errors.New("govalid: validator panicked")
)

// SchemaError is a configuration error detected while building a Schema.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (field %q)", e.Err, e.Field)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ValidateError is a single rule violation.
type ValidateError struct {
	Message string `json:"message"`
	// Field is the full dotted path of the failing field, e.g. "items.0".
	Field string `json:"field"`
	// FieldValue is the field value the rule saw, after transforms.
	FieldValue any `json:"fieldValue"`
}

func (e ValidateError) Error() string { return e.Message }

// Errors is a list of violations that implements error.
type Errors []ValidateError

// Error summarizes the first few violations.
func (errs Errors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(errs), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", errs[i].Field, errs[i].Message)
	}
	if len(errs) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(errs))
	}
	return b.String()
}

// Messages returns the message of every violation, in order.
func (errs Errors) Messages() []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// FieldErrors maps a field name to its violations. A validated field without
// violations maps to an empty list.
type FieldErrors map[string]Errors

// ValidationFailure is returned by Validate when any rule fails.
type ValidationFailure struct {
	Errors Errors
	Fields FieldErrors
}

func (f *ValidationFailure) Error() string {
	return "govalid: validation failed: " + f.Errors.Error()
}

func (f *ValidationFailure) Unwrap() error { return f.Errors }

// AsFailure extracts a ValidationFailure from err.
func AsFailure(err error) (*ValidationFailure, bool) {
	if err == nil {
		return nil, false
	}
	var f *ValidationFailure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// MessageList is an error carrying several messages; each becomes its own
// violation when returned from a validator.
type MessageList []string

func (l MessageList) Error() string { return strings.Join(l, "; ") }
