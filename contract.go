package govalid

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Result is what a validator returns. It is interpreted as follows:
//
//   - nil or true: no error
//   - false: the rule's Message, or "<field> fails"
//   - error: its text; a MessageList or joined error yields one error per entry
//   - []string, []error or []any: one error per entry
//   - any other non-zero value: success when Options.AllowTruthy is set,
//     otherwise treated like false
//
// Validators may also push messages through their Reporter and return nil.
type Result = any

// Reporter pushes failure messages for the running rule. It accepts strings,
// errors, and slices of either; nil entries are ignored.
type Reporter func(msgs ...any)

// ValidatorFunc is the synchronous validator contract shared by built-in type
// checkers and custom validators. source is the object being validated; it
// must not be modified.
type ValidatorFunc func(rule *InternalRule, value any, report Reporter, source Values, opts *Options) Result

// AsyncValidatorFunc is the asynchronous validator contract. A non-nil error
// is the rejection payload and is reported like an error Result.
type AsyncValidatorFunc func(ctx context.Context, rule *InternalRule, value any, report Reporter, source Values, opts *Options) (Result, error)

var registry = struct {
	sync.RWMutex
	m map[Type]ValidatorFunc
}{m: map[Type]ValidatorFunc{}}

// RegisterType installs fn as the built-in validator for t, replacing any
// previous one. Schemas compiled afterwards pick it up.
func RegisterType(t Type, fn ValidatorFunc) {
	if t == "" || fn == nil {
		return
	}
	registry.Lock()
	registry.m[t] = fn
	registry.Unlock()
}

// LookupType returns the validator registered for t.
func LookupType(t Type) (ValidatorFunc, bool) {
	registry.RLock()
	fn, ok := registry.m[t]
	registry.RUnlock()
	return fn, ok
}

// collector accumulates messages for one rule invocation. Async validators
// may report from other goroutines.
type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (c *collector) report(msgs ...any) {
	flat := flattenMessages(nil, msgs...)
	c.mu.Lock()
	c.msgs = append(c.msgs, flat...)
	c.mu.Unlock()
}

func (c *collector) take() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msgs
}

func flattenMessages(dst []string, msgs ...any) []string {
	for _, m := range msgs {
		switch x := m.(type) {
		case nil:
		case string:
			dst = append(dst, x)
		case []string:
			dst = append(dst, x...)
		case []error:
			for _, e := range x {
				dst = errorMessages(dst, e)
			}
		case []any:
			dst = flattenMessages(dst, x...)
		case error:
			dst = errorMessages(dst, x)
		default:
			dst = append(dst, fmt.Sprint(x))
		}
	}
	return dst
}

func errorMessages(dst []string, err error) []string {
	if err == nil {
		return dst
	}
	var list MessageList
	if errors.As(err, &list) {
		return append(dst, list...)
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			dst = errorMessages(dst, e)
		}
		return dst
	}
	return append(dst, err.Error())
}

// interpret converts a validator Result into messages.
func interpret(rule *InternalRule, res Result, opts *Options) []string {
	switch x := res.(type) {
	case nil:
		return nil
	case bool:
		if x {
			return nil
		}
		return []string{failMessage(rule)}
	case error, []string, []error, []any:
		return flattenMessages(nil, x)
	}
	if isZero(res) || opts.AllowTruthy {
		return nil
	}
	return []string{failMessage(rule)}
}

func failMessage(rule *InternalRule) string {
	if rule.Message != nil {
		return rule.Message(rule.FullField)
	}
	return rule.FullField + " fails"
}

func isZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrValidatorPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrValidatorPanic, r)
}

// panicMessage is the message reported for a recovered panic.
func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
