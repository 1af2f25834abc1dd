package govalid_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/govalid"
	"github.com/reoring/govalid/messages"
)

func returns(res govalid.Result) govalid.ValidatorFunc {
	return func(*govalid.InternalRule, any, govalid.Reporter, govalid.Values, *govalid.Options) govalid.Result {
		return res
	}
}

func customSchema(t *testing.T) *govalid.Schema {
	t.Helper()
	s, err := govalid.New(govalid.Rules{
		govalid.On("v",
			govalid.Rule{Validator: returns(errors.New("e1"))},
			govalid.Rule{Validator: func(_ *govalid.InternalRule, _ any, report govalid.Reporter, _ govalid.Values, _ *govalid.Options) govalid.Result {
				report("e2")
				return nil
			}},
		),
		govalid.On("v2", govalid.Rule{Validator: returns([]string{"e3"})}),
		govalid.On("v3",
			govalid.Rule{Validator: returns(false)},
			govalid.Rule{Validator: returns(errors.New("e5"))},
			govalid.Rule{Validator: returns(false), Message: govalid.Text("e6")},
			govalid.Rule{Validator: returns(true)},
			govalid.Rule{Validator: func(*govalid.InternalRule, any, govalid.Reporter, govalid.Values, *govalid.Options) govalid.Result {
				panic("e7")
			}},
		),
	})
	require.NoError(t, err)
	return s
}

func failure(t *testing.T, err error) *govalid.ValidationFailure {
	t.Helper()
	f, ok := govalid.AsFailure(err)
	require.True(t, ok, "expected a validation failure, got %v", err)
	return f
}

func TestCustomValidators(t *testing.T) {
	s := customSchema(t)
	out, err := s.Validate(context.Background(), govalid.Values{"v": 2}, quiet)
	assert.Nil(t, out)
	f := failure(t, err)

	assert.Equal(t, []string{"e1", "e2", "e3", "v3 fails", "e5", "e6", "e7"}, f.Errors.Messages())
	assert.Equal(t, []string{"e1", "e2"}, f.Fields["v"].Messages())
	assert.Equal(t, []string{"e3"}, f.Fields["v2"].Messages())
	assert.Equal(t, "v3", f.Fields["v3"][0].Field)
	assert.Equal(t, 2, f.Fields["v"][0].FieldValue)
	assert.Nil(t, f.Fields["v2"][0].FieldValue)
}

func TestFirst(t *testing.T) {
	s := customSchema(t)
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{First: true, SuppressWarning: true})
	f := failure(t, err)
	assert.Equal(t, []string{"e1"}, f.Errors.Messages())
	require.Contains(t, f.Fields, "v2")
	assert.Empty(t, f.Fields["v2"])
}

func TestFirstFields(t *testing.T) {
	s := customSchema(t)
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{FirstFields: true, SuppressWarning: true, SuppressValidatorError: true})
	assert.Equal(t, []string{"e1", "e3", "v3 fails"}, failure(t, err).Errors.Messages())

	_, err = s.Validate(context.Background(), govalid.Values{}, &govalid.Options{FirstFieldsIn: []string{"v"}, SuppressWarning: true, SuppressValidatorError: true})
	assert.Equal(t, []string{"e1", "e3", "v3 fails", "e5", "e6", "e7"}, failure(t, err).Errors.Messages())
}

func TestEmptyMessage(t *testing.T) {
	got := check(t, govalid.Rule{Validator: returns(false), Message: govalid.Text("")}, govalid.Values{"v": 1})
	assert.Equal(t, []string{""}, got)
}

func TestTruthyResults(t *testing.T) {
	rule := govalid.Rule{Validator: returns(1)}
	assert.Equal(t, []string{"v fails"}, check(t, rule, govalid.Values{}))

	s := govalid.MustNew(govalid.Rules{govalid.On("v", rule)})
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{AllowTruthy: true})
	assert.NoError(t, err)

	assert.Nil(t, check(t, govalid.Rule{Validator: returns("")}, govalid.Values{}))
	assert.Equal(t, []string{"a", "b"}, check(t, govalid.Rule{Validator: returns(govalid.MessageList{"a", "b"})}, govalid.Values{}))
	assert.Equal(t, []string{"a", "b"}, check(t, govalid.Rule{Validator: returns(errors.Join(errors.New("a"), errors.New("b")))}, govalid.Values{}))
	assert.Equal(t, []string{"x", "y"}, check(t, govalid.Rule{Validator: returns([]any{"x", errors.New("y")})}, govalid.Values{}))
}

func TestRuleMessageReplacesErrors(t *testing.T) {
	rule := govalid.Rule{Type: govalid.TypeString, Min: govalid.Bound(5), PatternString: `^\d+$`, Message: govalid.Text("bad v")}
	assert.Equal(t, []string{"bad v"}, check(t, rule, govalid.Values{"v": "ab"}))
}

func asyncRule(delay time.Duration, res govalid.Result, err error) govalid.Rule {
	return govalid.Rule{AsyncValidator: func(ctx context.Context, _ *govalid.InternalRule, _ any, _ govalid.Reporter, _ govalid.Values, _ *govalid.Options) (govalid.Result, error) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return res, err
	}}
}

func TestAsyncValidators(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{
		govalid.On("a", asyncRule(30*time.Millisecond, nil, errors.New("a1"))),
		govalid.On("b", govalid.Rule{Validator: returns(errors.New("b1"))}, asyncRule(0, false, nil)),
		govalid.On("c", asyncRule(10*time.Millisecond, true, nil)),
	})
	_, err := s.Validate(context.Background(), govalid.Values{}, quiet)
	f := failure(t, err)
	assert.Equal(t, []string{"a1", "b1", "b fails"}, f.Errors.Messages())
	assert.Empty(t, f.Fields["c"])
}

func TestAsyncFirstAwaitsInOrder(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	track := func(name string, res govalid.Result) govalid.Rule {
		return govalid.Rule{AsyncValidator: func(context.Context, *govalid.InternalRule, any, govalid.Reporter, govalid.Values, *govalid.Options) (govalid.Result, error) {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
			return res, nil
		}}
	}
	s := govalid.MustNew(govalid.Rules{
		govalid.On("a", track("a", nil)),
		govalid.On("b", track("b", false)),
		govalid.On("c", track("c", false)),
	})
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{First: true, SuppressWarning: true})
	assert.Equal(t, []string{"b fails"}, failure(t, err).Errors.Messages())
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestTransform(t *testing.T) {
	trim := func(v any) any {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	}
	s := govalid.MustNew(govalid.Rules{
		govalid.On("v", govalid.Rule{Type: govalid.TypeString, Transform: trim, Len: govalid.Bound(1)}),
	})
	src := govalid.Values{"v": "  a "}

	out, err := s.Validate(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "a", out["v"])
	assert.Equal(t, "  a ", src["v"], "caller's source must not change")

	again, err := s.Validate(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	kept, err := s.Validate(context.Background(), src, &govalid.Options{NoTransformSource: true})
	require.NoError(t, err)
	assert.Equal(t, "  a ", kept["v"])
}

func TestTransformChain(t *testing.T) {
	var seen []any
	record := func(res govalid.Result) govalid.ValidatorFunc {
		return func(_ *govalid.InternalRule, v any, _ govalid.Reporter, _ govalid.Values, _ *govalid.Options) govalid.Result {
			seen = append(seen, v)
			return res
		}
	}
	double := func(v any) any { return v.(int) * 2 }
	s := govalid.MustNew(govalid.Rules{
		govalid.On("v",
			govalid.Rule{Transform: double, Validator: record(nil)},
			govalid.Rule{Transform: double, Validator: record(nil)},
		),
	})
	out, err := s.Validate(context.Background(), govalid.Values{"v": 1})
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4}, seen)
	assert.Equal(t, 4, out["v"])
}

func TestTransformPanic(t *testing.T) {
	boom := func(any) any { panic("boom") }
	got := check(t, govalid.Rule{Type: govalid.TypeString, Transform: boom}, govalid.Values{"v": "x"})
	assert.Equal(t, []string{"boom"}, got)
}

func TestTransformPanic_First(t *testing.T) {
	boom := func(any) any { panic("boom") }
	calls := 0
	count := func(v any) any {
		calls++
		return v
	}
	s := govalid.MustNew(govalid.Rules{
		govalid.On("a", govalid.Rule{Type: govalid.TypeString}),
		govalid.On("b", govalid.Rule{Type: govalid.TypeString, Transform: boom}),
		govalid.On("c", govalid.Rule{Transform: count}),
	})
	opts := &govalid.Options{First: true, SuppressWarning: true, SuppressValidatorError: true}

	_, err := s.Validate(context.Background(), govalid.Values{"a": 1, "b": "x", "c": "y"}, opts)
	assert.Equal(t, []string{"a is not a string"}, failure(t, err).Errors.Messages())
	assert.Zero(t, calls, "fields after the first failure must not be transformed")

	_, err = s.Validate(context.Background(), govalid.Values{"a": "ok", "b": "x", "c": "y"}, opts)
	assert.Equal(t, []string{"boom"}, failure(t, err).Errors.Messages())
	assert.Zero(t, calls)
}

func TestTransformPanic_FirstFields(t *testing.T) {
	boom := func(any) any { panic("boom") }
	calls := 0
	count := func(v any) any {
		calls++
		return v
	}
	s := govalid.MustNew(govalid.Rules{
		govalid.On("a",
			govalid.Rule{Type: govalid.TypeString, Transform: boom},
			govalid.Rule{Type: govalid.TypeString, Transform: count},
		),
		govalid.On("b", govalid.Rule{Type: govalid.TypeString}),
	})
	src := govalid.Values{"a": 1, "b": 2}

	_, err := s.Validate(context.Background(), src, &govalid.Options{FirstFields: true, SuppressWarning: true, SuppressValidatorError: true})
	assert.Equal(t, []string{"boom", "b is not a string"}, failure(t, err).Errors.Messages())
	assert.Zero(t, calls)

	_, err = s.Validate(context.Background(), src, &govalid.Options{FirstFieldsIn: []string{"a"}, SuppressWarning: true, SuppressValidatorError: true})
	assert.Equal(t, []string{"boom", "b is not a string"}, failure(t, err).Errors.Messages())

	_, err = s.Validate(context.Background(), src, quiet)
	assert.Equal(t, []string{"boom", "a is not a string", "b is not a string"}, failure(t, err).Errors.Messages())
}

func TestValidatorPanicIsSurfaced(t *testing.T) {
	hooked := make(chan error, 1)
	s := govalid.MustNew(govalid.Rules{
		govalid.On("v", govalid.Rule{Validator: func(*govalid.InternalRule, any, govalid.Reporter, govalid.Values, *govalid.Options) govalid.Result {
			panic(errors.New("broken"))
		}}),
	})
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{
		SuppressWarning:  true,
		OnValidatorError: func(err error) { hooked <- err },
	})
	assert.Equal(t, []string{"broken"}, failure(t, err).Errors.Messages())

	select {
	case err := <-hooked:
		assert.ErrorIs(t, err, govalid.ErrValidatorPanic)
		assert.ErrorContains(t, err, "broken")
	case <-time.After(time.Second):
		t.Fatal("validator defect was not surfaced")
	}
}

func TestKeys(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{
		govalid.On("a", govalid.Rule{Required: true}),
		govalid.On("b", govalid.Rule{Required: true}),
	})
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{Keys: []string{"b"}, SuppressWarning: true})
	f := failure(t, err)
	assert.Equal(t, []string{"b is required"}, f.Errors.Messages())
	assert.NotContains(t, f.Fields, "a")
}

func TestEmptySchema(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{})
	src := govalid.Values{"x": 1}
	out, err := s.Validate(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestDefaultFieldProvisional(t *testing.T) {
	s, err := govalid.New(
		govalid.Rules{govalid.On("a", govalid.Rule{Type: govalid.TypeString})},
		govalid.WithDefaultField(govalid.Rule{Type: govalid.TypeNumber}),
	)
	require.NoError(t, err)

	_, err = s.Validate(context.Background(), govalid.Values{"a": "x", "b": "y", "c": 1}, quiet)
	assert.Equal(t, []string{"b is not a number"}, failure(t, err).Errors.Messages())

	_, err = s.Validate(context.Background(), govalid.Values{"a": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, s.Fields())
	assert.Empty(t, s.Rules("b"))
}

func TestValidate_IdempotentFailure(t *testing.T) {
	s, err := govalid.New(
		govalid.Rules{
			govalid.On("a", govalid.Rule{Type: govalid.TypeString, Required: true}),
			govalid.On("list", govalid.Rule{
				Type:         govalid.TypeArray,
				DefaultField: []govalid.Rule{{Type: govalid.TypeInteger}},
			}),
		},
		govalid.WithDefaultField(govalid.Rule{Type: govalid.TypeNumber}),
	)
	require.NoError(t, err)
	src := govalid.Values{"list": []any{1, "x"}, "extra": "y"}
	opts := &govalid.Options{SuppressWarning: true, ReturnDeepFields: true}

	_, err = s.Validate(context.Background(), src, opts)
	first := failure(t, err)
	_, err = s.Validate(context.Background(), src, opts)
	second := failure(t, err)

	assert.Equal(t, []string{"a is required", "list.1 is not an integer", "extra is not a number"}, first.Errors.Messages())
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, []string{"a", "list"}, s.Fields())
}

func TestCallback(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{govalid.On("v", govalid.Rule{Type: govalid.TypeString, Required: true})})

	var gotErrs govalid.Errors
	var gotFields govalid.FieldErrors
	out := s.ValidateWithCallback(context.Background(), govalid.Values{}, quiet, func(errs govalid.Errors, fields govalid.FieldErrors) {
		gotErrs, gotFields = errs, fields
	})
	assert.NotNil(t, out)
	assert.Equal(t, []string{"v is required"}, gotErrs.Messages())
	assert.Equal(t, []string{"v is required"}, gotFields["v"].Messages())

	called := false
	s.ValidateWithCallback(context.Background(), govalid.Values{"v": "x"}, nil, func(errs govalid.Errors, fields govalid.FieldErrors) {
		called = true
		assert.Nil(t, errs)
		assert.Contains(t, fields, "v")
	})
	assert.True(t, called)
}

func TestUnsupportedSource(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{govalid.On("a", govalid.Rule{Type: govalid.TypeString})})
	_, err := s.Validate(context.Background(), 42)
	assert.ErrorIs(t, err, govalid.ErrUnsupportedSource)

	var errs govalid.Errors
	out := s.ValidateWithCallback(context.Background(), 42, quiet, func(e govalid.Errors, _ govalid.FieldErrors) { errs = e })
	assert.Nil(t, errs)
	assert.Empty(t, out)
}

type account struct {
	Name   string `json:"name"`
	Age    int    `govalid:"name=age"`
	Secret string `json:"-"`
	hidden string
}

func TestStructSource(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{
		govalid.On("name", govalid.Rule{Type: govalid.TypeString, Required: true}),
		govalid.On("age", govalid.Rule{Type: govalid.TypeNumber, Min: govalid.Bound(18)}),
	})
	_, err := s.Validate(context.Background(), &account{Age: 10, Secret: "s", hidden: "h"}, quiet)
	f := failure(t, err)
	assert.Equal(t, []string{"name is required", "age cannot be less than 18"}, f.Errors.Messages())

	out, err := s.Validate(context.Background(), account{Name: "ann", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, govalid.Values{"name": "ann", "age": 20}, out)
}

func TestValidateAsync(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{govalid.On("v", govalid.Rule{Type: govalid.TypeString})})
	out, err := s.ValidateAsync(context.Background(), govalid.Values{"v": "x"}).Await()
	require.NoError(t, err)
	assert.Equal(t, "x", out["v"])

	_, err = s.ValidateAsync(context.Background(), govalid.Values{"v": 1}, quiet).AwaitWithTimeout(time.Second)
	assert.Equal(t, []string{"v is not a string"}, failure(t, err).Errors.Messages())
}

func TestMessagesOverride(t *testing.T) {
	s := govalid.MustNew(govalid.Rules{govalid.On("v", govalid.Rule{Type: govalid.TypeString, Required: true})})
	_, err := s.Validate(context.Background(), govalid.Values{}, &govalid.Options{
		SuppressWarning: true,
		Messages:        &messages.Messages{Required: "%s must be set"},
	})
	assert.Equal(t, []string{"v must be set"}, failure(t, err).Errors.Messages())

	// Other templates keep their defaults.
	_, err = s.Validate(context.Background(), govalid.Values{"v": 1}, &govalid.Options{
		SuppressWarning: true,
		Messages:        &messages.Messages{Required: "%s must be set"},
	})
	assert.Equal(t, []string{"v is not a string"}, failure(t, err).Errors.Messages())
}

func TestErrorsSummary(t *testing.T) {
	errs := govalid.Errors{
		{Field: "a", Message: "a bad"},
		{Field: "b", Message: "b bad"},
		{Field: "c", Message: "c bad"},
		{Field: "d", Message: "d bad"},
	}
	assert.Equal(t, "a: a bad; b: b bad; c: c bad; ... (total 4)", errs.Error())

	f := &govalid.ValidationFailure{Errors: errs[:1]}
	assert.Equal(t, "govalid: validation failed: a: a bad", f.Error())
	var wrapped error = f
	got, ok := govalid.AsFailure(wrapped)
	assert.True(t, ok)
	assert.Same(t, f, got)
}

func TestConcurrentValidate(t *testing.T) {
	s := govalid.MustNew(
		govalid.Rules{govalid.On("a", govalid.Rule{Type: govalid.TypeString})},
		govalid.WithDefaultField(govalid.Rule{Type: govalid.TypeNumber}),
	)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Validate(context.Background(), govalid.Values{"a": "x", "n": i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
