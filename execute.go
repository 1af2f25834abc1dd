package govalid

import (
	"context"
	"maps"
)

// ruleRun is one compiled rule paired with the field value it checks, i.e.
// the value after this rule's transform and every earlier one.
type ruleRun struct {
	rule  *InternalRule
	value any
}

// fieldRun carries the state of one field through a validate call.
type fieldRun struct {
	key   string
	rules []*InternalRule
	runs  []ruleRun

	errs       Errors // the field's own violations, sync then async
	deep       Errors // violations from nested schemas
	deepFields FieldErrors

	// nested holds rules that passed and own a sub-schema to descend into.
	nested []ruleRun
	halted bool
}

func (fr *fieldRun) hasAsyncWork() bool {
	if len(fr.nested) > 0 {
		return true
	}
	for _, run := range fr.runs {
		if run.rule.Async != nil {
			return true
		}
	}
	return false
}

// prepareField applies the field's transforms in rule order. Unless
// NoTransformSource is set, each transformed value is written to source so
// later rules and the caller see it. It runs only once the field is
// scheduled, so a field skipped by First is never transformed.
func (s *Schema) prepareField(fr *fieldRun, source Values, opts *Options) {
	fr.runs = make([]ruleRun, 0, len(fr.rules))
	value := source[fr.key]
	for _, r := range fr.rules {
		if fr.halted {
			return
		}
		if r.Transform != nil {
			v, ok := s.transform(fr, r, value, opts)
			if !ok {
				continue
			}
			value = v
			if !opts.NoTransformSource {
				source[fr.key] = value
			}
		}
		fr.runs = append(fr.runs, ruleRun{rule: r, value: value})
	}
}

func (s *Schema) transform(fr *fieldRun, r *InternalRule, value any, opts *Options) (out any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			fr.errs = append(fr.errs, ValidateError{Message: panicMessage(p), Field: r.FullField, FieldValue: value})
			s.surface(r, p, opts)
			if opts.First || opts.stopsField(fr.key) {
				fr.halted = true
			}
			ok = false
		}
	}()
	return r.Transform(value), true
}

// execSync runs the synchronous validators of every rule of the field.
func (s *Schema) execSync(fr *fieldRun, source Values, opts *Options) {
	for _, run := range fr.runs {
		if fr.halted {
			return
		}
		if len(run.rule.Validators) == 0 {
			continue
		}
		s.settle(fr, run, s.callSync(run, source, opts), opts)
	}
}

// execAsync awaits the field's async validators one by one, then descends
// into the nested schemas of rules that passed.
func (s *Schema) execAsync(ctx context.Context, fr *fieldRun, source Values, opts *Options) {
	for _, run := range fr.runs {
		if fr.halted {
			return
		}
		if run.rule.Async == nil {
			continue
		}
		s.settle(fr, run, s.callAsync(ctx, run, source, opts), opts)
	}
	if fr.halted {
		return
	}
	for _, run := range fr.nested {
		s.descend(ctx, fr, run, opts)
		if opts.First && len(fr.deep) > 0 {
			return
		}
	}
}

// settle records the messages produced by one rule and applies the
// short-circuit policy.
func (s *Schema) settle(fr *fieldRun, run ruleRun, msgs []string, opts *Options) {
	if len(msgs) == 0 {
		if run.rule.SubSchema != nil && truthy(run.value) {
			fr.nested = append(fr.nested, run)
		}
		return
	}
	if run.rule.Message != nil {
		msgs = []string{run.rule.Message(run.rule.FullField)}
	}
	for _, m := range msgs {
		fr.errs = append(fr.errs, ValidateError{Message: m, Field: run.rule.FullField, FieldValue: run.value})
	}
	if opts.First || opts.stopsField(fr.key) {
		fr.halted = true
	}
}

func (s *Schema) callSync(run ruleRun, source Values, opts *Options) []string {
	c := &collector{}
	for _, fn := range run.rule.Validators {
		s.guard(run.rule, c, opts, func() {
			c.report(interpret(run.rule, fn(run.rule, run.value, c.report, source, opts), opts))
		})
		if opts.First && len(c.take()) > 0 {
			break
		}
	}
	return c.take()
}

func (s *Schema) callAsync(ctx context.Context, run ruleRun, source Values, opts *Options) []string {
	c := &collector{}
	s.guard(run.rule, c, opts, func() {
		res, err := run.rule.Async(ctx, run.rule, run.value, c.report, source, opts)
		c.report(interpret(run.rule, res, opts))
		if err != nil {
			c.report(err)
		}
	})
	return c.take()
}

// guard runs fn, turning a panic into a message for the rule.
func (s *Schema) guard(rule *InternalRule, c *collector, opts *Options, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			c.report(panicMessage(p))
			s.surface(rule, p, opts)
		}
	}()
	fn()
}

// surface reports a validator defect outside the validate call's own control
// flow so it is not silently swallowed.
func (s *Schema) surface(rule *InternalRule, p any, opts *Options) {
	if opts.SuppressValidatorError {
		return
	}
	err := panicError(p)
	hook := opts.OnValidatorError
	logger := s.logger.WithField("field", rule.FullField)
	go func() {
		logger.WithError(err).Error("govalid: validator defect")
		if hook != nil {
			hook(err)
		}
	}()
}

// descend validates the value of run against its rule's sub-schema.
func (s *Schema) descend(ctx context.Context, fr *fieldRun, run ruleRun, opts *Options) {
	nested, ok := toValues(run.value)
	if !ok {
		return
	}
	out, err := run.rule.SubSchema.run(ctx, nested, opts.nested(run.rule))
	if err != nil {
		s.logger.WithField("field", run.rule.FullField).WithError(err).Error("govalid: nested validation")
		return
	}
	fr.deep = append(fr.deep, out.errors...)
	if fr.deepFields == nil {
		fr.deepFields = make(FieldErrors, len(out.paths))
	}
	maps.Copy(fr.deepFields, out.paths)
}
