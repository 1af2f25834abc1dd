package govalid

import (
	"context"
	"fmt"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/govalid/internal/async"
)

// Callback receives the outcome of ValidateWithCallback. errs is nil when
// every rule passed; fields holds an entry for every validated field.
type Callback func(errs Errors, fields FieldErrors)

// Future is the pending result of ValidateAsync.
type Future = async.Future[Values]

// outcome is the aggregated result of one run.
type outcome struct {
	source Values
	errors Errors
	fields FieldErrors
	// paths holds the same violations keyed by full path, nested fields
	// included.
	paths FieldErrors
}

// Validate checks source and returns it with transforms applied. When any
// rule fails it returns a nil source and a *ValidationFailure.
//
// source may be Values, any map with string keys, a slice (keyed by index)
// or a struct; it is copied and never modified. Only the first non-nil
// Options is used.
func (s *Schema) Validate(ctx context.Context, source any, opts ...*Options) (Values, error) {
	src, ok := toValues(source)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedSource, source)
	}
	o := pick(opts).resolve()
	out, err := s.run(ctx, src, o)
	if err != nil {
		return nil, err
	}
	s.warn(out.errors, o)
	if len(out.errors) > 0 {
		return nil, &ValidationFailure{Errors: out.errors, Fields: out.fields}
	}
	return out.source, nil
}

// ValidateWithCallback checks source, hands the result to cb, and returns
// the source with transforms applied. It never fails: an unsupported source
// is logged and validated as an empty object.
func (s *Schema) ValidateWithCallback(ctx context.Context, source any, opts *Options, cb Callback) Values {
	o := opts.resolve()
	src, ok := toValues(source)
	if !ok {
		s.logger.WithField("source", fmt.Sprintf("%T", source)).Warn(ErrUnsupportedSource.Error())
		src = Values{}
	}
	out, err := s.run(ctx, src, o)
	if err != nil {
		s.logger.WithError(err).Error("govalid: validate")
	}
	s.warn(out.errors, o)
	if cb != nil {
		var errs Errors
		if len(out.errors) > 0 {
			errs = out.errors
		}
		fields := out.fields
		if fields == nil {
			fields = FieldErrors{}
		}
		cb(errs, fields)
	}
	return out.source
}

// ValidateAsync starts Validate on its own goroutine.
func (s *Schema) ValidateAsync(ctx context.Context, source any, opts ...*Options) *Future {
	return async.Async(ctx, source, func(ctx context.Context, src any) (Values, error) {
		return s.Validate(ctx, src, opts...)
	})
}

func pick(opts []*Options) *Options {
	for _, o := range opts {
		if o != nil {
			return o
		}
	}
	return nil
}

// run validates source in place. opts must be resolved.
func (s *Schema) run(ctx context.Context, source Values, opts *Options) (outcome, error) {
	table, err := s.prepare(source)
	if err != nil {
		return outcome{source: source}, err
	}
	keys := opts.Keys
	if keys == nil {
		keys = table.order
	}
	out := outcome{
		source: source,
		fields: make(FieldErrors, len(keys)),
		paths:  make(FieldErrors, len(keys)),
	}
	if len(keys) == 0 {
		return out, nil
	}

	runs := make([]*fieldRun, len(keys))
	for i, k := range keys {
		runs[i] = &fieldRun{key: k, rules: table.rules[k]}
	}
	if opts.First {
		s.runSerial(ctx, runs, source, opts)
	} else {
		s.runConcurrent(ctx, runs, source, opts)
	}

	for _, fr := range runs {
		out.errors = append(out.errors, fr.errs...)
		out.errors = append(out.errors, fr.deep...)
		own := fr.errs
		if own == nil {
			own = Errors{}
		}
		out.fields[fr.key] = own
		out.paths[s.fullPath(fr.key)] = own
		maps.Copy(out.paths, fr.deepFields)
		if opts.ReturnDeepFields {
			maps.Copy(out.fields, fr.deepFields)
		}
	}
	return out, nil
}

// runSerial validates fields one after another, awaiting each field's async
// and nested work, and stops at the first field that reports an error. Only
// that field's first error is kept.
func (s *Schema) runSerial(ctx context.Context, runs []*fieldRun, source Values, opts *Options) {
	for _, fr := range runs {
		s.prepareField(fr, source, opts)
		s.execSync(fr, source, opts)
		s.execAsync(ctx, fr, source, opts)
		switch {
		case len(fr.errs) > 0:
			fr.errs, fr.deep = fr.errs[:1], nil
		case len(fr.deep) > 0:
			fr.deep = fr.deep[:1]
		default:
			continue
		}
		return
	}
}

// runConcurrent runs every field's synchronous validators in order, then
// starts the remaining async and nested work of all fields at once and
// waits for it. Results stay in field order whatever the completion order.
func (s *Schema) runConcurrent(ctx context.Context, runs []*fieldRun, source Values, opts *Options) {
	for _, fr := range runs {
		s.prepareField(fr, source, opts)
		s.execSync(fr, source, opts)
	}
	var g errgroup.Group
	for _, fr := range runs {
		if fr.halted || !fr.hasAsyncWork() {
			continue
		}
		g.Go(func() error {
			s.execAsync(ctx, fr, source, opts)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Schema) warn(errs Errors, opts *Options) {
	if opts.SuppressWarning || len(errs) == 0 {
		return
	}
	s.logger.WithField("errors", errs.Messages()).Warn("govalid: validation failed")
}
