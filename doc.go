// Package govalid validates map-shaped data against declarative field rules.
//
// A Schema is built once from an ordered list of fields, each with one or
// more Rule descriptors, and can then validate any number of sources
// concurrently:
//
//	s := govalid.MustNew(govalid.Rules{
//		govalid.On("name", govalid.Rule{Type: govalid.TypeString, Required: true}),
//		govalid.On("age", govalid.Rule{Type: govalid.TypeInteger, Min: govalid.Bound(0)}),
//	})
//	out, err := s.Validate(ctx, map[string]any{"name": "ann", "age": 3})
//	if f, ok := govalid.AsFailure(err); ok {
//		_ = f.Fields["age"]
//	}
//
// Rules may transform values before validation, call custom synchronous or
// asynchronous validators, and describe nested objects and arrays through
// Fields and DefaultField. Errors are reported both as a flat list in rule
// order and grouped by field.
//
// Design policy:
//   - Keep the public API in the root package; message tables live in
//     messages/, environment configuration in config/.
//   - Built-in type checkers are ordinary ValidatorFuncs registered with
//     RegisterType and can be replaced.
//   - A validate call never modifies the caller's source.
package govalid
