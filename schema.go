package govalid

import (
	"maps"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Schema validates objects against an ordered set of field rules. A Schema
// is safe for concurrent use.
type Schema struct {
	order    []string
	rules    map[string][]Rule
	compiled map[string][]*InternalRule

	defaultField []Rule
	prefix       string
	pathSegments []string
	logger       logrus.FieldLogger

	// mu guards the provisional registrations made from defaultField.
	mu              sync.Mutex
	provisionalKeys []string
}

// SchemaOption configures a Schema.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	defaultField []Rule
	prefix       string
	segments     []string
	logger       logrus.FieldLogger
}

// WithDefaultField applies rules to every source key that has no declared
// rules, for the duration of each validate call.
func WithDefaultField(rules ...Rule) SchemaOption {
	return func(c *schemaConfig) { c.defaultField = rules }
}

// WithLogger sets the logger used for validation warnings and validator
// defects. Nil loggers are ignored.
func WithLogger(l logrus.FieldLogger) SchemaOption {
	return func(c *schemaConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New compiles rules into a Schema. It fails with a *SchemaError when rules
// is nil, a field is declared twice, a pattern does not compile, or a rule
// names a type with no registered validator.
func New(rules Rules, opts ...SchemaOption) (*Schema, error) {
	if rules == nil {
		return nil, &SchemaError{Err: ErrNilRules}
	}
	var cfg schemaConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSchema(rules, cfg)
}

// MustNew is like New but panics on error.
func MustNew(rules Rules, opts ...SchemaOption) *Schema {
	s, err := New(rules, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func newSchema(rules Rules, cfg schemaConfig) (*Schema, error) {
	s := &Schema{
		order:        make([]string, 0, len(rules)),
		rules:        make(map[string][]Rule, len(rules)),
		compiled:     make(map[string][]*InternalRule, len(rules)),
		defaultField: cfg.defaultField,
		prefix:       cfg.prefix,
		pathSegments: cfg.segments,
		logger:       cfg.logger,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	for _, f := range rules {
		if _, dup := s.rules[f.Name]; dup {
			return nil, &SchemaError{Field: s.fullPath(f.Name), Err: ErrDuplicateField}
		}
		if err := s.define(f.Name, f.Rules); err != nil {
			return nil, err
		}
		s.order = append(s.order, f.Name)
	}
	if len(s.defaultField) > 0 {
		// Compile once up front so a bad default fails construction rather
		// than a later validate call.
		if _, err := s.compileField("*", s.defaultField); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) define(name string, rules []Rule) error {
	compiled, err := s.compileField(name, rules)
	if err != nil {
		return err
	}
	s.rules[name] = rules
	s.compiled[name] = compiled
	return nil
}

// Fields returns the declared field names in declaration order.
func (s *Schema) Fields() []string { return slices.Clone(s.order) }

// Rules returns the compiled rules of a declared field.
func (s *Schema) Rules(name string) []*InternalRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.compiled[name])
}

// fieldTable is the set of fields a single validate call works with.
type fieldTable struct {
	order []string
	rules map[string][]*InternalRule
}

// prepare drops the provisional fields registered by the previous call and,
// when a default field is configured, registers one for every key of source
// without declared rules. It returns a snapshot for this call.
func (s *Schema) prepare(source Values) (fieldTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.provisionalKeys {
		delete(s.rules, k)
		delete(s.compiled, k)
	}
	s.provisionalKeys = s.provisionalKeys[:0]

	order := slices.Clone(s.order)
	if len(s.defaultField) > 0 {
		for _, k := range sortedKeys(source) {
			if _, declared := s.rules[k]; declared {
				continue
			}
			if err := s.define(k, s.defaultField); err != nil {
				return fieldTable{}, err
			}
			s.provisionalKeys = append(s.provisionalKeys, k)
			order = append(order, k)
		}
	}
	return fieldTable{order: order, rules: maps.Clone(s.compiled)}, nil
}
