package descriptor

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/reoring/govalid"
)

// ruleDoc is the document form of a govalid.Rule. Fields and DefaultField
// stay as nodes so mapping order survives decoding.
type ruleDoc struct {
	Type         string    `yaml:"type"`
	Required     bool      `yaml:"required"`
	Pattern      string    `yaml:"pattern"`
	Min          *float64  `yaml:"min"`
	Max          *float64  `yaml:"max"`
	Len          *float64  `yaml:"len"`
	Enum         []any     `yaml:"enum"`
	Whitespace   bool      `yaml:"whitespace"`
	Message      *string   `yaml:"message"`
	Fields       yaml.Node `yaml:"fields"`
	DefaultField yaml.Node `yaml:"defaultField"`
}

var ruleKeys = []string{
	"type", "required", "pattern", "min", "max", "len", "enum",
	"whitespace", "message", "fields", "defaultField",
}

// Parse reads a rule document. The root is a mapping from field name to
// either one rule or a list of rules; fields keep document order. JSON input
// is accepted as well.
//
//	name:
//	  type: string
//	  required: true
//	tags:
//	  type: array
//	  defaultField: {type: string}
func Parse(data []byte) (govalid.Rules, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if len(root.Content) == 0 {
		return govalid.Rules{}, nil
	}
	return parseFields(root.Content[0], "")
}

// ParseFile reads a rule document from path.
func ParseFile(path string) (govalid.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load parses a rule document and compiles it into a Schema.
func Load(data []byte, opts ...govalid.SchemaOption) (*govalid.Schema, error) {
	rules, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return govalid.New(rules, opts...)
}

// LoadFile is Load for a file on disk.
func LoadFile(path string, opts ...govalid.SchemaOption) (*govalid.Schema, error) {
	rules, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return govalid.New(rules, opts...)
}

func parseFields(n *yaml.Node, path string) (govalid.Rules, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, errAt(n, path, ErrNotMapping)
	}
	if err := checkDuplicates(n, path); err != nil {
		return nil, err
	}
	out := make(govalid.Rules, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		name := n.Content[i].Value
		rules, err := parseRules(n.Content[i+1], join(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, govalid.On(name, rules...))
	}
	return out, nil
}

func parseRules(n *yaml.Node, path string) ([]govalid.Rule, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		r, err := parseRule(n, path)
		if err != nil {
			return nil, err
		}
		return []govalid.Rule{r}, nil
	case yaml.SequenceNode:
		out := make([]govalid.Rule, 0, len(n.Content))
		for _, c := range n.Content {
			r, err := parseRule(resolve(c), path)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}
	return nil, errAt(n, path, ErrNotMapping)
}

func parseRule(n *yaml.Node, path string) (govalid.Rule, error) {
	if n.Kind != yaml.MappingNode {
		return govalid.Rule{}, errAt(n, path, ErrNotMapping)
	}
	if err := checkDuplicates(n, path); err != nil {
		return govalid.Rule{}, err
	}
	for i := 0; i < len(n.Content); i += 2 {
		if k := n.Content[i]; !slices.Contains(ruleKeys, k.Value) {
			return govalid.Rule{}, errAt(k, path, fmt.Errorf("%w %q", ErrUnknownKey, k.Value))
		}
	}
	var doc ruleDoc
	if err := n.Decode(&doc); err != nil {
		return govalid.Rule{}, errAt(n, path, err)
	}
	r := govalid.Rule{
		Type:          govalid.Type(doc.Type),
		Required:      doc.Required,
		PatternString: doc.Pattern,
		Min:           doc.Min,
		Max:           doc.Max,
		Len:           doc.Len,
		Enum:          doc.Enum,
		Whitespace:    doc.Whitespace,
	}
	if doc.Message != nil {
		r.Message = govalid.Text(*doc.Message)
	}
	var err error
	if doc.Fields.Kind != 0 {
		if r.Fields, err = parseFields(&doc.Fields, path); err != nil {
			return govalid.Rule{}, err
		}
	}
	if doc.DefaultField.Kind != 0 {
		if r.DefaultField, err = parseRules(&doc.DefaultField, join(path, "*")); err != nil {
			return govalid.Rule{}, err
		}
	}
	return r, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func checkDuplicates(n *yaml.Node, path string) error {
	seen := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		if first, dup := seen[k.Value]; dup {
			return errAt(k, join(path, k.Value), fmt.Errorf("%w %q (first at %d:%d)", ErrDuplicateKey, k.Value, first.Line, first.Column))
		}
		seen[k.Value] = k
	}
	return nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
