package descriptor

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/govalid"
)

// DecodeDocument reads a YAML (or JSON) data document into a source for
// validation. The root must be a mapping and mappings must not repeat keys.
func DecodeDocument(data []byte) (govalid.Values, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if len(root.Content) == 0 {
		return govalid.Values{}, nil
	}
	doc := resolve(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, errAt(doc, "", ErrNotMapping)
	}
	v, err := nodeValue(doc, "")
	if err != nil {
		return nil, err
	}
	return v.(govalid.Values), nil
}

func nodeValue(n *yaml.Node, path string) (any, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		if err := checkDuplicates(n, path); err != nil {
			return nil, err
		}
		m := make(govalid.Values, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := nodeValue(n.Content[i+1], join(path, key))
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := nodeValue(c, join(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarValue(n), nil
	}
	return nil, nil
}

func scalarValue(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
