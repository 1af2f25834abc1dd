package messages

import (
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTable is returned when a message table document cannot be decoded.
var ErrInvalidTable = errors.New("messages: invalid message table")

// LoadYAML decodes a (possibly partial) table from YAML. The result is meant
// to be used as an override with Merge or as Options.Messages.
//
//	required: "%s must be provided"
//	types:
//	  string: "%s should be text"
func LoadYAML(data []byte) (*Messages, error) {
	var m Messages
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return &m, nil
}

// LoadJSON decodes a (possibly partial) table from JSON.
func LoadJSON(data []byte) (*Messages, error) {
	var m Messages
	if err := gojson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return &m, nil
}
