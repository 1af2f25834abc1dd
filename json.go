package govalid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// ErrDuplicateKey is returned by ValidateJSON when an object repeats a key.
var ErrDuplicateKey = errors.New("govalid: duplicate key")

// ValidateJSON decodes a JSON object and validates it. Numbers decode as
// json.Number so integers keep their precision. Malformed input and
// repeated object keys fail with ErrDecodeSource before any rule runs.
func (s *Schema) ValidateJSON(ctx context.Context, data []byte, opts ...*Options) (Values, error) {
	src, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return s.Validate(ctx, src, opts...)
}

func decodeObject(data []byte) (Values, error) {
	if err := checkDuplicateKeys(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeSource, err)
	}
	var src Values
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeSource, err)
	}
	if src == nil {
		src = Values{}
	}
	return src, nil
}

type jsonFrame struct {
	object     bool
	keys       map[string]struct{}
	expectsKey bool
}

// checkDuplicateKeys walks the token stream and fails on the first object
// key seen twice within the same object.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []jsonFrame

	// valueDone flips the enclosing object back to expecting a key.
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectsKey = true
		}
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, jsonFrame{object: true, keys: map[string]struct{}{}, expectsKey: true})
			case '[':
				stack = append(stack, jsonFrame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectsKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					return fmt.Errorf("%w %q", ErrDuplicateKey, v)
				}
				top.keys[v] = struct{}{}
				top.expectsKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}
