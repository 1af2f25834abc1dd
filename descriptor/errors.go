package descriptor

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrSyntax       = errors.New("descriptor: malformed document")
	ErrNotMapping   = errors.New("descriptor: expected a mapping")
	ErrUnknownKey   = errors.New("descriptor: unknown rule key")
	ErrDuplicateKey = errors.New("descriptor: duplicate key")
)

// Error locates a problem in a rule or data document.
type Error struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v at %d:%d", e.Err, e.Line, e.Column)
	}
	return fmt.Sprintf("%v at %d:%d (%s)", e.Err, e.Line, e.Column, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(n *yaml.Node, path string, err error) error {
	return &Error{Path: path, Line: n.Line, Column: n.Column, Err: err}
}
