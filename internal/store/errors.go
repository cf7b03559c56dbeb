package store

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound marks a lookup or filter that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks caller input that cannot be served.
	ErrInvalid = errors.New("invalid input")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NotFoundf builds an error that matches ErrNotFound and prints only msg.
func NotFoundf(format string, args ...any) error {
	return errors.WithStack(&kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)})
}

// Invalidf builds an error that matches ErrInvalid and prints only msg.
func Invalidf(format string, args ...any) error {
	return errors.WithStack(&kindError{kind: ErrInvalid, msg: fmt.Sprintf(format, args...)})
}
