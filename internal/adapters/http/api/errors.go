package api

import (
	"errors"
	"strings"
)

// ErrBadRequest marks errors caused by the request itself.
var ErrBadRequest = errors.New("bad request")

// opError ties an error to the operation that produced it and, optionally,
// to a kind such as ErrBadRequest.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, e.op)
	if e.kind != nil {
		parts = append(parts, e.kind.Error())
	}
	if e.err != nil {
		parts = append(parts, e.err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind annotates err with op and kind. A nil err stays nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, kind: kind, err: err}
}
