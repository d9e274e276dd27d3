package errors

import (
	"errors"
	"fmt"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *appError) Error() string {
	msg := e.message
	if msg == "" {
		msg = GetErrorMessage(e.code)
	}

	switch {
	case e.data != nil:
		return fmt.Sprintf("%s: %v", msg, e.data)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", msg, e.err)
	default:
		return msg
	}
}

func (e *appError) Code() ErrorCode {
	return e.code
}

// Is matches any target carrying the same code, so sentinels built with
// New().New(code) work with errors.Is.
func (e *appError) Is(target error) bool {
	c, ok := target.(Coder)
	return ok && c.Code() == e.code
}

func (e *appError) WithMessage(msg string) Error {
	return &appError{
		code:    e.code,
		message: msg,
		err:     e.err,
		data:    e.data,
	}
}

func (e *appError) WithData(data any) Error {
	return &appError{
		code:    e.code,
		message: e.message,
		err:     e.err,
		data:    data,
	}
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return &appError{code: code}
}

func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	return &appError{code: code, err: err}
}

func (*defaultFactory) WithMessage(code ErrorCode, msg string) Error {
	return &appError{code: code, message: msg}
}

func (*defaultFactory) WithData(code ErrorCode, data any) Error {
	return &appError{code: code, data: data}
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}

// HasCode reports whether err or anything in its chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if c, ok := err.(Coder); ok && c.Code() == code {
			return true
		}
	}

	return false
}

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var c Coder
	if errors.As(err, &c) {
		return c.Code(), true
	}

	return "", false
}
