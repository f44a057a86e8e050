// Package code enumerates the coded errors the core can return. Each code
// carries an HTTP status and a stable, machine-readable message; the core
// never constructs a user-facing localized string itself (that's the
// front-end's job).
package code

import (
	"github.com/HappyLadySauce/errors"
)

// errCode implements errors.Coder.
type errCode struct {
	c          int
	httpStatus int
	message    string
	reference  string
}

func (e *errCode) Code() int         { return e.c }
func (e *errCode) String() string    { return e.message }
func (e *errCode) Reference() string { return e.reference }
func (e *errCode) HTTPStatus() int   { return e.httpStatus }

var registry = map[int]*errCode{}

// register records a coded error and registers it with the errors package so
// that errors.ParseCoder(err) can recover it later.
func register(c int, httpStatus int, message string) {
	coder := &errCode{c: c, httpStatus: httpStatus, message: message}
	registry[c] = coder
	errors.MustRegister(coder)
}

// Message returns the registered message for a code, or a generic fallback.
func Message(c int) string {
	if coder, ok := registry[c]; ok {
		return coder.String()
	}
	return "unknown error"
}
