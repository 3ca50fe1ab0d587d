package errors

import (
	daverr "github.com/pkg/errors"
)

// fatalErr marks an error that must stop whatever loop observed it.
type fatalErr struct {
	err error
}

type fataler interface {
	Fatal() bool
}

type causer interface {
	Cause() error
}

func (e fatalErr) Error() string {
	if e.err != nil {
		return e.err.Error() + " (fatal)"
	}
	return "(fatal)"
}

func (e fatalErr) Fatal() bool {
	return true
}

func (e fatalErr) Cause() error  { return e.err }
func (e fatalErr) Unwrap() error { return e.err }

// Fatal wraps err so that IsFatal reports true for it, and for
// anything that later wraps it.
func Fatal(err error) error {
	return fatalErr{err: err}
}

func IsFatal(err error) bool {
	for err != nil {
		if f, ok := err.(fataler); ok {
			return f.Fatal()
		}

		if cerr, ok := err.(causer); ok {
			err = cerr.Cause()
		} else {
			return false
		}
	}
	return false
}

func New(s string) error {
	return daverr.New(s)
}

func Errorf(s string, args ...interface{}) error {
	return daverr.Errorf(s, args...)
}

func Wrap(err error, s string) error {
	return daverr.Wrap(err, s)
}

func Wrapf(err error, s string, args ...interface{}) error {
	return daverr.Wrapf(err, s, args...)
}

func Cause(err error) error {
	return daverr.Cause(err)
}

func Is(err, target error) bool {
	return daverr.Is(err, target)
}

func As(err error, target interface{}) bool {
	return daverr.As(err, target)
}
