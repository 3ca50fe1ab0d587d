package citydump

import (
	"io"

	"github.com/smartcity/citydump/internal/errors"
)

// Stmt is a single SQL statement taken from a dump
type Stmt string

// Stmts is an ordered batch of statements, as produced by Split
type Stmts []Stmt

// NewStmts wraps the result of Split.
func NewStmts(list []string) Stmts {
	stmts := make(Stmts, 0, len(list))
	for _, s := range list {
		stmts = stmts.Append(s)
	}
	return stmts
}

func (s Stmt) String() string {
	return string(s)
}

func (stmts Stmts) Append(s string) Stmts {
	return append(stmts, Stmt(s))
}

// Strings returns the statements as plain strings
func (stmts Stmts) Strings() []string {
	list := make([]string, len(stmts))
	for i, s := range stmts {
		list[i] = s.String()
	}
	return list
}

// WriteTo writes the batch to dst, one statement per line. Statements
// are written as they are; Split keeps each statement's own terminator.
func (stmts Stmts) WriteTo(dst io.Writer) (int64, error) {
	newline := []byte{'\n'}
	var sofar int64
	for _, s := range stmts {
		n, err := io.WriteString(dst, s.String())
		sofar += int64(n)
		if err != nil {
			return sofar, errors.Wrapf(err, `failed to write statement '%s'`, s.String())
		}
		n, err = dst.Write(newline)
		sofar += int64(n)
		if err != nil {
			return sofar, errors.Wrap(err, `failed to write newline`)
		}
	}
	return sofar, nil
}
