package guard

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/smartcity/citydump/internal/errors"
)

// ErrRestricted is matched by every error Check returns for a statement
// that touches a restricted table.
var ErrRestricted = errors.New("restricted")

// Violation is returned by Check when a statement is refused. When
// stringified, the result will look something like this:
//
//	statement refused: table audit_log is restricted at line 1 column 13
//	    "DELETE FROM " <---- AROUND HERE
type Violation interface {
	error
	Table() string
	Line() int
	Col() int
	Message() string
}

type violation struct {
	table   string
	context string
	line    int
	col     int
	message string
}

// Table returns the restricted table the statement referred to, if any
func (e *violation) Table() string { return e.table }

// Line returns the line number where the offending token starts
func (e *violation) Line() int { return e.line }

// Col returns the column number where the offending token starts
func (e *violation) Col() int { return e.col }

// Message returns the reason the statement was refused
func (e *violation) Message() string { return e.message }

func (e *violation) Is(target error) bool { return target == ErrRestricted }

func (e *violation) Error() string {
	var buf bytes.Buffer
	buf.WriteString("statement refused: ")
	buf.WriteString(e.message)
	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.line))
	buf.WriteString(" column ")
	buf.WriteString(strconv.Itoa(e.col))
	if e.context != "" {
		buf.WriteString("\n    ")
		buf.WriteString(e.context)
	}
	return buf.String()
}

// IsRestricted reports whether err is a refusal by the guard
func IsRestricted(err error) bool {
	return errors.Is(err, ErrRestricted)
}

func newViolation(input string, t token, table string, msg string, args ...interface{}) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	// find the closest newline before t.Pos
	var ctxbegin int
	if i := bytes.LastIndexByte([]byte(input[:t.Pos]), '\n'); i >= 0 {
		ctxbegin = i + 1
	}

	// if this is more than 40 chars from t.Pos, truncate it
	if t.Pos-ctxbegin > 40 {
		ctxbegin = t.Pos - 40
	}

	return &violation{
		table:   table,
		context: fmt.Sprintf(`"%s" <---- AROUND HERE`, input[ctxbegin:t.Pos]),
		line:    t.Line,
		col:     t.Col,
		message: msg,
	}
}
