package replay

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/smartcity/citydump/internal/errors"
)

// StatementError records one statement the database rejected. It is
// collected in Result.Failures and never stops the replay.
type StatementError struct {
	// Index is the 1-based position of the statement in the batch
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d: %s", e.Index, e.Message())
}

// Message returns the error message reported by the database
func (e *StatementError) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *StatementError) Unwrap() error { return e.Err }

// IsFatal reports whether err aborted a replay, as opposed to being the
// rejection of a single statement.
func IsFatal(err error) bool {
	return errors.IsFatal(err)
}

// isConnectionLoss reports whether err means the connection itself is
// gone, in which case no later statement can succeed either.
func isConnectionLoss(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
