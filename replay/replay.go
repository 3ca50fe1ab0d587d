// Package replay executes the statements of a dump against a live
// database, one at a time, tolerating statements the database rejects.
package replay

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/internal/option"
)

// DefaultPreview is the number of failures shown to an operator after a
// restore.
const DefaultPreview = 5

// Execer is the minimal interface a replay needs. It is implemented by
// *sql.DB, *sql.Conn and *sql.Tx, though replaying inside a *sql.Tx
// defeats the per-statement commit a restore relies on.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Result aggregates the outcome of one replay.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	// Failures is ordered by statement index. It may hold fewer than
	// Failed entries when WithMaxFailures is in effect.
	Failures []*StatementError
}

// Preview returns at most the first n failures.
func (r *Result) Preview(n int) []*StatementError {
	if n < 0 || n >= len(r.Failures) {
		return r.Failures
	}
	return r.Failures[:n]
}

// Replayer runs statement batches. The zero value is not usable; create
// one with New.
type Replayer struct {
	logger           *slog.Logger
	progressInterval int
	maxFailures      int
}

// New creates a Replayer configured by the given options.
func New(options ...Option) *Replayer {
	logger := option.Get[*slog.Logger](options, optkeyLogger, nil)
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{
		logger:           logger,
		progressInterval: option.Get(options, optkeyProgressInterval, 0),
		maxFailures:      option.Get(options, optkeyMaxFailures, 0),
	}
}

// Run executes stmts against ex in order. Every statement commits on its
// own. A statement the database rejects is recorded in the result and
// the replay moves on to the next one.
//
// Run stops early only when the connection is lost or ctx is done. The
// partial result is returned along with an error for which IsFatal
// reports true.
func (r *Replayer) Run(ctx context.Context, ex Execer, stmts []string) (*Result, error) {
	res := &Result{}
	total := len(stmts)

	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Replay cancelled", "executed", res.Attempted, "remaining", total-res.Attempted)
			return res, errors.Fatal(errors.Wrap(err, `replay cancelled`))
		}

		if _, err := ex.ExecContext(ctx, stmt); err != nil {
			// the outcome of this statement is unknown, so it is not
			// counted as attempted
			if isConnectionLoss(err) || isCancellation(err) {
				r.logger.Error("Replay aborted", "statement", i+1, "error", err)
				return res, errors.Fatal(errors.Wrapf(err, `failed to execute statement %d`, i+1))
			}

			res.Attempted++
			res.Failed++
			serr := &StatementError{Index: i + 1, Statement: stmt, Err: err}
			if r.maxFailures <= 0 || len(res.Failures) < r.maxFailures {
				res.Failures = append(res.Failures, serr)
			}
			r.logger.Debug("Statement failed", "index", serr.Index, "error", serr.Message())
		} else {
			res.Attempted++
			res.Succeeded++
		}

		if r.progressInterval > 0 && res.Attempted%r.progressInterval == 0 {
			r.logger.Info("Replay progress", "executed", res.Attempted, "total", total, "failed", res.Failed)
		}
	}

	r.logger.Info("Replay finished", "attempted", res.Attempted, "succeeded", res.Succeeded, "failed", res.Failed)
	return res, nil
}

// Restore reads the dump from src, splits it and replays it into db.
// All statements run over a single connection taken from db, so
// session settings issued by the dump apply to the statements after it.
func (r *Replayer) Restore(ctx context.Context, db *sql.DB, src citydump.DumpSource) (*Result, error) {
	stmts, err := citydump.ReadStatements(src)
	if err != nil {
		return nil, errors.Wrap(err, `failed to read dump`)
	}
	r.logger.Info("Restoring dump", "statements", len(stmts))

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Fatal(errors.Wrap(err, `failed to acquire connection`))
	}
	defer conn.Close()

	return r.Run(ctx, conn, stmts.Strings())
}
