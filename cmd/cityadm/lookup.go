package main

import (
	"strconv"
	"time"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/internal/util"
	"github.com/smartcity/citydump/validate"
	"github.com/spf13/cobra"
)

// placeholder returns the n-th (1-based) bind parameter marker
func placeholder(dialect string, n int) string {
	if dialect == citydump.DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func quoteIdent(dialect, s string) string {
	if dialect == citydump.DialectPostgres {
		return util.Doublequote(s)
	}
	return util.Backquote(s)
}

func (a *app) query(query func(dialect string) string, args ...interface{}) error {
	db, dialect, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := a.signalContext()
	defer cancel()

	stmt := query(dialect)
	a.logger.Debug("Running lookup", "query", stmt)
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrapf(err, `failed to execute "%s"`, stmt)
	}
	defer rows.Close()
	return a.printRows(rows)
}

func (a *app) newCitizenCmd() *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "citizen CPF",
		Short: "Look up a citizen by CPF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpf, err := validate.CPF(args[0])
			if err != nil {
				return err
			}
			return a.query(func(dialect string) string {
				return "SELECT * FROM " + quoteIdent(dialect, "citizens") +
					" WHERE " + quoteIdent(dialect, column) + " = " + placeholder(dialect, 1)
			}, cpf)
		},
	}
	cmd.Flags().StringVar(&column, "column", "cpf", "Column holding the CPF")
	return cmd
}

func (a *app) newIncidentsCmd() *cobra.Command {
	var from, to, column string

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List traffic incidents within a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(from, to)
			if err != nil {
				return err
			}
			return a.query(func(dialect string) string {
				col := quoteIdent(dialect, column)
				return "SELECT * FROM " + quoteIdent(dialect, "incidents") +
					" WHERE " + col + " >= " + placeholder(dialect, 1) +
					" AND " + col + " < " + placeholder(dialect, 2) +
					" ORDER BY " + col
			}, start, end)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the range (YYYY-MM-DD, default: same as --from)")
	cmd.Flags().StringVar(&column, "column", "occurred_at", "Column holding the incident time")
	cmd.MarkFlagRequired("from")
	return cmd
}

// parseRange turns an inclusive pair of operator dates into a half-open
// [start, end) time range.
func parseRange(from, to string) (start, end time.Time, err error) {
	start, err = validate.ParseDate(from)
	if err != nil {
		return
	}
	end = start
	if to != "" {
		if end, err = validate.ParseDate(to); err != nil {
			return
		}
	}
	if err = validate.DateRange(start, end); err != nil {
		return
	}
	return start, end.AddDate(0, 0, 1), nil
}
