package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/dump"
	"github.com/smartcity/citydump/guard"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/replay"
	"github.com/spf13/cobra"
)

func (a *app) openDatabase() (*sql.DB, string, error) {
	target, err := a.cfg.OpenDatabase()
	if err != nil {
		return nil, "", err
	}
	db, err := target.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, `failed to open connection to database`)
	}
	return db, target.Dialect(), nil
}

func (a *app) dumper(dialect string) *dump.Dumper {
	return dump.New(
		dump.WithDialect(dialect),
		dump.WithTables(a.cfg.Tables...),
		dump.WithExclude(a.cfg.Exclude...),
	)
}

func (a *app) newBackupCmd() *cobra.Command {
	var outfile string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the database out as a dump of INSERT statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, dialect, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			dst := a.stdout
			if outfile != "" {
				f, err := os.OpenFile(outfile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
				if err != nil {
					return errors.Wrapf(err, `failed to open file %s for writing`, outfile)
				}
				defer f.Close()
				dst = f
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			if err := a.dumper(dialect).Dump(ctx, db, dst); err != nil {
				return errors.Wrap(err, `failed to back up database`)
			}
			a.logger.Info("Backup completed", "output", outfile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outfile, "output", "o", "", "Output the dump to the specified file (default: stdout)")
	return cmd
}

func (a *app) newRestoreCmd() *cobra.Command {
	var maxFailures int

	cmd := &cobra.Command{
		Use:   "restore SOURCE",
		Short: "Replay a dump into the database, skipping statements it rejects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := citydump.NewDumpSource(args[0])
			if err != nil {
				return errors.Wrap(err, `failed to create dump source`)
			}

			db, _, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := a.signalContext()
			defer cancel()

			r := replay.New(
				replay.WithLogger(a.logger),
				replay.WithProgressInterval(a.cfg.ProgressInterval),
				replay.WithMaxFailures(maxFailures),
			)
			res, err := r.Restore(ctx, db, src)
			if res != nil {
				a.printResult(res)
			}
			if err != nil {
				return errors.Wrap(err, `restore aborted`)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxFailures, "max-failures", 0, "Keep at most this many failed statements in memory (0 = all)")
	return cmd
}

func (a *app) printResult(res *replay.Result) {
	fmt.Fprintf(a.stdout, "%d statements executed: %d succeeded, %d failed\n", res.Attempted, res.Succeeded, res.Failed)
	preview := res.Preview(a.cfg.ErrorPreview)
	for _, f := range preview {
		fmt.Fprintf(a.stdout, "  #%d: %s\n", f.Index, f.Message())
	}
	if hidden := res.Failed - len(preview); hidden > 0 {
		fmt.Fprintf(a.stdout, "  ... and %d more\n", hidden)
	}
}

func (a *app) newSplitCmd() *cobra.Command {
	var count bool

	cmd := &cobra.Command{
		Use:   "split SOURCE",
		Short: "Print the statements of a dump, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := citydump.NewDumpSource(args[0])
			if err != nil {
				return errors.Wrap(err, `failed to create dump source`)
			}
			stmts, err := citydump.ReadStatements(src)
			if err != nil {
				return err
			}
			if count {
				fmt.Fprintln(a.stdout, len(stmts))
				return nil
			}
			_, err = stmts.WriteTo(a.stdout)
			return err
		},
	}
	cmd.Flags().BoolVar(&count, "count", false, "Only print the number of statements")
	return cmd
}

func (a *app) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify SOURCE",
		Short: "Compare a dump against the current contents of the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := citydump.NewDumpSource(args[0])
			if err != nil {
				return errors.Wrap(err, `failed to create dump source`)
			}
			var saved bytes.Buffer
			if err := src.WriteDump(&saved); err != nil {
				return errors.Wrap(err, `failed to read dump`)
			}

			db, dialect, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := a.signalContext()
			defer cancel()

			var live bytes.Buffer
			if err := a.dumper(dialect).Dump(ctx, db, &live); err != nil {
				return errors.Wrap(err, `failed to dump database`)
			}

			changed, err := dump.Diff(a.stdout, args[0], saved.String(), "database", live.String())
			if err != nil {
				return err
			}
			if changed {
				return errors.New(`dump and database differ`)
			}
			a.logger.Info("Dump matches database", "source", args[0])
			return nil
		},
	}
}

func (a *app) newExecCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run console statements, refusing changes to restricted tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var script string
			switch {
			case file != "" && len(args) > 0:
				return errors.New(`give either SQL or --file, not both`)
			case file != "":
				buf, err := os.ReadFile(file)
				if err != nil {
					return errors.Wrapf(err, `failed to read %s`, file)
				}
				script = string(buf)
			case len(args) > 0:
				script = args[0]
			default:
				return errors.New(`nothing to execute`)
			}

			stmts := citydump.Split(script)
			if err := guard.New(a.cfg.RestrictedTables...).CheckAll(stmts); err != nil {
				return err
			}

			db, _, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := a.signalContext()
			defer cancel()

			for _, stmt := range stmts {
				if err := a.execConsole(ctx, db, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read statements from the specified file")
	return cmd
}

func returnsRows(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimLeft(fields[0], "(")) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "VALUES":
		return true
	}
	return false
}

func (a *app) execConsole(ctx context.Context, db *sql.DB, stmt string) error {
	if !returnsRows(stmt) {
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return errors.Wrapf(err, `failed to execute "%s"`, stmt)
		}
		n, err := res.RowsAffected()
		if err != nil {
			fmt.Fprintln(a.stdout, "OK")
			return nil
		}
		fmt.Fprintf(a.stdout, "OK, %d rows affected\n", n)
		return nil
	}

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return errors.Wrapf(err, `failed to execute "%s"`, stmt)
	}
	defer rows.Close()
	return a.printRows(rows)
}

// printRows writes rows as an aligned table followed by a row count
func (a *app) printRows(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, `failed to get columns`)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))

	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var n int
	cells := make([]string, len(columns))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, `failed to scan row`)
		}
		for i, v := range values {
			if v.Valid {
				cells[i] = v.String
			} else {
				cells[i] = "NULL"
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
		n++
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, `failed to read rows`)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, `failed to write rows`)
	}
	fmt.Fprintf(a.stdout, "(%d rows)\n", n)
	return nil
}
