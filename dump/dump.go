// Package dump writes the contents of a Smart City database as a text
// dump of INSERT statements, in the format the replay package restores.
package dump

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/internal/option"
	"github.com/smartcity/citydump/internal/util"
)

// Header is the first line of every dump
const Header = "-- Smart City database backup"

// TableSeparator precedes the rows of each table
const TableSeparator = "-- Table: "

// Querier is what a Dumper needs from a database. It is implemented by
// *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type Dumper struct {
	dialect string
	tables  []string
	exclude mapset.Set
	now     func() time.Time
}

func New(options ...Option) *Dumper {
	exclude := mapset.NewSet()
	for _, t := range option.Get[[]string](options, optkeyExclude, nil) {
		exclude.Add(strings.ToLower(t))
	}
	return &Dumper{
		dialect: option.Get(options, optkeyDialect, citydump.DialectMySQL),
		tables:  option.Get[[]string](options, optkeyTables, nil),
		exclude: exclude,
		now:     option.Get(options, optkeyClock, time.Now),
	}
}

// Dump writes the header and then, for each table, a separator and one
// INSERT statement per row.
func (d *Dumper) Dump(ctx context.Context, db Querier, dst io.Writer) error {
	tables, err := d.Tables(ctx, db)
	if err != nil {
		return errors.Wrap(err, `failed to determine tables to dump`)
	}

	w := bufio.NewWriter(dst)
	w.WriteString(Header)
	w.WriteString("\n-- Generated at ")
	w.WriteString(d.now().UTC().Format(time.RFC3339))
	w.WriteByte('\n')

	for _, table := range tables {
		w.WriteByte('\n')
		w.WriteString(TableSeparator)
		w.WriteString(table)
		w.WriteByte('\n')
		if err := d.dumpTable(ctx, db, w, table); err != nil {
			return errors.Wrapf(err, `failed to dump table %s`, table)
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, `failed to write dump`)
	}
	return nil
}

// Tables returns the tables Dump would write, in order.
func (d *Dumper) Tables(ctx context.Context, db Querier) ([]string, error) {
	tables := d.tables
	if len(tables) == 0 {
		var err error
		tables, err = d.listTables(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	list := make([]string, 0, len(tables))
	for _, t := range tables {
		if d.exclude.Contains(strings.ToLower(t)) {
			continue
		}
		list = append(list, t)
	}
	return list, nil
}

func (d *Dumper) listTables(ctx context.Context, db Querier) ([]string, error) {
	var query string
	switch d.dialect {
	case citydump.DialectMySQL:
		query = "SHOW TABLES"
	case citydump.DialectPostgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name"
	default:
		return nil, errors.Errorf(`unknown dialect %q`, d.dialect)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to execute '%s'`, query)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, errors.Wrap(err, `failed to scan tables`)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, `failed to list tables`)
	}
	return tables, nil
}

func (d *Dumper) quoteIdent(s string) string {
	if d.dialect == citydump.DialectPostgres {
		return util.Doublequote(s)
	}
	return util.Backquote(s)
}

func (d *Dumper) dumpTable(ctx context.Context, db Querier, w *bufio.Writer, table string) error {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+d.quoteIdent(table))
	if err != nil {
		return errors.Wrap(err, `failed to select rows`)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, `failed to get columns`)
	}
	// text protocols hand every value back as []byte, numbers included
	numeric := make([]bool, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			numeric[i] = isNumericType(ct.DatabaseTypeName())
		}
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quoteIdent(c)
	}
	prefix := "INSERT INTO " + d.quoteIdent(table) + " (" + strings.Join(quoted, ", ") + ") VALUES ("

	values := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, `failed to scan row`)
		}

		w.WriteString(prefix)
		for i, v := range values {
			if i > 0 {
				w.WriteString(", ")
			}
			if raw, ok := v.([]byte); ok && raw != nil && numeric[i] {
				w.Write(raw)
				continue
			}
			lit, err := Literal(d.dialect, v)
			if err != nil {
				return errors.Wrapf(err, `failed to render column %s`, columns[i])
			}
			w.WriteString(lit)
		}
		w.WriteString(");\n")
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, `failed to read rows`)
	}
	return nil
}

func isNumericType(name string) bool {
	switch strings.ToUpper(name) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT",
		"DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL",
		"INT2", "INT4", "INT8", "FLOAT4", "FLOAT8":
		return true
	}
	return false
}
