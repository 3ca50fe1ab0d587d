package dump

import (
	"time"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/option"
)

type Option = citydump.Option

const (
	optkeyDialect = "dialect"
	optkeyTables  = "tables"
	optkeyExclude = "exclude"
	optkeyClock   = "clock"
)

// WithDialect specifies the dialect of the database being dumped, which
// decides how tables are discovered and identifiers quoted. If
// unspecified, citydump.DialectMySQL is assumed.
func WithDialect(s string) Option {
	return option.New(optkeyDialect, s)
}

// WithTables specifies the tables to dump, in order. If unspecified,
// every table in the database is dumped in the order the database lists
// them.
func WithTables(tables ...string) Option {
	return option.New(optkeyTables, tables)
}

// WithExclude specifies tables that must not be dumped.
func WithExclude(tables ...string) Option {
	return option.New(optkeyExclude, tables)
}

// WithClock replaces the function used to timestamp the dump header.
func WithClock(now func() time.Time) Option {
	return option.New(optkeyClock, now)
}
