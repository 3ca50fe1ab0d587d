package replay

import (
	"log/slog"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/option"
)

type Option = citydump.Option

const (
	optkeyLogger           = "logger"
	optkeyProgressInterval = "progress-interval"
	optkeyMaxFailures      = "max-failures"
)

// WithLogger specifies the logger that receives per-failure and progress
// messages. If unspecified, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return option.New(optkeyLogger, l)
}

// WithProgressInterval logs a progress line every n statements.
// Zero (the default) disables progress logging.
func WithProgressInterval(n int) Option {
	return option.New(optkeyProgressInterval, n)
}

// WithMaxFailures caps the number of failures kept in Result.Failures.
// The counters in Result are exact regardless. Zero (the default)
// keeps every failure.
func WithMaxFailures(n int) Option {
	return option.New(optkeyMaxFailures, n)
}
