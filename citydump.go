// Package citydump splits Smart City database dumps into statements and
// provides the sources those dumps are read from and the databases they
// are restored into.
package citydump

import "github.com/smartcity/citydump/internal/option"

// Version is the version of the citydump tooling.
const Version = "v0.3.0"

// Option is a generic interface for objects that pass optional
// parameters to the various functions in this module and its
// subpackages.
type Option = option.Option
