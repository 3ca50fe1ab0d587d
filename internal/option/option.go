package option

// Option is a named value handed to the various constructors and
// entry points in this module.
type Option interface {
	Name() string
	Value() interface{}
}

type option struct {
	name  string
	value interface{}
}

func New(n string, v interface{}) Option {
	return &option{
		name:  n,
		value: v,
	}
}

func (o option) Name() string       { return o.name }
func (o option) Value() interface{} { return o.value }

// Get returns the value of the last option named n, or def if no such
// option was given or its value is not a T.
func Get[T any](options []Option, n string, def T) T {
	v := def
	for _, o := range options {
		if o.Name() != n {
			continue
		}
		if tv, ok := o.Value().(T); ok {
			v = tv
		}
	}
	return v
}
