package group

// Group wraps output of f() into a collapsible block in the CI log.
func Group(name string, f func(), opts ...Option) {
	g := Open(name, opts...)
	defer g.Close()

	f()
}

// Do runs f inside a section and returns its error unchanged. The close
// marker is written before the error, or a panic, reaches the caller.
func Do(name string, f func() error, opts ...Option) error {
	g := Open(name, opts...)
	defer g.Close()

	return f()
}

// Run is Do for functions that also produce a value.
func Run[T any](name string, f func() (T, error), opts ...Option) (T, error) {
	g := Open(name, opts...)
	defer g.Close()

	return f()
}
