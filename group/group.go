// Package group writes collapsible log sections for CI providers.
//
// A section is opened with Open and closed with Guard.Close, usually through
// defer so the close marker is written even if the enclosed work panics:
//
//	g := group.Open("Build")
//	defer g.Close()
//
// Group, Do and Run wrap the same pattern around a function.
package group

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/gopherjs/ci-group/dialect"
)

var localHeader = color.New(color.Bold)

// Guard is one open log section. Guards are not safe for concurrent use.
type Guard struct {
	dialect   dialect.Dialect
	w         io.Writer
	lineBreak bool
	closed    bool
}

// Open starts a section named name and returns the guard that ends it.
// The dialect is resolved once, here, and reused by Close.
func Open(name string, opts ...Option) *Guard {
	o := newOptions(opts)
	g := &Guard{
		dialect:   o.resolve(),
		w:         o.w,
		lineBreak: o.lineBreak,
	}

	if !g.dialect.Active() {
		if o.localHeader {
			_, _ = localHeader.Fprintf(g.w, "%s:\n", dialect.Sanitize(name))
		}
		return g
	}
	g.breakLine()
	g.dialect.Open(g.w, name)
	return g
}

// Close ends the section. Calls after the first are no-ops, so an explicit
// Close followed by a deferred one writes a single close marker.
func (g *Guard) Close() {
	if g == nil || g.closed {
		return
	}
	g.closed = true

	if !g.dialect.Active() {
		return
	}
	g.breakLine()
	g.dialect.Close(g.w)
}

// Dialect returns the marker dialect the guard was opened with.
func (g *Guard) Dialect() dialect.Dialect { return g.dialect }

// Closed reports whether Close has been called.
func (g *Guard) Closed() bool { return g.closed }

func (g *Guard) breakLine() {
	if g.lineBreak {
		_, _ = io.WriteString(g.w, "\n")
	}
}

// Option customizes Open.
type Option func(*options)

type options struct {
	w           io.Writer
	dialect     *dialect.Dialect
	getenv      func(string) string
	lineBreak   bool
	localHeader bool
}

func newOptions(opts []Option) *options {
	o := &options{w: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) resolve() dialect.Dialect {
	if o.dialect != nil {
		return *o.dialect
	}
	return dialect.Detect(o.getenv)
}

// WithWriter sends markers to w instead of standard output.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// WithDialect forces a dialect and skips environment detection.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = &d }
}

// WithGetenv detects the dialect from getenv instead of the process
// environment.
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) { o.getenv = getenv }
}

// WithLineBreak writes an empty line before each marker so the marker starts
// at column 0 even when preceding output did not end with a newline.
func WithLineBreak() Option {
	return func(o *options) { o.lineBreak = true }
}

// WithLocalHeader prints a plain "name:" header when no CI provider is
// detected. It never uses provider marker syntax.
func WithLocalHeader() Option {
	return func(o *options) { o.localHeader = true }
}
