package dialect

import (
	"fmt"
	"io"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// Marker lines understood by Azure Pipelines.
const (
	azureOpen  = "##[group]%s\n"
	azureClose = "##[endgroup]\n"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Sanitize flattens a section name onto a single line so it cannot inject
// extra marker lines into the log.
func Sanitize(name string) string {
	return lineBreaks.Replace(name)
}

// Open writes the start-of-group marker for name. Write errors are ignored.
func (d Dialect) Open(w io.Writer, name string) {
	name = Sanitize(name)
	switch d {
	case GitHubActions:
		githubactions.New(githubactions.WithWriter(w)).Group(name)
	case AzurePipelines:
		_, _ = fmt.Fprintf(w, azureOpen, name)
	}
}

// Close writes the end-of-group marker. The close line carries no name: CI
// providers pair groups by order, not by title.
func (d Dialect) Close(w io.Writer) {
	switch d {
	case GitHubActions:
		githubactions.New(githubactions.WithWriter(w)).EndGroup()
	case AzurePipelines:
		_, _ = io.WriteString(w, azureClose)
	}
}
