// Command cigroup wraps a command's output in a collapsible CI log group.
//
//	cigroup run --name "Unit tests" -- go test ./...
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/gopherjs/ci-group/dialect"
	"github.com/gopherjs/ci-group/group"
	h "github.com/gopherjs/ci-group/helpers"
	"github.com/gopherjs/ci-group/report"
)

// env contains run parameters, taken from flags or GitHub Action inputs.
type env struct {
	Name        string
	Dialect     string
	LineBreak   bool
	LocalHeader bool
	Summary     bool
	ReportJSON  string
	ReportMD    string

	getenv func(string) string
}

// newEnv fills parameters not set on the command line from action inputs.
func newEnv(getenv func(string) string) *env {
	action := githubactions.New(githubactions.WithGetenv(getenv))
	return &env{
		Name:       action.GetInput("name"),
		Dialect:    action.GetInput("dialect"),
		ReportJSON: action.GetInput("report_json"),
		ReportMD:   action.GetInput("report_md"),
		getenv:     getenv,
	}
}

func (e *env) dialect() (dialect.Dialect, error) {
	if e.Dialect == "" {
		return dialect.Detect(e.getenv), nil
	}
	return dialect.Parse(e.Dialect)
}

func (e *env) options(d dialect.Dialect, w io.Writer) []group.Option {
	opts := []group.Option{group.WithDialect(d), group.WithWriter(w)}
	if e.LineBreak {
		opts = append(opts, group.WithLineBreak())
	}
	if e.LocalHeader {
		opts = append(opts, group.WithLocalHeader())
	}
	return opts
}

// exitError carries a subprocess exit code up to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd(getenv func(string) string, stdio h.Stdio) *cobra.Command {
	root := &cobra.Command{
		Use:           "cigroup",
		Short:         "Fold command output into collapsible CI log groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdio.Out)
	root.SetErr(stdio.Err)
	root.AddCommand(newDetectCmd(getenv), newRunCmd(getenv, stdio))
	return root
}

func newDetectCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the CI log dialect of the current environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), dialect.Detect(getenv))
			return nil
		},
	}
}

func newRunCmd(getenv func(string) string, stdio h.Stdio) *cobra.Command {
	e := newEnv(getenv)
	cmd := &cobra.Command{
		Use:   "run [flags] [--] COMMAND [ARGS...]",
		Short: "Run a command inside a log group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(e, stdio, args)
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVar(&e.Name, "name", e.Name, "group title (defaults to the command line)")
	flags.StringVar(&e.Dialect, "dialect", e.Dialect, "force a dialect: github-actions, azure-pipelines or none")
	flags.BoolVar(&e.LineBreak, "line-break", false, "start every marker on a fresh line")
	flags.BoolVar(&e.LocalHeader, "local-header", false, "print a plain header when no CI provider is detected")
	flags.BoolVar(&e.Summary, "summary", false, "append a timing table to $"+report.StepSummaryVar)
	flags.StringVar(&e.ReportJSON, "report-json", e.ReportJSON, "write the timing report as JSON to this file")
	flags.StringVar(&e.ReportMD, "report-md", e.ReportMD, "write the timing report as Markdown to this file")
	h.Must(cmd.MarkFlagFilename("report-json", "json"), "mark --report-json as a file flag")
	h.Must(cmd.MarkFlagFilename("report-md", "md"), "mark --report-md as a file flag")
	return cmd
}

func run(e *env, stdio h.Stdio, args []string) error {
	d, err := e.dialect()
	if err != nil {
		return err
	}
	name := e.Name
	if name == "" {
		name = strings.Join(args, " ")
	}

	r := report.Report{Title: "cigroup"}
	runErr := r.Track(name, func() error {
		return stdio.Exec(h.Vars{}, args[0], args[1:]...)
	}, e.options(d, stdio.Out)...)

	if e.Summary {
		if err := r.AppendStepSummary(e.getenv); err != nil {
			return err
		}
	}
	if e.ReportJSON != "" {
		if err := r.SaveJSON(e.ReportJSON); err != nil {
			return fmt.Errorf("save json report to %q: %w", e.ReportJSON, err)
		}
	}
	if e.ReportMD != "" {
		if err := r.SaveMarkdown(e.ReportMD); err != nil {
			return fmt.Errorf("save markdown report to %q: %w", e.ReportMD, err)
		}
	}

	if runErr != nil {
		return &exitError{code: h.ExitCode(runErr), err: runErr}
	}
	return nil
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, getenv func(string) string, stdio h.Stdio) int {
	root := newRootCmd(getenv, stdio)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}

	if dialect.Detect(getenv) == dialect.GitHubActions {
		githubactions.New(githubactions.WithWriter(stdio.Out), githubactions.WithGetenv(getenv)).Errorf("cigroup: %v", err)
	} else {
		fmt.Fprintln(stdio.Err, "cigroup:", err)
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Getenv, h.DefaultStdio))
}
