package helpers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Vars are environment variables added on top of the current process
// environment for a subprocess.
type Vars map[string]string

// Environ returns the process environment extended with v, in the
// KEY=VALUE form expected by exec.Cmd.
func (v Vars) Environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+v[k])
	}
	return env
}

// Stdio is where subprocess output goes.
type Stdio struct {
	Out io.Writer
	Err io.Writer
}

// DefaultStdio forwards to the current process streams.
var DefaultStdio = Stdio{Out: os.Stdout, Err: os.Stderr}

// Exec a command with the given args as a subprocess, redirecting all output to
// the Stdio writers. Blocks until execution is completed.
func (s Stdio) Exec(env Vars, name string, args ...string) error {
	fmt.Fprintln(s.Out, "$", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Env = env.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// ExitCode extracts the exit status of a failed subprocess. It returns 0 for
// a nil error and 1 for errors that did not come from a process exit.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) && exit.ExitCode() > 0 {
		return exit.ExitCode()
	}
	return 1
}
