// Package dialect detects which CI log-folding syntax the current process
// should emit and knows how to write its marker lines.
package dialect

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Dialect is a provider-specific marker syntax.
type Dialect int

const (
	// None means no CI provider was recognized. No markers are written.
	None Dialect = iota
	// GitHubActions emits ::group:: / ::endgroup:: workflow commands.
	GitHubActions
	// AzurePipelines emits ##[group] / ##[endgroup] formatting commands.
	AzurePipelines
)

// Indicator variables set by the CI providers.
const (
	GitHubActionsVar  = "GITHUB_ACTIONS"
	AzurePipelinesVar = "TF_BUILD"
)

// String returns the dialect name accepted by Parse.
func (d Dialect) String() string {
	switch d {
	case GitHubActions:
		return "github-actions"
	case AzurePipelines:
		return "azure-pipelines"
	case None:
		return "none"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Active reports whether the dialect emits markers at all.
func (d Dialect) Active() bool {
	return d == GitHubActions || d == AzurePipelines
}

// Parse converts a dialect name, as printed by String, back into a Dialect.
func Parse(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "github-actions", "github":
		return GitHubActions, nil
	case "azure-pipelines", "azure":
		return AzurePipelines, nil
	case "none", "local":
		return None, nil
	}
	return None, fmt.Errorf("unknown dialect %q", s)
}

// Detect classifies the environment exposed by getenv. A nil getenv reads the
// process environment.
//
// GitHub Actions is checked before Azure Pipelines, so a process that sees
// both indicators always gets GitHubActions. Only the literal value "true"
// (in any letter case) counts; anything else degrades to None.
func Detect(getenv func(string) string) Dialect {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch {
	case isTrue(getenv(GitHubActionsVar)):
		return GitHubActions
	case isTrue(getenv(AzurePipelinesVar)):
		return AzurePipelines
	default:
		return None
	}
}

// Current detects the dialect from the live process environment.
func Current() Dialect {
	return Detect(os.Getenv)
}

var cached = sync.OnceValue(Current)

// Cached returns the dialect detected on first use. The value is never
// refreshed; CI indicator variables do not change during a job.
func Cached() Dialect {
	return cached()
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true")
}
