package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h "github.com/gopherjs/ci-group/helpers"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func vars(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func capture() (h.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return h.Stdio{Out: &out, Err: &errOut}, &out, &errOut
}

func TestDetect(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want string
	}{
		{nil, "none\n"},
		{map[string]string{"GITHUB_ACTIONS": "true"}, "github-actions\n"},
		{map[string]string{"TF_BUILD": "True"}, "azure-pipelines\n"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			stdio, out, _ := capture()
			code := execute([]string{"detect"}, vars(tt.env), stdio)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_GitHub(t *testing.T) {
	requireShell(t)
	stdio, out, _ := capture()

	code := execute([]string{"run", "--name", "Build", "--", "sh", "-c", "echo hi"},
		vars(map[string]string{"GITHUB_ACTIONS": "true"}), stdio)

	assert.Equal(t, 0, code)
	assert.Equal(t, "::group::Build\n$ sh -c echo hi\nhi\n::endgroup::\n", out.String())
}

func TestRun_NameFromActionInput(t *testing.T) {
	requireShell(t)
	stdio, out, _ := capture()

	code := execute([]string{"run", "--", "true"},
		vars(map[string]string{"TF_BUILD": "True", "INPUT_NAME": "From input"}), stdio)

	assert.Equal(t, 0, code)
	assert.Equal(t, "##[group]From input\n$ true \n##[endgroup]\n", out.String())
}

func TestRun_DefaultNameIsCommandLine(t *testing.T) {
	requireShell(t)
	stdio, out, _ := capture()

	code := execute([]string{"run", "--dialect", "azure", "--", "sh", "-c", "true"}, vars(nil), stdio)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "##[group]sh -c true\n")
}

func TestRun_FailureKeepsExitCode(t *testing.T) {
	requireShell(t)
	stdio, out, _ := capture()

	code := execute([]string{"run", "--name", "Test", "--", "sh", "-c", "exit 3"},
		vars(map[string]string{"GITHUB_ACTIONS": "true"}), stdio)

	assert.Equal(t, 3, code)
	assert.Contains(t, out.String(), "::group::Test\n")
	assert.Contains(t, out.String(), "::endgroup::\n::error::cigroup: run sh: exit status 3\n")
}

func TestRun_LocalNoMarkers(t *testing.T) {
	requireShell(t)
	stdio, out, errOut := capture()

	code := execute([]string{"run", "--name", "Build", "--", "sh", "-c", "exit 2"}, vars(nil), stdio)

	assert.Equal(t, 2, code)
	assert.NotContains(t, out.String(), "::")
	assert.NotContains(t, out.String(), "##[")
	assert.Contains(t, errOut.String(), "cigroup: run sh: exit status 2")
}

func TestRun_BadDialect(t *testing.T) {
	stdio, _, errOut := capture()
	code := execute([]string{"run", "--dialect", "travis", "--", "true"}, vars(nil), stdio)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), `unknown dialect "travis"`)
}

func TestRun_MissingCommand(t *testing.T) {
	stdio, _, _ := capture()
	assert.Equal(t, 1, execute([]string{"run", "--name", "x"}, vars(nil), stdio))
}

func TestRun_Reports(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.md")
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	stdio, _, _ := capture()

	code := execute([]string{"run", "--name", "Lint", "--summary", "--report-json", jsonPath, "--report-md", mdPath, "--", "sh", "-c", "true"},
		vars(map[string]string{"GITHUB_ACTIONS": "true", "GITHUB_STEP_SUMMARY": summary}), stdio)
	require.Equal(t, 0, code)

	md, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(md), "### cigroup")
	assert.Contains(t, string(md), "Lint")

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var got struct {
		Sections []struct{ Name string }
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Lint", got.Sections[0].Name)

	table, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(table), "### cigroup")
	assert.Contains(t, string(table), "| Lint")
}

func TestRun_MarkdownReportFromActionInput(t *testing.T) {
	requireShell(t)
	mdPath := filepath.Join(t.TempDir(), "report.md")
	stdio, _, _ := capture()

	code := execute([]string{"run", "--name", "Vet", "--", "true"},
		vars(map[string]string{"GITHUB_ACTIONS": "true", "INPUT_REPORT_MD": mdPath}), stdio)
	require.Equal(t, 0, code)

	table, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(table), "| Vet")
}

func TestRun_ChildFlagsWithoutSeparator(t *testing.T) {
	requireShell(t)
	stdio, out, errOut := capture()

	code := execute([]string{"run", "--name", "Build", "sh", "-c", "echo hi"},
		vars(map[string]string{"GITHUB_ACTIONS": "true"}), stdio)

	assert.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "::group::Build\n$ sh -c echo hi\nhi\n::endgroup::\n", out.String())
}
