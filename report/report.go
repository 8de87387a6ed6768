package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/olekukonko/tablewriter"

	"github.com/gopherjs/ci-group/group"
)

// StepSummaryVar names the file GitHub Actions renders on the run summary page.
const StepSummaryVar = "GITHUB_STEP_SUMMARY"

// Section is the outcome of one tracked log group.
type Section struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Error    string `json:",omitempty"`
}

// Failed reports whether the section's work returned an error.
func (s *Section) Failed() bool { return s.Error != "" }

// Report collects timings of the sections run through Track.
type Report struct {
	Title    string
	Sections []*Section

	now func() time.Time
}

// Track runs f inside a log group named name and records how long it took.
// The error from f is returned unchanged.
func (r *Report) Track(name string, f func() error, opts ...group.Option) error {
	now := r.now
	if now == nil {
		now = time.Now
	}

	s := &Section{Name: name, Started: now()}
	r.Sections = append(r.Sections, s)

	err := group.Do(name, f, opts...)
	s.Duration = now().Sub(s.Started)
	if err != nil {
		s.Error = err.Error()
	}
	return err
}

// Failed returns the number of sections that ended with an error.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Sections {
		if s.Failed() {
			n++
		}
	}
	return n
}

var cellEscaper = strings.NewReplacer("|", `\|`)

// cell escapes text so it stays inside one Markdown table cell.
func cell(s string) string {
	return cellEscaper.Replace(s)
}

func millis(d time.Duration) string {
	return humanize.Comma(d.Milliseconds()) + " ms"
}

// String renders a human-readable representation of the report in Markdown format.
func (r Report) String() string {
	if len(r.Sections) == 0 {
		return "No sections to report."
	}

	result := strings.Builder{}

	if r.Title != "" {
		result.WriteString(fmt.Sprintf("### %s\n\n", r.Title))
	}

	table := tablewriter.NewWriter(&result)
	table.SetHeader([]string{"Section", "Started", "Duration", "Result"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	var total time.Duration
	for _, s := range r.Sections {
		status := "ok"
		if s.Failed() {
			status = "failed: " + s.Error
		}
		total += s.Duration
		table.Append([]string{cell(s.Name), humanize.Time(s.Started), millis(s.Duration), cell(status)})
	}
	table.Render()

	result.WriteString(fmt.Sprintf("\n%s in %s, %d failed\n",
		english.Plural(len(r.Sections), "section", "sections"), millis(total), r.Failed()))

	return result.String()
}

// SaveJSON writes report in JSON format into the given file.
func (r *Report) SaveJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(r)
}

// SaveMarkdown writes report in Markdown format into the given file.
func (r *Report) SaveMarkdown(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(r.String())
	if err != nil {
		return fmt.Errorf("failed to write report table: %w", err)
	}

	return nil
}

// AppendStepSummary appends the Markdown report to the GitHub step summary
// file. It does nothing when the summary variable is not set.
func (r *Report) AppendStepSummary(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	path := getenv(StepSummaryVar)
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open step summary: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(r.String() + "\n"); err != nil {
		return fmt.Errorf("failed to write step summary: %w", err)
	}
	return nil
}
