package cli

import (
	"fmt"
	"io"
	"sort"
	"time"
)

type Step struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Success   bool
	Error     string
}

type colors interface {
	Green(text string) string
	Yellow(text string) string
	Red(text string) string
	Gray(text string) string
}

// Target is where a report is printed.
type Target interface {
	colors
	Writer() io.Writer
}

// Issue is a problem found with one page.
type Issue struct {
	Page    string
	Message string
	Details []string
}

// Report collects the steps and page issues of a generator run and prints a
// summary at the end.
type Report struct {
	out         io.Writer
	colors      colors
	steps       []Step
	warnings    []Issue
	errors      []Issue
	startTime   time.Time
	pageCount   int
	outputPath  string
	hasFailures bool
}

func NewReport(o Target, outputPath string) *Report {
	return &Report{
		out:        o.Writer(),
		colors:     o,
		startTime:  time.Now(),
		outputPath: outputPath,
	}
}

func (r *Report) SetPageCount(count int) {
	r.pageCount = count
}

func (r *Report) StartStep(name string) int {
	r.steps = append(r.steps, Step{Name: name, StartTime: time.Now()})
	return len(r.steps) - 1
}

func (r *Report) EndStep(i int, err error) {
	step := &r.steps[i]
	step.EndTime = time.Now()
	step.Success = err == nil
	if err != nil {
		step.Error = err.Error()
		r.hasFailures = true
	}
}

func (r *Report) AddWarning(page, message string, details ...string) {
	r.warnings = append(r.warnings, Issue{Page: page, Message: message, Details: details})
}

func (r *Report) AddError(page, message string, details ...string) {
	r.errors = append(r.errors, Issue{Page: page, Message: message, Details: details})
	r.hasFailures = true
}

func (r *Report) HasFailures() bool {
	return r.hasFailures
}

func (r *Report) Render() {
	duration := time.Since(r.startTime)

	fmt.Fprintf(r.out, "  %d pages found\n", r.pageCount)
	for _, step := range r.steps {
		status := r.colors.Green("✓")
		if !step.Success {
			status = r.colors.Red("✗")
		}
		fmt.Fprintf(r.out, "  %s %s\n", status, step.Name)
		if step.Error != "" {
			fmt.Fprintf(r.out, "    %s\n", step.Error)
		}
	}

	if len(r.errors) > 0 {
		fmt.Fprintf(r.out, "\n  %sErrors (%d):\n", r.colors.Red("✗ "), len(r.errors))
		r.renderIssues(r.errors)
	}
	if len(r.warnings) > 0 {
		fmt.Fprintf(r.out, "\n  %sWarnings (%d):\n", r.colors.Yellow("⚠ "), len(r.warnings))
		r.renderIssues(r.warnings)
	}

	fmt.Fprintln(r.out)
	if r.hasFailures {
		fmt.Fprintf(r.out, "  %s\n", r.colors.Red("Generation failed after "+formatDuration(duration)))
	} else {
		fmt.Fprintf(r.out, "  %sDone in %s\n", r.colors.Green("✓ "), formatDuration(duration))
	}
	if r.outputPath != "" {
		fmt.Fprintf(r.out, "\n  %s\n", r.colors.Gray("Output: "+r.outputPath))
	}
}

func (r *Report) renderIssues(issues []Issue) {
	for _, issue := range sortedIssues(issues) {
		fmt.Fprintf(r.out, "  %s %s\n", r.colors.Red("✗"), issue.Page)
		fmt.Fprintf(r.out, "    %s\n", issue.Message)
		for _, detail := range deduplicateStrings(issue.Details) {
			fmt.Fprintf(r.out, "      • %s\n", detail)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}

// deduplicateStrings collapses repeated details into "item (n occurrences)",
// keeping first-seen order.
func deduplicateStrings(items []string) []string {
	if len(items) <= 1 {
		return items
	}

	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		if counts[item] == 0 {
			order = append(order, item)
		}
		counts[item]++
	}

	result := make([]string, 0, len(order))
	for _, item := range order {
		if n := counts[item]; n > 1 {
			result = append(result, fmt.Sprintf("%s (%d occurrences)", item, n))
		} else {
			result = append(result, item)
		}
	}
	return result
}

// sortedIssues orders issues by page for stable output.
func sortedIssues(issues []Issue) []Issue {
	out := append([]Issue(nil), issues...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}
