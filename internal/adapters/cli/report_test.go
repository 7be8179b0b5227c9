package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(NewWriterOutput(&buf), "internal/pages/registry_gen.go")
	r.SetPageCount(4)
	r.EndStep(r.StartStep("Scan pages"), nil)

	r.Render()

	out := buf.String()
	assert.False(t, r.HasFailures())
	assert.Contains(t, out, "4 pages found")
	assert.Contains(t, out, "✓ Scan pages")
	assert.Contains(t, out, "✓ Done in")
	assert.Contains(t, out, "Output: internal/pages/registry_gen.go")
}

func TestReportFailures(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(NewWriterOutput(&buf), "")
	i := r.StartStep("Write registry")
	r.EndStep(i, errors.New("permission denied"))
	r.AddWarning("Welcome", "layout option Foo is not a default import")
	r.AddError("Auth", "unresolved layout", "GuestLayout", "GuestLayout")

	r.Render()

	out := buf.String()
	assert.True(t, r.HasFailures())
	assert.Contains(t, out, "✗ Write registry\n    permission denied")
	assert.Contains(t, out, "Errors (1)")
	assert.Contains(t, out, "Warnings (1)")
	assert.Contains(t, out, "• GuestLayout (2 occurrences)")
	assert.Contains(t, out, "Generation failed after")
	assert.NotContains(t, out, "Output:")
}

func TestDeduplicateKeepsOrder(t *testing.T) {
	got := deduplicateStrings([]string{"b", "a", "b", "c"})
	assert.Equal(t, []string{"b (2 occurrences)", "a", "c"}, got)
}

func TestWriterOutputHasNoColors(t *testing.T) {
	var buf bytes.Buffer
	o := NewWriterOutput(&buf)
	o.PrintSuccess("%d pages", 3)
	o.PrintError("boom")

	assert.Equal(t, "  ✓ 3 pages\n  ✗ boom\n", buf.String())
	assert.False(t, strings.Contains(buf.String(), "\033["))
}
