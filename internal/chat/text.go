package chat

import (
	"regexp"
	"strings"

	"github.com/popalexr/Travel-Recommendation/internal/store"
)

var codeFence = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*(.*?)\\s*```$")

// StripCodeFences unwraps a reply that is entirely enclosed in a Markdown
// code fence. Anything else comes back unchanged, except that a blank reply
// is trimmed to "".
func StripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return trimmed
	}
	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return content
}

var uploadPrefixes = []string{
	"uploaded airplane ticket:",
	"uploaded accommodation invoice:",
	"uploaded document:",
}

// IsUploadMessage reports whether a user message was recorded for a document
// upload rather than typed by the user.
func IsUploadMessage(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, p := range uploadPrefixes {
		if strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// profileContext renders the trip profile as an extra system message. It is
// empty when nothing was provided.
func profileContext(p *store.TripProfile) string {
	if p == nil {
		return ""
	}

	fields := []struct {
		label string
		value *string
	}{
		{"Destination", p.Destination},
		{"Start date", p.StartDate},
		{"End date", p.EndDate},
		{"Budget", p.Budget},
		{"Travelers", p.Travelers},
		{"Interests", p.Interests},
		{"Constraints", p.Constraints},
	}

	var lines strings.Builder
	for _, f := range fields {
		if v := normalize(f.value); v != nil {
			lines.WriteString(f.label + ": " + *v + "\n")
		}
	}
	if lines.Len() == 0 {
		return ""
	}
	return profileHeader + lines.String() + profileFooter
}

func normalize(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func titleFromReply(raw string) string {
	title := strings.TrimSpace(raw)
	if r := []rune(title); len(r) > maxTitleLength {
		title = strings.TrimSpace(string(r[:maxTitleLength]))
	}
	if title == "" {
		return DefaultTitle
	}
	return title
}
