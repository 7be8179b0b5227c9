package chat

import (
	"strings"
	"testing"

	"github.com/popalexr/Travel-Recommendation/internal/store"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<p>Hi</p>", "<p>Hi</p>"},
		{"html fence", "```html\n<p>Hi</p>\n```", "<p>Hi</p>"},
		{"bare fence", "```\n<ul><li>a</li></ul>\n```", "<ul><li>a</li></ul>"},
		{"surrounding space", "  ```json\n{\"days\":[]}\n```  \n", "{\"days\":[]}"},
		{"blank", "   \n", ""},
		{"fence not at start", "Intro\n```html\n<p>x</p>\n```", "Intro\n```html\n<p>x</p>\n```"},
		{"untrimmed kept", " <p>x</p> ", " <p>x</p> "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsUploadMessage(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Uploaded airplane ticket: BA123.pdf", true},
		{"  uploaded ACCOMMODATION invoice: hotel.png", true},
		{"Uploaded document: visa.pdf", true},
		{"I uploaded document: no", false},
		{"Plan a trip to Rome", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsUploadMessage(tt.text); got != tt.want {
			t.Errorf("IsUploadMessage(%q): expected %v, got %v", tt.text, tt.want, got)
		}
	}
}

func str(s string) *string { return &s }

func TestProfileContext(t *testing.T) {
	if got := profileContext(nil); got != "" {
		t.Errorf("Expected empty context for nil profile, got %q", got)
	}
	if got := profileContext(&store.TripProfile{Destination: str("  "), Budget: str("")}); got != "" {
		t.Errorf("Expected empty context for blank profile, got %q", got)
	}

	got := profileContext(&store.TripProfile{
		Destination: str(" Lisbon "),
		EndDate:     str("2025-06-10"),
		Constraints: str("No flights before 9am"),
	})
	want := "Trip profile (user-provided). Use this to personalize recommendations.\n" +
		"Destination: Lisbon\n" +
		"End date: 2025-06-10\n" +
		"Constraints: No flights before 9am\n" +
		"If a field is missing, treat it as not provided and avoid guessing."
	if got != want {
		t.Errorf("Unexpected context:\n%s", got)
	}
}

func TestTitleFromReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trimmed", "  Rome weekend \n", "Rome weekend"},
		{"empty", "   ", DefaultTitle},
		{"long", strings.Repeat("a", 59) + " tail", strings.Repeat("a", 59)},
		{"exact", strings.Repeat("b", 60), strings.Repeat("b", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromReply(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPDFText(t *testing.T) {
	if got := pdfText(nil, "P:\n"); got != "No PDF content provided." {
		t.Errorf("Unexpected empty result: %q", got)
	}
	if got := pdfText([]byte("not a pdf"), "P:\n"); got != "Unable to extract text from PDF. Please rely on the image or provide key details manually." {
		t.Errorf("Unexpected invalid result: %q", got)
	}
}
