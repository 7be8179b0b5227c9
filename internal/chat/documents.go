package chat

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/popalexr/Travel-Recommendation/internal/llm"
)

// DocumentKind selects how an uploaded file is analyzed.
type DocumentKind int

const (
	Ticket DocumentKind = iota
	Accommodation
	OtherDocument
)

type documentSpec struct {
	missing     string
	label       string
	defaultName string
	failure     string
	prompt      string
	pdfPrefix   string
	intro       func(name string) string
}

var documentSpecs = map[DocumentKind]documentSpec{
	Ticket: {
		missing:     "A ticket file is required.",
		label:       "Uploaded airplane ticket: ",
		defaultName: "ticket",
		failure:     "Failed to process the ticket. Please try again.",
		prompt:      ticketPrompt,
		pdfPrefix:   "Ticket PDF text (truncated):\n",
		intro: func(string) string {
			return "Please analyze this uploaded airplane ticket/boarding pass and summarize the travel details and constraints in HTML."
		},
	},
	Accommodation: {
		missing:     "An accommodation invoice or booking file is required.",
		label:       "Uploaded accommodation invoice: ",
		defaultName: "accommodation",
		failure:     "Failed to process the accommodation document. Please try again.",
		prompt:      accommodationPrompt,
		pdfPrefix:   "Accommodation PDF text (truncated):\n",
		intro: func(string) string {
			return "Please analyze this uploaded accommodation invoice/booking confirmation and summarize the stay details and constraints in HTML."
		},
	},
	OtherDocument: {
		missing:     "A document file is required.",
		label:       "Uploaded document: ",
		defaultName: "document",
		failure:     "Failed to process the document. Please try again.",
		prompt:      documentPrompt,
		pdfPrefix:   "Document PDF text (truncated):\n",
		intro: func(name string) string {
			if strings.TrimSpace(name) == "" {
				name = "document"
			}
			return "Please analyze this uploaded travel document and summarize the details and constraints in HTML. File name: " + name + "."
		},
	},
}

func (k DocumentKind) spec() documentSpec { return documentSpecs[k] }

func (k DocumentKind) String() string {
	switch k {
	case Ticket:
		return "ticket"
	case Accommodation:
		return "accommodation"
	case OtherDocument:
		return "document"
	}
	return "unknown"
}

// Upload is a received file.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	DefaultMaxUploadBytes = 10 << 20

	maxPDFText = 8000
)

func (s *Service) validateUpload(kind DocumentKind, f *Upload) error {
	if f == nil || len(f.Data) == 0 {
		return badRequest(kind.spec().missing)
	}
	ct := strings.ToLower(f.ContentType)
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return badRequest("Only PDF or image files are supported.")
	}
	if int64(len(f.Data)) > s.maxUpload {
		return badRequest("File too large. Please upload files up to 10MB.")
	}
	return nil
}

// documentParts builds the final user turn carrying the file.
func documentParts(kind DocumentKind, f *Upload) []llm.Part {
	spec := kind.spec()
	parts := []llm.Part{llm.TextPart(spec.intro(f.Name))}

	ct := f.ContentType
	switch {
	case strings.HasPrefix(strings.ToLower(ct), "image/"):
		parts = append(parts, llm.ImagePart(ct, f.Data))
	case strings.EqualFold(ct, "application/pdf"):
		parts = append(parts, llm.TextPart(pdfText(f.Data, spec.pdfPrefix)))
	default:
		parts = append(parts, llm.TextPart("Unknown file type ("+ct+"). Base64 payload:\n"+base64.StdEncoding.EncodeToString(f.Data)))
	}
	return parts
}

// pdfText extracts the plain text of a PDF, truncated for the prompt.
func pdfText(data []byte, prefix string) string {
	if len(data) == 0 {
		return "No PDF content provided."
	}

	text, err := readPDF(data)
	if err != nil {
		return "Unable to extract text from PDF. Please rely on the image or provide key details manually."
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxPDFText {
		text = string(r[:maxPDFText])
	}
	if text == "" {
		return "PDF text could not be extracted."
	}
	return prefix + text
}

func readPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = errMalformedPDF
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
