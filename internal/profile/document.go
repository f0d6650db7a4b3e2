package profile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a document carries no extractable text.
var ErrNoText = errors.New("no text content found in document")

// FromPDF builds a document profile from a PDF. Skills are the vocabulary
// entries found in the extracted text.
func FromPDF(data []byte, fileName string, vocabulary []string, uploadedAt time.Time) (Profile, error) {
	text, err := ExtractPDFText(data)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		Source:          SourceDocument,
		TechnicalSkills: DetectSkills(text, vocabulary),
		FileName:        strings.TrimSpace(fileName),
		UploadedAt:      uploadedAt,
		DocumentText:    text,
	}, nil
}

// ExtractPDFText returns the plain text of every readable page.
func ExtractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// DetectSkills returns the vocabulary entries that occur in text as whole
// words, ignoring case, in vocabulary order.
func DetectSkills(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]struct{})

	for _, skill := range vocabulary {
		needle := strings.ToLower(strings.TrimSpace(skill))
		if needle == "" {
			continue
		}
		if _, ok := seen[needle]; ok {
			continue
		}
		if containsWord(lower, needle) {
			seen[needle] = struct{}{}
			found = append(found, strings.TrimSpace(skill))
		}
	}
	return found
}

func containsWord(haystack, needle string) bool {
	for offset := 0; offset < len(haystack); {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	return !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b < unicode.MaxASCII && (unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}
