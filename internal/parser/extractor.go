package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotUTF8         = errors.New("text is not valid utf-8")
	ErrNoText          = errors.New("no text content found")
)

// AllowedExtensions are the résumé formats accepted on upload.
var AllowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
}

// Allowed reports whether fileName has an accepted extension.
func Allowed(fileName string) bool {
	_, ok := AllowedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// ExtractText decodes data to plain text according to fileName's extension.
func ExtractText(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = decodePlain(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, _, err = docconv.ConvertDocx(bytes.NewReader(data))
	case ".doc":
		text, _, err = docconv.ConvertDoc(bytes.NewReader(data))
	case ".rtf":
		text, _, err = docconv.ConvertRTF(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", err
	}

	text = cleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func decodePlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func readAllLimited(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("file exceeds %d bytes", max)
	}
	return b, nil
}
