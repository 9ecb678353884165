package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cvscore/internal/errors"
	"cvscore/internal/utils"

	"github.com/PuerkitoBio/goquery"
)

// Job description formats
const (
	FormatText = "text"
	FormatHTML = "html"
)

// blockSelectors end a line of text when flattening HTML
const blockSelectors = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article"

// DetectFormat guesses the job description format from the file name and content
func DetectFormat(filename, content string) string {
	switch utils.GetFileExtension(filename) {
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".md", ".markdown", ".text":
		return FormatText
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, "</") {
		return FormatHTML
	}
	return FormatText
}

// HTMLToText extracts the readable text of an HTML job posting, one block per line
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, "Failed to parse HTML job description", err)
	}

	doc.Find("script, style, noscript, nav, footer, header, form").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return cleanWhitespace(doc.Text()), nil
	}
	return cleanWhitespace(body.Text()), nil
}

// NormalizeJobDescription converts raw to plain text according to format
// and enforces maxChars when it is positive. An empty format is detected
// from the content.
func NormalizeJobDescription(raw, format string, maxChars int) (string, error) {
	if format == "" {
		format = DetectFormat("", raw)
	}

	var text string
	switch format {
	case FormatHTML:
		converted, err := HTMLToText(raw)
		if err != nil {
			return "", err
		}
		text = converted
	case FormatText:
		text = strings.TrimSpace(raw)
	default:
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported job description format: %s", format), nil)
	}

	if maxChars > 0 {
		if n := utf8.RuneCountInString(text); n > maxChars {
			return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Job description is too long: %d characters (max %d)", n, maxChars), nil).
				WithContext("max_chars", maxChars)
		}
	}
	return text, nil
}

// cleanWhitespace trims every line, collapses inner whitespace and drops blank lines
func cleanWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n")
}
