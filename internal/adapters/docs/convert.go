package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// detectCharset guesses the charset of raw document bytes, defaulting
// to utf-8.
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// htmlToText converts a fetched HTML document into plain text: decode to
// utf-8, strip unsafe markup, then extract visible text.
func htmlToText(data []byte, sanitizer *bluemonday.Policy) ([]byte, error) {
	reader, err := charset.NewReaderLabel(detectCharset(data), bytes.NewReader(data))
	if err != nil {
		reader = bytes.NewReader(data)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	html, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	clean, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizer.Sanitize(html)))
	if err != nil {
		return nil, fmt.Errorf("parse sanitized document: %w", err)
	}

	return []byte(collapseWhitespace(clean.Text())), nil
}

// collapseWhitespace folds runs of blank space into single separators
// while keeping line structure readable.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
