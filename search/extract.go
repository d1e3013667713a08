package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxExtractedRunes caps how much text one page contributes, keeping the
// generation prompt within model limits.
const maxExtractedRunes = 4000

// extractText reduces raw page HTML to readable text. Script and style
// bodies are removed, whitespace is collapsed, and the result is truncated
// at a rune boundary. Input that is not HTML passes through as trimmed text.
func extractText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return truncateRunes(strings.TrimSpace(raw), maxExtractedRunes)
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return truncateRunes(collapseWhitespace(text), maxExtractedRunes)
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
