package telegram

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// SplitMessage splits text into chunks of at most maxLen runes, preferring
// to cut after a newline in the second half of a chunk.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		splitAt := maxLen
		if nl := lastNewline(runes[:maxLen]); nl > maxLen/2 {
			splitAt = nl + 1
		}
		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}
	return parts
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// PlainText renders an HTML formatted message as plain text. Links keep
// their target in parentheses.
func PlainText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := a.Text()
		if text != href {
			text += " (" + href + ")"
		}
		a.ReplaceWithHtml(html.EscapeString(text))
	})
	return strings.TrimSpace(doc.Text())
}

// Escape quotes user supplied text for HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}
