package mapper

import (
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"January 2, 2006",
}

// normalizeDate converts source date strings to Zoho's YYYY-MM-DD.
// Unparseable input yields "" rather than an error; callers treat ""
// as null.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// SplitName splits a full name on the first whitespace into first/last.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i:])
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CleanHTML reduces an HTML job description to plain text. SJB listings
// arrive as rich HTML; Zoho wants text in Job_Description.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Text())
}

// optional maps the empty-string sentinel back to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
