package rss

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	minTitleLen = 15
	minDescLen  = 40
	minWords    = 4
)

var (
	slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+){2,}$`)
	hexRe  = regexp.MustCompile(`\b[0-9a-fA-F]{12,}\b`)
)

// Lowercase inside re-title-cased headlines, except as the first word.
var titleStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "and": true, "or": true, "but": true,
	"with": true, "by": true, "from": true, "as": true,
}

// Sanitize decodes HTML entities, strips markup, and collapses whitespace.
func Sanitize(raw string) string {
	s := html.UnescapeString(raw)
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// CleanTitle normalizes an extracted title and reports whether it survives.
// Rejected titles are corrupted extractions (slug leftovers, hash fragments,
// truncated markup), not real headlines.
func CleanTitle(raw string) (string, bool) {
	t := Sanitize(raw)

	// URL slugs masquerading as titles: de-hyphenate before the word checks.
	if slugRe.MatchString(t) && len(t) > 20 {
		t = strings.ReplaceAll(t, "-", " ")
	}

	t = hexRe.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")

	if t == strings.ToLower(t) || t == strings.ToUpper(t) {
		t = TitleCase(t)
	}

	if len(t) < minTitleLen {
		return "", false
	}
	if !strings.ContainsFunc(t, unicode.IsUpper) {
		return "", false
	}
	if len(strings.Fields(t)) < minWords {
		return "", false
	}
	return t, true
}

// CleanDescription normalizes a description; a short or placeholder result is
// replaced by a sentence built from the title rather than dropping the item.
func CleanDescription(raw, title string) string {
	d := Sanitize(raw)
	if len(d) < minDescLen || isPlaceholder(d) {
		return synthesizeDescription(title)
	}
	return d
}

var placeholders = []string{
	"read more", "click here", "no description", "n/a", "null", "undefined",
	"appeared first on",
}

func isPlaceholder(s string) bool {
	l := strings.ToLower(s)
	for _, p := range placeholders {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

func synthesizeDescription(title string) string {
	return title + ". Read the full coverage at the source for details."
}

// TitleCase capitalizes each word except interior stopwords.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if i > 0 && titleStopwords[w] {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ValidLink reports whether s parses as an absolute http(s) URL.
func ValidLink(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
