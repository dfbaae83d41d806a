// Package textproc provides the text normalization pipeline shared by the
// indexing and query components: HTML stripping, tag-scoped text extraction,
// tokenization, stopword removal and stemming.
package textproc

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	titleRegex         = regexp.MustCompile(`(?i)<title.*?>(.*?)</title>`)
	repeatedSpaceRegex = regexp.MustCompile(`\s+`)
)

// IndexedTags lists the HTML tags whose text is indexed with a tag marker
// in addition to the whole-document pass.
var IndexedTags = []string{"title", "h1", "h2", "h3", "p"}

var policyPool = sync.Pool{
	New: func() interface{} {
		return bluemonday.StrictPolicy()
	},
}

// ExtractTitle returns the trimmed, unescaped contents of the document's
// <title> element, or an empty string if the document has none.
func ExtractTitle(rawHTML string) string {
	titleMatch := titleRegex.FindStringSubmatch(rawHTML)
	// Note: len(titleMatch) always returns 2 or nil even when no submatch
	// match is found. this is because an empty string is always returned as
	// a place-holder.
	if len(titleMatch) != 2 {
		return ""
	}

	policy := policyPool.Get().(*bluemonday.Policy)
	defer policyPool.Put(policy)

	cleanTitle := repeatedSpaceRegex.ReplaceAllString(
		policy.Sanitize(titleMatch[1]), " ",
	)

	return strings.TrimSpace(html.UnescapeString(cleanTitle))
}

// ExtractText strips the document of all HTML tags and collapses runs of
// whitespace into single spaces. Malformed markup is tolerated.
func ExtractText(rawHTML string) string {
	policy := policyPool.Get().(*bluemonday.Policy)
	defer policyPool.Put(policy)

	cleanContent := repeatedSpaceRegex.ReplaceAllString(
		policy.Sanitize(rawHTML), " ",
	)

	return strings.TrimSpace(html.UnescapeString(cleanContent))
}

// ExtractTagText returns the concatenated text of each indexed tag, keyed
// by tag name. Tags absent from the document are omitted from the map.
// Parse failures yield an empty map rather than an error since a document
// that goquery cannot parse still gets indexed through the whole-document
// pass.
func ExtractTagText(rawHTML string) map[string][]string {
	tagText := make(map[string][]string)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return tagText
	}

	for _, tag := range IndexedTags {
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text != "" {
				tagText[tag] = append(tagText[tag], text)
			}
		})
	}

	return tagText
}

// Paragraphs returns the trimmed text of each <p> element in document
// order. It is used by the snippet generator to locate the best matching
// paragraph for a query.
func Paragraphs(rawHTML string) []string {
	var paragraphs []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return paragraphs
	}

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(sel.Text(), " "))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return paragraphs
}
