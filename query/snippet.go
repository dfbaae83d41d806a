package query

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kasozi/searchengine/textproc"
)

const snippetLength = 300

var snippetTokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// makeSnippet selects the most relevant paragraph of a document and
// wraps the words matching the query in <b> tags. Paragraphs are the
// newline-separated blocks stored on the document at index time.
func makeSnippet(content string, stems []string, literal string) string {
	paragraph := selectParagraph(content, stems, literal)
	if paragraph == "" {
		return ""
	}
	stemSet := make(map[string]struct{}, len(stems))
	for _, s := range stems {
		stemSet[s] = struct{}{}
	}
	window := snippetWindow(paragraph, stemSet, literal)
	return highlight(window, stemSet)
}

func selectParagraph(content string, stems []string, literal string) string {
	paragraphs := strings.Split(content, "\n")
	if literal != "" {
		for _, p := range paragraphs {
			if strings.Contains(strings.ToLower(p), literal) {
				return p
			}
		}
	}

	var (
		best      string
		bestCount int
	)
	for _, p := range paragraphs {
		count := 0
		for _, token := range snippetTokenRegex.FindAllString(p, -1) {
			stemmed := textproc.Stem(strings.ToLower(token))
			for _, s := range stems {
				if stemmed == s {
					count++
					break
				}
			}
		}
		if count > bestCount {
			best, bestCount = p, count
		}
	}
	if best != "" {
		return best
	}
	for _, p := range paragraphs {
		if len(p) >= 50 {
			return p
		}
	}
	if len(paragraphs) > 0 {
		return paragraphs[0]
	}
	return ""
}

// snippetWindow trims the paragraph to roughly snippetLength runes,
// keeping the first matching word in view.
func snippetWindow(paragraph string, stemSet map[string]struct{}, literal string) string {
	if len(paragraph) <= snippetLength {
		return paragraph
	}

	start := 0
	if idx := firstMatchIndex(paragraph, stemSet, literal); idx > snippetLength/2 {
		start = idx - snippetLength/4
		if space := strings.LastIndex(paragraph[:start], " "); space > 0 {
			start = space + 1
		}
		start = runeStart(paragraph, start)
	}

	end := start + snippetLength
	if end >= len(paragraph) {
		end = len(paragraph)
		if start > 0 {
			return "..." + paragraph[start:end]
		}
		return paragraph[start:end]
	}
	if space := strings.LastIndex(paragraph[start:end], " "); space > 0 {
		end = start + space
	}
	end = runeStart(paragraph, end)

	window := paragraph[start:end] + "..."
	if start > 0 {
		window = "..." + window
	}
	return window
}

// runeStart walks i back to the nearest rune boundary so byte-indexed
// window cuts never split a multibyte character.
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func firstMatchIndex(paragraph string, stemSet map[string]struct{}, literal string) int {
	if literal != "" {
		if idx := strings.Index(strings.ToLower(paragraph), literal); idx >= 0 {
			return idx
		}
	}
	for _, loc := range snippetTokenRegex.FindAllStringIndex(paragraph, -1) {
		token := strings.ToLower(paragraph[loc[0]:loc[1]])
		if _, matches := stemSet[textproc.Stem(token)]; matches {
			return loc[0]
		}
	}
	return 0
}

func highlight(window string, stemSet map[string]struct{}) string {
	return snippetTokenRegex.ReplaceAllStringFunc(window, func(token string) string {
		if _, matches := stemSet[textproc.Stem(strings.ToLower(token))]; matches {
			return "<b>" + token + "</b>"
		}
		return token
	})
}
