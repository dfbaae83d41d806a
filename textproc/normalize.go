package textproc

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var (
	nonLetterRegex = regexp.MustCompile(`[^a-zA-Z]`)
	wordRegex      = regexp.MustCompile(`\w+`)
)

// Stem reduces a single lowercase word to its stem.
func Stem(word string) string {
	return english.Stem(word, false)
}

// Tokenize lowercases text and splits it into word tokens. Digits and
// underscores count as word characters.
func Tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}

// NormalizeDocument runs the whole-document normalization pass over raw
// HTML and returns the resulting token stream in document order: strip
// markup, drop every non-letter character, lowercase, tokenize, remove
// stopwords and stem. Token offsets within the returned slice are the
// positions recorded by the index.
func NormalizeDocument(rawHTML string) []string {
	text := nonLetterRegex.ReplaceAllString(ExtractText(rawHTML), " ")

	return normalizeTokens(Tokenize(text))
}

// NormalizeText applies the same stopword and stemming treatment as
// NormalizeDocument to already-extracted plain text. Unlike the document
// pass, digits survive tokenization. Used for tag-scoped text and for
// query terms, mirroring how the index was built for those inputs.
func NormalizeText(text string) []string {
	return normalizeTokens(Tokenize(text))
}

func normalizeTokens(tokens []string) []string {
	normalized := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if IsStopword(token) {
			continue
		}

		normalized = append(normalized, Stem(token))
	}

	return normalized
}
