package query

import (
	"strings"
	"unicode/utf8"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(SnippetTestSuite))

type SnippetTestSuite struct{}

func (s *SnippetTestSuite) TestWindowCentersOnFirstMatch(c *check.C) {
	paragraph := strings.Repeat("filler ", 60) + "needle in the haystack " + strings.Repeat("filler ", 60)

	window := snippetWindow(paragraph, map[string]struct{}{"needl": {}}, "")

	c.Assert(strings.Contains(window, "needle"), check.Equals, true)
	c.Assert(strings.HasPrefix(window, "..."), check.Equals, true)
	c.Assert(strings.HasSuffix(window, "..."), check.Equals, true)
}

func (s *SnippetTestSuite) TestShortParagraphIsUntouched(c *check.C) {
	paragraph := "a short paragraph"

	window := snippetWindow(paragraph, map[string]struct{}{"short": {}}, "")

	c.Assert(window, check.Equals, paragraph)
}

func (s *SnippetTestSuite) TestWindowNeverSplitsRunes(c *check.C) {
	// Unsegmented multibyte text with the runs offset by one byte: no
	// spaces anywhere near the window boundary, so the byte cut has to
	// be walked back to a rune boundary.
	paragraph := "a" + strings.Repeat("搜索引擎排序", 40)

	window := snippetWindow(paragraph, map[string]struct{}{}, "")

	c.Assert(utf8.ValidString(window), check.Equals, true)
	c.Assert(len(window) > 0, check.Equals, true)
}

func (s *SnippetTestSuite) TestWindowWithMultibyteMatchIsValid(c *check.C) {
	paragraph := strings.Repeat("предисловие", 30) + " запрос " + strings.Repeat("послесловие", 30)

	window := snippetWindow(paragraph, map[string]struct{}{}, "запрос")

	c.Assert(utf8.ValidString(window), check.Equals, true)
	c.Assert(strings.Contains(window, "запрос"), check.Equals, true)
}
