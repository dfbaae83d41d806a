package textproc

import (
	"testing"

	check "gopkg.in/check.v1"
)

// Initialize and register an instance of the TextProcTestSuite.
var _ = check.Suite(new(TextProcTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type TextProcTestSuite struct{}

func (s *TextProcTestSuite) TestExtractTitle(c *check.C) {
	doc := `<html><head><title> Go &amp; distributed   systems </title></head><body></body></html>`

	c.Assert(ExtractTitle(doc), check.Equals, "Go & distributed systems")
}

func (s *TextProcTestSuite) TestExtractTitleMissing(c *check.C) {
	c.Assert(ExtractTitle("<html><body><p>no title here</p></body></html>"), check.Equals, "")
}

func (s *TextProcTestSuite) TestExtractTextStripsMarkup(c *check.C) {
	doc := `<html><body><script>var x = 1;</script><p>Hello   <b>search</b> world</p></body></html>`

	c.Assert(ExtractText(doc), check.Equals, "Hello search world")
}

func (s *TextProcTestSuite) TestExtractTagText(c *check.C) {
	doc := `<html><body>
		<h1>Main Heading</h1>
		<p>First paragraph</p>
		<p>Second paragraph</p>
	</body></html>`

	tagText := ExtractTagText(doc)

	c.Assert(tagText["h1"], check.DeepEquals, []string{"Main Heading"})
	c.Assert(tagText["p"], check.DeepEquals, []string{"First paragraph", "Second paragraph"})
	_, found := tagText["h2"]
	c.Assert(found, check.Equals, false)
}

func (s *TextProcTestSuite) TestNormalizeDocumentDropsDigits(c *check.C) {
	doc := `<html><body><p>Running 42 searches daily</p></body></html>`

	c.Assert(NormalizeDocument(doc), check.DeepEquals, []string{"run", "search", "daili"})
}

func (s *TextProcTestSuite) TestNormalizeTextKeepsDigits(c *check.C) {
	c.Assert(NormalizeText("Running 42 searches"), check.DeepEquals, []string{"run", "42", "search"})
}

func (s *TextProcTestSuite) TestNormalizeRemovesStopwords(c *check.C) {
	c.Assert(
		NormalizeText("the quick brown fox is over the lazy dog"),
		check.DeepEquals,
		[]string{"quick", "brown", "fox", "lazi", "dog"},
	)
}

func (s *TextProcTestSuite) TestImportantShortTermsSurvive(c *check.C) {
	c.Assert(NormalizeText("relations between the US and the EU"), check.DeepEquals, []string{"relat", "us", "eu"})
}

func (s *TextProcTestSuite) TestStemIdempotent(c *check.C) {
	stem := Stem("connections")

	c.Assert(Stem(stem), check.Equals, stem)
}

func (s *TextProcTestSuite) TestParagraphs(c *check.C) {
	doc := `<html><body><p>  alpha  beta </p><div>skip</div><p>gamma</p></body></html>`

	c.Assert(Paragraphs(doc), check.DeepEquals, []string{"alpha beta", "gamma"})
}
