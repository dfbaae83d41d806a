package query_test

import (
	"errors"

	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/query"
)

type ParserTestSuite struct{}

var _ = check.Suite(new(ParserTestSuite))

func (s *ParserTestSuite) TestParseFreeText(c *check.C) {
	parsed, err := query.Parse("  golang concurrency patterns ")
	c.Assert(err, check.IsNil)
	c.Assert(parsed.Type, check.Equals, query.FreeText)
	c.Assert(parsed.Terms, check.DeepEquals, []string{"golang", "concurrency", "patterns"})
}

func (s *ParserTestSuite) TestParsePhrase(c *check.C) {
	parsed, err := query.Parse(`"inverted index"`)
	c.Assert(err, check.IsNil)
	c.Assert(parsed.Type, check.Equals, query.Phrase)
	c.Assert(parsed.Phrases, check.DeepEquals, []string{"inverted index"})
}

func (s *ParserTestSuite) TestParseBoolean(c *check.C) {
	specs := []struct {
		expr string
		op   query.Operator
	}{
		{`"search engines" AND "ranking"`, query.OpAnd},
		{`"search engines" or "ranking"`, query.OpOr},
		{`"search engines" Not "ranking"`, query.OpNot},
	}
	for _, spec := range specs {
		parsed, err := query.Parse(spec.expr)
		c.Assert(err, check.IsNil, check.Commentf("expr: %s", spec.expr))
		c.Assert(parsed.Type, check.Equals, query.Boolean)
		c.Assert(parsed.Operator, check.Equals, spec.op)
		c.Assert(parsed.Phrases, check.DeepEquals, []string{"search engines", "ranking"})
	}
}

func (s *ParserTestSuite) TestParseRejectsUnquotedOperands(c *check.C) {
	for _, expr := range []string{
		`search AND ranking`,
		`"search" AND ranking`,
		`search OR "ranking"`,
		`foo not bar`,
	} {
		_, err := query.Parse(expr)
		c.Assert(err, check.NotNil, check.Commentf("expr: %s", expr))
		c.Assert(errors.Is(err, query.ErrBadQuery), check.Equals, true)
		c.Assert(err, check.ErrorMatches, ".*operators require both operands in quotes")
	}
}

func (s *ParserTestSuite) TestParseRejectsEmptyExpressions(c *check.C) {
	for _, expr := range []string{"", "   ", `""`} {
		_, err := query.Parse(expr)
		c.Assert(errors.Is(err, query.ErrBadQuery), check.Equals, true, check.Commentf("expr: %q", expr))
	}
}

func (s *ParserTestSuite) TestOperatorInsidePhraseIsLiteral(c *check.C) {
	parsed, err := query.Parse(`"war and peace"`)
	c.Assert(err, check.IsNil)
	c.Assert(parsed.Type, check.Equals, query.Phrase)
	c.Assert(parsed.Phrases[0], check.Equals, "war and peace")
}
