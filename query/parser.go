package query

import (
	"fmt"
	"regexp"
	"strings"
)

// QueryType identifies how a parsed expression is evaluated.
type QueryType uint8

const (
	// FreeText matches documents containing the query terms.
	FreeText QueryType = iota
	// Phrase matches documents containing the quoted words in order.
	Phrase
	// Boolean combines two phrase operands with AND, OR or NOT.
	Boolean
)

// Operator is a boolean connective between two quoted phrases.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"
)

var (
	booleanExprRegex = regexp.MustCompile(`^\s*"([^"]+)"\s+(?i:(AND|OR|NOT))\s+"([^"]+)"\s*$`)
	phraseExprRegex  = regexp.MustCompile(`^\s*"([^"]*)"\s*$`)
)

// Query is the parsed form of a raw search expression.
type Query struct {
	Type     QueryType
	Operator Operator

	// Phrases holds the single phrase for Phrase queries and the left
	// and right operands for Boolean queries.
	Phrases []string

	// Terms holds the raw whitespace-separated words of a FreeText query.
	Terms []string
}

// Parse converts a raw search expression into a Query. Expressions
// containing a boolean operator must quote both operands.
func Parse(raw string) (*Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrBadQuery)
	}

	if m := booleanExprRegex.FindStringSubmatch(trimmed); m != nil {
		left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[3])
		if left == "" || right == "" {
			return nil, fmt.Errorf("%w: operators require both operands in quotes", ErrBadQuery)
		}
		return &Query{
			Type:     Boolean,
			Operator: Operator(strings.ToUpper(m[2])),
			Phrases:  []string{left, right},
		}, nil
	}

	if containsBareOperator(trimmed) {
		return nil, fmt.Errorf("%w: operators require both operands in quotes", ErrBadQuery)
	}

	if m := phraseExprRegex.FindStringSubmatch(trimmed); m != nil {
		phrase := strings.TrimSpace(m[1])
		if phrase == "" {
			return nil, fmt.Errorf("%w: empty phrase", ErrBadQuery)
		}
		return &Query{Type: Phrase, Phrases: []string{phrase}}, nil
	}

	return &Query{Type: FreeText, Terms: strings.Fields(trimmed)}, nil
}

// containsBareOperator reports whether an AND, OR or NOT token appears
// outside of double quotes.
func containsBareOperator(expr string) bool {
	inQuotes := false
	for _, field := range strings.Fields(expr) {
		quotes := strings.Count(field, `"`)
		if inQuotes {
			if quotes%2 == 1 {
				inQuotes = false
			}
			continue
		}
		switch strings.ToUpper(strings.Trim(field, `"`)) {
		case "AND", "OR", "NOT":
			if !strings.Contains(field, `"`) {
				return true
			}
		}
		if quotes%2 == 1 {
			inQuotes = true
		}
	}
	return false
}
