package textproc

// importantShortTerms are tokens that would otherwise be discarded as
// stopwords or noise but carry real meaning in queries and documents,
// mostly country and organisation acronyms.
var importantShortTerms = map[string]struct{}{
	"us": {}, "uk": {}, "un": {}, "eu": {}, "ai": {}, "go": {}, "it": {},
	"3d": {}, "4k": {}, "5g": {},
}

var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {},
	"against": {}, "all": {}, "am": {}, "an": {}, "and": {}, "any": {},
	"are": {}, "as": {}, "at": {}, "be": {}, "because": {}, "been": {},
	"before": {}, "being": {}, "below": {}, "between": {}, "both": {},
	"but": {}, "by": {}, "can": {}, "cannot": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {},
	"here": {}, "hers": {}, "herself": {}, "him": {}, "himself": {},
	"his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "its": {}, "itself": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "myself": {}, "no": {}, "nor": {}, "not": {},
	"now": {}, "of": {}, "off": {}, "on": {}, "once": {}, "only": {},
	"or": {}, "other": {}, "our": {}, "ours": {}, "ourselves": {},
	"out": {}, "over": {}, "own": {}, "same": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "theirs": {}, "them": {},
	"themselves": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "to": {}, "too": {},
	"under": {}, "until": {}, "up": {}, "very": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "with": {},
	"would": {}, "you": {}, "your": {}, "yours": {}, "yourself": {},
	"yourselves": {},
}

// IsStopword reports whether a lowercase token should be dropped during
// normalization. Single characters are treated as stopwords unless they
// appear in the important-terms allow list.
func IsStopword(token string) bool {
	if _, important := importantShortTerms[token]; important {
		return false
	}

	if len(token) < 2 {
		return true
	}

	_, found := stopwords[token]
	return found
}
