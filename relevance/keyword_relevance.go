package relevance

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// MaxFragments caps how many relevant fragments make up an excerpt.
const MaxFragments = 10

// KeywordRelevanceFilter matches fragments against the whitespace-separated
// tokens of a query.
type KeywordRelevanceFilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewKeywordRelevanceFilter initializes the filter with the tokens of query.
// Tokens are matched as-is: no case folding, no stemming.
func NewKeywordRelevanceFilter(query string) *KeywordRelevanceFilter {
	keywords := strings.Fields(query)
	return &KeywordRelevanceFilter{
		matcher:  ahocorasick.NewStringMatcher(keywords),
		keywords: keywords,
	}
}

// Keywords returns the query tokens the filter matches on.
func (f *KeywordRelevanceFilter) Keywords() []string {
	return f.keywords
}

// IsFragmentRelevant reports whether at least one keyword occurs in fragment
// as a substring.
func (f *KeywordRelevanceFilter) IsFragmentRelevant(fragment string) bool {
	if len(f.keywords) == 0 || fragment == "" {
		return false
	}
	return f.matcher.Contains([]byte(fragment))
}

// SplitFragments splits text on every literal period. Abbreviations and
// decimals split too, and the fragments keep their surrounding whitespace.
func SplitFragments(text string) []string {
	return strings.Split(text, ".")
}

// ExtractRelevantText returns, in document order, the first MaxFragments
// fragments of text that contain a query token, joined by single spaces.
// It returns "" when nothing matches.
func ExtractRelevantText(text, query string) string {
	excerpt, _ := selectFragments(text, NewKeywordRelevanceFilter(query))
	return excerpt
}

// selectFragments also reports how many fragments matched before the cap.
func selectFragments(text string, filter *KeywordRelevanceFilter) (string, int) {
	if len(filter.keywords) == 0 {
		return "", 0
	}

	var relevant []string
	matched := 0
	for _, fragment := range SplitFragments(text) {
		if !filter.IsFragmentRelevant(fragment) {
			continue
		}
		matched++
		if len(relevant) < MaxFragments {
			relevant = append(relevant, fragment)
		}
	}
	return strings.Join(relevant, " "), matched
}
