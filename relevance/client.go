package relevance

import "go.uber.org/zap"

// Selector picks the part of a document worth sending along with a query.
type Selector interface {
	Select(text, query string) string
}

// KeywordSelector is the Selector backed by KeywordRelevanceFilter.
type KeywordSelector struct {
	logger *zap.Logger
}

func NewKeywordSelector(logger *zap.Logger) *KeywordSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordSelector{logger: logger}
}

func (s *KeywordSelector) Select(text, query string) string {
	filter := NewKeywordRelevanceFilter(query)
	excerpt, matched := selectFragments(text, filter)

	kept := matched
	if kept > MaxFragments {
		kept = MaxFragments
	}
	s.logger.Debug("selected excerpt",
		zap.Int("keywords", len(filter.Keywords())),
		zap.Int("matched", matched),
		zap.Int("kept", kept),
		zap.Int("chars", len(excerpt)))
	return excerpt
}
