package moderation

import (
	"context"
	"strings"
)

// Result is a classification verdict. Labels carry the matched categories
// when the content is flagged.
type Result struct {
	Flagged bool
	Labels  []string
}

// ContentClassifier decides whether a piece of text violates content policy.
// Implementations must be safe for concurrent use.
type ContentClassifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// KeywordClassifier flags text containing any blocklisted keyword,
// case-insensitive substring match.
type KeywordClassifier struct {
	keywords []string
}

func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}
	return &KeywordClassifier{keywords: cleaned}
}

func (c *KeywordClassifier) Classify(ctx context.Context, text string) (Result, error) {
	lowered := strings.ToLower(text)
	var labels []string
	for _, keyword := range c.keywords {
		if strings.Contains(lowered, keyword) {
			labels = append(labels, keyword)
		}
	}
	return Result{Flagged: len(labels) > 0, Labels: labels}, nil
}
