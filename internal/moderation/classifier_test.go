package moderation

import (
	"context"
	"testing"
)

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier([]string{"nsfw", "adult", "explicit", "18+"})

	tests := []struct {
		name    string
		text    string
		flagged bool
		labels  int
	}{
		{name: "clean text", text: "a wholesome cooking tutorial", flagged: false},
		{name: "direct match", text: "this is nsfw content", flagged: true, labels: 1},
		{name: "case insensitive", text: "NSFW warning", flagged: true, labels: 1},
		{name: "substring match", text: "adulterated samples", flagged: true, labels: 1},
		{name: "multiple matches", text: "explicit adult material", flagged: true, labels: 2},
		{name: "symbol keyword", text: "strictly 18+ only", flagged: true, labels: 1},
		{name: "empty text", text: "", flagged: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := classifier.Classify(context.Background(), tc.text)
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}
			if result.Flagged != tc.flagged {
				t.Fatalf("flagged: got %v, want %v", result.Flagged, tc.flagged)
			}
			if len(result.Labels) != tc.labels {
				t.Fatalf("labels: got %v, want %d", result.Labels, tc.labels)
			}
		})
	}
}

func TestKeywordClassifierBlankKeywords(t *testing.T) {
	classifier := NewKeywordClassifier([]string{" ", "", "spam"})

	result, err := classifier.Classify(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if result.Flagged {
		t.Fatal("blank keywords must not match everything")
	}

	result, _ = classifier.Classify(context.Background(), "buy spam now")
	if !result.Flagged {
		t.Fatal("surviving keyword should still match")
	}
}
