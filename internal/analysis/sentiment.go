package analysis

import (
	"context"
	"strings"

	"github.com/mindgarden/backend/internal/models"
)

// Provider scores free text for polarity. Implementations must always return
// a usable result for any input; the rule-based provider never errors, the
// HTTP-backed one may.
type Provider interface {
	Analyze(ctx context.Context, text string) (models.SentimentResult, error)
}

var positiveWords = wordSet(
	"happy", "good", "great", "excellent", "amazing", "wonderful",
	"fantastic", "love", "joy", "excited",
)

var negativeWords = wordSet(
	"sad", "bad", "terrible", "awful", "hate", "angry",
	"depressed", "anxious", "worried", "stressed",
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// RuleProvider is the deterministic lexicon scorer. It is the fallback for
// the HTTP-backed provider and the default when no backend is configured.
type RuleProvider struct{}

func (RuleProvider) Analyze(_ context.Context, text string) (models.SentimentResult, error) {
	return Score(text), nil
}

// Score tokenizes on whitespace and counts matches against the fixed word
// lists. Empty or whitespace-only text yields the neutral zero result.
func Score(text string) models.SentimentResult {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return models.SentimentResult{Label: models.SentimentNeutral}
	}

	var positive, negative int
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			positive++
		}
		if _, ok := negativeWords[tok]; ok {
			negative++
		}
	}

	score := float64(positive-negative) / float64(len(tokens))
	label := models.SentimentNeutral
	if score > 0.1 {
		label = models.SentimentPositive
	} else if score < -0.1 {
		label = models.SentimentNegative
	}

	magnitude := score
	if magnitude < 0 {
		magnitude = -magnitude
	}

	return models.SentimentResult{Score: score, Magnitude: magnitude, Label: label}
}
