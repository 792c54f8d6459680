package classify

import (
	"context"
	"strings"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/models"
)

type MoodSignal struct {
	Category  models.MoodCategory
	Intensity int
}

type Input struct {
	FreeText string
	Mood     *MoodSignal
}

// Result carries the verdict plus the analysis artifacts that produced it,
// so callers can build trigger evidence without re-running detection.
type Result struct {
	Warranted bool
	Severity  models.Severity
	Reason    string
	Sentiment *models.SentimentResult
	Keywords  []string
}

const (
	ReasonEmergencyKeywords     = "emergency keywords detected"
	ReasonHighNegativeSentiment = "high negative sentiment detected"
	ReasonHighIntensityMood     = "high intensity negative mood"
	ReasonNegativeSentiment     = "negative sentiment detected"
)

type Classifier struct {
	Sentiment analysis.Provider
	Detector  analysis.Detector
}

// Classify applies the escalation rules in precedence order. Explicit crisis
// language always dominates the magnitude heuristics; a high-intensity
// negative mood escalates even with no free text at all.
func (c Classifier) Classify(ctx context.Context, in Input) Result {
	var sentiment *models.SentimentResult

	text := strings.TrimSpace(in.FreeText)
	if text != "" {
		if c.Detector.DetectEmergency(text) {
			if s := c.analyze(ctx, text); s != nil {
				sentiment = s
			}
			return Result{
				Warranted: true,
				Severity:  models.SeverityCritical,
				Reason:    ReasonEmergencyKeywords,
				Sentiment: sentiment,
				Keywords:  c.Detector.MatchedKeywords(text),
			}
		}

		sentiment = c.analyze(ctx, text)
		if sentiment.Label == models.SentimentNegative && sentiment.Magnitude > 0.7 {
			severity := models.SeverityMedium
			if sentiment.Magnitude > 0.8 {
				severity = models.SeverityHigh
			}
			return Result{
				Warranted: true,
				Severity:  severity,
				Reason:    ReasonHighNegativeSentiment,
				Sentiment: sentiment,
			}
		}
	}

	if in.Mood != nil && in.Mood.Category.NegativeAffect() && in.Mood.Intensity >= 8 {
		return Result{
			Warranted: true,
			Severity:  models.SeverityMedium,
			Reason:    ReasonHighIntensityMood,
			Sentiment: sentiment,
		}
	}

	if sentiment != nil && sentiment.Label == models.SentimentNegative && sentiment.Magnitude > 0.5 {
		return Result{
			Warranted: true,
			Severity:  models.SeverityMedium,
			Reason:    ReasonNegativeSentiment,
			Sentiment: sentiment,
		}
	}

	return Result{Sentiment: sentiment}
}

// analyze never fails: a provider error drops to the deterministic scorer.
func (c Classifier) analyze(ctx context.Context, text string) *models.SentimentResult {
	res, err := c.Sentiment.Analyze(ctx, text)
	if err != nil {
		res = analysis.Score(text)
	}
	return &res
}
