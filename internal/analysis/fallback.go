package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mindgarden/backend/internal/models"
)

// FallbackProvider tries the primary provider and recovers to the rule-based
// scorer on any error or timeout. It never fails: a broken optional backend
// must not become a reason classification fails.
type FallbackProvider struct {
	Primary Provider
	Logger  zerolog.Logger
}

func (p FallbackProvider) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	res, err := p.Primary.Analyze(ctx, text)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("sentiment backend failed, using rule-based scorer")
		return Score(text), nil
	}
	return res, nil
}
