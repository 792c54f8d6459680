package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mindgarden/backend/internal/models"
)

// HTTPProvider calls an external sentiment backend. Calls are bounded by
// Timeout so a slow backend can never stall a producer event.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
	Label     string  `json:"label"`
}

func (p HTTPProvider) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	if p.Client == nil {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		p.Client = &http.Client{Timeout: timeout}
	}

	b, _ := json.Marshal(analyzeRequest{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/analyze", bytes.NewBuffer(b))
	if err != nil {
		return models.SentimentResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return models.SentimentResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.SentimentResult{}, errors.New("sentiment service error")
	}

	var r analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.SentimentResult{}, err
	}

	switch r.Label {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		return models.SentimentResult{}, errors.New("sentiment service returned unknown label")
	}

	return models.SentimentResult{Score: r.Score, Magnitude: r.Magnitude, Label: r.Label}, nil
}
