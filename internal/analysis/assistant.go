package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const supportSystemPrompt = `You are a supportive mental health chatbot for college students. ` +
	`Be warm, empathetic, and non-judgmental. Validate feelings, suggest healthy coping strategies, ` +
	`and encourage professional help when appropriate. Never provide medical diagnoses or treatment. ` +
	`Keep responses concise but meaningful.`

// OpenAICompatResponder asks any OpenAI-compatible chat-completions endpoint
// for a reply. Emergency language is answered locally and never forwarded to
// the remote model.
type OpenAICompatResponder struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Detector  Detector
}

var (
	replyCacheMu sync.Mutex
	replyCache   = map[string]replyCacheEntry{}
	replyTTL     = 60 * time.Second
)

type replyCacheEntry struct {
	value string
	exp   time.Time
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

func (a OpenAICompatResponder) Reply(ctx context.Context, message string) (ChatReply, error) {
	if a.Detector.DetectEmergency(message) {
		return emergencyReply(), nil
	}

	if strings.TrimSpace(a.BaseURL) == "" {
		return ChatReply{}, fmt.Errorf("ASSISTANT_BASE_URL is not set")
	}
	if strings.TrimSpace(a.Model) == "" {
		return ChatReply{}, fmt.Errorf("ASSISTANT_MODEL is not set")
	}

	if v, ok := replyCacheGet(message); ok {
		return ChatReply{Message: v}, nil
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	payload := struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
		Messages    []msg   `json:"messages"`
	}{
		Model:       a.Model,
		Temperature: 0.7,
		MaxTokens:   a.MaxTokens,
		Messages: []msg{
			{Role: "system", Content: supportSystemPrompt},
			{Role: "user", Content: message},
		},
	}

	b, _ := json.Marshal(payload)
	url := strings.TrimRight(a.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return ChatReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(a.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	timeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ChatReply{}, fmt.Errorf("assistant request timed out")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ChatReply{}, fmt.Errorf("assistant request timed out")
		}
		return ChatReply{}, fmt.Errorf("assistant request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if resp.StatusCode == http.StatusTooManyRequests {
			if d := extractRetryAfter(errBody); d > 0 {
				return ChatReply{}, RateLimitError{RetryAfter: d}
			}
			return ChatReply{}, RateLimitError{}
		}
		return ChatReply{}, fmt.Errorf("assistant http error: %s: %v", resp.Status, errBody)
	}

	var res struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return ChatReply{}, err
	}
	if len(res.Choices) == 0 {
		return ChatReply{}, fmt.Errorf("empty assistant response")
	}
	answer := res.Choices[0].Message.Content
	replyCacheSet(message, answer)
	return ChatReply{Message: answer}, nil
}

func replyCacheGet(key string) (string, bool) {
	replyCacheMu.Lock()
	defer replyCacheMu.Unlock()
	if e, ok := replyCache[key]; ok {
		if time.Now().Before(e.exp) {
			return e.value, true
		}
		delete(replyCache, key)
	}
	return "", false
}

func replyCacheSet(key, value string) {
	replyCacheMu.Lock()
	defer replyCacheMu.Unlock()
	replyCache[key] = replyCacheEntry{
		value: value,
		exp:   time.Now().Add(replyTTL),
	}
}

func extractRetryAfter(errBody map[string]any) time.Duration {
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["@type"].(string); ok && strings.Contains(t, "RetryInfo") {
			if s, ok := m["retryDelay"].(string); ok {
				if dur, err := time.ParseDuration(s); err == nil {
					return dur
				}
			}
		}
	}
	return 0
}
