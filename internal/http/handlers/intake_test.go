package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/classify"
	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/models"
	"github.com/mindgarden/backend/internal/service"
)

type fakeCaseStore struct {
	created []db.CreateCaseParams
}

func (f *fakeCaseStore) CreateCase(_ context.Context, p db.CreateCaseParams) (models.EscalationCase, error) {
	f.created = append(f.created, p)
	return models.EscalationCase{
		ID:            fmt.Sprintf("case-%d", len(f.created)),
		SubjectUserID: p.SubjectUserID,
		SourceType:    p.SourceType,
		Severity:      p.Severity,
		Status:        models.StatusOpen,
	}, nil
}

func newTestHandler(store service.CaseStore) *Handler {
	detector := analysis.NewDetector()
	return &Handler{
		Orchestrator: &service.Orchestrator{
			Store:      store,
			Classifier: classify.Classifier{Sentiment: analysis.RuleProvider{}, Detector: detector},
			Logger:     zerolog.Nop(),
		},
		Responder: analysis.RuleResponder{Detector: detector},
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatMessageEmergency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeCaseStore{}
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/api/chat/message", h.ChatMessage)

	w := postJSON(t, r, "/api/chat/message",
		gin.H{"message": "I want to kill myself"},
		map[string]string{"X-User-Id": "user-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Response    string            `json:"response"`
		IsEmergency bool              `json:"is_emergency"`
		Resources   map[string]string `json:"resources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsEmergency || resp.Resources["hotline"] != "988" {
		t.Fatalf("expected emergency reply with resources, got %+v", resp)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected one escalation, got %d", len(store.created))
	}
	if store.created[0].Severity != models.SeverityCritical || store.created[0].SourceType != models.SourceChat {
		t.Fatalf("unexpected escalation %+v", store.created[0])
	}
}

func TestChatMessageRequiresUserAndMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(&fakeCaseStore{})

	r := gin.New()
	r.POST("/api/chat/message", h.ChatMessage)

	w := postJSON(t, r, "/api/chat/message", gin.H{"message": "hi"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user header, got %d", w.Code)
	}

	w = postJSON(t, r, "/api/chat/message", gin.H{"message": "   "}, map[string]string{"X-User-Id": "u1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", w.Code)
	}
}

func TestMoodEventEscalates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeCaseStore{}
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/api/events/mood", h.MoodEvent)

	w := postJSON(t, r, "/api/events/mood",
		gin.H{"mood_id": "m-1", "mood": "very_sad", "intensity": 9},
		map[string]string{"X-User-Id": "user-1"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.created) != 1 || store.created[0].SourceType != models.SourceMood {
		t.Fatalf("expected one mood escalation, got %+v", store.created)
	}
	// The producer response must not leak escalation state to the caller.
	if bytes.Contains(w.Body.Bytes(), []byte("escalat")) {
		t.Fatalf("response leaks escalation details: %s", w.Body.String())
	}
}

func TestMoodEventValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeCaseStore{}
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/api/events/mood", h.MoodEvent)

	w := postJSON(t, r, "/api/events/mood",
		gin.H{"mood_id": "m-1", "mood": "ecstatic", "intensity": 5},
		map[string]string{"X-User-Id": "user-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mood, got %d", w.Code)
	}

	w = postJSON(t, r, "/api/events/mood",
		gin.H{"mood_id": "m-1", "mood": "happy", "intensity": 11},
		map[string]string{"X-User-Id": "user-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range intensity, got %d", w.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no escalations, got %d", len(store.created))
	}
}

func TestMoodEventNonEscalating(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeCaseStore{}
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/api/events/mood", h.MoodEvent)

	w := postJSON(t, r, "/api/events/mood",
		gin.H{"mood_id": "m-2", "mood": "happy", "intensity": 3, "notes": "I feel happy and great today"},
		map[string]string{"X-User-Id": "user-1"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no escalation, got %+v", store.created)
	}
}
