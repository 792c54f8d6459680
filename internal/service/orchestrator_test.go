package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/classify"
	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/models"
)

type fakeStore struct {
	created []db.CreateCaseParams
	err     error
}

func (f *fakeStore) CreateCase(_ context.Context, p db.CreateCaseParams) (models.EscalationCase, error) {
	if f.err != nil {
		return models.EscalationCase{}, f.err
	}
	f.created = append(f.created, p)
	return models.EscalationCase{
		ID:              fmt.Sprintf("case-%d", len(f.created)),
		SubjectUserID:   p.SubjectUserID,
		SourceType:      p.SourceType,
		Severity:        p.Severity,
		TriggerEvidence: p.TriggerEvidence,
		Description:     p.Description,
		Status:          models.StatusOpen,
		Priority:        3,
	}, nil
}

func newOrchestrator(store CaseStore) *Orchestrator {
	return &Orchestrator{
		Store: store,
		Classifier: classify.Classifier{
			Sentiment: analysis.RuleProvider{},
			Detector:  analysis.NewDetector(),
		},
		Logger: zerolog.Nop(),
	}
}

func TestHandleMoodEventHighIntensity(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	c := o.HandleMoodEvent(context.Background(), "user-1", "mood-42", models.MoodVerySad, 9, "")
	if c == nil {
		t.Fatalf("expected a case to be created")
	}
	if c.SourceType != models.SourceMood || c.Severity != models.SeverityMedium {
		t.Fatalf("unexpected case %+v", c)
	}
	if !strings.Contains(c.Description, "high intensity negative mood") {
		t.Fatalf("unexpected description %q", c.Description)
	}
	if c.TriggerEvidence.MoodID != "mood-42" {
		t.Fatalf("expected mood reference in evidence, got %+v", c.TriggerEvidence)
	}
	if c.Status != models.StatusOpen {
		t.Fatalf("expected open status, got %s", c.Status)
	}
}

func TestHandleMoodEventNotWarranted(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	if c := o.HandleMoodEvent(context.Background(), "user-1", "mood-1", models.MoodHappy, 3, "I feel happy and great today"); c != nil {
		t.Fatalf("expected no case, got %+v", c)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no store writes, got %d", len(store.created))
	}
}

func TestHandleChatEventEmergency(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	c := o.HandleChatEvent(context.Background(), "user-2", "I want to kill myself")
	if c == nil {
		t.Fatalf("expected a case to be created")
	}
	if c.SourceType != models.SourceChat || c.Severity != models.SeverityCritical {
		t.Fatalf("unexpected case %+v", c)
	}
	ev := c.TriggerEvidence
	if ev.ChatExcerpt != "I want to kill myself" {
		t.Fatalf("expected chat excerpt, got %+v", ev)
	}
	if len(ev.Keywords) == 0 || ev.Keywords[0] != "kill myself" {
		t.Fatalf("expected matched keywords, got %v", ev.Keywords)
	}
	if ev.SentimentScore == nil {
		t.Fatalf("expected sentiment score in evidence")
	}
}

func TestHandleChatEventTruncatesExcerpt(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	long := "suicide " + strings.Repeat("x", 2000)
	c := o.HandleChatEvent(context.Background(), "user-3", long)
	if c == nil {
		t.Fatalf("expected a case to be created")
	}
	if got := len([]rune(c.TriggerEvidence.ChatExcerpt)); got != chatExcerptLimit {
		t.Fatalf("expected excerpt truncated to %d runes, got %d", chatExcerptLimit, got)
	}
}

func TestProducerPathSwallowsStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	o := newOrchestrator(store)

	if c := o.HandleMoodEvent(context.Background(), "user-1", "mood-1", models.MoodVerySad, 9, ""); c != nil {
		t.Fatalf("expected nil on store failure, got %+v", c)
	}
	if c := o.HandleChatEvent(context.Background(), "user-1", "I want to kill myself"); c != nil {
		t.Fatalf("expected nil on store failure, got %+v", c)
	}
}

func TestManualEscalationPropagatesErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	o := newOrchestrator(store)

	_, err := o.HandleManualEscalation(context.Background(), "user-9", models.SeverityHigh, "reported by counselor", models.TriggerEvidence{})
	if err == nil {
		t.Fatalf("expected manual escalation to surface the store error")
	}
}

func TestManualEscalationCreatesManualCase(t *testing.T) {
	store := &fakeStore{}
	o := newOrchestrator(store)

	c, err := o.HandleManualEscalation(context.Background(), "user-9", models.SeverityHigh, "reported by counselor", models.TriggerEvidence{PostID: "post-7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SourceType != models.SourceManual || c.TriggerEvidence.PostID != "post-7" {
		t.Fatalf("unexpected case %+v", c)
	}
}
