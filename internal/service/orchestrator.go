package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mindgarden/backend/internal/classify"
	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/models"
)

// CaseStore is the creation surface the orchestrator needs from the store.
type CaseStore interface {
	CreateCase(ctx context.Context, p db.CreateCaseParams) (models.EscalationCase, error)
}

// Orchestrator turns qualifying producer events into escalation cases.
//
// Producer-path failures are logged and swallowed: a failed escalation write
// must never block the mood save or chat message that triggered it. Explicit
// manual escalations propagate errors instead.
type Orchestrator struct {
	Store      CaseStore
	Classifier classify.Classifier
	Logger     zerolog.Logger
}

const chatExcerptLimit = 500

// HandleMoodEvent classifies a saved mood entry and creates a case when
// warranted. Returns nil when no escalation was needed or when the write
// failed.
func (o *Orchestrator) HandleMoodEvent(ctx context.Context, userID, moodID string, category models.MoodCategory, intensity int, notes string) *models.EscalationCase {
	result := o.Classifier.Classify(ctx, classify.Input{
		FreeText: notes,
		Mood:     &classify.MoodSignal{Category: category, Intensity: intensity},
	})
	if !result.Warranted {
		return nil
	}

	evidence := models.TriggerEvidence{
		MoodID:   moodID,
		Keywords: result.Keywords,
	}
	if result.Sentiment != nil {
		score := result.Sentiment.Score
		evidence.SentimentScore = &score
	}

	c, err := o.createCase(ctx, userID, models.SourceMood, result, evidence)
	if err != nil {
		o.Logger.Error().Err(err).
			Str("user_id", userID).
			Str("mood_id", moodID).
			Msg("mood escalation write failed")
		return nil
	}
	return c
}

// HandleChatEvent classifies a chat message and creates a case when
// warranted. Same fire-and-log convention as the mood path.
func (o *Orchestrator) HandleChatEvent(ctx context.Context, userID, message string) *models.EscalationCase {
	result := o.Classifier.Classify(ctx, classify.Input{FreeText: message})
	if !result.Warranted {
		return nil
	}

	evidence := models.TriggerEvidence{
		ChatExcerpt: excerpt(message, chatExcerptLimit),
		Keywords:    result.Keywords,
	}
	if result.Sentiment != nil {
		score := result.Sentiment.Score
		evidence.SentimentScore = &score
	}

	c, err := o.createCase(ctx, userID, models.SourceChat, result, evidence)
	if err != nil {
		o.Logger.Error().Err(err).
			Str("user_id", userID).
			Msg("chat escalation write failed")
		return nil
	}
	return c
}

// HandleManualEscalation creates a reviewer-initiated case. Unlike the
// producer paths, store errors are returned to the caller.
func (o *Orchestrator) HandleManualEscalation(ctx context.Context, subjectUserID string, severity models.Severity, description string, evidence models.TriggerEvidence) (models.EscalationCase, error) {
	return o.Store.CreateCase(ctx, db.CreateCaseParams{
		SubjectUserID:   subjectUserID,
		SourceType:      models.SourceManual,
		Severity:        severity,
		Description:     description,
		TriggerEvidence: evidence,
	})
}

func (o *Orchestrator) createCase(ctx context.Context, userID string, source models.SourceType, result classify.Result, evidence models.TriggerEvidence) (*models.EscalationCase, error) {
	c, err := o.Store.CreateCase(ctx, db.CreateCaseParams{
		SubjectUserID:   userID,
		SourceType:      source,
		Severity:        result.Severity,
		Description:     fmt.Sprintf("%s (severity %s)", result.Reason, result.Severity),
		TriggerEvidence: evidence,
	})
	if err != nil {
		return nil, err
	}
	o.Logger.Info().
		Str("case_id", c.ID).
		Str("user_id", userID).
		Str("source", string(source)).
		Str("severity", string(result.Severity)).
		Msg("escalation created")
	return &c, nil
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
