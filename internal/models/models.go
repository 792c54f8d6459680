package models

import "time"

type SourceType string

const (
	SourceMood   SourceType = "mood"
	SourceChat   SourceType = "chat"
	SourcePost   SourceType = "post"
	SourceManual SourceType = "manual"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceMood, SourceChat, SourcePost, SourceManual:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen          Status = "open"
	StatusInProgress    Status = "in_progress"
	StatusResolved      Status = "resolved"
	StatusFalsePositive Status = "false_positive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusFalsePositive:
		return true
	}
	return false
}

type ActionType string

const (
	ActionContacted          ActionType = "contacted"
	ActionBookingCreated     ActionType = "booking_created"
	ActionResourcesShared    ActionType = "resources_shared"
	ActionEmergencyContacted ActionType = "emergency_contacted"
	ActionFollowUp           ActionType = "follow_up"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionContacted, ActionBookingCreated, ActionResourcesShared, ActionEmergencyContacted, ActionFollowUp:
		return true
	}
	return false
}

type MoodCategory string

const (
	MoodVeryHappy MoodCategory = "very_happy"
	MoodHappy     MoodCategory = "happy"
	MoodNeutral   MoodCategory = "neutral"
	MoodSad       MoodCategory = "sad"
	MoodVerySad   MoodCategory = "very_sad"
	MoodAnxious   MoodCategory = "anxious"
	MoodStressed  MoodCategory = "stressed"
	MoodAngry     MoodCategory = "angry"
)

func (m MoodCategory) Valid() bool {
	switch m {
	case MoodVeryHappy, MoodHappy, MoodNeutral, MoodSad, MoodVerySad, MoodAnxious, MoodStressed, MoodAngry:
		return true
	}
	return false
}

// NegativeAffect reports whether the category counts toward intensity-based
// escalation.
func (m MoodCategory) NegativeAffect() bool {
	switch m {
	case MoodVerySad, MoodAnxious, MoodStressed:
		return true
	}
	return false
}

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

type SentimentResult struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
	Label     string  `json:"label"`
}

// TriggerEvidence captures what caused a case to be flagged. Which fields are
// populated depends on the source: mood cases reference the saved mood entry,
// chat cases carry the triggering excerpt and matched keywords. Immutable
// after creation.
type TriggerEvidence struct {
	MoodID         string   `json:"mood_id,omitempty"`
	PostID         string   `json:"post_id,omitempty"`
	ChatExcerpt    string   `json:"chat_excerpt,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
}

type Action struct {
	Type        ActionType `json:"type"`
	Description string     `json:"description"`
	PerformedBy string     `json:"performed_by"`
	PerformedAt time.Time  `json:"performed_at"`
	Notes       string     `json:"notes,omitempty"`
}

type Resolution struct {
	Outcome    string    `json:"outcome"`
	Notes      string    `json:"notes,omitempty"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
}

type EscalationCase struct {
	ID               string          `json:"id"`
	SubjectUserID    string          `json:"subject_user_id"`
	SourceType       SourceType      `json:"source_type"`
	Severity         Severity        `json:"severity"`
	TriggerEvidence  TriggerEvidence `json:"trigger_evidence"`
	Description      string          `json:"description"`
	Status           Status          `json:"status"`
	AssignedTo       *string         `json:"assigned_to"`
	Actions          []Action        `json:"actions"`
	Resolution       *Resolution     `json:"resolution,omitempty"`
	Priority         int             `json:"priority"`
	FollowUpRequired bool            `json:"follow_up_required"`
	FollowUpDate     *time.Time      `json:"follow_up_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
