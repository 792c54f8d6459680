package analysis

import (
	"context"
	"strings"
)

type ChatReply struct {
	Message     string            `json:"message"`
	IsEmergency bool              `json:"is_emergency"`
	Resources   map[string]string `json:"resources,omitempty"`
}

// Responder generates the supportive reply for a chat message. The
// rule-based responder always succeeds; the OpenAI-compatible one may fail
// and is wrapped with a fallback at wiring time.
type Responder interface {
	Reply(ctx context.Context, message string) (ChatReply, error)
}

var crisisResources = map[string]string{
	"emergency":   "911",
	"hotline":     "988",
	"crisis_text": "Text HOME to 741741",
	"chat":        "https://suicidepreventionlifeline.org/chat/",
}

func emergencyReply() ChatReply {
	return ChatReply{
		Message: "I'm very concerned about what you've shared. Your safety is the most important thing right now. " +
			"Please reach out for immediate help: Emergency Services 911, Suicide Prevention Lifeline 988, " +
			"or text HOME to 741741. You are not alone, and there are people who want to help you through this.",
		IsEmergency: true,
		Resources:   crisisResources,
	}
}

// RuleResponder keys canned supportive replies off topic words in the
// message. Emergency language short-circuits everything else.
type RuleResponder struct {
	Detector Detector
}

func (r RuleResponder) Reply(_ context.Context, message string) (ChatReply, error) {
	if r.Detector.DetectEmergency(message) {
		return emergencyReply(), nil
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "anxious", "anxiety", "worried"):
		return ChatReply{Message: "I understand you're feeling anxious. That's a very common experience, especially for students. " +
			"Try the 4-7-8 breathing technique, or ground yourself by naming five things you can see. " +
			"Would you like to talk about what's making you feel anxious?"}, nil
	case containsAny(lower, "depressed", "depression", "sad"):
		return ChatReply{Message: "I hear that you're going through a difficult time. Depression can make everything feel overwhelming, " +
			"but you're not alone in this. Try to keep small daily routines and stay connected with people you trust. " +
			"If these feelings persist, I'd encourage you to speak with a counselor."}, nil
	case containsAny(lower, "stressed", "stress", "overwhelmed"):
		return ChatReply{Message: "Stress can feel overwhelming, especially with academic pressure. Breaking large tasks into smaller steps " +
			"and taking regular breaks can help. What's contributing most to your stress right now?"}, nil
	case containsAny(lower, "exam", "study", "grades"):
		return ChatReply{Message: "Academic pressure is something many students struggle with. A study schedule, sleep, and reaching out to " +
			"professors or tutoring services all help. Remember, your worth isn't determined by your grades."}, nil
	}

	return ChatReply{Message: "Thank you for sharing that with me. I'm here to listen and support you. " +
		"Seeking support is a sign of strength, not weakness. Is there anything specific you'd like to talk about?"}, nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FallbackResponder recovers to the rule-based replies when the external
// assistant errors or times out.
type FallbackResponder struct {
	Primary  Responder
	Fallback RuleResponder
}

func (f FallbackResponder) Reply(ctx context.Context, message string) (ChatReply, error) {
	reply, err := f.Primary.Reply(ctx, message)
	if err != nil {
		return f.Fallback.Reply(ctx, message)
	}
	return reply, nil
}
