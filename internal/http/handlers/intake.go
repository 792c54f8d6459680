package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/models"
)

const userIDHeader = "X-User-Id"

type MoodEventRequest struct {
	MoodID    string `json:"mood_id" validate:"required"`
	Mood      string `json:"mood" validate:"required"`
	Intensity int    `json:"intensity" validate:"required,min=1,max=10"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

// @Summary Mood producer event
// @Description Called by the mood-logging service after a mood entry is saved. Escalation is best-effort and invisible to the student.
// @Tags intake
// @Accept json
// @Produce json
// @Success 202 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/events/mood [post]
func (h *Handler) MoodEvent(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "X-User-Id header is required", nil)
		return
	}

	var req MoodEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	category := models.MoodCategory(req.Mood)
	if !category.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown mood category", req.Mood)
		return
	}

	// Fire-and-log: the mood save already succeeded upstream, so the
	// response never reflects escalation problems or outcomes.
	h.Orchestrator.HandleMoodEvent(c.Request.Context(), userID, req.MoodID, category, req.Intensity, req.Notes)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// @Summary Chat message
// @Description Returns a supportive reply. Risk screening of the message happens as a side effect.
// @Tags intake
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/chat/message [post]
func (h *Handler) ChatMessage(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "X-User-Id header is required", nil)
		return
	}

	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message is required", nil)
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	h.Orchestrator.HandleChatEvent(c.Request.Context(), userID, req.Message)

	reply, err := h.Responder.Reply(c.Request.Context(), req.Message)
	if err != nil {
		h.Logger.Error().Err(err).Msg("chat responder failed")
		fallback := analysis.RuleResponder{Detector: analysis.NewDetector()}
		reply, _ = fallback.Reply(c.Request.Context(), req.Message)
	}

	c.JSON(http.StatusOK, gin.H{
		"response":     reply.Message,
		"is_emergency": reply.IsEmergency,
		"resources":    reply.Resources,
	})
}
