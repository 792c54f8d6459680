package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/http/middleware"
	"github.com/mindgarden/backend/internal/models"
)

// @Summary List escalations
// @Tags triage
// @Produce json
// @Param status query string false "Status filter"
// @Param severity query string false "Severity filter"
// @Param assigned_to query string false "Assignee filter"
// @Success 200 {object} map[string]any
// @Router /api/triage/escalations [get]
func (h *Handler) EscalationsList(c *gin.Context) {
	filter := db.ListFilter{
		Status:     models.Status(strings.TrimSpace(c.Query("status"))),
		Severity:   models.Severity(strings.TrimSpace(c.Query("severity"))),
		AssignedTo: strings.TrimSpace(c.Query("assigned_to")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status", string(filter.Status))
		return
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown severity", string(filter.Severity))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.Store.ListCases(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *Handler) EscalationDetails(c *gin.Context) {
	result, err := h.Store.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type ManualEscalationRequest struct {
	SubjectUserID string `json:"subject_user_id" validate:"required"`
	Severity      string `json:"severity" validate:"required"`
	Description   string `json:"description" validate:"required"`
	MoodID        string `json:"mood_id"`
	PostID        string `json:"post_id"`
}

// @Summary Create manual escalation
// @Tags triage
// @Accept json
// @Produce json
// @Success 201 {object} models.EscalationCase
// @Failure 400 {object} map[string]any
// @Router /api/triage/escalations [post]
func (h *Handler) EscalationCreate(c *gin.Context) {
	var req ManualEscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	severity := models.Severity(req.Severity)
	if !severity.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown severity", req.Severity)
		return
	}

	result, err := h.Orchestrator.HandleManualEscalation(c.Request.Context(), req.SubjectUserID, severity, req.Description, models.TriggerEvidence{
		MoodID: req.MoodID,
		PostID: req.PostID,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type AssignRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

// @Summary Assign escalation
// @Tags triage
// @Accept json
// @Produce json
// @Success 200 {object} models.EscalationCase
// @Failure 404 {object} map[string]any
// @Router /api/triage/escalations/{id}/assign [post]
func (h *Handler) EscalationAssign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}

	mutation := db.CaseMutation{}
	if strings.TrimSpace(req.ReviewerID) == "" {
		mutation.ClearAssignee = true
	} else {
		mutation.AssignedTo = &req.ReviewerID
	}

	result, err := h.Store.UpdateCase(c.Request.Context(), c.Param("id"), mutation)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type RecordActionRequest struct {
	ActionType  string `json:"action_type" validate:"required"`
	Description string `json:"description" validate:"required"`
	Notes       string `json:"notes"`
}

// @Summary Record triage action
// @Tags triage
// @Accept json
// @Produce json
// @Success 200 {object} models.EscalationCase
// @Failure 400 {object} map[string]any
// @Router /api/triage/escalations/{id}/actions [post]
func (h *Handler) EscalationRecordAction(c *gin.Context) {
	performedBy := middleware.ReviewerID(c)
	if performedBy == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "X-Reviewer-Id header is required", nil)
		return
	}

	var req RecordActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	actionType := models.ActionType(req.ActionType)
	if !actionType.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown action type", req.ActionType)
		return
	}

	result, err := h.Store.UpdateCase(c.Request.Context(), c.Param("id"), db.CaseMutation{
		AppendAction: &models.Action{
			Type:        actionType,
			Description: req.Description,
			PerformedBy: performedBy,
			Notes:       req.Notes,
		},
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type SetStatusRequest struct {
	Status           string     `json:"status" validate:"required"`
	Notes            string     `json:"notes"`
	Outcome          string     `json:"outcome"`
	FollowUpRequired *bool      `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
}

// @Summary Change escalation status
// @Description Resolving requires an outcome and records the resolution atomically with the status change. Every transition is logged as an action.
// @Tags triage
// @Accept json
// @Produce json
// @Success 200 {object} models.EscalationCase
// @Failure 400 {object} map[string]any
// @Router /api/triage/escalations/{id}/status [post]
func (h *Handler) EscalationSetStatus(c *gin.Context) {
	performedBy := middleware.ReviewerID(c)
	if performedBy == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "X-Reviewer-Id header is required", nil)
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	status := models.Status(req.Status)
	if !status.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status", req.Status)
		return
	}

	mutation := db.CaseMutation{
		Status:           &status,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
		AppendAction: &models.Action{
			Type:        models.ActionFollowUp,
			Description: "status changed to " + req.Status,
			PerformedBy: performedBy,
			Notes:       req.Notes,
		},
	}
	if status == models.StatusResolved {
		if strings.TrimSpace(req.Outcome) == "" {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Outcome is required when resolving", nil)
			return
		}
		mutation.Resolution = &models.Resolution{
			Outcome:    req.Outcome,
			Notes:      req.Notes,
			ResolvedBy: performedBy,
			ResolvedAt: time.Now().UTC(),
		}
	}

	result, err := h.Store.UpdateCase(c.Request.Context(), c.Param("id"), mutation)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type SetPriorityRequest struct {
	Priority int `json:"priority" validate:"required,min=1,max=5"`
}

// @Summary Set escalation priority
// @Tags triage
// @Accept json
// @Produce json
// @Success 200 {object} models.EscalationCase
// @Failure 400 {object} map[string]any
// @Router /api/triage/escalations/{id}/priority [post]
func (h *Handler) EscalationSetPriority(c *gin.Context) {
	var req SetPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Priority must be between 1 and 5", err.Error())
		return
	}

	result, err := h.Store.UpdateCase(c.Request.Context(), c.Param("id"), db.CaseMutation{Priority: &req.Priority})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Escalation counts
// @Tags triage
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/triage/stats [get]
func (h *Handler) TriageStats(c *gin.Context) {
	byStatus, err := h.Store.CountsByStatus(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	bySeverity, err := h.Store.CountsBySeverity(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"by_status":   byStatus,
		"by_severity": bySeverity,
	})
}
