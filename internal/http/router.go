package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/config"
	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/http/handlers"
	"github.com/mindgarden/backend/internal/http/middleware"
	"github.com/mindgarden/backend/internal/service"

	_ "github.com/mindgarden/backend/docs"
)

func Router(cfg config.Config, store *db.Store, orchestrator *service.Orchestrator, responder analysis.Responder, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Id", "X-Reviewer-Key", "X-Reviewer-Id", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:        store,
		Orchestrator: orchestrator,
		Responder:    responder,
		Validator:    validator.New(),
		Logger:       logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/events/mood", h.MoodEvent)
		api.POST("/chat/message", h.ChatMessage)
	}

	triage := api.Group("/triage")
	triage.Use(middleware.ReviewerKey(cfg.ReviewerKey))
	{
		triage.GET("/escalations", h.EscalationsList)
		triage.GET("/escalations/:id", h.EscalationDetails)
		triage.POST("/escalations", h.EscalationCreate)
		triage.POST("/escalations/:id/assign", h.EscalationAssign)
		triage.POST("/escalations/:id/actions", h.EscalationRecordAction)
		triage.POST("/escalations/:id/status", h.EscalationSetStatus)
		triage.POST("/escalations/:id/priority", h.EscalationSetPriority)
		triage.GET("/stats", h.TriageStats)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
