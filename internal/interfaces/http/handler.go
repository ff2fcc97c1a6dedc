package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"project_atendimento/internal/adapters"
	"project_atendimento/internal/entities"
	"project_atendimento/internal/usecases"

	"github.com/gin-gonic/gin"
)

const (
	maxWebhookBody = 1 << 20
	outcomeKey     = "outcome"
)

// WebhookProcessor is the pipeline entry point the webhook routes call
type WebhookProcessor interface {
	Handle(ctx context.Context, channel entities.Channel, d adapters.Delivery) usecases.Result
}

type Handler struct {
	pipeline WebhookProcessor
	logger   *slog.Logger
}

func NewHandler(pipeline WebhookProcessor, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

type RouterDeps struct {
	Pipeline    WebhookProcessor
	Auth        *usecases.AuthUsecase
	Dashboard   *usecases.DashboardUsecase
	Stats       func() map[string]interface{}
	JWTSecret   string
	CORSOrigins []string
	Logger      *slog.Logger
}

func SetupRoutes(r *gin.Engine, deps RouterDeps) {
	h := NewHandler(deps.Pipeline, deps.Logger)
	adminHandler := NewAdminHandler(deps.Auth, deps.Dashboard, deps.Stats)
	middleware := NewMiddleware(deps.JWTSecret)

	r.Use(RequestLogger(deps.Logger))
	r.Use(Recovery(deps.Logger))
	r.Use(SecurityHeaders())
	// global so preflight requests, which match no route, still get answered
	r.Use(CORSMiddleware(deps.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	webhooks := r.Group("/webhook")
	webhooks.Use(RequestSizeLimiter(maxWebhookBody))
	{
		webhooks.POST("/whatsapp", h.webhook(entities.ChannelWhatsApp))
		webhooks.POST("/digisac", h.webhook(entities.ChannelDigisac))
		webhooks.POST("/telegram/:instance", h.webhook(entities.ChannelTelegram))
	}

	api := r.Group("/api")
	api.Use(RequestSizeLimiter(64 << 10))
	api.POST("/auth/login", adminHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.Use(middleware.RateLimitPerUser(5, 10))
	{
		protected.GET("/stats", adminHandler.GetStats)
		protected.GET("/tenants/:tenant/contacts/:telefone", adminHandler.GetContact)
		protected.POST("/tenants/:tenant/contacts/:telefone/handoff", adminHandler.Handoff)
		protected.POST("/tenants/:tenant/contacts/:telefone/close", adminHandler.Close)
	}
}

// webhook answers 200 for every delivery; the body names the outcome
func (h *Handler) webhook(channel entities.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.logger.Warn("read webhook body", "channel", channel, "error", err)
			c.Set(outcomeKey, string(usecases.OutcomeMalformed))
			c.String(http.StatusOK, "error")
			return
		}

		res := h.pipeline.Handle(c.Request.Context(), channel, adapters.Delivery{
			Body:     body,
			Instance: strings.TrimSpace(c.Param("instance")),
		})
		c.Set(outcomeKey, string(res.Outcome))
		c.String(http.StatusOK, res.Body())
	}
}
