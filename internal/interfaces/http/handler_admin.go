package http

import (
	"context"
	"errors"
	"net/http"

	"project_atendimento/internal/entities"
	"project_atendimento/internal/usecases"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	auth      *usecases.AuthUsecase
	dashboard *usecases.DashboardUsecase
	stats     func() map[string]interface{}
}

func NewAdminHandler(auth *usecases.AuthUsecase, dashboard *usecases.DashboardUsecase, stats func() map[string]interface{}) *AdminHandler {
	return &AdminHandler{auth: auth, dashboard: dashboard, stats: stats}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(loginReq.Username) > MaxCredential || len(loginReq.Password) > MaxCredential {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, err := h.auth.Login(SanitizeString(loginReq.Username), loginReq.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetStats returns runtime counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}
	if h.stats != nil {
		stats = h.stats()
	}
	c.JSON(http.StatusOK, stats)
}

// GetContact returns the status and recent messages of one conversation
func (h *AdminHandler) GetContact(c *gin.Context) {
	tenant, contact, ok := contactParams(c)
	if !ok {
		return
	}
	view, err := h.dashboard.Contact(c.Request.Context(), tenant, contact)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Handoff stops automated replies for a conversation
func (h *AdminHandler) Handoff(c *gin.Context) {
	h.transition(c, h.dashboard.Handoff)
}

// Close marks the ticket closed
func (h *AdminHandler) Close(c *gin.Context) {
	h.transition(c, h.dashboard.Close)
}

type transitionFunc func(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error)

func (h *AdminHandler) transition(c *gin.Context, apply transitionFunc) {
	tenant, contact, ok := contactParams(c)
	if !ok {
		return
	}
	status, err := apply(c.Request.Context(), tenant, contact)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant, "telefone": contact, "status": status})
}

func contactParams(c *gin.Context) (string, string, bool) {
	tenant, contact := c.Param("tenant"), c.Param("telefone")
	if !ValidSlug(tenant) || !ValidContact(contact) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant or contact"})
		return "", "", false
	}
	return tenant, contact, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecases.ErrUnknownTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
	case errors.Is(err, entities.ErrInvalidTransition), errors.Is(err, usecases.ErrStatusContention):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
