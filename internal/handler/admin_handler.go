package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salt_portal/internal/repository"
	"salt_portal/internal/service"
)

// AdminHandler serves the catalog and the admin list endpoints
type AdminHandler struct {
	service service.AdminService
	log     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.AdminService, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{service: s, log: log}
}

func (h *AdminHandler) respond(c *gin.Context, what string, doc service.Document, err error) {
	if err != nil {
		h.log.Error("failed to list "+what, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve " + what})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *AdminHandler) Users(c *gin.Context) {
	doc, err := h.service.Users(c.Request.Context())
	h.respond(c, "users", doc, err)
}

func (h *AdminHandler) Plans(c *gin.Context) {
	doc, err := h.service.Plans(c.Request.Context())
	h.respond(c, "plans", doc, err)
}

func (h *AdminHandler) Payments(c *gin.Context) {
	var filters repository.PaymentFilters
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	doc, err := h.service.Payments(c.Request.Context(), filters)
	h.respond(c, "payments", doc, err)
}

func (h *AdminHandler) Subscriptions(c *gin.Context) {
	doc, err := h.service.Subscriptions(c.Request.Context())
	h.respond(c, "subscriptions", doc, err)
}

func (h *AdminHandler) AuditLogs(c *gin.Context) {
	var filters repository.AuditFilters
	if actor := c.Query("actor_id"); actor != "" {
		filters.ActorID = &actor
	}
	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	if since := c.Query("since"); since != "" {
		parsed, err := time.Parse("2006-01-02", since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date format for 'since', use YYYY-MM-DD"})
			return
		}
		filters.Since = &parsed
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit"})
			return
		}
		filters.Limit = n
	}
	doc, err := h.service.AuditLogs(c.Request.Context(), filters)
	h.respond(c, "audit logs", doc, err)
}

// RegisterAdminRoutes registers the plan catalog and admin routes
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.GET("/plans", h.Plans)

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/users", h.Users)
		adminRoutes.GET("/payments", h.Payments)
		adminRoutes.GET("/subscriptions", h.Subscriptions)
		adminRoutes.GET("/audit-logs", h.AuditLogs)
	}
}
