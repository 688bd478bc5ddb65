package frontend

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salt_portal/internal/gateway"
	"salt_portal/internal/logger"
	"salt_portal/internal/middleware"
	"salt_portal/internal/model"
	"salt_portal/internal/normalize"
	"salt_portal/internal/session"
)

// DataSource returns list controllers for a browser.
type DataSource func(clientID string) *gateway.DataClient

// PageHandler serves the pages behind the route guard. Pages return
// JSON view models; rendering them is the browser's business.
type PageHandler struct {
	data DataSource
}

func NewPageHandler(data DataSource) *PageHandler {
	return &PageHandler{data: data}
}

// Dashboard serves any page whose view is just the signed-in user.
func (h *PageHandler) Dashboard(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := middleware.SnapshotFrom(c)
		c.JSON(http.StatusOK, gin.H{"page": name, "user": snap.User})
	}
}

// Public serves a page that needs no session.
func (h *PageHandler) Public(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}

// dataError handles a failed list call. A rejected token means the
// session is gone: log out and send the browser home.
func (h *PageHandler) dataError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		if ctrl, ok := middleware.SessionFrom(c); ok {
			ctrl.Logout(transitionContext(c))
		}
		c.Redirect(http.StatusFound, session.PathHome)
		return
	}
	logger.FromGin(c).Warn("backend list failed", zap.Error(err))
	c.JSON(statusFor(err), gin.H{"error": session.UserMessage(err)})
}

func (h *PageHandler) Plans(c *gin.Context) {
	plans, err := h.data(middleware.ClientIDFrom(c)).ListPlans(c.Request.Context())
	if err != nil {
		h.dataError(c, err)
		return
	}
	active := make([]model.Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"page": "plans", "plans": active})
}

func (h *PageHandler) AdminUsers(c *gin.Context) {
	users, err := h.data(middleware.ClientIDFrom(c)).ListUsers(c.Request.Context())
	if err != nil {
		h.dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "admin-users", "users": users})
}

func (h *PageHandler) AdminPayments(c *gin.Context) {
	payments, err := h.data(middleware.ClientIDFrom(c)).ListPayments(c.Request.Context())
	if err != nil {
		h.dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "admin-payments", "payments": payments})
}

func (h *PageHandler) AdminSubscriptions(c *gin.Context) {
	subs, err := h.data(middleware.ClientIDFrom(c)).ListSubscriptions(c.Request.Context())
	if err != nil {
		h.dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "admin-subscriptions", "subscriptions": subs})
}

func (h *PageHandler) AdminAuditLogs(c *gin.Context) {
	logs, err := h.data(middleware.ClientIDFrom(c)).ListAuditLogs(c.Request.Context())
	if err != nil {
		h.dataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "admin-audit-logs", "logs": logs})
}

type adminSummary struct {
	Users               int             `json:"users"`
	UsersByRole         map[string]int  `json:"usersByRole"`
	ActiveSubscriptions int             `json:"activeSubscriptions"`
	CompletedPayments   int             `json:"completedPayments"`
	RevenueLKR          decimal.Decimal `json:"revenueLkr"`
}

// AdminDashboard aggregates the admin lists into headline numbers.
func (h *PageHandler) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	data := h.data(middleware.ClientIDFrom(c))

	users, err := data.ListUsers(ctx)
	if err != nil {
		h.dataError(c, err)
		return
	}
	subs, err := data.ListSubscriptions(ctx)
	if err != nil {
		h.dataError(c, err)
		return
	}
	payments, err := data.ListPayments(ctx)
	if err != nil {
		h.dataError(c, err)
		return
	}

	summary := adminSummary{Users: len(users), UsersByRole: make(map[string]int)}
	for _, u := range users {
		summary.UsersByRole[string(u.Role)]++
	}
	for _, s := range subs {
		if s.IsActive {
			summary.ActiveSubscriptions++
		}
	}
	completed := make([]model.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Completed() {
			completed = append(completed, p)
		}
	}
	summary.CompletedPayments = len(completed)
	summary.RevenueLKR = normalize.TotalAmount(completed)

	snap, _ := middleware.SnapshotFrom(c)
	c.JSON(http.StatusOK, gin.H{"page": "admin-dashboard", "user": snap.User, "summary": summary})
}
