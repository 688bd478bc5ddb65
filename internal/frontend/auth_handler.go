package frontend

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salt_portal/internal/gateway"
	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/middleware"
	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

// AuthHandler exposes the session operations to the browser.
type AuthHandler struct {
	metrics *metrics.Metrics
}

func NewAuthHandler(m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{metrics: m}
}

type signInRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	Role  string `json:"role" binding:"required"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	Code  string `json:"code" binding:"required"`
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// transitionContext keeps a transition running when the browser hangs
// up; the controller still has to land in a consistent state.
func transitionContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func controller(c *gin.Context) (*session.Controller, bool) {
	ctrl, ok := middleware.SessionFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
	}
	return ctrl, ok
}

// statusFor maps a transition error to the HTTP status the browser sees.
func statusFor(err error) int {
	var be *gateway.BackendError
	switch {
	case errors.Is(err, gateway.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrTransitionInFlight), errors.Is(err, session.ErrInvalidState), errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &be) && be.Status >= 400 && be.Status < 500:
		return be.Status
	case errors.Is(err, gateway.ErrNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, gateway.ErrValidation), errors.Is(err, session.ErrTransitionInFlight), errors.Is(err, session.ErrInvalidState), errors.Is(err, session.ErrSuperseded):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}

func (h *AuthHandler) fail(c *gin.Context, transition string, err error) {
	logger.FromGin(c).Info("auth transition failed", zap.String("transition", transition), zap.Error(err))
	c.JSON(statusFor(err), gin.H{"error": session.UserMessage(err)})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	res, err := ctrl.SignIn(transitionContext(c), model.Identity{Phone: req.Phone, Email: req.Email}, model.ParseRole(req.Role))
	h.metrics.RecordTransition("request_otp", result(err))
	if err != nil {
		h.fail(c, "request_otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": res.Message})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	target, err := ctrl.VerifyOTP(transitionContext(c), model.Identity{Phone: req.Phone, Email: req.Email}, req.Code)
	h.metrics.RecordTransition("verify_otp", result(err))
	if err != nil {
		h.fail(c, "verify_otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectTo": target, "session": ctrl.Snapshot()})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	target, err := ctrl.PasswordLogin(transitionContext(c), req.Email, req.Password)
	h.metrics.RecordTransition("password_login", result(err))
	if err != nil {
		h.fail(c, "password_login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectTo": target, "session": ctrl.Snapshot()})
}

// Refresh re-reads the profile. A failed refresh has already logged
// the browser out, so the reply says where to go.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}

	err := ctrl.RefreshUser(transitionContext(c))
	h.metrics.RecordTransition("refresh", result(err))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"session": ctrl.Snapshot()})
	case errors.Is(err, session.ErrInvalidState):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in", "redirectTo": session.PathHome})
	default:
		logger.FromGin(c).Info("session refresh failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": session.UserMessage(gateway.ErrUnauthorized), "redirectTo": session.PathHome})
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}
	target := ctrl.Logout(transitionContext(c))
	h.metrics.RecordTransition("logout", metrics.ResultSuccess)
	c.JSON(http.StatusOK, gin.H{"redirectTo": target})
}

// Session reports the snapshot. The token never leaves the server.
func (h *AuthHandler) Session(c *gin.Context) {
	ctrl, ok := controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/verify", h.Verify)
		authGroup.POST("/admin/login", h.AdminLogin)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/session", h.Session)
	}
}
