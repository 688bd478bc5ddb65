package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salt_portal/internal/middleware"
	"salt_portal/internal/model"
	"salt_portal/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	admin   service.AdminService
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, admin service.AdminService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{service: s, admin: admin, log: log}
}

type contactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

func (r contactRequest) identity() (model.Identity, bool) {
	id := model.Identity{Phone: strings.TrimSpace(r.Phone), Email: strings.TrimSpace(r.Email)}
	return id, (id.Phone == "") != (id.Email == "")
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		contactRequest
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}
	identity, ok := req.identity()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Provide exactly one of phone or email"})
		return
	}

	res, err := h.service.RequestOTP(c.Request.Context(), identity, model.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrRoleMismatch):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			h.log.Error("sign-in failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send verification code"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		contactRequest
		Code string `json:"code" binding:"required,number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}
	identity, ok := req.identity()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Provide exactly one of phone or email"})
		return
	}

	res, err := h.service.VerifyOTP(c.Request.Context(), identity, req.Code, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": err.Error()})
		default:
			h.log.Error("otp verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify code"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	token, account, err := h.service.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": service.ErrInvalidCredentials.Error()})
			return
		}
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to login"})
		return
	}

	doc := h.admin.ProfileDocument(account)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"accessToken": token,
		"user":        doc["user"],
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, _ := middleware.AuthUser(c)
	account, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Account no longer exists"})
			return
		}
		h.log.Error("profile lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, h.admin.ProfileDocument(account))
}

func (h *AuthHandler) Onboard(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,min=2,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}
	userID, _ := middleware.AuthUser(c)
	account, err := h.service.Onboard(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Account no longer exists"})
			return
		}
		h.log.Error("onboarding failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, h.admin.ProfileDocument(account))
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/verify-otp", h.VerifyOTP)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/profile", authMW, h.Profile)
		authGroup.POST("/onboard", authMW, h.Onboard)
	}
}
