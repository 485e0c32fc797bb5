package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, revocation *services.RevocationService) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT, revocation),
	}
}

// Signup registers a new user
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login exchanges credentials for a JWT
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Logout revokes the presented token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.CurrentToken(c)
	if token == "" {
		response.BadRequest(c, "no token provided")
		return
	}

	if err := h.authService.Logout(token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "successfully logged out (token revoked)"})
}

// GetCurrentUser returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "not authenticated")
		return
	}
	response.Success(c, user)
}
