package handlers

import (
	"renthub/internal/middleware"
	"renthub/internal/services"
	"renthub/pkg/jwt"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login, and token refresh.
type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.Manager
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwt.GetManager(),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// Register creates a landlord or tenant account and issues a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Role, user.Name, user.Email)
	if err != nil {
		response.ServerError(c, "failed to issue token")
		return
	}

	response.Created(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Role, user.Name, user.Email)
	if err != nil {
		response.ServerError(c, "failed to issue token")
		return
	}

	response.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "authentication required")
		return
	}
	response.Success(c, user)
}

// RefreshToken re-issues a token from a still-valid one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	response.Success(c, gin.H{"token": token})
}
