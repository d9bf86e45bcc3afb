package middleware

import (
	"strings"

	"renthub/internal/models"
	"renthub/internal/services"
	"renthub/pkg/jwt"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies bearer tokens and gates routes by role.
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.Manager
}

func NewAuthMiddleware(userService *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		jwtManager:  jwt.GetManager(),
	}
}

// RequireLogin validates the Authorization header and loads the account.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		tokenString := authHeader[7:]

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "account not found")
			c.Abort()
			return
		}
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "account is disabled")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("role", user.Role)

		c.Next()
	}
}

// RequireLandlord gates a route to landlord accounts.
func (m *AuthMiddleware) RequireLandlord() gin.HandlerFunc {
	return m.requireRole(models.RoleLandlord)
}

// RequireTenant gates a route to tenant accounts.
func (m *AuthMiddleware) RequireTenant() gin.HandlerFunc {
	return m.requireRole(models.RoleTenant)
}

func (m *AuthMiddleware) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if userRole.(string) != role {
			response.Forbidden(c, "requires "+role+" role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id from the context.
func CurrentUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(uint); ok {
		return id
	}
	return 0
}

// CurrentUser reads the authenticated account from the context.
func CurrentUser(c *gin.Context) *models.User {
	user, _ := c.Get("user")
	if u, ok := user.(*models.User); ok {
		return u
	}
	return nil
}
