package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"renthub/internal/database"
	"renthub/internal/services"
	"renthub/pkg/config"
	"renthub/pkg/jwt"
	"renthub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler streams live notifications to a connected user.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	redisClient *redis.Client
	log         *logrus.Logger
	jwtManager  *jwt.Manager
	userService *services.UserService
}

func NewWebSocketHandler(userService *services.UserService) *WebSocketHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// same-origin requests carry no Origin header
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket connection rejected, origin: %s", origin)
				return false
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		redisClient: database.GetRedisQueue().GetClient(),
		log:         logger.GetLogger(),
		jwtManager:  jwt.GetManager(),
		userService: userService,
	}
}

// Notifications upgrades the connection and relays the user's notification
// channel. Browsers cannot set headers on WebSocket requests, so the token
// arrives as a query parameter.
func (h *WebSocketHandler) Notifications(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	user, err := h.userService.GetByID(claims.UserID)
	if err != nil || !h.userService.IsActive(user) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed for user %d: %v", user.ID, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	channel := database.GetRedisQueue().ChannelKey(user.ID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	h.log.Infof("Notification stream opened for user %d", user.ID)

	// drain client frames so close/ping handling works
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.Debugf("Notification stream for user %d closed: %v", user.ID, err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// matchOrigin compares an Origin header against an allowed pattern,
// supporting a leading wildcard like https://*.example.com.
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}
	if idx := strings.Index(allowed, "*"); idx >= 0 {
		prefix := allowed[:idx]
		suffix := allowed[idx+1:]
		return strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix)
	}
	return false
}
