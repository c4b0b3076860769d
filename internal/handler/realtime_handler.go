package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/vintageai/vintageai-backend/internal/realtime"
	jwtPkg "github.com/vintageai/vintageai-backend/pkg/jwt"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades authenticated clients onto the job-update
// channel. Browsers cannot set headers on websocket requests, so the
// token travels as a query parameter.
type RealtimeHandler struct {
	hub       *realtime.Hub
	jwtSecret string
	logger    *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, jwtSecret string, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	claims, err := jwtPkg.ValidateToken(c.Query("token"), h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid token",
		})
	}

	c.Locals("userID", claims.UserID)
	return c.Next()
}

func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			conn.Close()
			return
		}

		h.hub.Register(userID, conn)
		defer h.hub.Unregister(userID, conn)

		h.logger.Debug("realtime client connected", zap.String("user_id", userID))

		// Drain the connection; clients only listen, and the read loop
		// ends when they disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
