package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	progressws "github.com/saumya2304singh/Physio-Connect-sub001/internal/websocket"
	"github.com/saumya2304singh/Physio-Connect-sub001/pkg/utils"
)

// ProgressFeedHandler upgrades physio connections onto the live progress
// hub. Patients never connect here; progress events are keyed by the owning
// physio and pushed as they are recorded.
type ProgressFeedHandler struct {
	hub       *progressws.Hub
	jwtSecret string
}

func NewProgressFeedHandler(hub *progressws.Hub, jwtSecret string) *ProgressFeedHandler {
	return &ProgressFeedHandler{hub: hub, jwtSecret: jwtSecret}
}

func (h *ProgressFeedHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	if claims.Role != "physio" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *ProgressFeedHandler) HandleWebSocket(conn *websocket.Conn) {
	physioID, _ := conn.Locals("user_id").(string)
	client := progressws.NewClient(h.hub, conn, physioID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *ProgressFeedHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
