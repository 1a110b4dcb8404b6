package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/auth"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/websocket"
)

const serviceName = "guibridge"

// InitRoutes initializes all API routes. An empty secret disables token checks on /ws.
func InitRoutes(e *echo.Echo, hub *websocket.Hub, secret []byte, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Service:   serviceName,
			Renderers: len(hub.Clients()),
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Message contract as JSON schemas, one per type
	e.GET("/schema/:direction", getSchemas)

	// WebSocket endpoint for renderers
	e.GET("/ws", func(c echo.Context) error {
		if len(secret) == 0 {
			return websocket.HandleWebSocket(hub, c, "")
		}
		return websocketWithAuth(hub, c, secret, logger)
	})
}

func getSchemas(c echo.Context) error {
	var d domain.Direction
	switch strings.ToLower(c.Param("direction")) {
	case "inbound":
		d = domain.Inbound
	case "outbound":
		d = domain.Outbound
	default:
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "unknown_direction",
			Message: "Direction must be inbound or outbound",
		})
	}
	return c.JSON(http.StatusOK, protocol.Schemas(d))
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, secret []byte, logger *zap.Logger) error {
	// Extract JWT token from Authorization header only
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required in Authorization header",
		})
	}

	// Validate JWT token
	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidToken) {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	logger.Info("WebSocket connection authenticated", zap.String("rendererID", claims.RendererID))

	return websocket.HandleWebSocket(hub, c, claims.RendererID)
}
