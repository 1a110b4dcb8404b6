package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/auth"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/websocket"
)

func setupServer(t *testing.T, secret []byte) (*httptest.Server, *websocket.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	d := protocol.NewDispatcher(domain.Outbound)
	hub := websocket.NewHub(d, zap.NewNop())
	go hub.Run(ctx)

	e := echo.New()
	InitRoutes(e, hub, secret, zap.NewNop())
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server, hub
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestHealth(t *testing.T) {
	server, _ := setupServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, HealthResponse{Status: "ok", Service: serviceName, Renderers: 0}, body)
}

func TestMetrics(t *testing.T) {
	server, _ := setupServer(t, nil)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSchemas(t *testing.T) {
	server, _ := setupServer(t, nil)

	resp, err := http.Get(server.URL + "/schema/inbound")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, len(domain.InboundMessageTypes()))
	assert.Contains(t, body, string(domain.MessageTypeAlexaStateChanged))

	resp2, err := http.Get(server.URL + "/schema/sideways")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestWebSocketAuth(t *testing.T) {
	secret := []byte("test-secret")
	server, hub := setupServer(t, secret)

	t.Run("missing token", func(t *testing.T) {
		_, resp, err := gorilla.DefaultDialer.Dial(wsURL(server), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		header := http.Header{"Authorization": []string{"Bearer nope"}}
		_, resp, err := gorilla.DefaultDialer.Dial(wsURL(server), header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.GenerateRendererToken(secret, "kitchen", time.Hour)
		require.NoError(t, err)

		header := http.Header{"Authorization": []string{"Bearer " + token}}
		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server), header)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool {
			ids := hub.Clients()
			return len(ids) == 1 && ids[0] == "kitchen"
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestWebSocketWithoutSecret(t *testing.T) {
	server, hub := setupServer(t, nil)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return len(hub.Clients()) == 1 }, 2*time.Second, 10*time.Millisecond)
}
