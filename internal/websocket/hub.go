package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/metrics"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. APL documents can be large.
	maxMessageSize = 4 * 1024 * 1024

	sendBufferSize = 256
)

var (
	ErrNoRenderer       = errors.New("no renderer connected")
	ErrRendererNotFound = errors.New("renderer not found")
	ErrSendBufferFull   = errors.New("renderer send buffer full")
	ErrHubClosed        = errors.New("hub closed")
)

var upgrader = websocket.Upgrader{
	// Renderers are local processes authenticated by bearer token.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Submitter accepts raw wire records for ordered processing
type Submitter interface {
	Submit(ctx context.Context, data []byte) error
}

// Hub maintains the set of connected renderers on the host side.
// Frames read from any renderer are submitted to a single outbound dispatcher,
// so handlers observe them one at a time in arrival order.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	dispatcher Submitter
	logger     *zap.Logger
	onRegister func(rendererID string)

	done     chan struct{}
	doneOnce sync.Once
}

// NewHub creates a new WebSocket hub feeding received frames into dispatcher
func NewHub(dispatcher Submitter, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		dispatcher: dispatcher,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// OnRegister sets a hook called from the hub loop after each renderer attaches.
// It must be set before Run.
func (h *Hub) OnRegister(fn func(rendererID string)) {
	h.onRegister = fn
}

// Run starts the hub's main loop and closes every connection when ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if previous, ok := h.clients[client.id]; ok {
				// A reconnect under the same id replaces the old connection.
				close(previous.send)
				metrics.RenderersConnected.Dec()
			}
			h.clients[client.id] = client
			h.mu.Unlock()
			metrics.RenderersConnected.Inc()
			h.logger.Info("Renderer registered", zap.String("rendererID", client.id))
			if h.onRegister != nil {
				h.onRegister(client.id)
			}

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
		metrics.RenderersConnected.Dec()
		h.logger.Info("Renderer unregistered", zap.String("rendererID", client.id))
	}
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
		metrics.RenderersConnected.Dec()
	}
}

// Clients returns the IDs of the connected renderers
func (h *Hub) Clients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Send encodes msg and queues it for every connected renderer
func (h *Hub) Send(ctx context.Context, msg domain.InboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := protocol.EncodeInbound(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return ErrNoRenderer
	}

	var errs []error
	for _, client := range h.clients {
		if err := client.enqueue(data); err != nil {
			errs = append(errs, fmt.Errorf("renderer %s: %w", client.id, err))
			continue
		}
		metrics.MessagesSentTotal.WithLabelValues(domain.Inbound.String(), string(msg.MessageType())).Inc()
	}
	return errors.Join(errs...)
}

// SendTo encodes msg and queues it for one renderer
func (h *Hub) SendTo(rendererID string, msg domain.InboundMessage) error {
	data, err := protocol.EncodeInbound(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[rendererID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRendererNotFound, rendererID)
	}
	if err := client.enqueue(data); err != nil {
		return err
	}
	metrics.MessagesSentTotal.WithLabelValues(domain.Inbound.String(), string(msg.MessageType())).Inc()
	return nil
}

// Client is a middleman between one renderer connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of encoded inbound messages. Closed by the hub.
	send chan []byte

	id     string
	logger *zap.Logger
}

// enqueue must be called with the hub lock held so send is not closed concurrently
func (c *Client) enqueue(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// HandleWebSocket upgrades the request and attaches the renderer to the hub.
// An empty rendererID gets a generated one.
func HandleWebSocket(hub *Hub, c echo.Context, rendererID string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	if rendererID == "" {
		rendererID = uuid.NewString()
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		id:     rendererID,
		logger: hub.logger.With(zap.String("rendererID", rendererID)),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return ErrHubClosed
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps frames from the websocket connection to the dispatcher.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Ignoring non-text frame", zap.Int("type", messageType))
			continue
		}

		if err := c.hub.dispatcher.Submit(ctx, message); err != nil {
			c.logger.Warn("Dispatcher refused frame", zap.Error(err))
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
