package websocket

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/metrics"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

const handshakeTimeout = 10 * time.Second

// ErrConnClosed is returned by Send after the connection was closed
var ErrConnClosed = errors.New("connection closed")

// Conn is the renderer side of the bridge: it sends outbound messages to the
// host and feeds inbound frames into a dispatcher.
type Conn struct {
	ws     *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to the host websocket at addr. tlsConfig is used for wss:// addresses.
func Dial(ctx context.Context, addr string, header http.Header, tlsConfig *tls.Config, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		TLSClientConfig:  tlsConfig,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}

	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	ws, resp, err := dialer.DialContext(ctx, addr, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			logger.Error("Handshake rejected", zap.Int("status", resp.StatusCode), zap.Error(err))
		}
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)

	return &Conn{
		ws:     ws,
		logger: logger,
		closed: make(chan struct{}),
	}, nil
}

// Send encodes msg and writes it to the host
func (c *Conn) Send(ctx context.Context, msg domain.OutboundMessage) error {
	data, err := protocol.EncodeOutbound(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	metrics.MessagesSentTotal.WithLabelValues(domain.Outbound.String(), string(msg.MessageType())).Inc()
	return nil
}

// Listen reads frames from the host and submits them to dispatcher until the
// connection fails or ctx is canceled. A normal close returns nil.
func (c *Conn) Listen(ctx context.Context, dispatcher Submitter) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-c.closed:
				return nil
			default:
			}
			return err
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Ignoring non-text frame", zap.Int("type", messageType))
			continue
		}
		if err := dispatcher.Submit(ctx, data); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Close sends a close frame and releases the connection
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
