package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/metrics"
)

const defaultQueueSize = 256

// ErrDispatcherClosed is returned by Submit after Run has returned
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Handler processes one validated message
type Handler func(ctx context.Context, msg domain.Message) error

// RejectFunc observes messages that failed validation
type RejectFunc func(ctx context.Context, err error)

type envelope struct {
	data   []byte
	record map[string]any
}

// Dispatcher routes messages of one direction to handlers keyed by type.
// Messages submitted to the queue are processed one at a time in arrival order.
type Dispatcher struct {
	direction domain.Direction
	logger    *zap.Logger

	mu       sync.RWMutex
	handlers map[domain.MessageType]Handler
	fallback Handler
	onReject RejectFunc

	queue chan envelope
	done  chan struct{}
	once  sync.Once
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithQueueSize sets the capacity of the FIFO queue
func WithQueueSize(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan envelope, size)
		}
	}
}

// WithFallback sets the handler for valid messages that have no registered handler
func WithFallback(h Handler) Option {
	return func(d *Dispatcher) {
		d.fallback = h
	}
}

// WithRejectHandler sets an observer for rejected messages
func WithRejectHandler(fn RejectFunc) Option {
	return func(d *Dispatcher) {
		d.onReject = fn
	}
}

// NewDispatcher creates a dispatcher for messages arriving in the given direction
func NewDispatcher(direction domain.Direction, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		direction: direction,
		logger:    zap.NewNop(),
		handlers:  make(map[domain.MessageType]Handler),
		queue:     make(chan envelope, defaultQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("direction", direction.String()))
	return d
}

// Direction returns the direction this dispatcher accepts
func (d *Dispatcher) Direction() domain.Direction {
	return d.direction
}

// Handle registers h for message type t, replacing any previous handler
func (d *Dispatcher) Handle(t domain.MessageType, h Handler) error {
	if h == nil {
		return fmt.Errorf("handle %s: nil handler", t)
	}
	owner, ok := t.Direction()
	if !ok {
		return &ProtocolError{Kind: KindUnknownMessageType, Direction: d.direction, Type: t}
	}
	if owner != d.direction {
		return &ProtocolError{Kind: KindWrongDirection, Direction: d.direction, Type: t}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
	return nil
}

// On registers a typed handler. T must be a concrete message struct.
func On[T domain.Message](d *Dispatcher, h func(ctx context.Context, msg T) error) error {
	var zero T
	t := zero.MessageType()
	return d.Handle(t, func(ctx context.Context, msg domain.Message) error {
		typed, ok := msg.(T)
		if !ok {
			return fmt.Errorf("handler for %s received %T", t, msg)
		}
		return h(ctx, typed)
	})
}

// Submit queues a wire record for processing. It blocks while the queue is full.
func (d *Dispatcher) Submit(ctx context.Context, data []byte) error {
	return d.enqueue(ctx, envelope{data: data})
}

// SubmitRecord queues an already deserialized record for processing
func (d *Dispatcher) SubmitRecord(ctx context.Context, record map[string]any) error {
	return d.enqueue(ctx, envelope{record: record})
}

func (d *Dispatcher) enqueue(ctx context.Context, env envelope) error {
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}

	select {
	case d.queue <- env:
		return nil
	case <-d.done:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued messages until ctx is canceled.
// Failures of individual messages never stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.once.Do(func() { close(d.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-d.queue:
			if env.record != nil {
				_ = d.DispatchRecord(ctx, env.record)
			} else {
				_ = d.Dispatch(ctx, env.data)
			}
		}
	}
}

// Dispatch validates and handles one wire record synchronously
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	decoded, err := Decode(d.direction, data)
	if err != nil {
		d.reject(ctx, err)
		return err
	}
	return d.deliver(ctx, decoded)
}

// DispatchRecord validates and handles one deserialized record synchronously
func (d *Dispatcher) DispatchRecord(ctx context.Context, record map[string]any) error {
	decoded, err := DecodeRecord(d.direction, record)
	if err != nil {
		d.reject(ctx, err)
		return err
	}
	return d.deliver(ctx, decoded)
}

func (d *Dispatcher) deliver(ctx context.Context, decoded *Decoded) error {
	msg := decoded.Message
	t := msg.MessageType()

	for _, fb := range decoded.Fallbacks {
		metrics.EnumFallbacksTotal.WithLabelValues(d.direction.String(), string(t), fb.Field).Inc()
		d.logger.Warn("State value outside vocabulary",
			zap.String("type", string(t)),
			zap.String("field", fb.Field),
			zap.Error(fb))
	}

	d.mu.RLock()
	h, ok := d.handlers[t]
	fallback := d.fallback
	d.mu.RUnlock()

	if !ok {
		metrics.MessagesUnhandledTotal.WithLabelValues(d.direction.String(), string(t)).Inc()
		if fallback == nil {
			d.logger.Debug("No handler registered", zap.String("type", string(t)))
			return nil
		}
		h = fallback
	}

	if err := h(ctx, msg); err != nil {
		metrics.HandlerFailuresTotal.WithLabelValues(d.direction.String(), string(t)).Inc()
		d.logger.Error("Handler failed", zap.String("type", string(t)), zap.Error(err))
		return fmt.Errorf("handle %s: %w", t, err)
	}

	metrics.MessagesDispatchedTotal.WithLabelValues(d.direction.String(), string(t)).Inc()
	return nil
}

func (d *Dispatcher) reject(ctx context.Context, err error) {
	reason := KindOf(err).String()
	metrics.MessagesRejectedTotal.WithLabelValues(d.direction.String(), reason).Inc()

	fields := []zap.Field{zap.String("reason", reason), zap.Error(err)}
	var perr *ProtocolError
	if errors.As(err, &perr) && perr.Type != "" {
		fields = append(fields, zap.String("type", string(perr.Type)))
	}
	d.logger.Warn("Rejected message", fields...)

	if d.onReject != nil {
		d.onReject(ctx, err)
	}
}
