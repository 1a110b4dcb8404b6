package adapters

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
)

// LoggingHost is a placeholder for the host's document, interaction, call
// and activity components. It logs every request and counts them.
type LoggingHost struct {
	logger *zap.Logger
	calls  atomic.Int64
}

// NewLoggingHost creates a new logging host collaborator
func NewLoggingHost(logger *zap.Logger) *LoggingHost {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHost{logger: logger}
}

// Calls returns the number of requests received so far
func (h *LoggingHost) Calls() int64 {
	return h.calls.Load()
}

func (h *LoggingHost) record(msg string, fields ...zap.Field) error {
	h.calls.Add(1)
	h.logger.Info(msg, fields...)
	return nil
}

// UpdateWindowState implements DocumentEngine
func (h *LoggingHost) UpdateWindowState(ctx context.Context, state domain.Payload) error {
	return h.record("Device window state updated", zap.Int("keys", len(state)))
}

// RenderStaticDocument implements DocumentEngine
func (h *LoggingHost) RenderStaticDocument(ctx context.Context, token, windowID string, payload domain.Payload) error {
	return h.record("Render static document",
		zap.String("token", token),
		zap.String("windowID", windowID))
}

// ExecuteCommands implements DocumentEngine
func (h *LoggingHost) ExecuteCommands(ctx context.Context, token string, payload domain.Payload) error {
	return h.record("Execute commands", zap.String("token", token))
}

// HandleEvent implements DocumentEngine
func (h *LoggingHost) HandleEvent(ctx context.Context, windowID string, payload domain.Payload) error {
	return h.record("APL event", zap.String("windowID", windowID))
}

// TapToTalk implements InteractionManager
func (h *LoggingHost) TapToTalk(ctx context.Context) error {
	return h.record("Tap to talk")
}

// HoldToTalk implements InteractionManager
func (h *LoggingHost) HoldToTalk(ctx context.Context) error {
	return h.record("Hold to talk")
}

// ToggleCaptions implements InteractionManager
func (h *LoggingHost) ToggleCaptions(ctx context.Context) error {
	return h.record("Toggle captions")
}

// ToggleDoNotDisturb implements InteractionManager
func (h *LoggingHost) ToggleDoNotDisturb(ctx context.Context) error {
	return h.record("Toggle do not disturb")
}

// AcceptCall implements CallManager
func (h *LoggingHost) AcceptCall(ctx context.Context) error {
	return h.record("Accept call")
}

// StopCall implements CallManager
func (h *LoggingHost) StopCall(ctx context.Context) error {
	return h.record("Stop call")
}

// EnableLocalVideo implements CallManager
func (h *LoggingHost) EnableLocalVideo(ctx context.Context) error {
	return h.record("Enable local video")
}

// DisableLocalVideo implements CallManager
func (h *LoggingHost) DisableLocalVideo(ctx context.Context) error {
	return h.record("Disable local video")
}

// SendDTMF implements CallManager
func (h *LoggingHost) SendDTMF(ctx context.Context, tone string) error {
	return h.record("Send DTMF", zap.String("tone", tone))
}

// ReportActivity implements ActivityReporter
func (h *LoggingHost) ReportActivity(ctx context.Context, event domain.ActivityEvent) error {
	return h.record("Activity event", zap.String("event", string(event)))
}

// ReportNavigation implements ActivityReporter
func (h *LoggingHost) ReportNavigation(ctx context.Context, event domain.NavigationEvent) error {
	return h.record("Navigation event", zap.String("event", string(event)))
}
