package adapters

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// ViewSnapshot is what a LoggingView currently shows
type ViewSnapshot struct {
	AssistantState     entities.AssistantState
	AuthorizationState entities.AuthorizationState
	CallState          entities.CallState
	DoNotDisturb       bool
	TemplateShown      bool
	PlayerInfoShown    bool
	// Documents maps window id to the presented document token.
	Documents map[string]string
	Updates   int
}

// LoggingView is a headless RendererView that logs what it would display
type LoggingView struct {
	logger *zap.Logger

	mu    sync.Mutex
	state ViewSnapshot
}

// NewLoggingView creates a new headless renderer view
func NewLoggingView(logger *zap.Logger) *LoggingView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingView{
		logger: logger,
		state:  ViewSnapshot{Documents: make(map[string]string)},
	}
}

// Snapshot returns a copy of the current view state
func (v *LoggingView) Snapshot() ViewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	s.Documents = make(map[string]string, len(v.state.Documents))
	for k, d := range v.state.Documents {
		s.Documents[k] = d
	}
	return s
}

func (v *LoggingView) update(msg string, fn func(*ViewSnapshot), fields ...zap.Field) error {
	v.mu.Lock()
	fn(&v.state)
	v.state.Updates++
	v.mu.Unlock()

	v.logger.Info(msg, fields...)
	return nil
}

func (v *LoggingView) ApplyConfiguration(ctx context.Context, config domain.Payload) error {
	return v.update("GUI configuration applied", func(*ViewSnapshot) {}, zap.Int("keys", len(config)))
}

func (v *LoggingView) SetAssistantState(ctx context.Context, state entities.AssistantState) error {
	return v.update("Assistant state", func(s *ViewSnapshot) { s.AssistantState = state },
		zap.String("state", string(state)))
}

func (v *LoggingView) SetAuthorizationState(ctx context.Context, state entities.AuthorizationState) error {
	return v.update("Authorization state", func(s *ViewSnapshot) { s.AuthorizationState = state },
		zap.String("state", string(state)))
}

func (v *LoggingView) SetCallState(ctx context.Context, call domain.CallStateChangeMessage) error {
	return v.update("Call state", func(s *ViewSnapshot) { s.CallState = call.CallState },
		zap.String("callState", string(call.CallState)),
		zap.String("displayName", call.DisplayName),
		zap.Bool("isDropIn", call.IsDropIn))
}

func (v *LoggingView) SetDoNotDisturb(ctx context.Context, enabled bool) error {
	return v.update("Do not disturb", func(s *ViewSnapshot) { s.DoNotDisturb = enabled },
		zap.Bool("enabled", enabled))
}

func (v *LoggingView) ShowAuthorizationRequest(ctx context.Context, request domain.RequestAuthorizationMessage) error {
	return v.update("Authorization requested", func(*ViewSnapshot) {},
		zap.String("url", request.URL),
		zap.String("code", request.Code))
}

func (v *LoggingView) ShowTemplate(ctx context.Context, payload domain.Payload) error {
	return v.update("Template shown", func(s *ViewSnapshot) { s.TemplateShown = true })
}

func (v *LoggingView) ClearTemplate(ctx context.Context) error {
	return v.update("Template cleared", func(s *ViewSnapshot) { s.TemplateShown = false })
}

func (v *LoggingView) ShowPlayerInfo(ctx context.Context, info domain.RenderPlayerInfoMessage) error {
	return v.update("Player info shown", func(s *ViewSnapshot) { s.PlayerInfoShown = true },
		zap.String("audioPlayerState", string(info.AudioPlayerState)),
		zap.Int64("audioOffset", info.AudioOffset))
}

func (v *LoggingView) ClearPlayerInfo(ctx context.Context) error {
	return v.update("Player info cleared", func(s *ViewSnapshot) { s.PlayerInfoShown = false })
}

func (v *LoggingView) RenderDocument(ctx context.Context, windowID, token string) error {
	return v.update("Document rendered", func(s *ViewSnapshot) { s.Documents[windowID] = token },
		zap.String("windowID", windowID),
		zap.String("token", token))
}

func (v *LoggingView) ClearDocument(ctx context.Context, windowID string) error {
	return v.update("Document cleared", func(s *ViewSnapshot) { delete(s.Documents, windowID) },
		zap.String("windowID", windowID))
}

func (v *LoggingView) ApplyCoreMessage(ctx context.Context, windowID string, payload domain.Payload) error {
	return v.update("APL core message", func(*ViewSnapshot) {}, zap.String("windowID", windowID))
}

func (v *LoggingView) ShowCaptions(ctx context.Context, payload domain.Payload) error {
	return v.update("Captions", func(*ViewSnapshot) {})
}
