package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/repositories"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/log"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

// InboundSender delivers host -> renderer messages
type InboundSender interface {
	Send(ctx context.Context, msg domain.InboundMessage) error
}

// HostDependencies are the host components outbound messages are routed to
type HostDependencies struct {
	Documents   repositories.DocumentEngine
	Focus       repositories.FocusManager
	Interaction repositories.InteractionManager
	Calls       repositories.CallManager
	Activity    repositories.ActivityReporter
}

func (d HostDependencies) validate() error {
	switch {
	case d.Documents == nil:
		return errors.New("document engine is required")
	case d.Focus == nil:
		return errors.New("focus manager is required")
	case d.Interaction == nil:
		return errors.New("interaction manager is required")
	case d.Calls == nil:
		return errors.New("call manager is required")
	case d.Activity == nil:
		return errors.New("activity reporter is required")
	}
	return nil
}

// RendererSupport is what the renderer reported in its initResponse
type RendererSupport struct {
	Known         bool
	Supported     bool
	APLMaxVersion string
}

// HostService consumes renderer -> host messages and emits host -> renderer messages
type HostService struct {
	sender     InboundSender
	deps       HostDependencies
	sdkVersion string
	logger     *zap.Logger
	// rendererLogger receives logEvent lines.
	rendererLogger *zap.Logger

	mu      sync.RWMutex
	support RendererSupport
}

// NewHostService creates a new host service
func NewHostService(sender InboundSender, deps HostDependencies, sdkVersion string, logger *zap.Logger) (*HostService, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostService{
		sender:         sender,
		deps:           deps,
		sdkVersion:     sdkVersion,
		logger:         logger,
		rendererLogger: logger.Named("renderer"),
	}, nil
}

// Register installs a handler for every renderer -> host message type on d
func (s *HostService) Register(d *protocol.Dispatcher) error {
	return errors.Join(
		protocol.On(d, s.handleInitResponse),
		protocol.On(d, s.handleDeviceWindowState),
		protocol.On(d, s.handleFocusAcquireRequest),
		protocol.On(d, s.handleFocusReleaseRequest),
		protocol.On(d, s.handleFocusConfirmation),
		protocol.On(d, func(ctx context.Context, _ domain.TapToTalkMessage) error {
			return s.deps.Interaction.TapToTalk(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.HoldToTalkMessage) error {
			return s.deps.Interaction.HoldToTalk(ctx)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.RenderStaticDocumentMessage) error {
			return s.deps.Documents.RenderStaticDocument(ctx, msg.Token, msg.WindowID, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.ExecuteCommandsMessage) error {
			return s.deps.Documents.ExecuteCommands(ctx, msg.Token, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.APLEventMessage) error {
			return s.deps.Documents.HandleEvent(ctx, msg.WindowID, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.ActivityEventMessage) error {
			return s.deps.Activity.ReportActivity(ctx, msg.Event)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.NavigationEventMessage) error {
			return s.deps.Activity.ReportNavigation(ctx, msg.Event)
		}),
		protocol.On(d, s.handleLogEvent),
		protocol.On(d, func(ctx context.Context, _ domain.ToggleCaptionsMessage) error {
			return s.deps.Interaction.ToggleCaptions(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.ToggleDoNotDisturbMessage) error {
			return s.deps.Interaction.ToggleDoNotDisturb(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.AcceptCallMessage) error {
			return s.deps.Calls.AcceptCall(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.StopCallMessage) error {
			return s.deps.Calls.StopCall(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.EnableLocalVideoMessage) error {
			return s.deps.Calls.EnableLocalVideo(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.DisableLocalVideoMessage) error {
			return s.deps.Calls.DisableLocalVideo(ctx)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.SendDTMFMessage) error {
			return s.deps.Calls.SendDTMF(ctx, msg.DTMFTone)
		}),
	)
}

// InitRequest returns the handshake message for a newly attached renderer
func (s *HostService) InitRequest() domain.InitRequestMessage {
	return domain.InitRequestMessage{SmartScreenSDKVersion: s.sdkVersion}
}

// Start opens the handshake by sending initRequest
func (s *HostService) Start(ctx context.Context) error {
	s.logger.Info("Sending init request", zap.String("sdkVersion", s.sdkVersion))
	return s.sender.Send(ctx, s.InitRequest())
}

// RendererSupport returns the renderer's answer to the handshake
func (s *HostService) RendererSupport() RendererSupport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.support
}

// Notify sends any host -> renderer message
func (s *HostService) Notify(ctx context.Context, msg domain.InboundMessage) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify %s: %w", msg.MessageType(), err)
	}
	return nil
}

// NotifyAssistantState reports an assistant state transition
func (s *HostService) NotifyAssistantState(ctx context.Context, state entities.AssistantState) error {
	return s.Notify(ctx, domain.AlexaStateChangedMessage{State: state})
}

// NotifyAuthorizationState reports an authorization state transition
func (s *HostService) NotifyAuthorizationState(ctx context.Context, state entities.AuthorizationState) error {
	return s.Notify(ctx, domain.AuthorizationChangeMessage{State: state})
}

// RequestAuthorization asks the user to visit url and enter code
func (s *HostService) RequestAuthorization(ctx context.Context, url, code, clientID string) error {
	return s.Notify(ctx, domain.RequestAuthorizationMessage{URL: url, Code: code, ClientID: clientID})
}

// NotifyCallState reports a communication session change
func (s *HostService) NotifyCallState(ctx context.Context, call domain.CallStateChangeMessage) error {
	return s.Notify(ctx, call)
}

// NotifyDoNotDisturb reports the do-not-disturb setting
func (s *HostService) NotifyDoNotDisturb(ctx context.Context, enabled bool) error {
	return s.Notify(ctx, domain.DoNotDisturbSettingChangedMessage{DoNotDisturbSettingEnabled: enabled})
}

func (s *HostService) handleInitResponse(ctx context.Context, msg domain.InitResponseMessage) error {
	s.mu.Lock()
	s.support = RendererSupport{Known: true, Supported: msg.IsSupported, APLMaxVersion: msg.APLMaxVersion}
	s.mu.Unlock()

	if !msg.IsSupported {
		s.logger.Error("Renderer does not support this SDK version",
			zap.String("sdkVersion", s.sdkVersion))
		return nil
	}
	s.logger.Info("Renderer handshake complete", zap.String("APLMaxVersion", msg.APLMaxVersion))
	return nil
}

func (s *HostService) handleDeviceWindowState(ctx context.Context, msg domain.DeviceWindowStateMessage) error {
	return s.deps.Documents.UpdateWindowState(ctx, msg.Payload)
}

func (s *HostService) handleFocusAcquireRequest(ctx context.Context, msg domain.FocusAcquireRequestMessage) error {
	result, err := s.deps.Focus.AcquireFocus(ctx, msg.ChannelName, msg.Token)
	if err != nil {
		s.logger.Warn("Focus acquire failed",
			zap.Uint64("token", msg.Token),
			zap.String("channel", msg.ChannelName),
			zap.Error(err))
		result = repositories.FocusResult{Granted: false}
	}
	return s.answerFocus(ctx, msg.Token, result)
}

func (s *HostService) handleFocusReleaseRequest(ctx context.Context, msg domain.FocusReleaseRequestMessage) error {
	result, err := s.deps.Focus.ReleaseFocus(ctx, msg.ChannelName, msg.Token)
	if err != nil {
		s.logger.Warn("Focus release failed",
			zap.Uint64("token", msg.Token),
			zap.String("channel", msg.ChannelName),
			zap.Error(err))
		result = repositories.FocusResult{Granted: false}
	}
	return s.answerFocus(ctx, msg.Token, result)
}

// answerFocus sends the focusResponse first, then any channel changes
func (s *HostService) answerFocus(ctx context.Context, token uint64, result repositories.FocusResult) error {
	if err := s.Notify(ctx, domain.FocusResponseMessage{Token: token, Result: result.Granted}); err != nil {
		return err
	}
	for _, change := range result.Changes {
		err := s.Notify(ctx, domain.OnFocusChangedMessage{Token: change.Token, ChannelState: change.ChannelState})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *HostService) handleFocusConfirmation(ctx context.Context, msg domain.OnFocusChangedReceivedConfirmationMessage) error {
	return s.deps.Focus.ConfirmFocusChanged(ctx, msg.Token)
}

func (s *HostService) handleLogEvent(ctx context.Context, msg domain.LogEventMessage) error {
	if ce := s.rendererLogger.Check(log.ParseLevel(string(msg.Level)), msg.Message); ce != nil {
		ce.Write(zap.String("component", msg.Component), zap.String("level", string(msg.Level)))
	}
	return nil
}
