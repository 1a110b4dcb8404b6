package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/repositories"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

// ErrUnknownFocusToken is returned when releasing a token that is not tracked
var ErrUnknownFocusToken = errors.New("unknown focus token")

// OutboundSender delivers renderer -> host messages
type OutboundSender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) error
}

// RendererConfig holds the renderer's handshake parameters
type RendererConfig struct {
	// SupportedSDKMajor is the host SDK major version this renderer works with.
	SupportedSDKMajor int
	APLMaxVersion     string
}

// rendererState is the last value seen for each state notification
type rendererState struct {
	assistant     *entities.AssistantState
	authorization *entities.AuthorizationState
	call          *domain.CallStateChangeMessage
	doNotDisturb  *bool
}

// RendererService consumes host -> renderer messages and emits renderer -> host messages
type RendererService struct {
	sender OutboundSender
	view   repositories.RendererView
	cfg    RendererConfig
	tokens *FocusTokens
	logger *zap.Logger

	mu    sync.Mutex
	state rendererState

	onHandshake func(ctx context.Context, supported bool) error
}

// NewRendererService creates a new renderer service
func NewRendererService(sender OutboundSender, view repositories.RendererView, tokens *FocusTokens, cfg RendererConfig, logger *zap.Logger) (*RendererService, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if view == nil {
		return nil, errors.New("renderer view is required")
	}
	if tokens == nil {
		tokens = NewFocusTokens()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RendererService{
		sender: sender,
		view:   view,
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
	}, nil
}

// OnHandshake sets a hook run after each initResponse is sent.
// It must be set before messages are dispatched.
func (s *RendererService) OnHandshake(fn func(ctx context.Context, supported bool) error) {
	s.onHandshake = fn
}

// Tokens returns the focus token table
func (s *RendererService) Tokens() *FocusTokens {
	return s.tokens
}

// Register installs a handler for every host -> renderer message type on d
func (s *RendererService) Register(d *protocol.Dispatcher) error {
	return errors.Join(
		protocol.On(d, s.handleInitRequest),
		protocol.On(d, s.handleAlexaStateChanged),
		protocol.On(d, func(ctx context.Context, msg domain.GUIConfigurationMessage) error {
			return s.view.ApplyConfiguration(ctx, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.RequestAuthorizationMessage) error {
			return s.view.ShowAuthorizationRequest(ctx, msg)
		}),
		protocol.On(d, s.handleAuthorizationChange),
		protocol.On(d, s.handleOnFocusChanged),
		protocol.On(d, s.handleFocusResponse),
		protocol.On(d, func(ctx context.Context, msg domain.RenderTemplateMessage) error {
			return s.view.ShowTemplate(ctx, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.RenderPlayerInfoMessage) error {
			return s.view.ShowPlayerInfo(ctx, msg)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.ClearTemplateCardMessage) error {
			return s.view.ClearTemplate(ctx)
		}),
		protocol.On(d, func(ctx context.Context, _ domain.ClearPlayerInfoCardMessage) error {
			return s.view.ClearPlayerInfo(ctx)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.ClearDocumentMessage) error {
			return s.view.ClearDocument(ctx, msg.WindowID)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.APLRenderMessage) error {
			return s.view.RenderDocument(ctx, msg.WindowID, msg.Token)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.APLCoreMessage) error {
			return s.view.ApplyCoreMessage(ctx, msg.WindowID, msg.Payload)
		}),
		protocol.On(d, func(ctx context.Context, msg domain.RenderCaptionsMessage) error {
			return s.view.ShowCaptions(ctx, msg.Payload)
		}),
		protocol.On(d, s.handleDoNotDisturb),
		protocol.On(d, s.handleCallStateChange),
	)
}

// Send sends any renderer -> host message
func (s *RendererService) Send(ctx context.Context, msg domain.OutboundMessage) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.MessageType(), err)
	}
	return nil
}

// RenderStaticDocument asks the host to render a document the renderer supplies
func (s *RendererService) RenderStaticDocument(ctx context.Context, token, windowID string, document, datasources, supportedViewports any) error {
	return s.Send(ctx, protocol.CreateRenderStaticDocumentMessage(token, windowID, document, datasources, supportedViewports))
}

// ExecuteCommands asks the host to run commands against the document identified by token
func (s *RendererService) ExecuteCommands(ctx context.Context, token string, commands any) error {
	return s.Send(ctx, protocol.CreateExecuteCommandsMessage(token, commands))
}

// Log forwards a log line to the host
func (s *RendererService) Log(ctx context.Context, level domain.LogLevel, component, message string) error {
	return s.Send(ctx, domain.LogEventMessage{Level: level, Component: component, Message: message})
}

// AcquireFocus requests channelName from the host and returns the minted token.
// It does not wait for the answer; cb runs when the request is answered or expires.
func (s *RendererService) AcquireFocus(ctx context.Context, channelName string, cb FocusCallback) (uint64, error) {
	req := s.tokens.Mint(channelName, cb)
	err := s.Send(ctx, domain.FocusAcquireRequestMessage{Token: req.Token, ChannelName: channelName})
	if err != nil {
		s.tokens.Forget(req.Token)
		return 0, err
	}
	s.logger.Debug("Focus requested", zap.Uint64("token", req.Token), zap.String("channel", channelName))
	return req.Token, nil
}

// ReleaseFocus abandons the exchange for token
func (s *RendererService) ReleaseFocus(ctx context.Context, token uint64) error {
	req, cb, ok := s.tokens.Release(token)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFocusToken, token)
	}
	if err := s.Send(ctx, domain.FocusReleaseRequestMessage{Token: token, ChannelName: req.ChannelName}); err != nil {
		return err
	}
	if cb != nil {
		cb(req)
	}
	return nil
}

func (s *RendererService) handleInitRequest(ctx context.Context, msg domain.InitRequestMessage) error {
	supported := s.supportsSDK(msg.SmartScreenSDKVersion)
	if !supported {
		s.logger.Warn("Host SDK version not supported",
			zap.String("sdkVersion", msg.SmartScreenSDKVersion),
			zap.Int("supportedMajor", s.cfg.SupportedSDKMajor))
	}
	if err := s.Send(ctx, domain.InitResponseMessage{IsSupported: supported, APLMaxVersion: s.cfg.APLMaxVersion}); err != nil {
		return err
	}
	if s.onHandshake != nil {
		return s.onHandshake(ctx, supported)
	}
	return nil
}

func (s *RendererService) supportsSDK(version string) bool {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return false
	}
	return n == s.cfg.SupportedSDKMajor
}

func (s *RendererService) handleAlexaStateChanged(ctx context.Context, msg domain.AlexaStateChangedMessage) error {
	if !changed(&s.mu, &s.state.assistant, msg.State) {
		return nil
	}
	return s.view.SetAssistantState(ctx, msg.State)
}

func (s *RendererService) handleAuthorizationChange(ctx context.Context, msg domain.AuthorizationChangeMessage) error {
	if !changed(&s.mu, &s.state.authorization, msg.State) {
		return nil
	}
	return s.view.SetAuthorizationState(ctx, msg.State)
}

func (s *RendererService) handleDoNotDisturb(ctx context.Context, msg domain.DoNotDisturbSettingChangedMessage) error {
	if !changed(&s.mu, &s.state.doNotDisturb, msg.DoNotDisturbSettingEnabled) {
		return nil
	}
	return s.view.SetDoNotDisturb(ctx, msg.DoNotDisturbSettingEnabled)
}

func (s *RendererService) handleCallStateChange(ctx context.Context, msg domain.CallStateChangeMessage) error {
	if !changed(&s.mu, &s.state.call, msg) {
		return nil
	}
	return s.view.SetCallState(ctx, msg)
}

// changed stores v in *last and reports whether it differs from the previous value
func changed[T comparable](mu *sync.Mutex, last **T, v T) bool {
	mu.Lock()
	defer mu.Unlock()

	if *last != nil && **last == v {
		return false
	}
	*last = &v
	return true
}

func (s *RendererService) handleFocusResponse(ctx context.Context, msg domain.FocusResponseMessage) error {
	req, cb, ok := s.tokens.Resolve(msg.Token, msg.Result)
	if !ok {
		s.logger.Debug("Focus response for untracked token", zap.Uint64("token", msg.Token))
		return nil
	}
	if cb != nil {
		cb(req)
	}
	return nil
}

func (s *RendererService) handleOnFocusChanged(ctx context.Context, msg domain.OnFocusChangedMessage) error {
	if _, ok := s.tokens.SetChannelState(msg.Token, msg.ChannelState); !ok {
		s.logger.Debug("Focus change for untracked token",
			zap.Uint64("token", msg.Token),
			zap.String("channelState", msg.ChannelState))
	}
	return s.Send(ctx, domain.OnFocusChangedReceivedConfirmationMessage{Token: msg.Token})
}
