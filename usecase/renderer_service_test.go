package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/longjinxiang/alexa-smart-screen-sdk/adapters"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

type outboundSender = recordingSender[domain.OutboundMessage]

type rendererFixture struct {
	service    *RendererService
	dispatcher *protocol.Dispatcher
	sender     *outboundSender
	view       *adapters.LoggingView
}

func newRendererFixture(t *testing.T) *rendererFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	sender := &outboundSender{}
	view := adapters.NewLoggingView(logger)
	service, err := NewRendererService(sender, view, nil, RendererConfig{SupportedSDKMajor: 2, APLMaxVersion: "1.4"}, logger)
	require.NoError(t, err)

	d := protocol.NewDispatcher(domain.Inbound, protocol.WithLogger(logger))
	require.NoError(t, service.Register(d))

	return &rendererFixture{service: service, dispatcher: d, sender: sender, view: view}
}

func (f *rendererFixture) dispatch(t *testing.T, msg domain.InboundMessage) {
	t.Helper()
	data, err := protocol.EncodeInbound(msg)
	require.NoError(t, err)
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), data))
}

func TestRendererService_HandlesEveryInboundType(t *testing.T) {
	f := newRendererFixture(t)

	unhandled := 0
	d := protocol.NewDispatcher(domain.Inbound, protocol.WithFallback(func(ctx context.Context, msg domain.Message) error {
		unhandled++
		return nil
	}))
	require.NoError(t, f.service.Register(d))

	messages := []domain.InboundMessage{
		domain.InitRequestMessage{SmartScreenSDKVersion: "2.9"},
		domain.AlexaStateChangedMessage{State: entities.AssistantStateIdle},
		domain.GUIConfigurationMessage{Payload: domain.Payload{}},
		domain.RequestAuthorizationMessage{URL: "u", Code: "c", ClientID: "id"},
		domain.AuthorizationChangeMessage{State: entities.AuthorizationStateRefreshed},
		domain.OnFocusChangedMessage{Token: 1, ChannelState: entities.ChannelStateForeground},
		domain.FocusResponseMessage{Token: 1, Result: true},
		domain.RenderTemplateMessage{Payload: domain.Payload{}},
		domain.RenderPlayerInfoMessage{Payload: domain.Payload{}, AudioPlayerState: entities.AudioPlayerStatePlaying},
		domain.ClearTemplateCardMessage{},
		domain.ClearPlayerInfoCardMessage{},
		domain.ClearDocumentMessage{},
		domain.APLRenderMessage{Token: "doc"},
		domain.APLCoreMessage{Payload: domain.Payload{}},
		domain.RenderCaptionsMessage{Payload: domain.Payload{}},
		domain.DoNotDisturbSettingChangedMessage{DoNotDisturbSettingEnabled: true},
		domain.CallStateChangeMessage{CallState: entities.CallStateConnecting},
	}
	require.Len(t, messages, len(domain.InboundMessageTypes()))

	for _, msg := range messages {
		data, err := protocol.EncodeInbound(msg)
		require.NoError(t, err, msg.MessageType())
		require.NoError(t, d.Dispatch(context.Background(), data), msg.MessageType())
	}

	assert.Zero(t, unhandled)
	// initRequest and onFocusChanged send replies; focusResponse only updates bookkeeping.
	assert.Equal(t, 14, f.view.Snapshot().Updates)
}

func TestRendererService_InitRequest(t *testing.T) {
	tests := []struct {
		version   string
		supported bool
	}{
		{"2.9", true},
		{"2", true},
		{" 2.12.1 ", true},
		{"3.0", false},
		{"1.7", false},
		{"", false},
		{"two", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			f := newRendererFixture(t)
			f.dispatch(t, domain.InitRequestMessage{SmartScreenSDKVersion: tt.version})

			assert.Equal(t, []domain.OutboundMessage{
				domain.InitResponseMessage{IsSupported: tt.supported, APLMaxVersion: "1.4"},
			}, f.sender.Sent())
		})
	}
}

func TestRendererService_RepeatedStatesAreNoOps(t *testing.T) {
	f := newRendererFixture(t)

	f.dispatch(t, domain.AlexaStateChangedMessage{State: entities.AssistantStateListening})
	f.dispatch(t, domain.AlexaStateChangedMessage{State: entities.AssistantStateListening})
	assert.Equal(t, 1, f.view.Snapshot().Updates)

	f.dispatch(t, domain.AlexaStateChangedMessage{State: entities.AssistantStateThinking})
	assert.Equal(t, 2, f.view.Snapshot().Updates)
	assert.Equal(t, entities.AssistantStateThinking, f.view.Snapshot().AssistantState)

	call := domain.CallStateChangeMessage{CallState: entities.CallStateInboundRinging, DisplayName: "Ada"}
	f.dispatch(t, call)
	f.dispatch(t, call)
	assert.Equal(t, 3, f.view.Snapshot().Updates)

	// Same call state with different metadata is a change.
	call.DisplayName = "Grace"
	f.dispatch(t, call)
	assert.Equal(t, 4, f.view.Snapshot().Updates)

	f.dispatch(t, domain.DoNotDisturbSettingChangedMessage{DoNotDisturbSettingEnabled: false})
	f.dispatch(t, domain.DoNotDisturbSettingChangedMessage{DoNotDisturbSettingEnabled: false})
	assert.Equal(t, 5, f.view.Snapshot().Updates)

	f.dispatch(t, domain.AuthorizationChangeMessage{State: entities.AuthorizationStateExpired})
	f.dispatch(t, domain.AuthorizationChangeMessage{State: entities.AuthorizationStateExpired})
	assert.Equal(t, 6, f.view.Snapshot().Updates)
}

func TestRendererService_UnknownAssistantStateIsDelivered(t *testing.T) {
	f := newRendererFixture(t)

	err := f.dispatcher.Dispatch(context.Background(), []byte(`{"type":"alexaStateChanged","state":"DREAMING"}`))
	require.NoError(t, err)
	assert.Equal(t, entities.AssistantStateUnknown, f.view.Snapshot().AssistantState)
}

func TestRendererService_Documents(t *testing.T) {
	f := newRendererFixture(t)

	f.dispatch(t, domain.APLRenderMessage{WindowID: "main", Token: "doc-1"})
	f.dispatch(t, domain.APLRenderMessage{Token: "doc-2"})
	assert.Equal(t, map[string]string{"main": "doc-1", "": "doc-2"}, f.view.Snapshot().Documents)

	f.dispatch(t, domain.ClearDocumentMessage{WindowID: "main"})
	assert.Equal(t, map[string]string{"": "doc-2"}, f.view.Snapshot().Documents)
}

func TestRendererService_AcquireFocus(t *testing.T) {
	f := newRendererFixture(t)
	ctx := context.Background()

	var resolved []entities.FocusRequest
	cb := func(req entities.FocusRequest) { resolved = append(resolved, req) }

	first, err := f.service.AcquireFocus(ctx, "Visual", cb)
	require.NoError(t, err)
	second, err := f.service.AcquireFocus(ctx, "Dialog", cb)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.Equal(t, []domain.OutboundMessage{
		domain.FocusAcquireRequestMessage{Token: first, ChannelName: "Visual"},
		domain.FocusAcquireRequestMessage{Token: second, ChannelName: "Dialog"},
	}, f.sender.Sent())
	assert.Equal(t, 2, f.service.Tokens().Len())

	f.dispatch(t, domain.FocusResponseMessage{Token: first, Result: true})
	f.dispatch(t, domain.FocusResponseMessage{Token: second, Result: false})

	require.Len(t, resolved, 2)
	assert.Equal(t, entities.FocusStatusGranted, resolved[0].Status)
	assert.Equal(t, entities.FocusStatusDenied, resolved[1].Status)
	assert.Equal(t, 1, f.service.Tokens().Len(), "denied token is dropped")

	// A late duplicate answer is ignored.
	f.dispatch(t, domain.FocusResponseMessage{Token: first, Result: false})
	assert.Len(t, resolved, 2)
}

func TestRendererService_AcquireFocusSendFailure(t *testing.T) {
	f := newRendererFixture(t)
	f.sender.err = errors.New("offline")

	_, err := f.service.AcquireFocus(context.Background(), "Visual", nil)
	assert.ErrorIs(t, err, f.sender.err)
	assert.Zero(t, f.service.Tokens().Len())
}

func TestRendererService_OnFocusChanged(t *testing.T) {
	f := newRendererFixture(t)
	ctx := context.Background()

	token, err := f.service.AcquireFocus(ctx, "Visual", nil)
	require.NoError(t, err)
	f.dispatch(t, domain.FocusResponseMessage{Token: token, Result: true})

	f.dispatch(t, domain.OnFocusChangedMessage{Token: token, ChannelState: entities.ChannelStateBackground})
	req, ok := f.service.Tokens().Get(token)
	require.True(t, ok)
	assert.Equal(t, entities.ChannelStateBackground, req.ChannelState)

	f.dispatch(t, domain.OnFocusChangedMessage{Token: token, ChannelState: entities.ChannelStateNone})
	_, ok = f.service.Tokens().Get(token)
	assert.False(t, ok, "NONE ends the exchange")

	// Untracked tokens are still confirmed.
	f.dispatch(t, domain.OnFocusChangedMessage{Token: 999, ChannelState: entities.ChannelStateForeground})

	sent := f.sender.Sent()
	assert.Equal(t, []domain.OutboundMessage{
		domain.OnFocusChangedReceivedConfirmationMessage{Token: token},
		domain.OnFocusChangedReceivedConfirmationMessage{Token: token},
		domain.OnFocusChangedReceivedConfirmationMessage{Token: 999},
	}, sent[1:])
}

func TestRendererService_ReleaseFocus(t *testing.T) {
	f := newRendererFixture(t)
	ctx := context.Background()

	var released entities.FocusRequest
	token, err := f.service.AcquireFocus(ctx, "Visual", func(req entities.FocusRequest) { released = req })
	require.NoError(t, err)

	require.NoError(t, f.service.ReleaseFocus(ctx, token))
	assert.Equal(t, entities.FocusStatusReleased, released.Status)
	assert.Equal(t, domain.FocusReleaseRequestMessage{Token: token, ChannelName: "Visual"}, f.sender.Sent()[1])
	assert.Zero(t, f.service.Tokens().Len())

	assert.ErrorIs(t, f.service.ReleaseFocus(ctx, token), ErrUnknownFocusToken)
}

func TestRendererService_Factories(t *testing.T) {
	f := newRendererFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RenderStaticDocument(ctx, "tok", "main", map[string]any{"type": "APL"}, map[string]any{}, []any{}))
	require.NoError(t, f.service.ExecuteCommands(ctx, "tok", map[string]any{"type": "SpeakItem"}))
	require.NoError(t, f.service.Log(ctx, domain.LogLevelWarn, "ui", "slow frame"))

	sent := f.sender.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, domain.MessageTypeRenderStaticDocument, sent[0].MessageType())
	exec, ok := sent[1].(domain.ExecuteCommandsMessage)
	require.True(t, ok)
	assert.Equal(t, "tok", exec.Payload["presentationToken"])
	assert.Equal(t, domain.LogEventMessage{Level: domain.LogLevelWarn, Component: "ui", Message: "slow frame"}, sent[2])
}

func TestFocusSweeper(t *testing.T) {
	tokens := NewFocusTokens()
	sweeper := NewFocusSweeper(tokens, time.Minute, zaptest.NewLogger(t))

	var expired []entities.FocusRequest
	stale := tokens.Mint("Visual", func(req entities.FocusRequest) { expired = append(expired, req) })
	answered := tokens.Mint("Dialog", nil)
	tokens.Resolve(answered.Token, true)

	assert.Zero(t, sweeper.Sweep(time.Now()))
	assert.Equal(t, 1, sweeper.Sweep(time.Now().Add(2*time.Minute)))

	require.Len(t, expired, 1)
	assert.Equal(t, stale.Token, expired[0].Token)
	assert.Equal(t, entities.FocusStatusExpired, expired[0].Status)

	_, ok := tokens.Get(stale.Token)
	assert.False(t, ok)
	_, ok = tokens.Get(answered.Token)
	assert.True(t, ok, "answered requests are kept")
}

func TestFocusSweeper_RunStopsOnCancel(t *testing.T) {
	sweeper := NewFocusSweeper(NewFocusTokens(), 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
