package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

func TestDispatcher_EveryTypeReachesItsHandler(t *testing.T) {
	for _, d := range []domain.Direction{domain.Inbound, domain.Outbound} {
		disp := NewDispatcher(d, WithLogger(zaptest.NewLogger(t)))

		var got []domain.MessageType
		for _, tag := range domain.MessageTypes(d) {
			require.NoError(t, disp.Handle(tag, func(_ context.Context, msg domain.Message) error {
				got = append(got, msg.MessageType())
				return nil
			}))
		}

		fixtures := wellFormed()
		for _, tag := range domain.MessageTypes(d) {
			data, err := json.Marshal(fixtures[tag])
			require.NoError(t, err)
			require.NoError(t, disp.Dispatch(context.Background(), data), "%s", tag)
		}
		assert.Equal(t, domain.MessageTypes(d), got)
	}
}

func TestDispatcher_HandleRejectsForeignTypes(t *testing.T) {
	disp := NewDispatcher(domain.Outbound)
	noop := func(context.Context, domain.Message) error { return nil }

	assert.ErrorIs(t, disp.Handle(domain.MessageTypeAlexaStateChanged, noop), ErrWrongDirection)
	assert.ErrorIs(t, disp.Handle("pong", noop), ErrUnknownMessageType)
	assert.Error(t, disp.Handle(domain.MessageTypeTapToTalk, nil))
	assert.NoError(t, disp.Handle(domain.MessageTypeTapToTalk, noop))
}

func TestOn_TypedHandler(t *testing.T) {
	disp := NewDispatcher(domain.Inbound)

	var states []entities.AssistantState
	require.NoError(t, On(disp, func(_ context.Context, msg domain.AlexaStateChangedMessage) error {
		states = append(states, msg.State)
		return nil
	}))

	require.NoError(t, disp.Dispatch(context.Background(), []byte(`{"type":"alexaStateChanged","state":"THINKING"}`)))
	assert.Equal(t, []entities.AssistantState{entities.AssistantStateThinking}, states)

	err := On(disp, func(context.Context, domain.TapToTalkMessage) error { return nil })
	assert.ErrorIs(t, err, ErrWrongDirection)
}

func TestDispatcher_RepeatedStateIsAccepted(t *testing.T) {
	disp := NewDispatcher(domain.Inbound)

	calls := 0
	require.NoError(t, On(disp, func(context.Context, domain.AlexaStateChangedMessage) error {
		calls++
		return nil
	}))

	msg := []byte(`{"type":"alexaStateChanged","state":"IDLE"}`)
	require.NoError(t, disp.Dispatch(context.Background(), msg))
	require.NoError(t, disp.Dispatch(context.Background(), msg))
	assert.Equal(t, 2, calls)
}

func TestDispatcher_RejectedMessagesDoNotStopProcessing(t *testing.T) {
	var rejected []ErrorKind
	disp := NewDispatcher(domain.Outbound,
		WithLogger(zaptest.NewLogger(t)),
		WithRejectHandler(func(_ context.Context, err error) {
			rejected = append(rejected, KindOf(err))
		}),
	)

	var handled []domain.MessageType
	record := func(_ context.Context, msg domain.Message) error {
		handled = append(handled, msg.MessageType())
		return nil
	}
	require.NoError(t, disp.Handle(domain.MessageTypeTapToTalk, record))
	require.NoError(t, disp.Handle(domain.MessageTypeHoldToTalk, record))

	stream := []string{
		`{"type":"tapToTalk"}`,
		`{"type":"nope"}`,
		`{"type":"alexaStateChanged","state":"IDLE"}`,
		`{"type":"sendDtmf"}`,
		`not json`,
		`{"type":"holdToTalk"}`,
	}
	for _, m := range stream {
		_ = disp.Dispatch(context.Background(), []byte(m))
	}

	assert.Equal(t, []domain.MessageType{domain.MessageTypeTapToTalk, domain.MessageTypeHoldToTalk}, handled)
	assert.Equal(t, []ErrorKind{
		KindUnknownMessageType,
		KindWrongDirection,
		KindSchemaViolation,
		KindSchemaViolation,
	}, rejected)
}

func TestDispatcher_Fallback(t *testing.T) {
	var unhandled []domain.MessageType
	disp := NewDispatcher(domain.Inbound, WithFallback(func(_ context.Context, msg domain.Message) error {
		unhandled = append(unhandled, msg.MessageType())
		return nil
	}))

	require.NoError(t, disp.Dispatch(context.Background(), []byte(`{"type":"clearTemplateCard"}`)))
	assert.Equal(t, []domain.MessageType{domain.MessageTypeClearTemplateCard}, unhandled)

	silent := NewDispatcher(domain.Inbound)
	assert.NoError(t, silent.Dispatch(context.Background(), []byte(`{"type":"clearTemplateCard"}`)))
}

func TestDispatcher_HandlerErrorIsReported(t *testing.T) {
	disp := NewDispatcher(domain.Outbound)
	boom := errors.New("boom")
	require.NoError(t, disp.Handle(domain.MessageTypeStopCall, func(context.Context, domain.Message) error {
		return boom
	}))

	err := disp.Dispatch(context.Background(), []byte(`{"type":"stopCall"}`))
	assert.ErrorIs(t, err, boom)
}

func TestDispatcher_RunPreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	disp := NewDispatcher(domain.Outbound, WithQueueSize(8))

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	require.NoError(t, On(disp, func(_ context.Context, msg domain.SendDTMFMessage) error {
		if msg.DTMFTone == "A" {
			time.Sleep(50 * time.Millisecond)
		}
		mu.Lock()
		order = append(order, msg.DTMFTone)
		n := len(order)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- disp.Run(ctx) }()

	for _, tone := range []string{"A", "B", "C"} {
		data, err := EncodeOutbound(domain.SendDTMFMessage{DTMFTone: tone})
		require.NoError(t, err)
		require.NoError(t, disp.Submit(ctx, data))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not processed")
	}

	mu.Lock()
	assert.Equal(t, []string{"A", "B", "C"}, order)
	mu.Unlock()

	cancel()
	require.NoError(t, <-runErr)
	assert.ErrorIs(t, disp.Submit(context.Background(), []byte(`{"type":"tapToTalk"}`)), ErrDispatcherClosed)
}

func TestDispatcher_SubmitRecord(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	disp := NewDispatcher(domain.Inbound)
	got := make(chan domain.Message, 1)
	require.NoError(t, On(disp, func(_ context.Context, msg domain.FocusResponseMessage) error {
		got <- msg
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = disp.Run(ctx) }()

	require.NoError(t, disp.SubmitRecord(ctx, map[string]any{"type": "focusResponse", "token": 4, "result": false}))

	select {
	case msg := <-got:
		assert.Equal(t, domain.FocusResponseMessage{Token: 4, Result: false}, msg)
	case <-time.After(time.Second):
		t.Fatal("record was not dispatched")
	}
	cancel()
}

func TestDispatcher_SubmitHonorsContext(t *testing.T) {
	disp := NewDispatcher(domain.Inbound, WithQueueSize(1))
	require.NoError(t, disp.Submit(context.Background(), []byte(`{"type":"clearTemplateCard"}`)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := disp.Submit(ctx, []byte(`{"type":"clearTemplateCard"}`))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
