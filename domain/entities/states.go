package entities

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when a state value is outside its vocabulary
var ErrUnknownVariant = errors.New("unknown variant")

// AssistantState represents the voice interaction lifecycle reported by the host
type AssistantState string

const (
	AssistantStateUnknown      AssistantState = "UNKNOWN"
	AssistantStateDisconnected AssistantState = "DISCONNECTED"
	AssistantStateConnecting   AssistantState = "CONNECTING"
	AssistantStateConnected    AssistantState = "CONNECTED"
	AssistantStateIdle         AssistantState = "IDLE"
	AssistantStateListening    AssistantState = "LISTENING"
	// AssistantStateExpecting means the assistant expects a response from the user.
	AssistantStateExpecting AssistantState = "EXPECTING"
	// AssistantStateThinking means input is complete and the assistant awaits the cloud.
	AssistantStateThinking AssistantState = "THINKING"
	AssistantStateSpeaking AssistantState = "SPEAKING"
)

var assistantStates = []AssistantState{
	AssistantStateUnknown,
	AssistantStateDisconnected,
	AssistantStateConnecting,
	AssistantStateConnected,
	AssistantStateIdle,
	AssistantStateListening,
	AssistantStateExpecting,
	AssistantStateThinking,
	AssistantStateSpeaking,
}

// AssistantStates returns every assistant state in declaration order
func AssistantStates() []AssistantState {
	return append([]AssistantState(nil), assistantStates...)
}

// IsValid reports whether s is a member of the vocabulary
func (s AssistantState) IsValid() bool {
	for _, v := range assistantStates {
		if s == v {
			return true
		}
	}
	return false
}

// ParseAssistantState maps a wire value to an AssistantState.
// Unknown values yield AssistantStateUnknown and an error wrapping ErrUnknownVariant.
func ParseAssistantState(value string) (AssistantState, error) {
	s := AssistantState(value)
	if !s.IsValid() {
		return AssistantStateUnknown, fmt.Errorf("assistant state %q: %w", value, ErrUnknownVariant)
	}
	return s, nil
}

// CallState represents the communication session lifecycle
type CallState string

const (
	CallStateUnknown          CallState = "UNKNOWN"
	CallStateConnecting       CallState = "CONNECTING"
	CallStateInboundRinging   CallState = "INBOUND_RINGING"
	CallStateCallConnected    CallState = "CALL_CONNECTED"
	CallStateCallDisconnected CallState = "CALL_DISCONNECTED"
	// CallStateNone means there is no call state to relay to the user.
	CallStateNone CallState = "NONE"
)

var callStates = []CallState{
	CallStateUnknown,
	CallStateConnecting,
	CallStateInboundRinging,
	CallStateCallConnected,
	CallStateCallDisconnected,
	CallStateNone,
}

// CallStates returns every call state in declaration order
func CallStates() []CallState {
	return append([]CallState(nil), callStates...)
}

// IsValid reports whether s is a member of the vocabulary
func (s CallState) IsValid() bool {
	for _, v := range callStates {
		if s == v {
			return true
		}
	}
	return false
}

// ParseCallState maps a wire value to a CallState.
// Unknown values yield CallStateUnknown and an error wrapping ErrUnknownVariant.
func ParseCallState(value string) (CallState, error) {
	s := CallState(value)
	if !s.IsValid() {
		return CallStateUnknown, fmt.Errorf("call state %q: %w", value, ErrUnknownVariant)
	}
	return s, nil
}

// AudioPlayerState qualifies how a player info payload should be interpreted
type AudioPlayerState string

const (
	AudioPlayerStateIdle           AudioPlayerState = "IDLE"
	AudioPlayerStatePlaying        AudioPlayerState = "PLAYING"
	AudioPlayerStateStopped        AudioPlayerState = "STOPPED"
	AudioPlayerStatePaused         AudioPlayerState = "PAUSED"
	AudioPlayerStateBufferUnderrun AudioPlayerState = "BUFFER_UNDERRUN"
	AudioPlayerStateFinished       AudioPlayerState = "FINISHED"
)

var audioPlayerStates = []AudioPlayerState{
	AudioPlayerStateIdle,
	AudioPlayerStatePlaying,
	AudioPlayerStateStopped,
	AudioPlayerStatePaused,
	AudioPlayerStateBufferUnderrun,
	AudioPlayerStateFinished,
}

// AudioPlayerStates returns every audio player state in declaration order
func AudioPlayerStates() []AudioPlayerState {
	return append([]AudioPlayerState(nil), audioPlayerStates...)
}

// IsValid reports whether s is a member of the vocabulary
func (s AudioPlayerState) IsValid() bool {
	for _, v := range audioPlayerStates {
		if s == v {
			return true
		}
	}
	return false
}

// ParseAudioPlayerState maps a wire value to an AudioPlayerState.
// There is no sentinel member, so unknown values return an empty state.
func ParseAudioPlayerState(value string) (AudioPlayerState, error) {
	s := AudioPlayerState(value)
	if !s.IsValid() {
		return "", fmt.Errorf("audio player state %q: %w", value, ErrUnknownVariant)
	}
	return s, nil
}

// AuthorizationState drives whether the renderer should ask for re-authorization
type AuthorizationState string

const (
	AuthorizationStateUninitialized AuthorizationState = "UNINITIALIZED"
	AuthorizationStateRefreshed     AuthorizationState = "REFRESHED"
	AuthorizationStateExpired       AuthorizationState = "EXPIRED"
	AuthorizationStateError         AuthorizationState = "ERROR"
)

var authorizationStates = []AuthorizationState{
	AuthorizationStateUninitialized,
	AuthorizationStateRefreshed,
	AuthorizationStateExpired,
	AuthorizationStateError,
}

// AuthorizationStates returns every authorization state in declaration order
func AuthorizationStates() []AuthorizationState {
	return append([]AuthorizationState(nil), authorizationStates...)
}

// IsValid reports whether s is a member of the vocabulary
func (s AuthorizationState) IsValid() bool {
	for _, v := range authorizationStates {
		if s == v {
			return true
		}
	}
	return false
}

// ParseAuthorizationState maps a wire value to an AuthorizationState.
// There is no sentinel member, so unknown values return an empty state.
func ParseAuthorizationState(value string) (AuthorizationState, error) {
	s := AuthorizationState(value)
	if !s.IsValid() {
		return "", fmt.Errorf("authorization state %q: %w", value, ErrUnknownVariant)
	}
	return s, nil
}
