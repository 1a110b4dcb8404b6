package domain

import (
	"encoding/json"
	"fmt"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// Direction is relative to the GUI renderer endpoint
type Direction int

const (
	// Inbound messages flow from the host to the renderer.
	Inbound Direction = iota
	// Outbound messages flow from the renderer to the host.
	Outbound
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Opposite returns the other direction
func (d Direction) Opposite() Direction {
	if d == Inbound {
		return Outbound
	}
	return Inbound
}

// MessageType is the discriminant carried in the "type" field of every message
type MessageType string

// Inbound message types (host -> renderer)
const (
	MessageTypeInitRequest                MessageType = "initRequest"
	MessageTypeAlexaStateChanged          MessageType = "alexaStateChanged"
	MessageTypeGUIConfiguration           MessageType = "guiConfiguration"
	MessageTypeRequestAuthorization       MessageType = "requestAuthorization"
	MessageTypeAuthorizationChange        MessageType = "authorizationChange"
	MessageTypeOnFocusChanged             MessageType = "onFocusChanged"
	MessageTypeFocusResponse              MessageType = "focusResponse"
	MessageTypeRenderTemplate             MessageType = "renderTemplate"
	MessageTypeRenderPlayerInfo           MessageType = "renderPlayerInfo"
	MessageTypeClearTemplateCard          MessageType = "clearTemplateCard"
	MessageTypeClearPlayerInfoCard        MessageType = "clearPlayerInfoCard"
	MessageTypeClearDocument              MessageType = "clearDocument"
	MessageTypeAPLRender                  MessageType = "aplRender"
	MessageTypeAPLCore                    MessageType = "aplCore"
	MessageTypeRenderCaptions             MessageType = "renderCaptions"
	MessageTypeDoNotDisturbSettingChanged MessageType = "doNotDisturbSettingChanged"
	MessageTypeCallStateChange            MessageType = "callStateChange"
)

// Outbound message types (renderer -> host)
const (
	MessageTypeInitResponse                       MessageType = "initResponse"
	MessageTypeDeviceWindowState                  MessageType = "deviceWindowState"
	MessageTypeFocusAcquireRequest                MessageType = "focusAcquireRequest"
	MessageTypeFocusReleaseRequest                MessageType = "focusReleaseRequest"
	MessageTypeOnFocusChangedReceivedConfirmation MessageType = "onFocusChangedReceivedConfirmation"
	MessageTypeTapToTalk                          MessageType = "tapToTalk"
	MessageTypeHoldToTalk                         MessageType = "holdToTalk"
	MessageTypeRenderStaticDocument               MessageType = "renderStaticDocument"
	MessageTypeExecuteCommands                    MessageType = "executeCommands"
	MessageTypeAPLEvent                           MessageType = "aplEvent"
	MessageTypeActivityEvent                      MessageType = "activityEvent"
	MessageTypeNavigationEvent                    MessageType = "navigationEvent"
	MessageTypeLogEvent                           MessageType = "logEvent"
	MessageTypeToggleCaptions                     MessageType = "toggleCaptions"
	MessageTypeToggleDoNotDisturb                 MessageType = "toggleDoNotDisturb"
	MessageTypeAcceptCall                         MessageType = "acceptCall"
	MessageTypeStopCall                           MessageType = "stopCall"
	MessageTypeEnableLocalVideo                   MessageType = "enableLocalVideo"
	MessageTypeDisableLocalVideo                  MessageType = "disableLocalVideo"
	MessageTypeSendDTMF                           MessageType = "sendDtmf"
)

var inboundTypes = []MessageType{
	MessageTypeInitRequest,
	MessageTypeAlexaStateChanged,
	MessageTypeGUIConfiguration,
	MessageTypeRequestAuthorization,
	MessageTypeAuthorizationChange,
	MessageTypeOnFocusChanged,
	MessageTypeFocusResponse,
	MessageTypeRenderTemplate,
	MessageTypeRenderPlayerInfo,
	MessageTypeClearTemplateCard,
	MessageTypeClearPlayerInfoCard,
	MessageTypeClearDocument,
	MessageTypeAPLRender,
	MessageTypeAPLCore,
	MessageTypeRenderCaptions,
	MessageTypeDoNotDisturbSettingChanged,
	MessageTypeCallStateChange,
}

var outboundTypes = []MessageType{
	MessageTypeInitResponse,
	MessageTypeDeviceWindowState,
	MessageTypeFocusAcquireRequest,
	MessageTypeFocusReleaseRequest,
	MessageTypeOnFocusChangedReceivedConfirmation,
	MessageTypeTapToTalk,
	MessageTypeHoldToTalk,
	MessageTypeRenderStaticDocument,
	MessageTypeExecuteCommands,
	MessageTypeAPLEvent,
	MessageTypeActivityEvent,
	MessageTypeNavigationEvent,
	MessageTypeLogEvent,
	MessageTypeToggleCaptions,
	MessageTypeToggleDoNotDisturb,
	MessageTypeAcceptCall,
	MessageTypeStopCall,
	MessageTypeEnableLocalVideo,
	MessageTypeDisableLocalVideo,
	MessageTypeSendDTMF,
}

// InboundMessageTypes lists the host -> renderer vocabulary
func InboundMessageTypes() []MessageType {
	return append([]MessageType(nil), inboundTypes...)
}

// OutboundMessageTypes lists the renderer -> host vocabulary
func OutboundMessageTypes() []MessageType {
	return append([]MessageType(nil), outboundTypes...)
}

// MessageTypes lists the vocabulary of the given direction
func MessageTypes(d Direction) []MessageType {
	if d == Inbound {
		return InboundMessageTypes()
	}
	return OutboundMessageTypes()
}

// Direction reports which vocabulary t belongs to; ok is false for unknown tags
func (t MessageType) Direction() (d Direction, ok bool) {
	for _, v := range inboundTypes {
		if v == t {
			return Inbound, true
		}
	}
	for _, v := range outboundTypes {
		if v == t {
			return Outbound, true
		}
	}
	return 0, false
}

// Payload is an opaque record owned by the rendering engine
type Payload map[string]any

// Message is implemented by every protocol message
type Message interface {
	MessageType() MessageType
}

// InboundMessage is a message the host sends to the renderer
type InboundMessage interface {
	Message
	inbound()
}

// OutboundMessage is a message the renderer sends to the host
type OutboundMessage interface {
	Message
	outbound()
}

// Marshal encodes a message as a wire record with its "type" discriminant first
func Marshal(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("marshal message: nil message")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.MessageType(), err)
	}
	tag, err := json.Marshal(m.MessageType())
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.MessageType(), err)
	}

	out := make([]byte, 0, len(body)+len(tag)+9)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// ActivityEvent is an externally defined activity report value
type ActivityEvent string

const (
	ActivityEventActivated   ActivityEvent = "ACTIVATED"
	ActivityEventDeactivated ActivityEvent = "DEACTIVATED"
	ActivityEventOneTime     ActivityEvent = "ONE_TIME"
	ActivityEventInterrupt   ActivityEvent = "INTERRUPT"
	ActivityEventUnknown     ActivityEvent = "UNKNOWN"
)

// NavigationEvent is an externally defined navigation report value
type NavigationEvent string

const (
	NavigationEventBack NavigationEvent = "BACK"
	NavigationEventExit NavigationEvent = "EXIT"
)

// LogLevel is the renderer's log severity vocabulary
type LogLevel string

const (
	LogLevelTrace    LogLevel = "trace"
	LogLevelDebug    LogLevel = "debug"
	LogLevelInfo     LogLevel = "info"
	LogLevelWarn     LogLevel = "warn"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

// InitRequestMessage starts the handshake with the renderer
type InitRequestMessage struct {
	SmartScreenSDKVersion string `json:"smartScreenSDKVersion"`
}

// AlexaStateChangedMessage reports an assistant state transition
type AlexaStateChangedMessage struct {
	State entities.AssistantState `json:"state"`
}

// GUIConfigurationMessage carries the GUI configuration document
type GUIConfigurationMessage struct {
	Payload Payload `json:"payload"`
}

// RequestAuthorizationMessage asks the user to authorize the device
type RequestAuthorizationMessage struct {
	URL      string `json:"url"`
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

// AuthorizationChangeMessage reports an authorization state transition
type AuthorizationChangeMessage struct {
	State entities.AuthorizationState `json:"state"`
}

// OnFocusChangedMessage reports a channel state change for a focus token
type OnFocusChangedMessage struct {
	Token        uint64 `json:"token"`
	ChannelState string `json:"channelState"`
}

// FocusResponseMessage answers a focus acquire or release request
type FocusResponseMessage struct {
	Token  uint64 `json:"token"`
	Result bool   `json:"result"`
}

// RenderTemplateMessage carries a display card template
type RenderTemplateMessage struct {
	Payload Payload `json:"payload"`
}

// RenderPlayerInfoMessage carries audio player metadata
type RenderPlayerInfoMessage struct {
	Payload          Payload                   `json:"payload"`
	AudioPlayerState entities.AudioPlayerState `json:"audioPlayerState"`
	// AudioOffset is the playback offset in milliseconds.
	AudioOffset int64 `json:"audioOffset"`
}

type ClearTemplateCardMessage struct{}

type ClearPlayerInfoCardMessage struct{}

// ClearDocumentMessage clears the document on a window, or the default window
type ClearDocumentMessage struct {
	WindowID string `json:"windowId,omitempty"`
}

// APLRenderMessage asks the renderer to present the document for token
type APLRenderMessage struct {
	WindowID string `json:"windowId,omitempty"`
	Token    string `json:"token"`
}

// APLCoreMessage relays a rendering engine message
type APLCoreMessage struct {
	WindowID string  `json:"windowId,omitempty"`
	Payload  Payload `json:"payload"`
}

// RenderCaptionsMessage carries caption lines
type RenderCaptionsMessage struct {
	Payload Payload `json:"payload"`
}

type DoNotDisturbSettingChangedMessage struct {
	DoNotDisturbSettingEnabled bool `json:"doNotDisturbSettingEnabled"`
}

// CallStateChangeMessage reports a communication session change with call metadata
type CallStateChangeMessage struct {
	CallState                 entities.CallState `json:"callState"`
	CallType                  string             `json:"callType"`
	PreviousSipUserAgentState string             `json:"previousSipUserAgentState"`
	CurrentSipUserAgentState  string             `json:"currentSipUserAgentState"`
	DisplayName               string             `json:"displayName"`
	EndpointLabel             string             `json:"endpointLabel"`
	InboundCalleeName         string             `json:"inboundCalleeName"`
	CallProviderType          string             `json:"callProviderType"`
	InboundRingtoneURL        string             `json:"inboundRingtoneUrl"`
	OutboundRingbackURL       string             `json:"outboundRingbackUrl"`
	IsDropIn                  bool               `json:"isDropIn"`
}

// InitResponseMessage completes the handshake
type InitResponseMessage struct {
	IsSupported   bool   `json:"isSupported"`
	APLMaxVersion string `json:"APLMaxVersion"`
}

// DeviceWindowStateMessage reports the renderer's window layout
type DeviceWindowStateMessage struct {
	Payload Payload `json:"payload"`
}

// FocusAcquireRequestMessage asks the focus manager for a channel
type FocusAcquireRequestMessage struct {
	Token       uint64 `json:"token"`
	ChannelName string `json:"channelName"`
}

// FocusReleaseRequestMessage abandons a focus exchange
type FocusReleaseRequestMessage struct {
	Token       uint64 `json:"token"`
	ChannelName string `json:"channelName"`
}

// OnFocusChangedReceivedConfirmationMessage acknowledges an onFocusChanged
type OnFocusChangedReceivedConfirmationMessage struct {
	Token uint64 `json:"token"`
}

type TapToTalkMessage struct{}

type HoldToTalkMessage struct{}

// RenderStaticDocumentMessage asks the host to render a local document
type RenderStaticDocumentMessage struct {
	Token    string  `json:"token"`
	WindowID string  `json:"windowId"`
	Payload  Payload `json:"payload"`
}

// ExecuteCommandsMessage asks the host to run commands against a document
type ExecuteCommandsMessage struct {
	Token   string  `json:"token"`
	Payload Payload `json:"payload"`
}

// APLEventMessage relays a rendering engine event for a window
type APLEventMessage struct {
	WindowID string  `json:"windowId"`
	Payload  Payload `json:"payload"`
}

type ActivityEventMessage struct {
	Event ActivityEvent `json:"event"`
}

type NavigationEventMessage struct {
	Event NavigationEvent `json:"event"`
}

// LogEventMessage forwards a renderer log line to the host
type LogEventMessage struct {
	Level     LogLevel `json:"level"`
	Component string   `json:"component"`
	Message   string   `json:"message"`
}

type ToggleCaptionsMessage struct{}

type ToggleDoNotDisturbMessage struct{}

type AcceptCallMessage struct{}

type StopCallMessage struct{}

type EnableLocalVideoMessage struct{}

type DisableLocalVideoMessage struct{}

// SendDTMFMessage sends a dual-tone key press during a call
type SendDTMFMessage struct {
	DTMFTone string `json:"dtmfTone"`
}

func (InitRequestMessage) MessageType() MessageType { return MessageTypeInitRequest }
func (AlexaStateChangedMessage) MessageType() MessageType {
	return MessageTypeAlexaStateChanged
}
func (GUIConfigurationMessage) MessageType() MessageType { return MessageTypeGUIConfiguration }
func (RequestAuthorizationMessage) MessageType() MessageType {
	return MessageTypeRequestAuthorization
}
func (AuthorizationChangeMessage) MessageType() MessageType {
	return MessageTypeAuthorizationChange
}
func (OnFocusChangedMessage) MessageType() MessageType      { return MessageTypeOnFocusChanged }
func (FocusResponseMessage) MessageType() MessageType       { return MessageTypeFocusResponse }
func (RenderTemplateMessage) MessageType() MessageType      { return MessageTypeRenderTemplate }
func (RenderPlayerInfoMessage) MessageType() MessageType    { return MessageTypeRenderPlayerInfo }
func (ClearTemplateCardMessage) MessageType() MessageType   { return MessageTypeClearTemplateCard }
func (ClearPlayerInfoCardMessage) MessageType() MessageType { return MessageTypeClearPlayerInfoCard }
func (ClearDocumentMessage) MessageType() MessageType       { return MessageTypeClearDocument }
func (APLRenderMessage) MessageType() MessageType           { return MessageTypeAPLRender }
func (APLCoreMessage) MessageType() MessageType             { return MessageTypeAPLCore }
func (RenderCaptionsMessage) MessageType() MessageType      { return MessageTypeRenderCaptions }
func (DoNotDisturbSettingChangedMessage) MessageType() MessageType {
	return MessageTypeDoNotDisturbSettingChanged
}
func (CallStateChangeMessage) MessageType() MessageType { return MessageTypeCallStateChange }

func (InitResponseMessage) MessageType() MessageType        { return MessageTypeInitResponse }
func (DeviceWindowStateMessage) MessageType() MessageType   { return MessageTypeDeviceWindowState }
func (FocusAcquireRequestMessage) MessageType() MessageType { return MessageTypeFocusAcquireRequest }
func (FocusReleaseRequestMessage) MessageType() MessageType { return MessageTypeFocusReleaseRequest }
func (OnFocusChangedReceivedConfirmationMessage) MessageType() MessageType {
	return MessageTypeOnFocusChangedReceivedConfirmation
}
func (TapToTalkMessage) MessageType() MessageType            { return MessageTypeTapToTalk }
func (HoldToTalkMessage) MessageType() MessageType           { return MessageTypeHoldToTalk }
func (RenderStaticDocumentMessage) MessageType() MessageType { return MessageTypeRenderStaticDocument }
func (ExecuteCommandsMessage) MessageType() MessageType      { return MessageTypeExecuteCommands }
func (APLEventMessage) MessageType() MessageType             { return MessageTypeAPLEvent }
func (ActivityEventMessage) MessageType() MessageType        { return MessageTypeActivityEvent }
func (NavigationEventMessage) MessageType() MessageType      { return MessageTypeNavigationEvent }
func (LogEventMessage) MessageType() MessageType             { return MessageTypeLogEvent }
func (ToggleCaptionsMessage) MessageType() MessageType       { return MessageTypeToggleCaptions }
func (ToggleDoNotDisturbMessage) MessageType() MessageType   { return MessageTypeToggleDoNotDisturb }
func (AcceptCallMessage) MessageType() MessageType           { return MessageTypeAcceptCall }
func (StopCallMessage) MessageType() MessageType             { return MessageTypeStopCall }
func (EnableLocalVideoMessage) MessageType() MessageType     { return MessageTypeEnableLocalVideo }
func (DisableLocalVideoMessage) MessageType() MessageType    { return MessageTypeDisableLocalVideo }
func (SendDTMFMessage) MessageType() MessageType             { return MessageTypeSendDTMF }

func (InitRequestMessage) inbound()                {}
func (AlexaStateChangedMessage) inbound()          {}
func (GUIConfigurationMessage) inbound()           {}
func (RequestAuthorizationMessage) inbound()       {}
func (AuthorizationChangeMessage) inbound()        {}
func (OnFocusChangedMessage) inbound()             {}
func (FocusResponseMessage) inbound()              {}
func (RenderTemplateMessage) inbound()             {}
func (RenderPlayerInfoMessage) inbound()           {}
func (ClearTemplateCardMessage) inbound()          {}
func (ClearPlayerInfoCardMessage) inbound()        {}
func (ClearDocumentMessage) inbound()              {}
func (APLRenderMessage) inbound()                  {}
func (APLCoreMessage) inbound()                    {}
func (RenderCaptionsMessage) inbound()             {}
func (DoNotDisturbSettingChangedMessage) inbound() {}
func (CallStateChangeMessage) inbound()            {}

func (InitResponseMessage) outbound()                       {}
func (DeviceWindowStateMessage) outbound()                  {}
func (FocusAcquireRequestMessage) outbound()                {}
func (FocusReleaseRequestMessage) outbound()                {}
func (OnFocusChangedReceivedConfirmationMessage) outbound() {}
func (TapToTalkMessage) outbound()                          {}
func (HoldToTalkMessage) outbound()                         {}
func (RenderStaticDocumentMessage) outbound()               {}
func (ExecuteCommandsMessage) outbound()                    {}
func (APLEventMessage) outbound()                           {}
func (ActivityEventMessage) outbound()                      {}
func (NavigationEventMessage) outbound()                    {}
func (LogEventMessage) outbound()                           {}
func (ToggleCaptionsMessage) outbound()                     {}
func (ToggleDoNotDisturbMessage) outbound()                 {}
func (AcceptCallMessage) outbound()                         {}
func (StopCallMessage) outbound()                           {}
func (EnableLocalVideoMessage) outbound()                   {}
func (DisableLocalVideoMessage) outbound()                  {}
func (SendDTMFMessage) outbound()                           {}
