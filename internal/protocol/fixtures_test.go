package protocol

import "github.com/longjinxiang/alexa-smart-screen-sdk/domain"

// wellFormed returns a conforming record for every message type. Optional
// fields are listed in optionalFields so tests can tell them apart.
func wellFormed() map[domain.MessageType]map[string]any {
	return map[domain.MessageType]map[string]any{
		domain.MessageTypeInitRequest: {
			"type":                  "initRequest",
			"smartScreenSDKVersion": "2.9",
		},
		domain.MessageTypeAlexaStateChanged: {
			"type":  "alexaStateChanged",
			"state": "LISTENING",
		},
		domain.MessageTypeGUIConfiguration: {
			"type":    "guiConfiguration",
			"payload": map[string]any{"appConfig": map[string]any{"description": "device"}},
		},
		domain.MessageTypeRequestAuthorization: {
			"type":     "requestAuthorization",
			"url":      "https://amazon.com/us/code",
			"code":     "ABC123",
			"clientId": "client-1",
		},
		domain.MessageTypeAuthorizationChange: {
			"type":  "authorizationChange",
			"state": "REFRESHED",
		},
		domain.MessageTypeOnFocusChanged: {
			"type":         "onFocusChanged",
			"token":        float64(3),
			"channelState": "FOREGROUND",
		},
		domain.MessageTypeFocusResponse: {
			"type":   "focusResponse",
			"token":  float64(3),
			"result": true,
		},
		domain.MessageTypeRenderTemplate: {
			"type":    "renderTemplate",
			"payload": map[string]any{"type": "BodyTemplate1"},
		},
		domain.MessageTypeRenderPlayerInfo: {
			"type":             "renderPlayerInfo",
			"payload":          map[string]any{"audioItemId": "item-1"},
			"audioPlayerState": "PLAYING",
			"audioOffset":      float64(1500),
		},
		domain.MessageTypeClearTemplateCard: {
			"type": "clearTemplateCard",
		},
		domain.MessageTypeClearPlayerInfoCard: {
			"type": "clearPlayerInfoCard",
		},
		domain.MessageTypeClearDocument: {
			"type":     "clearDocument",
			"windowId": "main",
		},
		domain.MessageTypeAPLRender: {
			"type":     "aplRender",
			"windowId": "main",
			"token":    "doc-token",
		},
		domain.MessageTypeAPLCore: {
			"type":     "aplCore",
			"windowId": "main",
			"payload":  map[string]any{"type": "build"},
		},
		domain.MessageTypeRenderCaptions: {
			"type":    "renderCaptions",
			"payload": map[string]any{"duration": float64(1000)},
		},
		domain.MessageTypeDoNotDisturbSettingChanged: {
			"type":                       "doNotDisturbSettingChanged",
			"doNotDisturbSettingEnabled": false,
		},
		domain.MessageTypeCallStateChange: {
			"type":                      "callStateChange",
			"callState":                 "INBOUND_RINGING",
			"callType":                  "AUDIO_ONLY",
			"previousSipUserAgentState": "IDLE",
			"currentSipUserAgentState":  "INCOMING",
			"displayName":               "Jane",
			"endpointLabel":             "Kitchen",
			"inboundCalleeName":         "Sam",
			"callProviderType":          "A2A",
			"inboundRingtoneUrl":        "https://example.com/ring.mp3",
			"outboundRingbackUrl":       "https://example.com/back.mp3",
			"isDropIn":                  false,
		},

		domain.MessageTypeInitResponse: {
			"type":          "initResponse",
			"isSupported":   true,
			"APLMaxVersion": "1.4",
		},
		domain.MessageTypeDeviceWindowState: {
			"type":    "deviceWindowState",
			"payload": map[string]any{"defaultWindowId": "main", "instances": []any{}},
		},
		domain.MessageTypeFocusAcquireRequest: {
			"type":        "focusAcquireRequest",
			"token":       float64(7),
			"channelName": "Dialog",
		},
		domain.MessageTypeFocusReleaseRequest: {
			"type":        "focusReleaseRequest",
			"token":       float64(7),
			"channelName": "Dialog",
		},
		domain.MessageTypeOnFocusChangedReceivedConfirmation: {
			"type":  "onFocusChangedReceivedConfirmation",
			"token": float64(7),
		},
		domain.MessageTypeTapToTalk: {
			"type": "tapToTalk",
		},
		domain.MessageTypeHoldToTalk: {
			"type": "holdToTalk",
		},
		domain.MessageTypeRenderStaticDocument: {
			"type":     "renderStaticDocument",
			"token":    "tok1",
			"windowId": "win1",
			"payload":  map[string]any{"document": map[string]any{}},
		},
		domain.MessageTypeExecuteCommands: {
			"type":    "executeCommands",
			"token":   "tok2",
			"payload": map[string]any{"presentationToken": "tok2", "commands": []any{}},
		},
		domain.MessageTypeAPLEvent: {
			"type":     "aplEvent",
			"windowId": "main",
			"payload":  map[string]any{"type": "sendEvent"},
		},
		domain.MessageTypeActivityEvent: {
			"type":  "activityEvent",
			"event": "ACTIVATED",
		},
		domain.MessageTypeNavigationEvent: {
			"type":  "navigationEvent",
			"event": "BACK",
		},
		domain.MessageTypeLogEvent: {
			"type":      "logEvent",
			"level":     "info",
			"component": "App",
			"message":   "started",
		},
		domain.MessageTypeToggleCaptions: {
			"type": "toggleCaptions",
		},
		domain.MessageTypeToggleDoNotDisturb: {
			"type": "toggleDoNotDisturb",
		},
		domain.MessageTypeAcceptCall: {
			"type": "acceptCall",
		},
		domain.MessageTypeStopCall: {
			"type": "stopCall",
		},
		domain.MessageTypeEnableLocalVideo: {
			"type": "enableLocalVideo",
		},
		domain.MessageTypeDisableLocalVideo: {
			"type": "disableLocalVideo",
		},
		domain.MessageTypeSendDTMF: {
			"type":     "sendDtmf",
			"dtmfTone": "5",
		},
	}
}

var optionalFields = map[domain.MessageType]map[string]bool{
	domain.MessageTypeClearDocument: {"windowId": true},
	domain.MessageTypeAPLRender:     {"windowId": true},
	domain.MessageTypeAPLCore:       {"windowId": true},
}

func without(rec map[string]any, key string) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func with(rec map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out[key] = value
	return out
}
