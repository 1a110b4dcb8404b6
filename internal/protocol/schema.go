package protocol

import (
	"encoding/json"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// typeField is the discriminant key present on every record
const typeField = "type"

type field struct {
	name     string
	required bool
	schema   *openapi3.Schema
}

type decodeFunc func(data []byte) (domain.Message, error)

type variant struct {
	direction domain.Direction
	fields    []field
	decode    decodeFunc
}

func required(name string, schema *openapi3.Schema) field {
	return field{name: name, required: true, schema: schema}
}

func optional(name string, schema *openapi3.Schema) field {
	return field{name: name, schema: schema}
}

func str() *openapi3.Schema { return openapi3.NewStringSchema() }

func boolean() *openapi3.Schema { return openapi3.NewBoolSchema() }

func record() *openapi3.Schema { return openapi3.NewObjectSchema() }

func integer() *openapi3.Schema { return openapi3.NewIntegerSchema() }

// focusToken is the numeric token of focus exchanges
func focusToken() *openapi3.Schema { return openapi3.NewIntegerSchema().WithMin(0) }

func enumOf[T ~string](values []T) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	for _, v := range values {
		s.Enum = append(s.Enum, string(v))
	}
	return s
}

func decodeAs[T domain.Message](data []byte) (domain.Message, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func inbound(decode decodeFunc, fields ...field) variant {
	return variant{direction: domain.Inbound, fields: fields, decode: decode}
}

func outbound(decode decodeFunc, fields ...field) variant {
	return variant{direction: domain.Outbound, fields: fields, decode: decode}
}

// Assistant and call states are plain strings here so unknown values can fall
// back to UNKNOWN during decoding; the other two vocabularies have no sentinel
// and are enforced by the schema.
var variants = map[domain.MessageType]variant{
	domain.MessageTypeInitRequest: inbound(decodeAs[domain.InitRequestMessage],
		required("smartScreenSDKVersion", str())),
	domain.MessageTypeAlexaStateChanged: inbound(decodeAs[domain.AlexaStateChangedMessage],
		required("state", str())),
	domain.MessageTypeGUIConfiguration: inbound(decodeAs[domain.GUIConfigurationMessage],
		required("payload", record())),
	domain.MessageTypeRequestAuthorization: inbound(decodeAs[domain.RequestAuthorizationMessage],
		required("url", str()),
		required("code", str()),
		required("clientId", str())),
	domain.MessageTypeAuthorizationChange: inbound(decodeAs[domain.AuthorizationChangeMessage],
		required("state", enumOf(entities.AuthorizationStates()))),
	domain.MessageTypeOnFocusChanged: inbound(decodeAs[domain.OnFocusChangedMessage],
		required("token", focusToken()),
		required("channelState", str())),
	domain.MessageTypeFocusResponse: inbound(decodeAs[domain.FocusResponseMessage],
		required("token", focusToken()),
		required("result", boolean())),
	domain.MessageTypeRenderTemplate: inbound(decodeAs[domain.RenderTemplateMessage],
		required("payload", record())),
	domain.MessageTypeRenderPlayerInfo: inbound(decodeAs[domain.RenderPlayerInfoMessage],
		required("payload", record()),
		required("audioPlayerState", enumOf(entities.AudioPlayerStates())),
		required("audioOffset", integer())),
	domain.MessageTypeClearTemplateCard:   inbound(decodeAs[domain.ClearTemplateCardMessage]),
	domain.MessageTypeClearPlayerInfoCard: inbound(decodeAs[domain.ClearPlayerInfoCardMessage]),
	domain.MessageTypeClearDocument: inbound(decodeAs[domain.ClearDocumentMessage],
		optional("windowId", str())),
	domain.MessageTypeAPLRender: inbound(decodeAs[domain.APLRenderMessage],
		optional("windowId", str()),
		required("token", str())),
	domain.MessageTypeAPLCore: inbound(decodeAs[domain.APLCoreMessage],
		optional("windowId", str()),
		required("payload", record())),
	domain.MessageTypeRenderCaptions: inbound(decodeAs[domain.RenderCaptionsMessage],
		required("payload", record())),
	domain.MessageTypeDoNotDisturbSettingChanged: inbound(decodeAs[domain.DoNotDisturbSettingChangedMessage],
		required("doNotDisturbSettingEnabled", boolean())),
	domain.MessageTypeCallStateChange: inbound(decodeAs[domain.CallStateChangeMessage],
		required("callState", str()),
		required("callType", str()),
		required("previousSipUserAgentState", str()),
		required("currentSipUserAgentState", str()),
		required("displayName", str()),
		required("endpointLabel", str()),
		required("inboundCalleeName", str()),
		required("callProviderType", str()),
		required("inboundRingtoneUrl", str()),
		required("outboundRingbackUrl", str()),
		required("isDropIn", boolean())),

	domain.MessageTypeInitResponse: outbound(decodeAs[domain.InitResponseMessage],
		required("isSupported", boolean()),
		required("APLMaxVersion", str())),
	domain.MessageTypeDeviceWindowState: outbound(decodeAs[domain.DeviceWindowStateMessage],
		required("payload", record())),
	domain.MessageTypeFocusAcquireRequest: outbound(decodeAs[domain.FocusAcquireRequestMessage],
		required("token", focusToken()),
		required("channelName", str())),
	domain.MessageTypeFocusReleaseRequest: outbound(decodeAs[domain.FocusReleaseRequestMessage],
		required("token", focusToken()),
		required("channelName", str())),
	domain.MessageTypeOnFocusChangedReceivedConfirmation: outbound(decodeAs[domain.OnFocusChangedReceivedConfirmationMessage],
		required("token", focusToken())),
	domain.MessageTypeTapToTalk:  outbound(decodeAs[domain.TapToTalkMessage]),
	domain.MessageTypeHoldToTalk: outbound(decodeAs[domain.HoldToTalkMessage]),
	domain.MessageTypeRenderStaticDocument: outbound(decodeAs[domain.RenderStaticDocumentMessage],
		required("token", str()),
		required("windowId", str()),
		required("payload", record())),
	domain.MessageTypeExecuteCommands: outbound(decodeAs[domain.ExecuteCommandsMessage],
		required("token", str()),
		required("payload", record())),
	domain.MessageTypeAPLEvent: outbound(decodeAs[domain.APLEventMessage],
		required("windowId", str()),
		required("payload", record())),
	domain.MessageTypeActivityEvent: outbound(decodeAs[domain.ActivityEventMessage],
		required("event", str())),
	domain.MessageTypeNavigationEvent: outbound(decodeAs[domain.NavigationEventMessage],
		required("event", str())),
	domain.MessageTypeLogEvent: outbound(decodeAs[domain.LogEventMessage],
		required("level", str()),
		required("component", str()),
		required("message", str())),
	domain.MessageTypeToggleCaptions:     outbound(decodeAs[domain.ToggleCaptionsMessage]),
	domain.MessageTypeToggleDoNotDisturb: outbound(decodeAs[domain.ToggleDoNotDisturbMessage]),
	domain.MessageTypeAcceptCall:         outbound(decodeAs[domain.AcceptCallMessage]),
	domain.MessageTypeStopCall:           outbound(decodeAs[domain.StopCallMessage]),
	domain.MessageTypeEnableLocalVideo:   outbound(decodeAs[domain.EnableLocalVideoMessage]),
	domain.MessageTypeDisableLocalVideo:  outbound(decodeAs[domain.DisableLocalVideoMessage]),
	domain.MessageTypeSendDTMF: outbound(decodeAs[domain.SendDTMFMessage],
		required("dtmfTone", str())),
}

// Validate checks that record is a well-formed message of the given direction.
// It returns the message type on success.
func Validate(d domain.Direction, record map[string]any) (domain.MessageType, error) {
	if record == nil {
		return "", schemaViolation(d, "", "", "message is not a record", nil)
	}

	raw, ok := record[typeField]
	if !ok {
		return "", schemaViolation(d, "", typeField, "missing discriminant", nil)
	}
	name, ok := raw.(string)
	if !ok {
		return "", schemaViolation(d, "", typeField, "discriminant is not a string", nil)
	}
	tag := domain.MessageType(name)

	owner, known := tag.Direction()
	if !known {
		return tag, &ProtocolError{Kind: KindUnknownMessageType, Direction: d, Type: tag}
	}
	if owner != d {
		return tag, &ProtocolError{
			Kind:      KindWrongDirection,
			Direction: d,
			Type:      tag,
			Reason:    "type belongs to the " + owner.String() + " vocabulary",
		}
	}

	v := variants[tag]
	declared := make(map[string]struct{}, len(v.fields)+1)
	declared[typeField] = struct{}{}
	for _, f := range v.fields {
		declared[f.name] = struct{}{}
		value, present := record[f.name]
		if !present {
			if f.required {
				return tag, schemaViolation(d, tag, f.name, "required field is missing", nil)
			}
			continue
		}
		if err := f.schema.VisitJSON(value); err != nil {
			return tag, schemaViolation(d, tag, f.name, "field has the wrong shape", err)
		}
	}

	var extra []string
	for key := range record {
		if _, ok := declared[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return tag, schemaViolation(d, tag, extra[0], "field is not defined for this type", nil)
	}

	return tag, nil
}

// Schemas returns the object schema of every message type of a direction
func Schemas(d domain.Direction) map[domain.MessageType]*openapi3.Schema {
	out := make(map[domain.MessageType]*openapi3.Schema)
	for _, tag := range domain.MessageTypes(d) {
		out[tag] = objectSchema(tag, variants[tag])
	}
	return out
}

func objectSchema(tag domain.MessageType, v variant) *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithoutAdditionalProperties()
	s.Title = string(tag)
	s.Description = v.direction.String() + " message"
	s.WithProperty(typeField, openapi3.NewStringSchema().WithEnum(string(tag)))
	s.Required = []string{typeField}
	for _, f := range v.fields {
		s.WithProperty(f.name, f.schema)
		if f.required {
			s.Required = append(s.Required, f.name)
		}
	}
	return s
}
