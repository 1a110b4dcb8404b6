package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// Decoded is a validated message together with the record it came from
type Decoded struct {
	Message domain.Message
	Record  map[string]any
	// Fallbacks lists state values that were outside their vocabulary and
	// were mapped to the UNKNOWN sentinel.
	Fallbacks []*ProtocolError
}

// Decode parses one wire record and validates it against the direction's vocabulary
func Decode(d domain.Direction, data []byte) (*Decoded, error) {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, schemaViolation(d, "", "", "invalid JSON format", err)
	}
	return DecodeRecord(d, rec)
}

// DecodeRecord validates an already deserialized record and builds the typed message
func DecodeRecord(d domain.Direction, rec map[string]any) (*Decoded, error) {
	if rec == nil {
		return nil, schemaViolation(d, "", "", "message is not a record", nil)
	}

	// Normalize to JSON primitives so transports may hand over Go-native values.
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, schemaViolation(d, "", "", "record is not serializable", err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, schemaViolation(d, "", "", "record is not serializable", err)
	}

	tag, err := Validate(d, normalized)
	if err != nil {
		return nil, err
	}

	msg, err := variants[tag].decode(data)
	if err != nil {
		return nil, schemaViolation(d, tag, "", "cannot decode fields", err)
	}

	msg, fallbacks := normalizeStates(d, msg)
	return &Decoded{Message: msg, Record: normalized, Fallbacks: fallbacks}, nil
}

func normalizeStates(d domain.Direction, msg domain.Message) (domain.Message, []*ProtocolError) {
	switch m := msg.(type) {
	case domain.AlexaStateChangedMessage:
		state, err := entities.ParseAssistantState(string(m.State))
		if err == nil {
			return m, nil
		}
		m.State = state
		return m, []*ProtocolError{enumFallback(d, m.MessageType(), "state", err)}

	case domain.CallStateChangeMessage:
		state, err := entities.ParseCallState(string(m.CallState))
		if err == nil {
			return m, nil
		}
		m.CallState = state
		return m, []*ProtocolError{enumFallback(d, m.MessageType(), "callState", err)}

	default:
		return msg, nil
	}
}

func enumFallback(d domain.Direction, t domain.MessageType, field string, err error) *ProtocolError {
	return &ProtocolError{
		Kind:      KindUnknownEnumVariant,
		Direction: d,
		Type:      t,
		Field:     field,
		Reason:    "mapped to UNKNOWN",
		Err:       err,
	}
}

// Encode marshals msg and checks that it is a conforming message of direction d.
// Senders must not emit state values outside their vocabulary, so a value that
// would fall back to UNKNOWN on the receiving side is rejected here.
func Encode(d domain.Direction, msg domain.Message) ([]byte, error) {
	data, err := domain.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	decoded, err := Decode(d, data)
	if err != nil {
		return nil, err
	}
	if len(decoded.Fallbacks) > 0 {
		return nil, decoded.Fallbacks[0]
	}
	return data, nil
}

// EncodeInbound encodes a host -> renderer message
func EncodeInbound(msg domain.InboundMessage) ([]byte, error) {
	return Encode(domain.Inbound, msg)
}

// EncodeOutbound encodes a renderer -> host message
func EncodeOutbound(msg domain.OutboundMessage) ([]byte, error) {
	return Encode(domain.Outbound, msg)
}
