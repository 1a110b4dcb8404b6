package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
)

// ErrorKind classifies why a message was rejected
type ErrorKind int

const (
	KindUnknownMessageType ErrorKind = iota + 1
	KindWrongDirection
	KindSchemaViolation
	KindUnknownEnumVariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownMessageType:
		return "unknown_message_type"
	case KindWrongDirection:
		return "wrong_direction"
	case KindSchemaViolation:
		return "schema_violation"
	case KindUnknownEnumVariant:
		return "unknown_enum_variant"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrWrongDirection     = errors.New("wrong direction")
	ErrSchemaViolation    = errors.New("schema violation")
	ErrUnknownEnumVariant = errors.New("unknown enum variant")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnknownMessageType:
		return ErrUnknownMessageType
	case KindWrongDirection:
		return ErrWrongDirection
	case KindSchemaViolation:
		return ErrSchemaViolation
	case KindUnknownEnumVariant:
		return ErrUnknownEnumVariant
	default:
		return nil
	}
}

// ProtocolError describes a message that does not conform to the contract
type ProtocolError struct {
	Kind      ErrorKind
	Direction domain.Direction
	Type      domain.MessageType
	Field     string
	Reason    string
	Err       error
}

func (e *ProtocolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Direction.String())
	b.WriteString(" ")
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString("protocol error")
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " %q", string(e.Type))
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Code returns a stable identifier for logs and metrics
func (e *ProtocolError) Code() string {
	return e.Kind.String()
}

func (e *ProtocolError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of a protocol error, or 0 when err is not one
func KindOf(err error) ErrorKind {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}

func schemaViolation(d domain.Direction, t domain.MessageType, field, reason string, err error) *ProtocolError {
	return &ProtocolError{
		Kind:      KindSchemaViolation,
		Direction: d,
		Type:      t,
		Field:     field,
		Reason:    reason,
		Err:       err,
	}
}
