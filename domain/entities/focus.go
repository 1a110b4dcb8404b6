package entities

import (
	"errors"
	"time"
)

// FocusStatus represents the status of a focus request
type FocusStatus string

const (
	FocusStatusPending  FocusStatus = "PENDING"
	FocusStatusGranted  FocusStatus = "GRANTED"
	FocusStatusDenied   FocusStatus = "DENIED"
	FocusStatusReleased FocusStatus = "RELEASED"
	// FocusStatusExpired marks a request whose answer never arrived.
	FocusStatusExpired  FocusStatus = "EXPIRED"
)

// Channel states reported through onFocusChanged. The wire field is free-form;
// these are the values the host's focus manager produces.
const (
	ChannelStateForeground = "FOREGROUND"
	ChannelStateBackground = "BACKGROUND"
	ChannelStateNone       = "NONE"
)

// FocusRequest tracks a renderer-initiated focus exchange until it resolves
type FocusRequest struct {
	Token       uint64      `json:"token"`
	ChannelName string      `json:"channelName"`
	RequestedAt time.Time   `json:"requestedAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
	Status      FocusStatus `json:"status"`
	// ChannelState is the last channel state reported by onFocusChanged.
	ChannelState string `json:"channelState,omitempty"`
}

// NewFocusRequest creates a pending focus request
func NewFocusRequest(token uint64, channelName string) *FocusRequest {
	return &FocusRequest{
		Token:       token,
		ChannelName: channelName,
		RequestedAt: time.Now(),
		Status:      FocusStatusPending,
	}
}

// Resolve records the host's answer to the acquire request
func (f *FocusRequest) Resolve(granted bool) {
	now := time.Now()
	f.ResolvedAt = &now
	if granted {
		f.Status = FocusStatusGranted
	} else {
		f.Status = FocusStatusDenied
	}
}

// Release marks the request as abandoned by the renderer
func (f *FocusRequest) Release() {
	now := time.Now()
	f.ResolvedAt = &now
	f.Status = FocusStatusReleased
}

// Expire marks a pending request as given up on
func (f *FocusRequest) Expire() {
	now := time.Now()
	f.ResolvedAt = &now
	f.Status = FocusStatusExpired
}

// IsPending reports whether the host has not answered yet
func (f *FocusRequest) IsPending() bool {
	return f.Status == FocusStatusPending
}

// IsStale reports whether a pending request has been waiting longer than ttl
func (f *FocusRequest) IsStale(now time.Time, ttl time.Duration) bool {
	return f.IsPending() && now.Sub(f.RequestedAt) > ttl
}

// Validate validates the focus request data
func (f *FocusRequest) Validate() error {
	if f.ChannelName == "" {
		return errors.New("channel name is required")
	}

	switch f.Status {
	case FocusStatusPending, FocusStatusGranted, FocusStatusDenied, FocusStatusReleased, FocusStatusExpired:
	default:
		return errors.New("invalid focus status")
	}

	return nil
}
