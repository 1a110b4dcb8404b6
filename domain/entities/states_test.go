package entities

import (
	"errors"
	"testing"
	"time"
)

func TestParseAssistantState(t *testing.T) {
	for _, s := range AssistantStates() {
		got, err := ParseAssistantState(string(s))
		if err != nil {
			t.Errorf("ParseAssistantState(%q) error = %v", s, err)
		}
		if got != s {
			t.Errorf("ParseAssistantState(%q) = %q", s, got)
		}
	}

	for _, raw := range []string{"", "idle", "SLEEPING", "Listening "} {
		got, err := ParseAssistantState(raw)
		if !errors.Is(err, ErrUnknownVariant) {
			t.Errorf("ParseAssistantState(%q) error = %v, want ErrUnknownVariant", raw, err)
		}
		if got != AssistantStateUnknown {
			t.Errorf("ParseAssistantState(%q) = %q, want UNKNOWN", raw, got)
		}
	}
}

func TestParseCallState(t *testing.T) {
	for _, s := range CallStates() {
		got, err := ParseCallState(string(s))
		if err != nil || got != s {
			t.Errorf("ParseCallState(%q) = %q, %v", s, got, err)
		}
	}

	got, err := ParseCallState("ON_HOLD")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Expected ErrUnknownVariant, got %v", err)
	}
	if got != CallStateUnknown {
		t.Errorf("Expected UNKNOWN, got %q", got)
	}
}

func TestParseAudioPlayerState(t *testing.T) {
	for _, s := range AudioPlayerStates() {
		got, err := ParseAudioPlayerState(string(s))
		if err != nil || got != s {
			t.Errorf("ParseAudioPlayerState(%q) = %q, %v", s, got, err)
		}
	}

	got, err := ParseAudioPlayerState("UNKNOWN")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Expected ErrUnknownVariant, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty state, got %q", got)
	}
}

func TestParseAuthorizationState(t *testing.T) {
	for _, s := range AuthorizationStates() {
		got, err := ParseAuthorizationState(string(s))
		if err != nil || got != s {
			t.Errorf("ParseAuthorizationState(%q) = %q, %v", s, got, err)
		}
	}

	if _, err := ParseAuthorizationState("REVOKED"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Expected ErrUnknownVariant, got %v", err)
	}
}

func TestStateVocabularySizes(t *testing.T) {
	if n := len(AssistantStates()); n != 9 {
		t.Errorf("Expected 9 assistant states, got %d", n)
	}
	if n := len(CallStates()); n != 6 {
		t.Errorf("Expected 6 call states, got %d", n)
	}
	if n := len(AudioPlayerStates()); n != 6 {
		t.Errorf("Expected 6 audio player states, got %d", n)
	}
	if n := len(AuthorizationStates()); n != 4 {
		t.Errorf("Expected 4 authorization states, got %d", n)
	}
}

func TestFocusRequestLifecycle(t *testing.T) {
	req := NewFocusRequest(7, "dialog")

	if !req.IsPending() {
		t.Fatalf("Expected new request to be pending, got %s", req.Status)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	req.Resolve(true)
	if req.Status != FocusStatusGranted {
		t.Errorf("Expected GRANTED, got %s", req.Status)
	}
	if req.ResolvedAt == nil {
		t.Error("ResolvedAt should be set after Resolve")
	}

	req.Release()
	if req.Status != FocusStatusReleased {
		t.Errorf("Expected RELEASED, got %s", req.Status)
	}
}

func TestFocusRequestIsStale(t *testing.T) {
	req := NewFocusRequest(1, "content")
	req.RequestedAt = time.Now().Add(-time.Minute)

	if !req.IsStale(time.Now(), 30*time.Second) {
		t.Error("Pending request older than ttl should be stale")
	}

	req.Resolve(false)
	if req.IsStale(time.Now(), 30*time.Second) {
		t.Error("Resolved request should never be stale")
	}
}

func TestFocusRequestValidate(t *testing.T) {
	req := &FocusRequest{Token: 1, Status: FocusStatusPending}
	if err := req.Validate(); err == nil {
		t.Error("Expected error for missing channel name")
	}

	req = &FocusRequest{Token: 1, ChannelName: "dialog", Status: "LOST"}
	if err := req.Validate(); err == nil {
		t.Error("Expected error for invalid status")
	}
}
