package repositories

import (
	"context"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
)

// DocumentEngine abstracts the host component that owns APL documents
type DocumentEngine interface {
	// UpdateWindowState receives the renderer's window layout report
	UpdateWindowState(ctx context.Context, state domain.Payload) error
	// RenderStaticDocument renders a document supplied by the renderer itself
	RenderStaticDocument(ctx context.Context, token, windowID string, payload domain.Payload) error
	// ExecuteCommands runs commands against the document identified by token
	ExecuteCommands(ctx context.Context, token string, payload domain.Payload) error
	// HandleEvent receives a rendering engine event raised on a window
	HandleEvent(ctx context.Context, windowID string, payload domain.Payload) error
}

// FocusChange is a channel state change for one focus token
type FocusChange struct {
	Token        uint64
	ChannelState string
}

// FocusResult is the outcome of an acquire or release request.
// Changes are reported to the renderer after the response.
type FocusResult struct {
	Granted bool
	Changes []FocusChange
}

// FocusManager arbitrates channel ownership on behalf of the renderer
type FocusManager interface {
	AcquireFocus(ctx context.Context, channelName string, token uint64) (FocusResult, error)
	ReleaseFocus(ctx context.Context, channelName string, token uint64) (FocusResult, error)
	// ConfirmFocusChanged records that the renderer processed an onFocusChanged
	ConfirmFocusChanged(ctx context.Context, token uint64) error
}

// InteractionManager receives user interactions that start or shape a dialog
type InteractionManager interface {
	TapToTalk(ctx context.Context) error
	HoldToTalk(ctx context.Context) error
	ToggleCaptions(ctx context.Context) error
	ToggleDoNotDisturb(ctx context.Context) error
}

// CallManager controls an active communication session
type CallManager interface {
	AcceptCall(ctx context.Context) error
	StopCall(ctx context.Context) error
	EnableLocalVideo(ctx context.Context) error
	DisableLocalVideo(ctx context.Context) error
	SendDTMF(ctx context.Context, tone string) error
}

// ActivityReporter receives renderer activity and navigation signals
type ActivityReporter interface {
	ReportActivity(ctx context.Context, event domain.ActivityEvent) error
	ReportNavigation(ctx context.Context, event domain.NavigationEvent) error
}
