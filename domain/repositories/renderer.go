package repositories

import (
	"context"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// RendererView abstracts what the renderer presents to the user.
// State setters are only called when the value actually changes.
type RendererView interface {
	ApplyConfiguration(ctx context.Context, config domain.Payload) error

	SetAssistantState(ctx context.Context, state entities.AssistantState) error
	SetAuthorizationState(ctx context.Context, state entities.AuthorizationState) error
	SetCallState(ctx context.Context, call domain.CallStateChangeMessage) error
	SetDoNotDisturb(ctx context.Context, enabled bool) error

	ShowAuthorizationRequest(ctx context.Context, request domain.RequestAuthorizationMessage) error

	ShowTemplate(ctx context.Context, payload domain.Payload) error
	ClearTemplate(ctx context.Context) error
	ShowPlayerInfo(ctx context.Context, info domain.RenderPlayerInfoMessage) error
	ClearPlayerInfo(ctx context.Context) error

	// An empty windowID addresses the default window.
	RenderDocument(ctx context.Context, windowID, token string) error
	ClearDocument(ctx context.Context, windowID string) error
	ApplyCoreMessage(ctx context.Context, windowID string, payload domain.Payload) error

	ShowCaptions(ctx context.Context, payload domain.Payload) error
}
