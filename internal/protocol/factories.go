package protocol

import "github.com/longjinxiang/alexa-smart-screen-sdk/domain"

// CreateRenderStaticDocumentMessage nests the document descriptors under a
// payload with fixed keys, whatever their content.
func CreateRenderStaticDocumentMessage(token, windowID string, document, datasources, supportedViewports any) domain.RenderStaticDocumentMessage {
	return domain.RenderStaticDocumentMessage{
		Token:    token,
		WindowID: windowID,
		Payload: domain.Payload{
			"document":           document,
			"datasources":        datasources,
			"supportedViewports": supportedViewports,
		},
	}
}

// CreateExecuteCommandsMessage wraps a single commands value in the
// one-element sequence the rendering engine expects.
func CreateExecuteCommandsMessage(token string, commands any) domain.ExecuteCommandsMessage {
	return domain.ExecuteCommandsMessage{
		Token: token,
		Payload: domain.Payload{
			"presentationToken": token,
			"commands":          []any{commands},
		},
	}
}
