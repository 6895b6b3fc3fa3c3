// Package domain: tipos do widget de chat: eventos publicados a cada
// mutação da conversa e os payloads das rotas /v1/chat.
package domain

import maindomain "github.com/boddenberg/schemexpert-bfa-go/internal/domain"

// ============================================================
// Eventos publicados para os listeners (websocket)
// ============================================================

// EventType identifies what changed in the conversation.
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
	EventToggle  EventType = "toggle"
)

// Event is published on every mutation of the conversation.
// ScrollTo carries the ID of the latest message so the client can keep the
// newest entry in view.
type Event struct {
	Type     EventType               `json:"type"`
	Message  *maindomain.ChatMessage `json:"message,omitempty"`
	Typing   bool                    `json:"typing"`
	Open     bool                    `json:"open"`
	ScrollTo string                  `json:"scrollTo,omitempty"`
}

// ============================================================
// Payloads HTTP
// ============================================================

// SendRequest is the body of POST /v1/chat/messages and of websocket
// frames sent by the client.
type SendRequest struct {
	Text string `json:"text"`
}

// SendResponse returns the model reply appended by a send.
type SendResponse struct {
	Reply maindomain.ChatMessage `json:"reply"`
	View  View                   `json:"view"`
}

// View is the render model of the chat widget.
type View struct {
	Open     bool                     `json:"open"`
	Messages []maindomain.ChatMessage `json:"messages"`
	Typing   bool                     `json:"typing"`
	CanSend  bool                     `json:"canSend"`
	ScrollTo string                   `json:"scrollTo,omitempty"`
}
