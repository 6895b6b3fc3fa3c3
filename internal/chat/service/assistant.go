// Package service implementa o Assistant, o widget de chat de uma sessão.
//
// ============================================================
// FLUXO DO SEND
// ============================================================
//
//  1. Texto em branco → ErrValidation
//  2. Já existe uma resposta pendente (typing) → ErrConflict
//  3. Anexa a mensagem do usuário e liga o typing
//  4. Monta o histórico com todas as mensagens anteriores (saudação inclusa)
//  5. Chama o Responder fora do lock, com o resumo do perfil como contexto
//  6. Anexa a resposta do modelo e desliga o typing
//
// Cada mutação é publicada para os listeners registrados (websocket).
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	chatdomain "github.com/boddenberg/schemexpert-bfa-go/internal/chat/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/chat/port"
	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// chatTracer é o tracer OpenTelemetry para o módulo de chat.
var chatTracer = otel.Tracer("chat/service")

// Assistant holds one conversation. Safe for concurrent use.
type Assistant struct {
	responder port.Responder
	profiles  port.ProfileSource
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	messages  []domain.ChatMessage
	typing    bool
	open      bool
	listeners map[int]port.Listener
	nextID    int
}

// NewAssistant starts a conversation seeded with the greeting.
// profiles may be nil, in which case no context is sent.
func NewAssistant(responder port.Responder, profiles port.ProfileSource, logger *zap.Logger) *Assistant {
	a := &Assistant{
		responder: responder,
		profiles:  profiles,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]port.Listener),
	}
	a.messages = []domain.ChatMessage{a.newMessage(domain.RoleModel, domain.ChatGreeting)}
	return a
}

// Subscribe registers l for every future event and returns a function that
// removes it.
func (a *Assistant) Subscribe(l port.Listener) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Toggle opens or closes the widget and reports the new state.
func (a *Assistant) Toggle() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.open = !a.open
	a.publish(chatdomain.Event{Type: chatdomain.EventToggle, Open: a.open, Typing: a.typing})
	return a.open
}

// Messages returns a copy of the conversation in append order.
func (a *Assistant) Messages() []domain.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ChatMessage(nil), a.messages...)
}

// Typing reports whether a reply is pending.
func (a *Assistant) Typing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.typing
}

// View renders the widget.
func (a *Assistant) View() chatdomain.View {
	a.mu.Lock()
	defer a.mu.Unlock()

	return chatdomain.View{
		Open:     a.open,
		Messages: append([]domain.ChatMessage(nil), a.messages...),
		Typing:   a.typing,
		CanSend:  !a.typing,
		ScrollTo: a.messages[len(a.messages)-1].ID,
	}
}

// Send appends the user's text, asks for a reply and appends it.
// Only one exchange may be outstanding at a time.
func (a *Assistant) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	ctx, span := chatTracer.Start(ctx, "Assistant.Send")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, &domain.ErrValidation{Field: "text", Message: "message must not be blank"}
	}

	a.mu.Lock()
	if a.typing {
		a.mu.Unlock()
		return domain.ChatMessage{}, &domain.ErrConflict{Message: "a reply is still pending"}
	}
	history := make([]domain.Turn, len(a.messages))
	for i, m := range a.messages {
		history[i] = domain.Turn{Role: m.Role, Text: m.Text}
	}
	a.append(a.newMessage(domain.RoleUser, text))
	a.setTyping(true)
	a.mu.Unlock()

	userContext := ""
	if a.profiles != nil {
		if p := a.profiles.Profile(); p != nil {
			userContext = p.Summary()
		}
	}
	span.SetAttributes(
		attribute.Int("chat.history_len", len(history)),
		attribute.Bool("chat.has_context", userContext != ""),
	)

	reply := a.responder.GetChatResponse(ctx, history, text, userContext)

	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.newMessage(domain.RoleModel, reply)
	a.append(msg)
	a.setTyping(false)

	a.logger.Debug("chat exchange completed",
		zap.Int("messages", len(a.messages)),
		zap.Int("reply_length", len(reply)),
	)
	return msg, nil
}

// ============================================================
// Mutações, chamadas com a.mu travado
// ============================================================

func (a *Assistant) append(m domain.ChatMessage) {
	a.messages = append(a.messages, m)
	a.publish(chatdomain.Event{Type: chatdomain.EventMessage, Message: &m, Typing: a.typing, Open: a.open, ScrollTo: m.ID})
}

func (a *Assistant) setTyping(v bool) {
	a.typing = v
	last := a.messages[len(a.messages)-1].ID
	a.publish(chatdomain.Event{Type: chatdomain.EventTyping, Typing: v, Open: a.open, ScrollTo: last})
}

func (a *Assistant) publish(e chatdomain.Event) {
	for _, l := range a.listeners {
		l(e)
	}
}

func (a *Assistant) newMessage(role domain.Role, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: a.now(),
	}
}
