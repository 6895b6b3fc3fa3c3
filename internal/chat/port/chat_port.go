// Package port: interfaces de que o assistente de chat depende.
//
// O Assistant não conhece o gateway nem o controller concretos: recebe um
// Responder para gerar respostas e um ProfileSource (somente leitura) para
// personalizar o contexto.
package port

import (
	"context"

	chatdomain "github.com/boddenberg/schemexpert-bfa-go/internal/chat/domain"
	maindomain "github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	mainport "github.com/boddenberg/schemexpert-bfa-go/internal/port"
)

// Responder produces a chat reply. Implementations never fail: errors
// resolve to a canned reply. Satisfied by gateway.Gateway.
type Responder interface {
	GetChatResponse(ctx context.Context, history []maindomain.Turn, message, userContext string) string
}

// ProfileSource is re-exported so chat wiring only imports this package.
type ProfileSource = mainport.ProfileSource

// Listener receives conversation events. It is called while the assistant
// holds its lock and must not block or call back into the assistant.
type Listener func(chatdomain.Event)
