// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	genai "google.golang.org/genai"
)

// LanguageModel delivers prompts to the generative model and brings raw text back.
// Implemented by infra/gemini.Client.
type LanguageModel interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Chat(ctx context.Context, systemInstruction string, history []domain.Turn, message string) (string, error)
}

// SchemeAdvisor is the fail-soft AI gateway as seen by the application layer.
// Neither method returns an error: failures resolve to an empty list or a
// canned chat reply.
type SchemeAdvisor interface {
	GenerateSchemes(ctx context.Context, profile domain.UserProfile) []domain.Scheme
	GetChatResponse(ctx context.Context, history []domain.Turn, message, userContext string) string
}

// ProfileSource gives read-only access to the current user profile.
// Returns nil when no profile has been submitted yet.
type ProfileSource interface {
	Profile() *domain.UserProfile
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Len() int
}
