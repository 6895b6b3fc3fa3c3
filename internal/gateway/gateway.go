// Package gateway is the AI gateway: it builds prompts, asks the language
// model for recommendations and chat replies, validates what comes back and
// applies the fail-soft policy. Callers never see a transport error.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("gateway")

const (
	opSchemes = "generate_schemes"
	opChat    = "chat"
)

// Gateway implements port.SchemeAdvisor on top of a port.LanguageModel.
type Gateway struct {
	model   port.LanguageModel
	metrics *observability.Metrics
	logger  *zap.Logger
}

var _ port.SchemeAdvisor = (*Gateway)(nil)

// New creates the gateway.
func New(model port.LanguageModel, metrics *observability.Metrics, logger *zap.Logger) *Gateway {
	return &Gateway{model: model, metrics: metrics, logger: logger}
}

// Generate asks the model for schemes matching profile and returns the
// validated batch, or the typed error that prevented it.
func (g *Gateway) Generate(ctx context.Context, profile domain.UserProfile) ([]domain.Scheme, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Generate")
	defer span.End()

	raw, err := g.model.GenerateJSON(ctx, SchemePrompt(profile), responseSchema())
	if err != nil {
		return nil, fmt.Errorf("generate schemes: %w", err)
	}

	schemes, err := DecodeSchemes(raw)
	if err != nil {
		return nil, fmt.Errorf("generate schemes: %w", err)
	}
	span.SetAttributes(attribute.Int("schemes.count", len(schemes)))
	return schemes, nil
}

// GenerateSchemes is the fail-soft form of Generate: any failure yields an
// empty, non-nil list.
func (g *Gateway) GenerateSchemes(ctx context.Context, profile domain.UserProfile) []domain.Scheme {
	start := time.Now()
	g.metrics.IncrGatewayRequest(opSchemes)
	defer func() {
		g.metrics.RecordRequestDuration(opSchemes, time.Since(start))
	}()

	schemes, err := g.Generate(ctx, profile)
	if err != nil {
		reason := failureReason(err)
		g.metrics.IncrFallback(opSchemes, reason)
		g.logger.Warn("scheme generation failed, returning empty list",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return []domain.Scheme{}
	}

	g.logger.Info("schemes generated",
		zap.Int("count", len(schemes)),
		zap.Duration("duration", time.Since(start)),
	)
	return schemes
}

// GetChatResponse answers message given the prior conversation. Blank model
// output and failures resolve to the canned replies.
func (g *Gateway) GetChatResponse(ctx context.Context, history []domain.Turn, message, userContext string) string {
	ctx, span := tracer.Start(ctx, "Gateway.GetChatResponse")
	defer span.End()
	span.SetAttributes(
		attribute.Int("chat.history_len", len(history)),
		attribute.Bool("chat.has_context", userContext != ""),
	)

	start := time.Now()
	g.metrics.IncrGatewayRequest(opChat)
	defer func() {
		g.metrics.RecordRequestDuration(opChat, time.Since(start))
	}()

	reply, err := g.model.Chat(ctx, SystemInstruction(userContext), history, message)
	if err != nil {
		reason := failureReason(err)
		g.metrics.IncrFallback(opChat, reason)
		g.logger.Warn("chat failed, replying offline", zap.String("reason", reason), zap.Error(err))
		return domain.ChatOfflineReply
	}
	if strings.TrimSpace(reply) == "" {
		g.metrics.IncrFallback(opChat, "empty")
		return domain.ChatEmptyReply
	}
	return reply
}

// failureReason buckets an error into a metric label.
func failureReason(err error) string {
	var (
		malformed *domain.ErrMalformedResponse
		timeout   *domain.ErrTimeout
		circuit   *domain.ErrCircuitOpen
	)
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return "no_credentials"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &circuit):
		return "circuit_open"
	default:
		return "transport"
	}
}
