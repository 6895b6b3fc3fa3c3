// Package gemini is the transport to the Gemini generative model.
//
// It only knows how to deliver a request and bring a text answer back:
// timeout, bulkhead, circuit breaker and transport-only retries live here.
// Prompts, schemas and decoding of the answer belong to the gateway package.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

var tracer = otel.Tracer("infra/gemini")

const serviceName = "gemini"

// Options configures the Gemini transport.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, overrides the public endpoint
	HTTPClient *http.Client
	Timeout    time.Duration // per call, covers every retry
	Resilience resilience.Config
}

// Client calls the Gemini API through the official genai SDK.
type Client struct {
	cli      *genai.Client // nil when no credential is configured
	model    string
	timeout  time.Duration
	cfg      resilience.Config
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewClient builds the transport. A missing API key is not fatal: the client
// is returned in a degraded mode where every call fails with
// domain.ErrMissingAPIKey, so the gateway can apply its fail-soft policy.
func NewClient(ctx context.Context, opts Options, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) (*Client, error) {
	c := &Client{
		model:    opts.Model,
		timeout:  opts.Timeout,
		cfg:      opts.Resilience,
		cb:       cb,
		bulkhead: resilience.NewBulkhead(opts.Resilience.MaxConcurrency),
		metrics:  metrics,
		logger:   logger,
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}

	if opts.APIKey == "" {
		logger.Warn("gemini: no API key configured, AI features will use fallbacks")
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.cli = cli
	return c, nil
}

// Name identifies the model in logs.
func (c *Client) Name() string { return "Gemini:" + c.model }

// Configured reports whether a credential is present.
func (c *Client) Configured() bool { return c.cli != nil }

// GenerateJSON asks for application/json constrained by schema and returns
// the raw text of the first candidate.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	ctx, span := tracer.Start(ctx, "GeminiClient.GenerateJSON")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model), attribute.Int("llm.prompt_bytes", len(prompt)))

	contents := []*genai.Content{{Role: string(domain.RoleUser), Parts: []*genai.Part{{Text: prompt}}}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	return c.generate(ctx, "generate_json", contents, config)
}

// Chat replays history followed by message under the given system
// instruction. Nothing is retained between calls.
func (c *Client) Chat(ctx context.Context, systemInstruction string, history []domain.Turn, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "GeminiClient.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model), attribute.Int("chat.history_len", len(history)))

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		contents = append(contents, &genai.Content{Role: string(t.Role), Parts: []*genai.Part{{Text: t.Text}}})
	}
	contents = append(contents, &genai.Content{Role: string(domain.RoleUser), Parts: []*genai.Part{{Text: message}}})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	return c.generate(ctx, "chat", contents, config)
}

func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	if c.cli == nil {
		return "", &domain.ErrExternalService{Service: serviceName, Err: domain.ErrMissingAPIKey}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return "", c.mapError(ctx, op, err)
	}
	defer c.bulkhead.Release()

	start := time.Now()
	result, err := c.cb.Execute(func() (any, error) {
		var resp *genai.GenerateContentResponse
		innerErr := resilience.RetryIf(ctx, c.cfg, IsTransient, func() error {
			r, err := c.cli.Models.GenerateContent(ctx, c.model, contents, config)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return resp, nil
	})
	c.metrics.RecordRequestDuration("gemini_"+op, time.Since(start))

	if err != nil {
		return "", c.mapError(ctx, op, err)
	}

	resp := result.(*genai.GenerateContentResponse)
	if resp.UsageMetadata != nil {
		c.metrics.RecordTokens(int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}
	return candidateText(resp), nil
}

func (c *Client) mapError(ctx context.Context, op string, err error) error {
	c.metrics.IncrExternalError(serviceName)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.logger.Warn("gemini circuit open", zap.String("op", op))
		return &domain.ErrCircuitOpen{Service: serviceName}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		c.logger.Warn("gemini call timed out", zap.String("op", op), zap.Duration("timeout", c.timeout))
		return &domain.ErrTimeout{Operation: "gemini " + op}
	default:
		c.logger.Error("gemini call failed", zap.String("op", op), zap.Error(err))
		return &domain.ErrExternalService{Service: serviceName, Err: err}
	}
}

// candidateText joins the non-thought text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// IsTransient reports whether err is a transport-class failure worth
// retrying: network errors, HTTP 429 and 5xx. Anything else (bad request,
// auth, malformed payloads) is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return retryableStatus(apiErrPtr.Code)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
