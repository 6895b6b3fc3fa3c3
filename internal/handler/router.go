package handler

import (
	"net/http"
	"time"

	chathandler "github.com/boddenberg/schemexpert-bfa-go/internal/chat/handler"
	chatservice "github.com/boddenberg/schemexpert-bfa-go/internal/chat/service"
	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// ModelStatus reports whether the language model has credentials.
// Implemented by infra/gemini.Client.
type ModelStatus interface {
	Name() string
	Configured() bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(sessions *session.Store, model ModelStatus, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(model))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	chatH := chathandler.NewHandler(assistantFromRequest, logger)

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Sessão
		// POST /v1/sessions
		// =============================================
		r.Post("/sessions", createSessionHandler(sessions, logger))

		// =============================================
		// 2. Métricas
		// GET /v1/metrics/gateway
		// =============================================
		r.Get("/metrics/gateway", gatewayMetricsHandler(sessions, metrics))

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(sessions, logger))

			r.Delete("/sessions", deleteSessionHandler(sessions, logger))

			// =============================================
			// 3. Aplicação (hero → perfil → resultados)
			// =============================================
			r.Get("/app", appViewHandler(logger))
			r.Post("/app/start", appStartHandler(logger))
			r.Post("/app/back", appBackHandler(logger))
			r.Post("/app/reset", appResetHandler(logger))
			r.Post("/app/retry", appRetryHandler(logger))

			// =============================================
			// 4. Wizard de perfil
			// =============================================
			r.Get("/app/wizard", wizardViewHandler(logger))
			r.Patch("/app/wizard/profile", wizardUpdateHandler(logger))
			r.Post("/app/wizard/next", wizardNextHandler(logger))
			r.Post("/app/wizard/back", wizardBackHandler(logger))
			r.Post("/app/wizard/submit", wizardSubmitHandler(logger))

			// =============================================
			// 5. Resultados & diálogo de aplicação
			// =============================================
			r.Get("/app/results", resultsViewHandler(logger))
			r.Post("/app/schemes/{schemeId}/select", selectSchemeHandler(logger))
			r.Get("/app/dialog", dialogViewHandler(logger))
			r.Post("/app/dialog/confirm", dialogConfirmHandler(logger))
			r.Post("/app/dialog/close", dialogCloseHandler(logger))

			// =============================================
			// 6. Chat
			// =============================================
			r.Get("/chat", chatH.Get)
			r.Post("/chat/toggle", chatH.Toggle)
			r.Post("/chat/messages", chatH.Send)
			r.Get("/chat/ws", chatH.Stream)
		})
	})

	return r
}

func assistantFromRequest(r *http.Request) (*chatservice.Assistant, error) {
	sess, err := SessionFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return sess.App.Chat(), nil
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(model ModelStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: observability.ServiceName, Status: "healthy", LastChecked: now},
		}
		if model != nil {
			s := domain.ServiceHealth{Name: model.Name(), Status: "healthy", LastChecked: now}
			if !model.Configured() {
				s.Status = "degraded"
				s.Detail = "no API key configured, AI features answer with fallbacks"
			}
			services = append(services, s)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func gatewayMetricsHandler(sessions *session.Store, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Len() // refreshes the active sessions gauge
		writeJSON(w, http.StatusOK, metrics.GetGatewaySnapshot())
	}
}
