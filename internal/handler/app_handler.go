package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/schemexpert-bfa-go/internal/apply"
	chatdomain "github.com/boddenberg/schemexpert-bfa-go/internal/chat/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/service"
	"github.com/boddenberg/schemexpert-bfa-go/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Sessão
// ============================================================

// createSessionResponse is returned by POST /v1/sessions.
type createSessionResponse struct {
	Token     string          `json:"token"`
	SessionID string          `json:"sessionId"`
	App       service.AppView `json:"app"`
	Chat      chatdomain.View `json:"chat"`
}

func createSessionHandler(sessions *session.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, token, err := sessions.Create()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, createSessionResponse{
			Token:     token,
			SessionID: sess.ID,
			App:       sess.App.View(),
			Chat:      sess.App.Chat().View(),
		})
	}
}

// deleteSessionHandler handles DELETE /v1/sessions: the browser leaves and
// its state is dropped before the TTL would expire it.
func deleteSessionHandler(sessions *session.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sessions.Delete(sess.ID)
		logger.Debug("session deleted", zap.String("session_id", sess.ID))
		w.WriteHeader(http.StatusNoContent)
	}
}

// withApp resolves the session's controller and hands it to fn.
func withApp(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request, app *service.App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := SessionFromContext(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		fn(w, r, sess.App)
	}
}

// ============================================================
// 2. Aplicação
// ============================================================

func appViewHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		writeJSON(w, http.StatusOK, app.View())
	})
}

func appStartHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		app.Start()
		writeJSON(w, http.StatusOK, app.View())
	})
}

func appBackHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		app.Back()
		writeJSON(w, http.StatusOK, app.View())
	})
}

func appResetHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		app.Reset()
		writeJSON(w, http.StatusOK, app.View())
	})
}

func appRetryHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/app/retry")
		defer span.End()

		if _, err := app.Retry(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.View())
	})
}

// ============================================================
// 3. Wizard
// ============================================================

func wizardViewHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		writeJSON(w, http.StatusOK, app.WizardView())
	})
}

// wizardUpdateHandler handles PATCH /v1/app/wizard/profile.
//
// Body: {"age": 25, "occupation": "Student"} (any subset of profile fields).
func wizardUpdateHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON object of profile fields")
			return
		}
		if err := app.UpdateProfile(patch); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.WizardView())
	})
}

func wizardNextHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		if err := app.WizardNext(); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.WizardView())
	})
}

func wizardBackHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		if err := app.WizardBack(); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.WizardView())
	})
}

// wizardSubmitHandler handles POST /v1/app/wizard/submit. It blocks until
// the recommendations arrive (or the gateway gives up) and returns the
// whole application view.
func wizardSubmitHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/app/wizard/submit")
		defer span.End()

		schemes, err := app.Submit(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("schemes.count", len(schemes)))
		writeJSON(w, http.StatusOK, app.View())
	})
}

// ============================================================
// 4. Resultados & diálogo
// ============================================================

func resultsViewHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		writeJSON(w, http.StatusOK, app.ResultsView())
	})
}

func selectSchemeHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		schemeID := chi.URLParam(r, "schemeId")
		if err := app.Select(schemeID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, app.DialogView())
	})
}

func dialogViewHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		writeJSON(w, http.StatusOK, app.DialogView())
	})
}

// dialogConfirmResponse tells the client where to navigate.
type dialogConfirmResponse struct {
	Navigation apply.Navigation `json:"navigation"`
	Dialog     apply.View       `json:"dialog"`
}

func dialogConfirmHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		nav, err := app.Confirm()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dialogConfirmResponse{Navigation: nav, Dialog: app.DialogView()})
	})
}

func dialogCloseHandler(logger *zap.Logger) http.HandlerFunc {
	return withApp(logger, func(w http.ResponseWriter, r *http.Request, app *service.App) {
		app.CloseDialog()
		writeJSON(w, http.StatusOK, app.DialogView())
	})
}
