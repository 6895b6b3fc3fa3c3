// Package handler: chat_handler.go implementa as rotas do widget de chat.
//
//	GET  /v1/chat           → estado atual do widget (mensagens, typing, open)
//	POST /v1/chat/toggle    → abre/fecha o widget
//	POST /v1/chat/messages  → envia uma mensagem e devolve a resposta do modelo
//	GET  /v1/chat/ws        → websocket: eventos typing/message + envio de mensagens
//
// O handler é fino: resolve o Assistant da sessão e delega.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	chatdomain "github.com/boddenberg/schemexpert-bfa-go/internal/chat/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/chat/service"
	maindomain "github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// tracer é o tracer OpenTelemetry para o módulo chat/handler.
var tracer = otel.Tracer("chat/handler")

// Resolver returns the assistant of the session that issued the request.
type Resolver func(r *http.Request) (*service.Assistant, error)

// Handler serves the chat routes.
type Handler struct {
	resolve Resolver
	logger  *zap.Logger
}

// NewHandler creates the chat handler.
func NewHandler(resolve Resolver, logger *zap.Logger) *Handler {
	return &Handler{resolve: resolve, logger: logger}
}

// Get handles GET /v1/chat.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.resolve(r)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, a.View())
}

// Toggle handles POST /v1/chat/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	a, err := h.resolve(r)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	a.Toggle()
	writeJSON(w, http.StatusOK, a.View())
}

// Send handles POST /v1/chat/messages.
//
// Request:  {"text": "What documents do I need?"}
// Response: {"reply": {...}, "view": {...}}
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "POST /v1/chat/messages")
	defer span.End()

	a, err := h.resolve(r)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	var req chatdomain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected {\"text\": \"your message\"}")
		return
	}

	reply, err := a.Send(ctx, req.Text)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, chatdomain.SendResponse{Reply: reply, View: a.View()})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleServiceError mapeia erros de domínio para HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		validation   *maindomain.ErrValidation
		conflict     *maindomain.ErrConflict
		unauthorized *maindomain.ErrUnauthorized
		notFound     *maindomain.ErrNotFound
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	default:
		logger.Error("unexpected error in chat handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
