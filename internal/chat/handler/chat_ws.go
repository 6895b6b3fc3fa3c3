package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chatdomain "github.com/boddenberg/schemexpert-bfa-go/internal/chat/domain"
	maindomain "github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsBuffer    = 32
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is enforced by the CORS policy and the session token
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type string `json:"type"` // send, toggle, ping
	Text string `json:"text,omitempty"`
}

type wsOutbound struct {
	Type     string                  `json:"type"`
	Message  *maindomain.ChatMessage `json:"message,omitempty"`
	Typing   bool                    `json:"typing"`
	Open     bool                    `json:"open"`
	ScrollTo string                  `json:"scrollTo,omitempty"`
	View     *chatdomain.View        `json:"view,omitempty"`
	Code     string                  `json:"code,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Stream handles GET /v1/chat/ws. The first frame is a snapshot of the
// widget, then every mutation of the conversation is pushed as it happens.
// Clients send {"type":"send","text":"..."} to talk to the assistant.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	a, err := h.resolve(r)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("chat ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// the request context is not tied to the hijacked connection
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, wsBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	view := a.View()
	push(writeCh, wsOutbound{Type: "snapshot", View: &view, Typing: view.Typing, Open: view.Open, ScrollTo: view.ScrollTo})

	unsubscribe := a.Subscribe(func(e chatdomain.Event) {
		push(writeCh, wsOutbound{
			Type:     string(e.Type),
			Message:  e.Message,
			Typing:   e.Typing,
			Open:     e.Open,
			ScrollTo: e.ScrollTo,
		})
	})
	defer unsubscribe()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(writeCh, wsOutbound{Type: "pong"})
		case "toggle":
			a.Toggle()
		case "send":
			text := in.Text
			go func() {
				if _, err := a.Send(ctx, text); err != nil {
					push(writeCh, errorFrame(err))
				}
			}()
		default:
			push(writeCh, wsOutbound{Type: "error", Code: "invalid_argument", Error: "unsupported type: " + in.Type})
		}
	}
}

func errorFrame(err error) wsOutbound {
	var (
		validation *maindomain.ErrValidation
		conflict   *maindomain.ErrConflict
	)
	switch {
	case errors.As(err, &validation):
		return wsOutbound{Type: "error", Code: "invalid_argument", Error: validation.Error()}
	case errors.As(err, &conflict):
		return wsOutbound{Type: "error", Code: "conflict", Error: conflict.Error()}
	default:
		return wsOutbound{Type: "error", Code: "internal", Error: "internal error"}
	}
}

// push never blocks: when the buffer is full the oldest frame is dropped.
func push(writeCh chan wsOutbound, out wsOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
