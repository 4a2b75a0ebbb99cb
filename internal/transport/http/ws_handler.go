package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizbox-service/internal/app"
	"quizbox-service/internal/logging"
	"quizbox-service/internal/player"
)

const closeTimeout = 5 * time.Second

type WSHandler struct {
	service  *app.PlayService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWSHandler builds the websocket play handler. checkOrigin may be nil to
// accept any origin.
func NewWSHandler(service *app.PlayService, checkOrigin func(r *http.Request) bool, log *zap.Logger) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      checkOrigin,
		},
		log: logging.OrNop(log),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type statePayload struct {
	SessionID string       `json:"sessionId"`
	State     player.State `json:"state"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one play session over the socket.
// The session lives as long as the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	// the server's read timeout would otherwise cut idle players off
	_ = conn.SetReadDeadline(time.Time{})

	ctx := r.Context()
	sessionID, st, err := h.service.Open(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		h.service.Close(closeCtx, sessionID)
	}()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.String("session_id", sessionID), zap.Error(err))
				return
			}
		}
	}()

	sendState := func(st player.State) {
		send <- outboundMessage[any]{Type: "state", Payload: statePayload{SessionID: sessionID, State: st}}
	}
	sendError := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	sendState(st)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var (
			next player.State
			err  error
		)
		switch inbound.Type {
		case "start":
			next, err = h.service.Start(ctx, sessionID)
		case "answer":
			var payload answerRequest
			if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
				sendError("invalid answer payload")
				continue
			}
			next, err = h.service.Answer(ctx, sessionID, payload.QuestionIndex, payload.AnswerIDs)
		case "back":
			next, err = h.service.Back(ctx, sessionID)
		case "reset":
			next, err = h.service.Reset(ctx, sessionID)
		default:
			sendError("unsupported message type")
			continue
		}
		if err != nil {
			sendError(err.Error())
			continue
		}
		sendState(next)
	}

	close(send)
	<-writerDone
}
