package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/app"
)

type WSHandler struct {
	play     *app.PlayService
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(play *app.PlayService, checkOrigin func(r *http.Request) bool, log logrus.FieldLogger) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		play: play,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one play session.
// ?slug= starts a new session, ?session= resumes an existing one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	sessionID := r.URL.Query().Get("session")
	if slug == "" && sessionID == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "missing slug or session")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if sessionID == "" {
		started, err := h.play.Start(ctx, slug)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: wsError(err)})
			return
		}
		sessionID = started.SessionID
	}

	updates, cancel, err := h.play.Watch(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: wsError(err)})
		return
	}
	defer cancel()

	entry := h.log.WithField("session", sessionID)
	entry.Debug("ws session attached")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not allow concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				entry.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// session ended elsewhere
					select {
					case send <- outboundMessage[any]{Type: "ended", Payload: map[string]string{"sessionId": sessionID}}:
					case <-closeSignals:
					}
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		// state changes reach the client through the watch channel
		var opErr error
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid select payload"}})
				continue
			}
			_, opErr = h.play.Select(ctx, sessionID, *payload.Option)
		case "advance":
			_, opErr = h.play.Advance(ctx, sessionID)
		case "restart":
			_, opErr = h.play.Restart(ctx, sessionID)
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}})
			continue
		}
		if opErr != nil {
			push(outboundMessage[any]{Type: "error", Payload: wsError(opErr)})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func wsError(err error) errorPayload {
	_, body := classify(err)
	return errorPayload{Code: body.Code, Message: body.Error}
}
