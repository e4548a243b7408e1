package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

type WSHandler struct {
	service     *app.GameService
	defaultMode domain.Mode
	upgrader    websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultMode domain.Mode) *WSHandler {
	return &WSHandler{
		service:     service,
		defaultMode: defaultMode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type endedPayload struct {
	Score      int    `json:"score"`
	PlayerName string `json:"playerName"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a game for the player and streams its
// state until the game ends or the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity := domain.Identity{
		Name:  r.URL.Query().Get("name"),
		Email: r.URL.Query().Get("email"),
	}
	if strings.TrimSpace(identity.Name) == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	mode, err := resolveMode(r.URL.Query().Get("mode"), h.defaultMode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	state, err := h.service.StartGame(ctx, identity, mode)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	id := state.ID
	defer h.service.Leave(ctx, id)

	updates, cancel, err := h.service.Subscribe(ctx, id)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// a single writer owns the connection
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("ws write failed", "game", id, "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		endedSent := false
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// the game was evicted; unblock the read loop
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
						time.Now().Add(time.Second))
					_ = conn.Close()
					return
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: update}}
				if update.Phase == domain.PhaseEnded && !endedSent {
					endedSent = true
					msgs = append(msgs, outboundMessage[any]{Type: "ended", Payload: endedPayload{
						Score:      update.Score,
						PlayerName: update.Player.Name,
					}})
				}
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				break
			}
			result, err := h.service.Submit(ctx, id, payload.Choice)
			if err != nil {
				reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				break
			}
			reply = outboundMessage[any]{Type: "answerResult", Payload: result}
		case "advance":
			if _, err := h.service.Advance(ctx, id); err != nil {
				reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		if reply.Type == "" {
			continue
		}
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
