package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/marcelovidal/padel-v1-sub001/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeClub подписывает клиента на события матчей конкретного клуба.
func (h *WebSocketHandler) ServeClub(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "id")
	if clubID == "" {
		http.Error(w, "Missing club id", http.StatusBadRequest)
		return
	}
	h.serve(w, r, "club:"+clubID)
}

// ServeMatches подписывает клиента на события матчей без клуба.
func (h *WebSocketHandler) ServeMatches(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "matches")
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		slog.Warn("websocket upgrade failed", "room", room, "error", err)
		return
	}

	client := live.NewClient(h.hub, conn, room)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
