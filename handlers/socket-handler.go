package handlers

import (
	"net/http"
	"strings"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/sockets"
	"github.com/Mathu0718/online-todo-mathu/utils"

	"github.com/gorilla/websocket"
)

type SocketHandler struct {
	hub      *sockets.Hub
	upgrader websocket.Upgrader
}

func NewSocketHandler(hub *sockets.Hub) *SocketHandler {
	return &SocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are already filtered by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// inbound is the only client-to-server frame. The join event survives for
// wire compatibility, but the room key is always the authenticated user id:
// a client cannot join someone else's room by claiming their id.
type inbound struct {
	Event  string `json:"event"`
	UserID string `json:"userId"`
}

// ServeWS authenticates the connection, upgrades it and binds it to the
// caller's own room until the socket closes.
func (h *SocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Event ID: SOCKET_UPGRADE_FAILED, Description: Upgrade failed for user %s: %v", userID, err)
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Logger.Warnf("Event ID: SOCKET_READ_FAILED, Description: Connection for user %s dropped: %v", userID, err)
			}
			return
		}
		if msg.Event == "join" && msg.UserID != "" && msg.UserID != userID {
			logging.Logger.Warnf("Event ID: SOCKET_JOIN_MISMATCH, Description: User %s asked to join room %s; ignored", userID, msg.UserID)
		}
	}
}
