package sockets

import (
	"sync"
	"time"

	"github.com/Mathu0718/online-todo-mathu/logging"
)

const (
	// writeWait bounds a single frame write; a peer that cannot accept a
	// frame within it is dropped.
	writeWait = 10 * time.Second

	// sendBuffer is the per-session outbound queue depth. A session that
	// falls this far behind is dropped rather than allowed to stall the
	// sender; the persisted notification remains the durable channel.
	sendBuffer = 16
)

// Session is one live realtime connection. *websocket.Conn satisfies it.
type Session interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Event is the outbound wire frame.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// member pairs a session with its outbound queue. A per-session goroutine
// drains the queue, so network writes never run under the hub lock and a
// stalled peer never blocks a broadcaster.
type member struct {
	session Session
	send    chan Event
	done    chan struct{}
}

// Hub is the connection registry. Each session is registered under exactly
// one room key, the authenticated user id, and a user may hold several live
// sessions at once. Delivery is best-effort: Broadcast enqueues and returns
// without touching the network, a failed or deadline-expired write drops the
// session, and a user with no sessions simply receives nothing live.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[Session]*member
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Session]*member)}
}

func (h *Hub) Register(userID string, s Session) {
	m := &member{
		session: s,
		send:    make(chan Event, sendBuffer),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[Session]*member)
		h.rooms[userID] = room
	}
	room[s] = m
	live := len(room)
	h.mu.Unlock()

	go h.writePump(userID, m)
	logging.Logger.Infof("Event ID: SOCKET_REGISTERED, Description: Session joined room %s (%d live)", userID, live)
}

func (h *Hub) Unregister(userID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, s)
}

// Broadcast enqueues the event for every session in the user's room and
// returns without waiting on the network. A session whose queue is full is
// dropped as a stalled consumer.
func (h *Hub) Broadcast(userID string, event string, data interface{}) {
	ev := Event{Event: event, Data: data}

	h.mu.Lock()
	members := make([]*member, 0, len(h.rooms[userID]))
	for _, m := range h.rooms[userID] {
		members = append(members, m)
	}
	h.mu.Unlock()

	for _, m := range members {
		select {
		case m.send <- ev:
		default:
			logging.Logger.Warnf("Event ID: SOCKET_SEND_OVERFLOW, Description: Dropping stalled session in room %s", userID)
			h.Unregister(userID, m.session)
		}
	}
}

// Connections reports the number of live sessions for a user.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[userID])
}

// writePump is the sole writer for its session. Every write carries a
// deadline so a dead peer surfaces as a write error instead of a hang.
func (h *Hub) writePump(userID string, m *member) {
	for {
		select {
		case <-m.done:
			return
		case ev := <-m.send:
			m.session.SetWriteDeadline(time.Now().Add(writeWait))
			if err := m.session.WriteJSON(ev); err != nil {
				logging.Logger.Warnf("Event ID: SOCKET_WRITE_FAILED, Description: Dropping session in room %s: %v", userID, err)
				h.Unregister(userID, m.session)
				return
			}
		}
	}
}

func (h *Hub) removeLocked(userID string, s Session) {
	room, ok := h.rooms[userID]
	if !ok {
		return
	}
	m, ok := room[s]
	if !ok {
		return
	}
	delete(room, s)
	close(m.done)
	s.Close()
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
}
