package sockets

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	frames    []Event
	deadlines int
	writeErr  error
	closed    bool

	// block, when set, holds every write until the channel is closed,
	// simulating a peer whose TCP buffer is full.
	block chan struct{}
}

func (s *fakeSession) WriteJSON(v interface{}) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.frames = append(s.frames, v.(Event))
	return nil
}

func (s *fakeSession) SetWriteDeadline(time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines++
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *fakeSession) firstFrame() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[0]
}

func (s *fakeSession) deadlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadlines
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestBroadcastReachesEverySessionOfUser(t *testing.T) {
	hub := NewHub()
	a := &fakeSession{}
	b := &fakeSession{}
	hub.Register("user-1", a)
	hub.Register("user-1", b)

	hub.Broadcast("user-1", "notification", map[string]string{"message": "hi"})

	eventually(t, func() bool { return a.frameCount() == 1 && b.frameCount() == 1 }, "both sessions should receive the event")
	assert.Equal(t, "notification", a.firstFrame().Event)
}

func TestBroadcastIsScopedToOneRoom(t *testing.T) {
	hub := NewHub()
	mine := &fakeSession{}
	theirs := &fakeSession{}
	hub.Register("user-1", mine)
	hub.Register("user-2", theirs)

	hub.Broadcast("user-1", "task-deleted", map[string]string{"taskId": "t1"})

	eventually(t, func() bool { return mine.frameCount() == 1 }, "own session should receive the event")
	assert.Equal(t, 0, theirs.frameCount())
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	// Offline users receive nothing live; the persisted notification is the
	// durable channel.
	hub.Broadcast("nobody", "notification", nil)
	assert.Equal(t, 0, hub.Connections("nobody"))
}

func TestEveryWriteCarriesADeadline(t *testing.T) {
	hub := NewHub()
	s := &fakeSession{}
	hub.Register("user-1", s)

	hub.Broadcast("user-1", "notification", nil)
	hub.Broadcast("user-1", "notification", nil)

	eventually(t, func() bool { return s.frameCount() == 2 }, "both events should be delivered")
	assert.Equal(t, 2, s.deadlineCount())
}

func TestFailedWriteDropsSession(t *testing.T) {
	hub := NewHub()
	bad := &fakeSession{writeErr: errors.New("gone")}
	good := &fakeSession{}
	hub.Register("user-1", bad)
	hub.Register("user-1", good)

	hub.Broadcast("user-1", "notification", nil)

	eventually(t, func() bool { return bad.isClosed() && hub.Connections("user-1") == 1 }, "failed session should be dropped")

	hub.Broadcast("user-1", "notification", nil)
	eventually(t, func() bool { return good.frameCount() == 2 }, "surviving session should keep receiving")
}

// A peer that stops draining its socket must not wedge the hub: broadcasts
// keep returning immediately, the stalled session is dropped once its queue
// overflows, and other rooms stay live throughout.
func TestStalledSessionDoesNotBlockBroadcasts(t *testing.T) {
	hub := NewHub()
	stalled := &fakeSession{block: make(chan struct{})}
	healthy := &fakeSession{}
	hub.Register("user-1", stalled)
	hub.Register("user-2", healthy)

	// One write hangs in the pump, sendBuffer more queue up, and the next
	// overflows and drops the session. None of these calls may block.
	for i := 0; i < sendBuffer+2; i++ {
		hub.Broadcast("user-1", "notification", nil)
	}

	eventually(t, func() bool { return hub.Connections("user-1") == 0 }, "stalled session should be dropped")
	assert.True(t, stalled.isClosed())

	hub.Broadcast("user-2", "notification", nil)
	eventually(t, func() bool { return healthy.frameCount() == 1 }, "other rooms should stay live")

	close(stalled.block)
}

func TestUnregisterRemovesSession(t *testing.T) {
	hub := NewHub()
	s := &fakeSession{}
	hub.Register("user-1", s)
	require.Equal(t, 1, hub.Connections("user-1"))

	hub.Unregister("user-1", s)
	assert.Equal(t, 0, hub.Connections("user-1"))
	assert.True(t, s.isClosed())

	hub.Broadcast("user-1", "notification", nil)
	assert.Equal(t, 0, s.frameCount())
}
