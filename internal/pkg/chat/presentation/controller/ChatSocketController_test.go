package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/realtime"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

type stubUserRepo struct {
	users map[string]repository.User
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// socketHarness runs the real websocket endpoint behind a gin engine. The
// store pool stays nil: presence tests never reach a use case.
type socketHarness struct {
	t        *testing.T
	hub      *realtime.Hub
	verifier *auth.Verifier
	server   *httptest.Server
}

func newSocketHarness(t *testing.T) *socketHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &stubUserRepo{users: map[string]repository.User{
		"alice": {ID: "alice", Name: "Alice"},
		"bob":   {ID: "bob", Name: "Bob"},
	}}
	hub := realtime.NewHub()
	verifier := auth.NewVerifier([]byte("test-secret"), users)
	dispatcher := event.NewDispatcher(hub, users)
	ctl := NewChatSocketController(nil, hub, verifier, dispatcher)

	r := gin.New()
	r.GET("/chat/ws", ctl.Handle())
	server := httptest.NewServer(r)

	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return &socketHarness{t: t, hub: hub, verifier: verifier, server: server}
}

// testClient owns the single reader goroutine for a client socket:
// gorilla/websocket treats any read error — including a deadline expiry —
// as permanent, so each socket must be read in exactly one loop.
type testClient struct {
	ws     *websocket.Conn
	frames chan event.Envelope
	done   chan struct{}
}

func (c *testClient) Close() error { return c.ws.Close() }

func (h *socketHarness) dial(userID string) *testClient {
	h.t.Helper()
	token, err := h.verifier.Sign(userID, time.Minute)
	require.NoError(h.t, err)

	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/chat/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = ws.Close() })

	client := &testClient{
		ws:     ws,
		frames: make(chan event.Envelope, 256),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(client.done)
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var env event.Envelope
			if err := json.Unmarshal(raw, &env); err == nil {
				client.frames <- env
			}
		}
	}()
	return client
}

// drainFrames reads every frame arriving within the window.
func drainFrames(t *testing.T, c *testClient, window time.Duration) []event.Envelope {
	t.Helper()
	var out []event.Envelope
	timer := time.NewTimer(window)
	defer timer.Stop()
	for {
		select {
		case env := <-c.frames:
			out = append(out, env)
		case <-timer.C:
			return out
		}
	}
}

func statusEvents(t *testing.T, frames []event.Envelope) []event.StatusPayload {
	t.Helper()
	var out []event.StatusPayload
	for _, env := range frames {
		if env.Event != event.UserStatus {
			continue
		}
		var p event.StatusPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		out = append(out, p)
	}
	return out
}

func TestSocketReconnectDoesNotBroadcastOffline(t *testing.T) {
	h := newSocketHarness(t)

	observer := h.dial("bob")
	drainFrames(t, observer, 300*time.Millisecond) // own connect chatter

	first := h.dial("alice")
	h.dial("alice") // replaces the first session

	// the replaced socket is closed by the server; wait for its handler to
	// finish cleanup
	select {
	case <-first.done:
	case <-time.After(2 * time.Second):
	}

	statuses := statusEvents(t, drainFrames(t, observer, 600*time.Millisecond))

	var aliceOnline, aliceOffline int
	for _, s := range statuses {
		if s.UserID != "alice" {
			continue
		}
		switch s.Status {
		case "online":
			aliceOnline++
		case "offline":
			aliceOffline++
		}
	}

	assert.Equal(t, 2, aliceOnline, "each connect announces online")
	assert.Zero(t, aliceOffline, "a replaced session must not announce offline")
	assert.True(t, h.hub.IsOnline("alice"))
}

func TestSocketDisconnectBroadcastsOffline(t *testing.T) {
	h := newSocketHarness(t)

	observer := h.dial("bob")
	drainFrames(t, observer, 300*time.Millisecond)

	alice := h.dial("alice")
	drainFrames(t, observer, 300*time.Millisecond) // alice online chatter
	require.NoError(t, alice.Close())

	deadline := time.Now().Add(3 * time.Second)
	sawOffline := false
	for !sawOffline && time.Now().Before(deadline) {
		for _, s := range statusEvents(t, drainFrames(t, observer, 300*time.Millisecond)) {
			if s.UserID == "alice" && s.Status == "offline" {
				sawOffline = true
			}
		}
	}

	assert.True(t, sawOffline, "a real departure announces offline")
	assert.False(t, h.hub.IsOnline("alice"))
}
