package realtime

import (
	"sync"
)

// Hub is the process-wide presence registry and room coordinator. It tracks
// one active connection per user and the set of connections subscribed to
// each conversation room. It is the only in-memory shared mutable state of
// the chat core; all cross-connection consistency goes through the store.
//
// Lifecycle: constructed at server start, Close at shutdown. Presence does
// not survive a restart.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // connectionID -> connection
	userSessions map[string]string                 // userID -> connectionID
	rooms        map[string]map[string]*Connection // conversationID -> connectionID -> connection
	sessionRooms map[string]map[string]struct{}    // connectionID -> set of conversationIDs
}

// NewHub constructs an initialized Hub with empty presence state.
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]string),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Register records a connection for its user. A previous session of the same
// user is removed first and closed after the swap, so the newest connection
// always wins.
func (h *Hub) Register(conn *Connection) {
	var previous *Connection

	h.mu.Lock()
	if existingID, ok := h.userSessions[conn.UserID]; ok {
		if existing := h.sessions[existingID]; existing != nil {
			previous = existing
			h.unregisterLocked(existingID)
		}
	}

	h.sessions[conn.ID] = conn
	h.userSessions[conn.UserID] = conn.ID
	h.sessionRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Unregister removes a connection if it is still tracked, dropping all its
// room memberships.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	h.unregisterLocked(conn.ID)
	h.mu.Unlock()
}

// IsOnline reports whether the user currently has an active connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	_, ok := h.userSessions[userID]
	h.mu.RUnlock()
	return ok
}

// Join adds the connection to the conversation room.
func (h *Hub) Join(conversationID string, conn *Connection) {
	h.mu.Lock()
	if _, ok := h.sessions[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}

	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[conversationID] = room
	}
	room[conn.ID] = conn

	memberships := h.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.sessionRooms[conn.ID] = memberships
	}
	memberships[conversationID] = struct{}{}
	h.mu.Unlock()
}

// Leave removes the connection from the conversation room.
func (h *Hub) Leave(conversationID string, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(conversationID, conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to all members of the conversation room.
// excludeUserID, when non-empty, skips that user's connection. Returns how
// many connections accepted the payload; per-peer failures are best-effort
// and never fail the broadcast.
func (h *Hub) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	h.mu.RLock()
	room := h.rooms[conversationID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range room {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// BroadcastAll writes payload to every connected client. Used for presence
// (online/offline) status events.
func (h *Hub) BroadcastAll(payload []byte) int {
	h.mu.RLock()
	delivered := 0
	for _, conn := range h.sessions {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// NotifyUser delivers payload to the user's private channel (their current
// connection). Returns false when the user is offline.
func (h *Hub) NotifyUser(userID string, payload []byte) bool {
	h.mu.RLock()
	sessionID, ok := h.userSessions[userID]
	if !ok {
		h.mu.RUnlock()
		return false
	}
	conn := h.sessions[sessionID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// Close terminates all tracked connections and clears presence state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.userSessions = make(map[string]string)
	h.rooms = make(map[string]map[string]*Connection)
	h.sessionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) unregisterLocked(sessionID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if current, ok := h.userSessions[conn.UserID]; ok && current == sessionID {
		delete(h.userSessions, conn.UserID)
	}

	for roomID := range h.sessionRooms[sessionID] {
		h.leaveLocked(roomID, sessionID)
	}
	delete(h.sessionRooms, sessionID)
}

func (h *Hub) leaveLocked(conversationID string, sessionID string) {
	if sessionID == "" {
		return
	}
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, conversationID)
		if len(memberships) == 0 {
			delete(h.sessionRooms, sessionID)
		}
	}
}
