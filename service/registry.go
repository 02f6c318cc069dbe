package service

import (
	"sync"

	"chatrelay/model"
)

// SessionRegistry maps a conversation key to the live completion context
// created for it. Entries live for the process lifetime; there is no
// eviction and no cross-process sharing. Construct one at startup and
// inject it into the chat service.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*LiveSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*LiveSession),
	}
}

// SessionKey identifies one conversation: a user can own several chat
// threads, so the key is the (user, chat) pair.
func SessionKey(userId, chatId string) string {
	return userId + "/" + chatId
}

// Get returns the registered live session for key, if any.
func (r *SessionRegistry) Get(key string) (*LiveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// GetOrCreate returns the existing live session for key, ignoring the
// history argument: the live object already carries its own accumulated
// context. On a miss it registers a new session seeded with history.
// Check and insert happen under one lock, so concurrent first requests
// for the same key all receive the same instance.
func (r *SessionRegistry) GetOrCreate(key string, history []model.Turn) *LiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := newLiveSession(history)
	r.sessions[key] = s
	return s
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Clear drops every live session, used at shutdown and in tests. The
// next request for a key rehydrates from the store.
func (r *SessionRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*LiveSession)
}
