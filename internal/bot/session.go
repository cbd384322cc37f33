package bot

import (
	"context"
	"sync"
)

// Session is the per-chat conversational context: the last resolved
// ticker plus the cancellation handle of an in-flight streamed
// generation. Sessions live for the process lifetime; there is no
// eviction, so the store grows with the number of distinct chats.
type Session struct {
	mu         sync.Mutex
	lastSymbol string
	cancelGen  context.CancelFunc
}

// LastSymbol returns the last ticker this chat resolved, or "".
func (s *Session) LastSymbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSymbol
}

func (s *Session) SetLastSymbol(symbol string) {
	s.mu.Lock()
	s.lastSymbol = symbol
	s.mu.Unlock()
}

// BeginGeneration registers a new streamed generation for this chat,
// cancelling any previous one so its renderer finishes with the partial
// buffer. The returned context governs token consumption.
func (s *Session) BeginGeneration(parent context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelGen != nil {
		s.cancelGen()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancelGen = cancel
	return ctx
}

// EndGeneration releases the active generation handle. Safe to call
// when no generation is in flight.
func (s *Session) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
}

// SessionStore is the keyed session map owned by the handler layer.
// Entries are created lazily on first contact.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns the chat's session, creating it on first use.
func (st *SessionStore) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[chatID]
	if !ok {
		sess = &Session{}
		st.sessions[chatID] = sess
	}
	return sess
}

// Len reports how many chats have sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
