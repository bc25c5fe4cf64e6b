// Package session holds transient per-chat conversation state: the FSM
// position, the selected search mode, and the cached result set with its
// page index. Nothing here is persisted; a process restart drops every
// session and the engine's state-repair path rebuilds them from the user
// rows.
package session

import (
	"sync"

	"github.com/karaokehub/songbot/catalog"
)

// State is the conversation FSM position.
type State int

const (
	StateUnregistered State = iota
	StateAwaitingName
	StateAwaitingTable
	StateChoosingMode
	StateAwaitingQuery
	StateBrowsing
	StateAwaitingAdminPassword
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateAwaitingName:
		return "awaiting-name"
	case StateAwaitingTable:
		return "awaiting-table"
	case StateChoosingMode:
		return "choosing-search-mode"
	case StateAwaitingQuery:
		return "awaiting-search-text"
	case StateBrowsing:
		return "browsing-results"
	case StateAwaitingAdminPassword:
		return "awaiting-admin-password"
	}
	return "unknown"
}

// Mode selects which catalog search the next query runs.
type Mode string

const (
	ModeArtist Mode = "artist"
	ModeTitle  Mode = "title"
	ModeFree   Mode = "free"
)

// PageSize is the fixed result window per page.
const PageSize = 10

// Session is owned exclusively by its chat's conversation. Events for one
// chat are serialized by the dispatcher, so the struct itself needs no
// locking.
type Session struct {
	State   State
	Mode    Mode
	Results []catalog.Song
	Page    int
}

// PageCount returns the number of result pages.
func (s *Session) PageCount() int {
	if len(s.Results) == 0 {
		return 0
	}
	return (len(s.Results) + PageSize - 1) / PageSize
}

// PageSlice returns the window of results for the current page.
func (s *Session) PageSlice() []catalog.Song {
	start := s.Page * PageSize
	if start >= len(s.Results) {
		return nil
	}
	end := start + PageSize
	if end > len(s.Results) {
		end = len(s.Results)
	}
	return s.Results[start:end]
}

// ClearResults discards the cached result set and page index.
func (s *Session) ClearResults() {
	s.Results = nil
	s.Page = 0
}

// Store maps chat ids to sessions with lazy creation.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the chat's session, creating a fresh one on first contact.
func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	if !ok {
		s = &Session{State: StateUnregistered}
		st.sessions[chatID] = s
	}
	return s
}

// Reset replaces the chat's session with a fresh one and returns it.
func (st *Store) Reset(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{State: StateUnregistered}
	st.sessions[chatID] = s
	return s
}
