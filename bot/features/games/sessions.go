package games

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long a truth-or-dare prompt accepts a choice
const SessionTTL = 30 * time.Second

// ChoiceResult is the outcome of a button press on a truth-or-dare prompt
type ChoiceResult int

const (
	// ChoiceAccepted resolves the session
	ChoiceAccepted ChoiceResult = iota
	// ChoiceNotStarter is a press by someone other than the starter; the session is unchanged
	ChoiceNotStarter
	// ChoiceClosed covers unknown, expired and already resolved sessions
	ChoiceClosed
)

type session struct {
	starterID string
	expiresAt time.Time
}

// Sessions tracks open truth-or-dare prompts. A session is awaiting a choice
// until its starter presses a button or SessionTTL passes.
type Sessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session
	now      func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]session),
		now:      time.Now,
	}
}

// Start opens a session for the starter
func (s *Sessions) Start(starterID string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}

	id := uuid.New()
	s.sessions[id] = session{starterID: starterID, expiresAt: now.Add(SessionTTL)}
	return id
}

// Choose resolves the session when userID is its starter and it has not expired
func (s *Sessions) Choose(id uuid.UUID, userID string) ChoiceResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ChoiceClosed
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return ChoiceClosed
	}
	if sess.starterID != userID {
		return ChoiceNotStarter
	}
	delete(s.sessions, id)
	return ChoiceAccepted
}

// Len returns the number of open sessions, expired ones included until the next Start
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
