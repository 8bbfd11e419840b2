// Package afk tracks users who have marked themselves away.
// State lives in memory only and is lost on restart.
package afk

import (
	"strings"
	"sync"
	"time"
)

const DefaultReason = "AFK"

type Status struct {
	UserID string
	Reason string
	Since  time.Time
}

// Outcome is what one message did to AFK state
type Outcome struct {
	// Returned is set when the author was AFK and has now been cleared
	Returned *Status
	// Mentioned lists AFK users mentioned by the message, in mention order
	Mentioned []Status
}

// Tracker maps user ids to their AFK status
type Tracker struct {
	mu    sync.Mutex
	users map[string]Status
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		users: make(map[string]Status),
		now:   time.Now,
	}
}

// Set marks a user AFK, replacing any previous reason. A blank reason becomes "AFK".
func (t *Tracker) Set(userID, reason string) Status {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReason
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s := Status{UserID: userID, Reason: reason, Since: t.now()}
	t.users[userID] = s
	return s
}

func (t *Tracker) Get(userID string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.users[userID]
	return s, ok
}

func (t *Tracker) Clear(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.users[userID]
	delete(t.users, userID)
	return ok
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}

// HandleMessage clears the author's AFK status and collects AFK users among the mentions
// under a single lock, so one message sees one consistent state. The author is never
// reported as a mention of themselves.
func (t *Tracker) HandleMessage(authorID string, mentionIDs []string) Outcome {
	var out Outcome

	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.users[authorID]; ok {
		delete(t.users, authorID)
		out.Returned = &s
	}

	seen := make(map[string]struct{}, len(mentionIDs))
	for _, id := range mentionIDs {
		if id == authorID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if s, ok := t.users[id]; ok {
			out.Mentioned = append(out.Mentioned, s)
		}
	}
	return out
}
