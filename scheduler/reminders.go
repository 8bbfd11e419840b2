// Package scheduler keeps pending reminders in memory and delivers them from a periodic sweep.
// Reminders are not persisted: a restart drops everything that has not fired yet.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reminder is a message to deliver to a user once DueAt has passed
type Reminder struct {
	ID        uuid.UUID
	UserID    string
	Username  string
	ChannelID string
	GuildID   string
	Message   string
	CreatedAt time.Time
	DueAt     time.Time
}

// Due reports whether the reminder should fire at now
func (r Reminder) Due(now time.Time) bool {
	return !r.DueAt.After(now)
}

// Store is the mutex-guarded reminder list shared by the reminder commands and the runner
type Store struct {
	mu        sync.Mutex
	reminders []Reminder
}

func NewStore() *Store {
	return &Store{}
}

// Add stores r and returns it with its ID set
func (s *Store) Add(r Reminder) Reminder {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, r)
	return r
}

// ListByUser returns a user's pending reminders ordered by due time
func (s *Store) ListByUser(userID string) []Reminder {
	s.mu.Lock()
	var out []Reminder
	for _, r := range s.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out
}

// Snapshot copies the current list so callers can iterate without holding the lock
func (s *Store) Snapshot() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.reminders...)
}

// Remove drops the reminders with the given ids and returns how many were removed
func (s *Store) Remove(ids ...uuid.UUID) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.reminders[:0]
	removed := 0
	for _, r := range s.reminders {
		if _, ok := drop[r.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	// Clear the tail so dropped reminders can be collected
	for i := len(kept); i < len(s.reminders); i++ {
		s.reminders[i] = Reminder{}
	}
	s.reminders = kept
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reminders)
}
