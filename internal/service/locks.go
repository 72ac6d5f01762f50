package service

import "sync"

// TicketLocks serializes mutations per ticket aggregate. Triage, approval
// application, and SLA flag toggles for one ticket all funnel through the
// same mutex; there is never a single global lock across all tickets.
type TicketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTicketLocks creates an empty lock table.
func NewTicketLocks() *TicketLocks {
	return &TicketLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given ticket ID and returns its release
// function.
func (l *TicketLocks) Lock(ticketID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ticketID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
