package domain

import "time"

// Notification is one entry in the append-only operator feed. Seq is
// assigned by the feed; entries never mutate.
type Notification struct {
	Seq       int64
	Title     string
	Message   string
	TicketID  string
	Timestamp time.Time
}
