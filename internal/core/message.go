package core

import "time"

// ChatMessage is the domain model for a chat message.
// ID is a per-room sequence assigned by the hub at insertion time.
type ChatMessage struct {
	ID        int64
	Room      string
	User      string
	Text      string
	Timestamp time.Time
}
