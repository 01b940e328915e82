package core

import "time"

const (
	// DefaultLanguage is assumed whenever a room has no language set.
	DefaultLanguage = "javascript"
	// ChatHistoryLimit bounds a room's chat ring; oldest entries are evicted first.
	ChatHistoryLimit = 100
)

// Room holds the authoritative state for one collaboration session.
// Only the hub loop touches it, so it carries no lock.
type Room struct {
	ID       string
	clients  map[*Client]struct{}
	code     string
	language string
	chat     []ChatMessage
	chatSeq  int64
}

func newRoom(id string) *Room {
	return &Room{
		ID:       id,
		clients:  make(map[*Client]struct{}),
		language: DefaultLanguage,
	}
}

// addClient inserts a client into the room. Returns true if newly added.
func (r *Room) addClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// removeClient deletes a client from the room. Returns true if removed.
func (r *Room) removeClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

func (r *Room) empty() bool { return len(r.clients) == 0 }

func (r *Room) memberCount() int { return len(r.clients) }

// appendChat assigns the next sequence id and server timestamp, appends the
// message, and evicts the oldest entries beyond ChatHistoryLimit.
func (r *Room) appendChat(user, text string, at time.Time) ChatMessage {
	r.chatSeq++
	msg := ChatMessage{
		ID:        r.chatSeq,
		Room:      r.ID,
		User:      user,
		Text:      text,
		Timestamp: at,
	}
	r.chat = append(r.chat, msg)
	if len(r.chat) > ChatHistoryLimit {
		r.chat = r.chat[len(r.chat)-ChatHistoryLimit:]
	}
	return msg
}

// history returns a copy of the chat ring in arrival order.
func (r *Room) history() []ChatMessage {
	out := make([]ChatMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

// broadcast sends an event to all clients in the room.
func (r *Room) broadcast(event *Event) {
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// broadcastExcept sends an event to every member but the sender.
func (r *Room) broadcastExcept(sender *Client, event *Event) {
	for client := range r.clients {
		if client == sender {
			continue
		}
		select {
		case client.Events <- event:
		default:
		}
	}
}
