package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RoomStats is a read-only occupancy snapshot for one room.
type RoomStats struct {
	ID       string `json:"id"`
	Members  int    `json:"members"`
	Language string `json:"language"`
}

type request struct {
	client *Client
	cmd    *Command
}

type statsQuery struct {
	reply chan []RoomStats
}

// Hub is the room registry. A single Run loop processes every command for
// every room, so two operations on the same room never execute concurrently
// and rooms need no locks.
type Hub struct {
	log *zerolog.Logger

	rooms   map[string]*Room
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	inbound    chan request
	queries    chan statsQuery
}

// NewHub creates an empty registry. A nil logger disables logging.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:        logger,
		rooms:      make(map[string]*Room),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan request, 64),
		queries:    make(chan statsQuery),
	}
}

// RegisterClient announces a new connection to the hub. Run must be active.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient tears the connection down: the client leaves every room
// it belongs to and its channels are closed. Callers must not send on
// c.Commands afterwards.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Stats returns an occupancy snapshot of all active rooms.
func (h *Hub) Stats(ctx context.Context) ([]RoomStats, error) {
	q := statsQuery{reply: make(chan []RoomStats, 1)}
	select {
	case h.queries <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case stats := <-q.reply:
		return stats, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes registrations and commands until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.dropClient(c)
		case req := <-h.inbound:
			h.dispatch(req.client, req.cmd)
		case q := <-h.queries:
			q.reply <- h.stats()
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = struct{}{}
	// Forward the client's commands into the single hub loop.
	go func() {
		for cmd := range c.Commands {
			h.inbound <- request{client: c, cmd: cmd}
		}
	}()
	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	// Ignore commands that were still in flight when the client dropped.
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room)
	case CommandRequestCode:
		h.requestCode(c, cmd.Room)
	case CommandCodeChange:
		h.codeChange(c, cmd)
	case CommandLanguageChange:
		h.languageChange(c, cmd)
	case CommandSendChat:
		h.sendChat(c, cmd)
	}
}

func (h *Hub) joinRoom(c *Client, roomID string) {
	room := h.getOrCreate(roomID)
	room.addClient(c)

	// Snapshot and chat history go to the joiner only.
	sendToClient(c, &Event{
		Kind:     EventCurrentCode,
		Room:     roomID,
		Code:     room.code,
		Language: room.language,
	})
	sendToClient(c, &Event{
		Kind:     EventChatHistory,
		Room:     roomID,
		Messages: room.history(),
	})

	// Everyone, joiner included, learns the new member count.
	room.broadcast(&Event{Kind: EventUserCount, Room: roomID, Count: room.memberCount()})

	h.log.Info().Str("client_id", c.ID).Str("room", roomID).Int("members", room.memberCount()).Msg("client joined room")
}

func (h *Hub) requestCode(c *Client, roomID string) {
	// Read-only: an unknown room answers with defaults without being created.
	code, language := "", DefaultLanguage
	if room, ok := h.rooms[roomID]; ok {
		code, language = room.code, room.language
	}
	sendToClient(c, &Event{
		Kind:     EventCurrentCode,
		Room:     roomID,
		Code:     code,
		Language: language,
	})
}

func (h *Hub) codeChange(c *Client, cmd *Command) {
	room := h.getOrCreate(cmd.Room)
	if cmd.Code != nil {
		room.code = *cmd.Code
	} else {
		room.code = ""
	}
	if cmd.Language != "" {
		room.language = cmd.Language
	}
	// Last writer wins; the sender never sees its own write echoed.
	room.broadcastExcept(c, &Event{
		Kind:     EventCodeUpdate,
		Room:     cmd.Room,
		Code:     room.code,
		Language: room.language,
	})
}

func (h *Hub) languageChange(c *Client, cmd *Command) {
	room := h.getOrCreate(cmd.Room)
	room.language = cmd.Language
	if cmd.Code != nil {
		room.code = *cmd.Code
	}
	room.broadcastExcept(c, &Event{
		Kind:     EventLanguageUpdate,
		Room:     cmd.Room,
		Code:     room.code,
		Language: room.language,
	})
}

func (h *Hub) sendChat(c *Client, cmd *Command) {
	room := h.getOrCreate(cmd.Room)
	msg := room.appendChat(cmd.User, cmd.Text, time.Now())
	// Chat echoes back to the sender as well.
	room.broadcast(&Event{Kind: EventChat, Room: cmd.Room, Message: msg})
}

// dropClient removes the connection from every room it belongs to,
// broadcasting updated member counts and deleting rooms that empty out.
func (h *Hub) dropClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for id, room := range h.rooms {
		if !room.removeClient(c) {
			continue
		}
		if room.empty() {
			delete(h.rooms, id)
			h.log.Info().Str("room", id).Msg("room deleted (empty)")
			continue
		}
		room.broadcast(&Event{Kind: EventUserCount, Room: id, Count: room.memberCount()})
	}

	close(c.Commands)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
}

func (h *Hub) getOrCreate(id string) *Room {
	if room, ok := h.rooms[id]; ok {
		return room
	}
	room := newRoom(id)
	h.rooms[id] = room
	return room
}

func (h *Hub) stats() []RoomStats {
	out := make([]RoomStats, 0, len(h.rooms))
	for id, room := range h.rooms {
		out = append(out, RoomStats{ID: id, Members: room.memberCount(), Language: room.language})
	}
	return out
}

func sendToClient(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
