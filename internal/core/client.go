package core

// Client is one live connection as seen by the registry. The transport
// layer assigns the ID; the registry treats it as an opaque membership
// token, not a user identity.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
	}
}
