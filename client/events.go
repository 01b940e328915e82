package client

// State describes the connection lifecycle of a session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ChatMessage is a chat entry as mirrored by the client.
type ChatMessage struct {
	ID        int64
	User      string
	Text      string
	Timestamp string
}

// Handlers carries optional notification callbacks. All callbacks fire on the
// session's read goroutine.
type Handlers struct {
	OnChat        func(ChatMessage)
	OnUserCount   func(int)
	OnState       func(State)
	OnServerError func(code, msg string)
}
