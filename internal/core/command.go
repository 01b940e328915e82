package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom admits the client to a room, creating it if needed.
	CommandJoinRoom CommandKind = iota
	// CommandRequestCode asks for the room's current code snapshot.
	CommandRequestCode
	// CommandCodeChange overwrites the room's code (and optionally language).
	CommandCodeChange
	// CommandLanguageChange overwrites the room's language (and optionally code).
	CommandLanguageChange
	// CommandSendChat appends a chat message to the room's history.
	CommandSendChat
)

// Command represents an action requested by a client. Code is a pointer so
// a language change can distinguish "no code supplied" from an empty buffer.
type Command struct {
	Kind     CommandKind
	Room     string
	Code     *string
	Language string
	User     string
	Text     string
}
