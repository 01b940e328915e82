package core

// EventKind is a notification the registry emits to clients.
type EventKind int

const (
	// EventCurrentCode delivers a code/language snapshot to a joiner or requester.
	EventCurrentCode EventKind = iota
	// EventChatHistory delivers the room's chat history to a joiner.
	EventChatHistory
	// EventCodeUpdate notifies other members that the room's code changed.
	EventCodeUpdate
	// EventLanguageUpdate notifies other members that the room's language changed.
	EventLanguageUpdate
	// EventChat delivers a chat message to every member, sender included.
	EventChat
	// EventUserCount reports the room's member count after a membership change.
	EventUserCount
)

// Event is sent to clients to describe what happened in a room.
type Event struct {
	Kind     EventKind
	Room     string
	Code     string
	Language string
	Count    int
	Message  ChatMessage
	Messages []ChatMessage // for EventChatHistory
}
