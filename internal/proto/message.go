package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom       = "join-room"
	InboundTypeRequestCode    = "request-current-code"
	InboundTypeCodeChange     = "code-change"
	InboundTypeLanguageChange = "language-change"
	InboundTypeSendChat       = "send-chat"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventCurrentCode    = "current-code"
	EventChatHistory    = "chat-history"
	EventCodeUpdate     = "code-update"
	EventLanguageUpdate = "language-update"
	EventReceiveChat    = "receive-chat"
	EventUserCount      = "user-count"
)

// MaxChatMessageLen mirrors the UI's chat input limit and is enforced
// server-side as well.
const MaxChatMessageLen = 500

// Error codes for rejected inbound messages.
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeMessageTooLong = "message_too_long"
)

// JoinRoomData admits the connection to a room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// RequestCodeData asks for the room's current snapshot.
type RequestCodeData struct {
	RoomID string `json:"roomId"`
}

// CodeChangeData overwrites the room's code; language rides along optionally.
// Code is a pointer so an absent field degrades to the empty document rather
// than being confused with one.
type CodeChangeData struct {
	RoomID   string  `json:"roomId"`
	Code     *string `json:"code"`
	Language string  `json:"language,omitempty"`
}

// LanguageChangeData overwrites the room's language; code rides along
// optionally and only overwrites the document when present.
type LanguageChangeData struct {
	RoomID   string  `json:"roomId"`
	Language string  `json:"language"`
	Code     *string `json:"code,omitempty"`
}

// SendChatData appends a chat message to the room.
type SendChatData struct {
	RoomID  string `json:"roomId"`
	User    string `json:"user"`
	Message string `json:"message"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Snapshot is the room's current document state; it is the payload of
// current-code, code-update, and language-update events alike.
type Snapshot struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ChatMessage is the wire form of a stored chat message. Timestamp is
// ISO-8601, assigned by the server at receipt time.
type ChatMessage struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
