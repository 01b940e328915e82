// Package client implements the sync side of the collaborative editor: it
// mirrors one room's state over a WebSocket connection, reconciles remote
// updates into a local editor without feedback loops, and debounces outgoing
// edits.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/codecollab/codecollab-server/internal/languages"
	"github.com/codecollab/codecollab-server/internal/proto"
)

// DefaultDebounce is the quiet period collapsing a keystroke burst into one
// outbound message.
const DefaultDebounce = 100 * time.Millisecond

// ErrMessageTooLong is returned by SendChat for messages over the UI limit.
var ErrMessageTooLong = errors.New("chat message exceeds 500 characters")

// Options configures a session.
type Options struct {
	// User is the display name attached to chat messages.
	User string
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	Handlers Handlers
}

// Session mirrors one room. Methods are safe for concurrent use.
type Session struct {
	roomID   string
	user     string
	editor   Editor
	handlers Handlers
	quiet    time.Duration

	conn    *websocket.Conn
	ctx     context.Context
	cancel  context.CancelFunc
	writeMu sync.Mutex

	// Set while a remote update is being written into the editor, so the
	// widget's own change notification for that write is not re-emitted as
	// a local edit. Checked before any lock is taken.
	applyingRemote atomic.Bool

	mu          sync.Mutex
	state       State
	language    string
	lastEmitted string
	debounce    *time.Timer
	chat        []ChatMessage
	userCount   int
}

// Dial connects to the server, joins the room, and requests the current
// snapshot. The returned session keeps reading events until Close is called
// or the connection drops.
func Dial(ctx context.Context, url, roomID string, editor Editor, opts Options) (*Session, error) {
	if roomID == "" {
		return nil, errors.New("room id is required")
	}
	if editor == nil {
		return nil, errors.New("editor is required")
	}

	quiet := opts.Debounce
	if quiet <= 0 {
		quiet = DefaultDebounce
	}

	s := &Session{
		roomID:   roomID,
		user:     opts.User,
		editor:   editor,
		handlers: opts.Handlers,
		quiet:    quiet,
		language: languages.Default,
		state:    StateConnecting,
	}
	s.notifyState(StateConnecting)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		s.notifyState(StateDisconnected)
		return nil, fmt.Errorf("dial: %w", err)
	}
	s.conn = conn
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.setState(StateConnected)

	// Join first, then ask for the snapshot, the same order the server
	// expects from a fresh room view.
	if err := s.send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: roomID}); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.send(proto.InboundTypeRequestCode, proto.RequestCodeData{RoomID: roomID}); err != nil {
		s.Close()
		return nil, err
	}

	go s.readLoop()

	return s, nil
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "bye")
	}
	s.setState(StateDisconnected)
}

// HandleLocalChange is the widget's change notification. Calls made while a
// remote update is being applied are ignored; genuine local edits schedule a
// debounced emit carrying only the most recent buffer contents.
func (s *Session) HandleLocalChange() {
	if s.applyingRemote.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return
	}
	if s.editor.Contents() == s.lastEmitted {
		return
	}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.quiet, s.emitCode)
}

func (s *Session) emitCode() {
	s.mu.Lock()
	content := s.editor.Contents()
	if content == s.lastEmitted {
		s.mu.Unlock()
		return
	}
	s.lastEmitted = content
	language := s.language
	s.mu.Unlock()

	_ = s.send(proto.InboundTypeCodeChange, proto.CodeChangeData{
		RoomID:   s.roomID,
		Code:     &content,
		Language: language,
	})
}

// SetLanguage switches the room's language. When the buffer still holds the
// old language's starter template (or nothing), the new language's template
// replaces it and travels with the change; otherwise the user's work is kept
// and travels instead.
func (s *Session) SetLanguage(language string) error {
	language = languages.Normalize(language)

	s.mu.Lock()
	current := s.editor.Contents()
	oldTemplate := languages.Template(s.language)

	code := current
	if strings.TrimSpace(current) == "" || strings.TrimSpace(current) == strings.TrimSpace(oldTemplate) {
		code = languages.Template(language)
		s.applyingRemote.Store(true)
		s.editor.SetContents(code)
		s.applyingRemote.Store(false)
	}
	s.language = language
	s.lastEmitted = code
	s.mu.Unlock()

	return s.send(proto.InboundTypeLanguageChange, proto.LanguageChangeData{
		RoomID:   s.roomID,
		Language: language,
		Code:     &code,
	})
}

// SendChat sends a chat message under the session's user name.
func (s *Session) SendChat(text string) error {
	if utf8.RuneCountInString(text) > proto.MaxChatMessageLen {
		return ErrMessageTooLong
	}
	return s.send(proto.InboundTypeSendChat, proto.SendChatData{
		RoomID:  s.roomID,
		User:    s.user,
		Message: text,
	})
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Language returns the room language as last seen by this session.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// UserCount returns the last broadcast member count.
func (s *Session) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCount
}

// History returns a copy of the mirrored chat log.
func (s *Session) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

func (s *Session) send(msgType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return wsjson.Write(s.ctx, s.conn, proto.Inbound{Type: msgType, Data: data})
}

func (s *Session) readLoop() {
	defer s.setState(StateDisconnected)

	for {
		var env struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(s.ctx, s.conn, &env); err != nil {
			return
		}

		if env.Type == proto.OutboundTypeError {
			if env.Error != nil && s.handlers.OnServerError != nil {
				s.handlers.OnServerError(env.Error.Code, env.Error.Msg)
			}
			continue
		}

		switch env.Event {
		case proto.EventCurrentCode, proto.EventCodeUpdate, proto.EventLanguageUpdate:
			var snap proto.Snapshot
			if err := json.Unmarshal(env.Data, &snap); err != nil {
				continue
			}
			s.applyRemote(snap)
		case proto.EventChatHistory:
			var history []proto.ChatMessage
			if err := json.Unmarshal(env.Data, &history); err != nil {
				continue
			}
			s.replaceChat(history)
		case proto.EventReceiveChat:
			var msg proto.ChatMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				continue
			}
			s.appendChat(msg)
		case proto.EventUserCount:
			var count int
			if err := json.Unmarshal(env.Data, &count); err != nil {
				continue
			}
			s.mu.Lock()
			s.userCount = count
			s.mu.Unlock()
			if s.handlers.OnUserCount != nil {
				s.handlers.OnUserCount(count)
			}
		}
	}
}

// applyRemote writes a remote snapshot into the editor. The buffer is only
// touched when the content actually differs, the cursor is clamped against
// the new content, and the provenance tag spans exactly the synchronous
// SetContents call, so the widget's notification for it is never re-emitted.
func (s *Session) applyRemote(snap proto.Snapshot) {
	s.mu.Lock()
	if snap.Language != "" {
		s.language = languages.Normalize(snap.Language)
	}
	if snap.Code != s.editor.Contents() {
		s.applyingRemote.Store(true)
		pos := s.editor.Cursor()
		s.editor.SetContents(snap.Code)
		s.editor.SetCursor(clampPosition(snap.Code, pos))
		s.applyingRemote.Store(false)
		s.lastEmitted = snap.Code
	}
	s.mu.Unlock()
}

func (s *Session) replaceChat(history []proto.ChatMessage) {
	msgs := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, chatFromWire(m))
	}
	s.mu.Lock()
	s.chat = msgs
	s.mu.Unlock()
	if s.handlers.OnChat != nil {
		for _, m := range msgs {
			s.handlers.OnChat(m)
		}
	}
}

func (s *Session) appendChat(msg proto.ChatMessage) {
	m := chatFromWire(msg)
	s.mu.Lock()
	s.chat = append(s.chat, m)
	s.mu.Unlock()
	if s.handlers.OnChat != nil {
		s.handlers.OnChat(m)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.notifyState(state)
}

func (s *Session) notifyState(state State) {
	if s.handlers.OnState != nil {
		s.handlers.OnState(state)
	}
}

func chatFromWire(m proto.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		User:      m.User,
		Text:      m.Message,
		Timestamp: m.Timestamp,
	}
}
