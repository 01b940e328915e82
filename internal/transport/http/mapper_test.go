package http

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

func inbound(t *testing.T, msgType string, payload any) proto.Inbound {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return proto.Inbound{Type: msgType, Data: data}
}

func TestInboundToCommandJoin(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(inbound(t, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "abc"}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected errors: %v, %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandJoinRoom || cmd.Room != "abc" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestInboundToCommandRequiresRoomID(t *testing.T) {
	for _, msgType := range []string{
		proto.InboundTypeJoinRoom,
		proto.InboundTypeRequestCode,
		proto.InboundTypeCodeChange,
		proto.InboundTypeLanguageChange,
		proto.InboundTypeSendChat,
	} {
		_, protoErr, err := inboundToCommand(proto.Inbound{Type: msgType, Data: []byte(`{}`)})
		if err != nil {
			t.Fatalf("%s: unexpected decode error: %v", msgType, err)
		}
		if protoErr == nil || protoErr.Code != proto.ErrCodeBadRequest {
			t.Fatalf("%s: expected bad_request, got %+v", msgType, protoErr)
		}
	}
}

func TestInboundToCommandCodeChangeOptionalFields(t *testing.T) {
	// Missing code degrades to nil (hub treats it as an empty document);
	// missing language leaves the stored one alone.
	cmd, protoErr, err := inboundToCommand(inbound(t, proto.InboundTypeCodeChange, proto.CodeChangeData{RoomID: "r"}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected errors: %v, %+v", err, protoErr)
	}
	if cmd.Code != nil || cmd.Language != "" {
		t.Fatalf("optional fields not preserved as absent: %+v", cmd)
	}

	code := "x"
	cmd, _, _ = inboundToCommand(inbound(t, proto.InboundTypeCodeChange, proto.CodeChangeData{RoomID: "r", Code: &code, Language: "go"}))
	if cmd.Code == nil || *cmd.Code != "x" || cmd.Language != "go" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestInboundToCommandLanguageChangeRequiresLanguage(t *testing.T) {
	_, protoErr, err := inboundToCommand(inbound(t, proto.InboundTypeLanguageChange, proto.LanguageChangeData{RoomID: "r"}))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if protoErr == nil || protoErr.Code != proto.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", protoErr)
	}
}

func TestInboundToCommandChatLengthCap(t *testing.T) {
	ok := proto.SendChatData{RoomID: "r", User: "alice", Message: strings.Repeat("a", proto.MaxChatMessageLen)}
	if _, protoErr, _ := inboundToCommand(inbound(t, proto.InboundTypeSendChat, ok)); protoErr != nil {
		t.Fatalf("500-char message rejected: %+v", protoErr)
	}

	long := ok
	long.Message += "a"
	_, protoErr, _ := inboundToCommand(inbound(t, proto.InboundTypeSendChat, long))
	if protoErr == nil || protoErr.Code != proto.ErrCodeMessageTooLong {
		t.Fatalf("expected message_too_long, got %+v", protoErr)
	}

	// The cap counts runes, not bytes.
	multibyte := ok
	multibyte.Message = strings.Repeat("é", proto.MaxChatMessageLen)
	if _, protoErr, _ := inboundToCommand(inbound(t, proto.InboundTypeSendChat, multibyte)); protoErr != nil {
		t.Fatalf("500-rune message rejected: %+v", protoErr)
	}
}

func TestInboundToCommandUnknownType(t *testing.T) {
	_, protoErr, err := inboundToCommand(proto.Inbound{Type: "teleport", Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if protoErr == nil || protoErr.Code != proto.ErrCodeInvalidMessage {
		t.Fatalf("expected invalid_message, got %+v", protoErr)
	}
}

func TestOutboundFromEvent(t *testing.T) {
	snap := outboundFromEvent(&core.Event{Kind: core.EventCurrentCode, Code: "x", Language: "go"})
	if snap.Event != proto.EventCurrentCode {
		t.Fatalf("unexpected event name: %q", snap.Event)
	}
	if data, ok := snap.Data.(proto.Snapshot); !ok || data.Code != "x" || data.Language != "go" {
		t.Fatalf("unexpected snapshot data: %+v", snap.Data)
	}

	count := outboundFromEvent(&core.Event{Kind: core.EventUserCount, Count: 3})
	if count.Event != proto.EventUserCount || count.Data != 3 {
		t.Fatalf("unexpected user-count outbound: %+v", count)
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := outboundFromEvent(&core.Event{Kind: core.EventChat, Message: core.ChatMessage{
		ID: 7, User: "alice", Text: "hi", Timestamp: at,
	}})
	if chat.Event != proto.EventReceiveChat {
		t.Fatalf("unexpected event name: %q", chat.Event)
	}
	msg, ok := chat.Data.(proto.ChatMessage)
	if !ok || msg.ID != 7 || msg.User != "alice" || msg.Message != "hi" {
		t.Fatalf("unexpected chat data: %+v", chat.Data)
	}
	if msg.Timestamp != "2025-06-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp: %q", msg.Timestamp)
	}
}
