package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/codecollab/codecollab-server/internal/config"
	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := core.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, nil)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

// readUntilEvent discards frames until one with the wanted event name arrives.
func readUntilEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for %s: %v", event, err)
		}
		if outbound.Event == event {
			return outbound.Data
		}
	}
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: data}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/languages")
	if err != nil {
		t.Fatalf("languages request failed: %v", err)
	}
	defer resp.Body.Close()

	var langs []LanguageInfo
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		t.Fatalf("decode languages: %v", err)
	}
	if len(langs) != 16 {
		t.Fatalf("expected 16 languages, got %d", len(langs))
	}
	if langs[0].ID != "javascript" || langs[0].Template == "" {
		t.Fatalf("unexpected first language: %+v", langs[0])
	}
}

func TestWebSocketJoinAndCodeSync(t *testing.T) {
	ts := startTestServer(t)
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	sendInbound(t, ctx, connA, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "abc123"})

	var snap proto.Snapshot
	if err := json.Unmarshal(readUntilEvent(t, ctx, connA, proto.EventCurrentCode), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Code != "" || snap.Language != "javascript" {
		t.Fatalf("unexpected fresh-room snapshot: %+v", snap)
	}

	var history []proto.ChatMessage
	if err := json.Unmarshal(readUntilEvent(t, ctx, connA, proto.EventChatHistory), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}

	var count int
	if err := json.Unmarshal(readUntilEvent(t, ctx, connA, proto.EventUserCount), &count); err != nil {
		t.Fatalf("unmarshal user count: %v", err)
	}
	if count != 1 {
		t.Fatalf("user count = %d, want 1", count)
	}

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "abc123"})
	readUntilEvent(t, ctx, connB, proto.EventCurrentCode)

	if err := json.Unmarshal(readUntilEvent(t, ctx, connA, proto.EventUserCount), &count); err != nil {
		t.Fatalf("unmarshal user count: %v", err)
	}
	if count != 2 {
		t.Fatalf("user count after second join = %d, want 2", count)
	}

	code := "print(1)"
	sendInbound(t, ctx, connA, proto.InboundTypeCodeChange, proto.CodeChangeData{
		RoomID:   "abc123",
		Code:     &code,
		Language: "python",
	})

	var update proto.Snapshot
	if err := json.Unmarshal(readUntilEvent(t, ctx, connB, proto.EventCodeUpdate), &update); err != nil {
		t.Fatalf("unmarshal code update: %v", err)
	}
	if update.Code != "print(1)" || update.Language != "python" {
		t.Fatalf("unexpected code update: %+v", update)
	}

	sendInbound(t, ctx, connB, proto.InboundTypeSendChat, proto.SendChatData{
		RoomID:  "abc123",
		User:    "bob",
		Message: "nice one",
	})

	var chat proto.ChatMessage
	if err := json.Unmarshal(readUntilEvent(t, ctx, connA, proto.EventReceiveChat), &chat); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if chat.User != "bob" || chat.Message != "nice one" || chat.ID != 1 {
		t.Fatalf("unexpected chat payload: %+v", chat)
	}
	if _, err := time.Parse(time.RFC3339Nano, chat.Timestamp); err != nil {
		t.Fatalf("chat timestamp not ISO-8601: %q", chat.Timestamp)
	}

	// The sender sees its own chat echoed back too.
	if err := json.Unmarshal(readUntilEvent(t, ctx, connB, proto.EventReceiveChat), &chat); err != nil {
		t.Fatalf("unmarshal chat echo: %v", err)
	}
	if chat.User != "bob" {
		t.Fatalf("unexpected chat echo: %+v", chat)
	}

	// REST occupancy reflects the live room.
	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("rooms request failed: %v", err)
	}
	defer resp.Body.Close()
	var stats []core.RoomStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(stats) != 1 || stats[0].ID != "abc123" || stats[0].Members != 2 {
		t.Fatalf("unexpected room stats: %+v", stats)
	}
}

func TestWebSocketRejectsInvalidMessages(t *testing.T) {
	ts := startTestServer(t)
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendInbound(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: ""})

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read error response: %v", err)
	}
	if outbound.Type != proto.OutboundTypeError || outbound.Error == nil || outbound.Error.Code != proto.ErrCodeBadRequest {
		t.Fatalf("unexpected response: %+v", outbound)
	}

	// An oversized chat message is rejected without killing the connection.
	sendInbound(t, ctx, conn, proto.InboundTypeSendChat, proto.SendChatData{
		RoomID:  "r",
		User:    "alice",
		Message: strings.Repeat("x", proto.MaxChatMessageLen+1),
	})
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read error response: %v", err)
	}
	if outbound.Error == nil || outbound.Error.Code != proto.ErrCodeMessageTooLong {
		t.Fatalf("unexpected response: %+v", outbound)
	}

	// The connection is still usable after rejections.
	sendInbound(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "r"})
	readUntilEvent(t, ctx, conn, proto.EventCurrentCode)
}
