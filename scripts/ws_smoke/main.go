package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/codecollab/codecollab-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "smoke-tester", "username for the chat message")
	room := flag.String("room", "smoke", "room id to join")
	code := flag.String("code", "console.log('smoke');", "code to push to the room")
	text := flag.String("text", "hello from smoke test", "chat message to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, payload any) error {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("marshal %s: %w", msgType, marshalErr)
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: raw}); writeErr != nil {
			return fmt.Errorf("send %s: %w", msgType, writeErr)
		}
		return nil
	}

	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeCodeChange, proto.CodeChangeData{RoomID: *room, Code: code}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeSendChat, proto.SendChatData{RoomID: *room, User: *user, Message: *text}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeRequestCode, proto.RequestCodeData{RoomID: *room}); err != nil {
		return err
	}

	sawSnapshot := false
	sawChat := false
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			return fmt.Errorf("server error: %s: %s", outbound.Error.Code, outbound.Error.Msg)
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}

		switch outbound.Event {
		case proto.EventCurrentCode:
			var snap proto.Snapshot
			if unmarshalErr := json.Unmarshal(raw, &snap); unmarshalErr != nil {
				fmt.Printf("Raw data: %s\n", string(raw))
				return fmt.Errorf("unmarshal current-code: %w", unmarshalErr)
			}
			fmt.Printf("Snapshot: language=%s code=%q\n", snap.Language, snap.Code)
			sawSnapshot = snap.Code == *code
		case proto.EventReceiveChat:
			var msg proto.ChatMessage
			if unmarshalErr := json.Unmarshal(raw, &msg); unmarshalErr != nil {
				fmt.Printf("Raw data: %s\n", string(raw))
				return fmt.Errorf("unmarshal receive-chat: %w", unmarshalErr)
			}
			fmt.Printf("Chat: id=%d user=%s message=%q ts=%s\n", msg.ID, msg.User, msg.Message, msg.Timestamp)
			sawChat = true
		case proto.EventUserCount:
			var count int
			if unmarshalErr := json.Unmarshal(raw, &count); unmarshalErr == nil {
				fmt.Printf("Users in room: %d\n", count)
			}
		default:
			// keep looping until the snapshot echoes the pushed code
		}

		if sawSnapshot && sawChat {
			return nil
		}
	}
}
