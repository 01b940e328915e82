package http

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

// inboundToCommand validates an inbound envelope and converts it into a
// registry command. Invalid messages yield a proto.Error instead of being
// silently defaulted; optional fields still degrade to stored values.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.RoomID,
		}, nil, nil
	case proto.InboundTypeRequestCode:
		var req proto.RequestCodeData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return nil, nil, err
		}
		if req.RoomID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandRequestCode,
			Room: req.RoomID,
		}, nil, nil
	case proto.InboundTypeCodeChange:
		var change proto.CodeChangeData
		if err := json.Unmarshal(inbound.Data, &change); err != nil {
			return nil, nil, err
		}
		if change.RoomID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandCodeChange,
			Room:     change.RoomID,
			Code:     change.Code,
			Language: change.Language,
		}, nil, nil
	case proto.InboundTypeLanguageChange:
		var change proto.LanguageChangeData
		if err := json.Unmarshal(inbound.Data, &change); err != nil {
			return nil, nil, err
		}
		if change.RoomID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		if change.Language == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "language is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandLanguageChange,
			Room:     change.RoomID,
			Language: change.Language,
			Code:     change.Code,
		}, nil, nil
	case proto.InboundTypeSendChat:
		var chat proto.SendChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, nil, err
		}
		if chat.RoomID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		if chat.User == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "user is required"}, nil
		}
		if chat.Message == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "message is required"}, nil
		}
		if utf8.RuneCountInString(chat.Message) > proto.MaxChatMessageLen {
			return nil, &proto.Error{Code: proto.ErrCodeMessageTooLong, Msg: "message exceeds 500 characters"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendChat,
			Room: chat.RoomID,
			User: chat.User,
			Text: chat.Message,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventCurrentCode:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCurrentCode,
			Data:  proto.Snapshot{Code: event.Code, Language: event.Language},
		}
	case core.EventChatHistory:
		messages := make([]proto.ChatMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, chatMessageToWire(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatHistory,
			Data:  messages,
		}
	case core.EventCodeUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCodeUpdate,
			Data:  proto.Snapshot{Code: event.Code, Language: event.Language},
		}
	case core.EventLanguageUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLanguageUpdate,
			Data:  proto.Snapshot{Code: event.Code, Language: event.Language},
		}
	case core.EventChat:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveChat,
			Data:  chatMessageToWire(event.Message),
		}
	case core.EventUserCount:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserCount,
			Data:  event.Count,
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func chatMessageToWire(msg core.ChatMessage) proto.ChatMessage {
	return proto.ChatMessage{
		ID:        msg.ID,
		User:      msg.User,
		Message:   msg.Text,
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
