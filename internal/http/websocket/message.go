package websocket

import (
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

type SocketMessageType int

const (
	Update SocketMessageType = iota
	Command
	Response
	ErrorResponse
	Welcome
)

// SocketMessage is the envelope for every packet travelling over the
// activity socket. The Id field can be used when replying to a message
// so the receiving client is aware of which message the reply is for.
// Origin serves much the same purpose server-side - it records which
// client sent a command so the reply can be targeted back at it.
type SocketMessage struct {
	Title  string                 `json:"title"`
	Body   map[string]interface{} `json:"arguments"`
	Id     int                    `json:"id"`
	Type   SocketMessageType      `json:"type"`
	Origin *uuid.UUID             `json:"-"`
	Target *uuid.UUID             `json:"-"`
}

// DecodeBodyInto decodes the loosely-typed message arguments in to the
// struct provided. Unknown keys are rejected so a client typo fails
// loudly rather than being silently ignored.
func (message *SocketMessage) DecodeBodyInto(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ErrorUnused: true, Result: target})
	if err != nil {
		return err
	}

	return decoder.Decode(message.Body)
}

// FormReply returns a NEW message with the same id as the original and
// targeted at its origin, with a caller-provided title, body and type.
func (message *SocketMessage) FormReply(replyTitle string, replyBody map[string]interface{}, replyType SocketMessageType) *SocketMessage {
	if replyBody != nil {
		replyBody["command"] = message.Body
	}

	return &SocketMessage{
		Title:  replyTitle,
		Body:   replyBody,
		Type:   replyType,
		Id:     message.Id,
		Target: message.Origin,
	}
}
