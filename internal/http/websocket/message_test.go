package websocket_test

import (
	"testing"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/http/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_DecodeBodyInto_DecodesArguments(t *testing.T) {
	t.Parallel()

	message := websocket.SocketMessage{Body: map[string]interface{}{"id": "abc-123"}}

	var arguments struct {
		ID string `mapstructure:"id"`
	}
	assert.NoError(t, message.DecodeBodyInto(&arguments))
	assert.Equal(t, "abc-123", arguments.ID)
}

func Test_DecodeBodyInto_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	message := websocket.SocketMessage{Body: map[string]interface{}{"id": "abc", "bogus": true}}

	var arguments struct {
		ID string `mapstructure:"id"`
	}
	assert.Error(t, message.DecodeBodyInto(&arguments))
}

func Test_FormReply_TargetsOrigin(t *testing.T) {
	t.Parallel()

	origin := uuid.New()
	message := websocket.SocketMessage{
		Title:  "JOB_DETAILS",
		Body:   map[string]interface{}{"id": "abc"},
		Id:     7,
		Type:   websocket.Command,
		Origin: &origin,
	}

	reply := message.FormReply("COMMAND_SUCCESS", map[string]interface{}{"payload": "ok"}, websocket.Response)

	assert.Equal(t, "COMMAND_SUCCESS", reply.Title)
	assert.Equal(t, 7, reply.Id)
	assert.Equal(t, websocket.Response, reply.Type)
	assert.Equal(t, &origin, reply.Target)
	assert.Equal(t, message.Body, reply.Body["command"])
}
