package api

import (
	"fmt"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/http/websocket"
	"github.com/google/uuid"
)

// ** Websocket command handlers ** //

// wsActivityIndex replies with a snapshot of every extraction job the
// service is currently tracking, oldest first.
func (gateway *RestGateway) wsActivityIndex(hub *websocket.SocketHub, message *websocket.SocketMessage) error {
	payload := map[string]interface{}{"payload": gateway.extractorService.AllJobs()}
	hub.Send(message.FormReply("COMMAND_SUCCESS", payload, websocket.Response))
	return nil
}

// wsJobDetails replies with the current state of a single extraction job.
func (gateway *RestGateway) wsJobDetails(hub *websocket.SocketHub, message *websocket.SocketMessage) error {
	var arguments struct {
		ID string `mapstructure:"id"`
	}
	if err := message.DecodeBodyInto(&arguments); err != nil {
		return fmt.Errorf("failed to get job details - %w", err)
	}

	id, err := uuid.Parse(arguments.ID)
	if err != nil {
		return fmt.Errorf("failed to get job details - 'id' is not a valid UUID")
	}

	job := gateway.extractorService.Job(id)
	if job == nil {
		return fmt.Errorf("failed to get job details - no job with ID %s", id)
	}

	hub.Send(message.FormReply("COMMAND_SUCCESS", map[string]interface{}{"payload": job}, websocket.Response))
	return nil
}

// ** Broadcasts (driven by the activity service) ** //

// BroadcastExtractUpdate pushes the current state of the job provided to
// every connected activity socket client.
func (gateway *RestGateway) BroadcastExtractUpdate(id uuid.UUID) error {
	return gateway.broadcastJob("EXTRACT_UPDATE", id)
}

// BroadcastExtractComplete pushes the concluded state of the job
// provided (including any failure kind) to every connected client.
func (gateway *RestGateway) BroadcastExtractComplete(id uuid.UUID) error {
	return gateway.broadcastJob("EXTRACT_COMPLETE", id)
}

func (gateway *RestGateway) broadcastJob(title string, id uuid.UUID) error {
	job := gateway.extractorService.Job(id)
	if job == nil {
		return fmt.Errorf("cannot broadcast %s for job %s: job is not tracked", title, id)
	}

	gateway.socket.Send(&websocket.SocketMessage{
		Title: title,
		Body:  map[string]interface{}{"payload": job},
		Type:  websocket.Update,
	})

	return nil
}
