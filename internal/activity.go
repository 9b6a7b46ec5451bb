package internal

import (
	"context"
	"errors"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/event"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/google/uuid"
)

type (
	broadcaster interface {
		BroadcastExtractUpdate(uuid.UUID) error
		BroadcastExtractComplete(uuid.UUID) error
	}

	// activityService bridges the internal event bus and the activity
	// websocket: every extraction lifecycle event is forwarded to the
	// gateway as a broadcast. Extraction events are low-frequency (one
	// update and one completion per invocation) so no debouncing is
	// applied - every event is forwarded as-is.
	activityService struct {
		broadcaster
		eventBus event.EventHandler
	}
)

func newActivityService(broadcaster broadcaster, eventBus event.EventHandler) *activityService {
	return &activityService{broadcaster: broadcaster, eventBus: eventBus}
}

func (service *activityService) Run(ctx context.Context) error {
	messageChan := make(chan event.HandlerEvent, 100)
	service.eventBus.RegisterHandlerChannel(messageChan, event.ExtractUpdateEvent, event.ExtractCompleteEvent)

	log.Emit(logger.NEW, "Activity service started\n")
	for {
		select {
		case ev := <-messageChan:
			if err := service.handleEvent(ev); err != nil {
				log.Emit(logger.ERROR, "Handling of event %v failed: %v\n", ev, err)
			}
		case <-ctx.Done():
			log.Emit(logger.STOP, "Activity service closed\n")
			return nil
		}
	}
}

func (service *activityService) handleEvent(ev event.HandlerEvent) error {
	jobID, ok := ev.Payload.(uuid.UUID)
	if !ok {
		return errors.New("illegal payload (expected UUID)")
	}

	switch ev.Event {
	case event.ExtractUpdateEvent:
		return service.BroadcastExtractUpdate(jobID)
	case event.ExtractCompleteEvent:
		return service.BroadcastExtractComplete(jobID)
	default:
		return errors.New("unknown event type")
	}
}
