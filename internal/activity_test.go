package internal

import (
	"context"
	"testing"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/event"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/google/uuid"
	"github.com/hbomb79/go-chanassert"
)

func init() {
	logger.SetMinLoggingLevel(logger.ERROR.Level())
}

// recordingBroadcaster satisfies the broadcaster interface by pushing a
// label for each broadcast on to a channel for assertion.
type recordingBroadcaster struct {
	ch chan string
}

func (broadcaster *recordingBroadcaster) BroadcastExtractUpdate(id uuid.UUID) error {
	broadcaster.ch <- "update:" + id.String()
	return nil
}

func (broadcaster *recordingBroadcaster) BroadcastExtractComplete(id uuid.UUID) error {
	broadcaster.ch <- "complete:" + id.String()
	return nil
}

func Test_ActivityService_ForwardsExtractionEventsInOrder(t *testing.T) {
	bus := event.New()
	ch := make(chan string, 10)
	service := newActivityService(&recordingBroadcaster{ch: ch}, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = service.Run(ctx) }()

	// Give Run a moment to register its handler channel with the bus
	time.Sleep(50 * time.Millisecond)

	id := uuid.New()
	expecter := chanassert.NewChannelExpecter(ch).
		Expect(chanassert.ExactlyNOf(1, chanassert.MatchEqual("update:"+id.String()))).
		Expect(chanassert.ExactlyNOf(1, chanassert.MatchEqual("complete:"+id.String())))
	expecter.Listen()

	bus.Dispatch(event.ExtractUpdateEvent, id)
	bus.Dispatch(event.ExtractCompleteEvent, id)

	expecter.AssertSatisfied(t, time.Second)
}
