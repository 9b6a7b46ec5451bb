package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/api"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/event"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/scratch"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	RestGateway interface {
		RunnableService
		broadcaster
	}
)

// Downloader represents the top-level object for the server, and is
// responsible for constructing the services, wiring them together over
// the event bus, and running them until told to stop.
type downloaderImpl struct {
	eventBus event.EventCoordinator
	config   DownloaderConfig

	extractorService api.ExtractorService
	scratchStore     *scratch.Store
	janitor          RunnableService
	activityService  RunnableService
	restGateway      RestGateway
}

// New constructs every service the downloader runs from the config
// provided. An error from any constructor aborts the whole bootstrap;
// there is no degraded mode.
func New(config DownloaderConfig) (*downloaderImpl, error) {
	log.Emit(logger.DEBUG, "Bootstrapping downloader services using config: %#v\n", config)

	eventBus := event.New()
	extractorService, err := extractor.New(config.Extractor, eventBus)
	if err != nil {
		return nil, fmt.Errorf("failed to construct extractor service: %w", err)
	}

	scratchStore, err := scratch.NewStore(config.Scratch.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to construct scratch store: %w", err)
	}

	restGateway := api.NewRestGateway(&config.API, extractorService, scratchStore)

	return &downloaderImpl{
		eventBus:         eventBus,
		config:           config,
		extractorService: extractorService,
		scratchStore:     scratchStore,
		janitor:          scratch.NewJanitor(config.Scratch, scratchStore),
		activityService:  newActivityService(restGateway, eventBus),
		restGateway:      restGateway,
	}, nil
}

// Run brings up all the downloader services and blocks until the
// provided context is cancelled. Errors from which a service cannot
// recover also cause the whole downloader to stop.
func (downloader *downloaderImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel()
	}

	wg := &sync.WaitGroup{}
	downloader.spawnAsyncService(ctx, wg, downloader.janitor, "scratch-janitor", crashHandler)
	downloader.spawnAsyncService(ctx, wg, downloader.activityService, "activity-service", crashHandler)
	downloader.spawnAsyncService(ctx, wg, downloader.restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Downloader services spawned!\n")

	wg.Wait()
	return nil
}

// spawnAsyncService will run the provided function/service as its own
// go-routine, ensuring that the service waitgroup is updated correctly
func (downloader *downloaderImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		defer wg.Done()
		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
