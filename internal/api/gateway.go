package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/api/tiktoks"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/http/websocket"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/metrics"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr string `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// ExtractorService is the union of what the controllers need (the two
	// invocation modes) and what the activity socket needs (the job
	// registry snapshot).
	ExtractorService interface {
		tiktoks.Service
		AllJobs() []*extractor.Job
		Job(uuid.UUID) *extractor.Job
	}

	// The RestGateway is a thin wrapper around the Echo HTTP router. Its
	// sole responsibility is to create the routes this service exposes
	// and to manage ongoing websocket connections and events.
	RestGateway struct {
		config           *RestConfig
		ec               *echo.Echo
		socket           *websocket.SocketHub
		extractorService ExtractorService
		tiktokController controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all
// the routes this service exposes, as well as the activity websocket
// and its bound commands.
func NewRestGateway(config *RestConfig, extractorService ExtractorService, scratchStore tiktoks.ScratchStore) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true

	socket := websocket.New()
	gateway := &RestGateway{
		config:           config,
		ec:               ec,
		socket:           socket,
		extractorService: extractorService,
		tiktokController: tiktoks.New(validator.New(), extractorService, scratchStore),
	}

	socket.WithConnectionCallback(func() map[string]interface{} {
		return map[string]interface{}{"jobs": extractorService.AllJobs()}
	})
	socket.BindCommand("ACTIVITY_INDEX", gateway.wsActivityIndex)
	socket.BindCommand("JOB_DETAILS", gateway.wsJobDetails)

	ec.Use(middleware.Recover())
	ec.Use(requestMetrics)
	ec.Pre(middleware.AddTrailingSlash())

	ec.GET("/api/tiktok/activity/ws/", func(ec echo.Context) error {
		gateway.socket.UpgradeToSocket(ec.Response(), ec.Request())
		return nil
	})

	ec.GET("/api/tiktok/health/", gateway.health)
	ec.GET("/metrics/", echo.WrapHandler(promhttp.Handler()))

	tiktok := ec.Group("/api/tiktok")
	gateway.tiktokController.SetRoutes(tiktok)

	return gateway
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	// Start websocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		gateway.socket.Start(ctx)
	}()

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// requestMetrics records every completed request against the prometheus
// collectors. The route template is used rather than the raw path so
// that download URLs do not explode the label cardinality.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		started := time.Now()
		err := next(ec)

		status := ec.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			} else {
				status = http.StatusInternalServerError
			}
		}

		metrics.RecordRequest(ec.Request().Method, ec.Path(), strconv.Itoa(status), time.Since(started).Seconds())
		return err
	}
}

func (gateway *RestGateway) health(ec echo.Context) error {
	return ec.JSON(http.StatusOK, map[string]string{
		"service": "tiktok-downloader",
		"status":  "ok",
	})
}
