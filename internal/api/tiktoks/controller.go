package tiktoks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/metrics"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/tiktok"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("TiktoksController")

// The fixed outward-facing failure messages. Underlying causes are only
// ever logged, never surfaced to the caller.
const (
	infoFailureMessage     = "Failed to process TikTok URL"
	downloadFailureMessage = "Failed to download content"
)

type (
	InfoRequest struct {
		URL string `json:"url" validate:"required"`
	}

	// Service covers the two extractor invocation modes the controller
	// drives. Both are blocking and honour the request context.
	Service interface {
		ExtractMetadata(ctx context.Context, url string) (*extractor.RawMetadata, error)
		Download(ctx context.Context, mode extractor.Mode, url string, outputPath string) error
	}

	// ScratchStore hands out unique output paths for converted media and
	// owns removal of the artifacts written to them.
	ScratchStore interface {
		Allocate(extension string) string
		Remove(path string)
		OpenRemoveOnClose(path string) (io.ReadCloser, int64, error)
	}

	Controller struct {
		validate *validator.Validate
		service  Service
		scratch  ScratchStore
	}
)

func New(validate *validator.Validate, service Service, scratch ScratchStore) *Controller {
	return &Controller{validate: validate, service: service, scratch: scratch}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/info/", controller.info)
	eg.GET("/download/:type/", controller.download)
}

// info validates the URL provided in the request body, invokes the
// extractor in metadata-dump mode and returns the derived document. The
// URL is validated BEFORE the extractor is involved; no subprocess is
// ever spawned for a URL that fails validation.
func (controller *Controller) info(ec echo.Context) error {
	var request InfoRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body is malformed")
	}

	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "URL is required")
	}

	if problems := tiktok.ValidateURL(request.URL); len(problems) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, problems[0])
	}

	metadata, err := controller.service.ExtractMetadata(ec.Request().Context(), request.URL)
	if err != nil {
		logFailure("Metadata extraction", request.URL, err)
		return echo.NewHTTPError(http.StatusInternalServerError, infoFailureMessage)
	}

	info := tiktok.NewVideoInfo(metadata, request.URL)
	log.Emit(logger.INFO, "Processed %s: title=%q creator=%q views=%d likes=%d\n",
		request.URL, info.Title, info.Creator.Username, info.Stats.Views, info.Stats.Likes)

	return ec.JSON(http.StatusOK, info)
}

// download invokes the extractor in fetch-and-convert mode against a
// freshly allocated scratch path and streams the converted file back to
// the caller. The artifact is removed as soon as the stream closes; if
// anything fails beforehand it is removed immediately (the janitor
// backstops anything that slips through).
func (controller *Controller) download(ec echo.Context) error {
	var (
		mode        extractor.Mode
		extension   string
		contentType string
	)

	mediaType := ec.Param("type")
	switch mediaType {
	case "video":
		mode, extension, contentType = extractor.VIDEO, "mp4", "video/mp4"
	case "audio":
		mode, extension, contentType = extractor.AUDIO, "mp3", "audio/mpeg"
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Download type '%s' is not recognised", mediaType))
	}

	url := ec.QueryParam("url")
	if problems := tiktok.ValidateURL(url); len(problems) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, problems[0])
	}

	outputPath := controller.scratch.Allocate(extension)
	if err := controller.service.Download(ec.Request().Context(), mode, url, outputPath); err != nil {
		controller.scratch.Remove(outputPath)
		logFailure("Download", url, err)
		return echo.NewHTTPError(http.StatusInternalServerError, downloadFailureMessage)
	}

	// The content type served is fixed per mode; sniffing is only a
	// sanity check on what the tool actually produced.
	if detected, err := mimetype.DetectFile(outputPath); err == nil && !detected.Is(contentType) {
		log.Emit(logger.WARNING, "Converted %s artifact %s sniffs as '%s', expected '%s'\n", mediaType, outputPath, detected, contentType)
	}

	reader, size, err := controller.scratch.OpenRemoveOnClose(outputPath)
	if err != nil {
		controller.scratch.Remove(outputPath)
		logFailure("Download", url, fmt.Errorf("converted file unreadable: %w", err))
		return echo.NewHTTPError(http.StatusInternalServerError, downloadFailureMessage)
	}
	defer reader.Close()

	filename := fmt.Sprintf("tiktok-%s-%d.%s", mediaType, time.Now().UnixMilli(), extension)
	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	metrics.RecordDownloadBytes(mediaType, size)
	return ec.Stream(http.StatusOK, contentType, reader)
}

func logFailure(operation string, url string, err error) {
	if kind, ok := extractor.KindOf(err); ok {
		log.Emit(logger.ERROR, "%s for %s failed (%s): %v\n", operation, url, kind, err)
		return
	}

	log.Emit(logger.ERROR, "%s for %s failed: %v\n", operation, url, err)
}
