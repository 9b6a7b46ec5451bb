package scratch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/metrics"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/rjeczalik/notify"
)

// Janitor reaps scratch artifacts that outlive their TTL. Artifacts are
// normally removed by whoever created them (streamed files delete on
// close, failed extractions are cleaned up explicitly); the janitor
// catches everything that slips through, such as outputs orphaned by a
// crash or files left behind by a previous run.
type Janitor struct {
	store  *Store
	config Config
}

func NewJanitor(config Config, store *Store) *Janitor {
	return &Janitor{store: store, config: config}
}

// Run is the main entry point for this service. It sweeps immediately,
// then on a fixed interval, and opportunistically whenever the scratch
// directory sees new files. This method will block until the provided
// context is cancelled.
func (janitor *Janitor) Run(ctx context.Context) error {
	fsNotifyChannel := make(chan notify.EventInfo, 16)
	if err := notify.Watch(janitor.store.Directory(), fsNotifyChannel, notify.Create); err != nil {
		log.Emit(logger.WARNING, "Directory watch unavailable (%v), relying on periodic sweeps only\n", err)
	} else {
		defer notify.Stop(fsNotifyChannel)
	}

	sweepTicker := time.NewTicker(janitor.config.SweepInterval())
	defer sweepTicker.Stop()

	janitor.Sweep()

	for {
		select {
		case <-fsNotifyChannel:
			janitor.Sweep()
		case <-sweepTicker.C:
			janitor.Sweep()
		case <-ctx.Done():
			log.Emit(logger.STOP, "Shutting down (context cancelled)\n")
			return nil
		}
	}
}

// Sweep removes every artifact in the scratch directory whose last
// modification is older than the configured TTL, returning how many
// were removed. Young files are always left alone, so a sweep can never
// race an in-progress extraction provided the TTL exceeds the download
// deadline.
func (janitor *Janitor) Sweep() int {
	cutoff := time.Now().Add(-janitor.config.FileTTL())

	entries, err := os.ReadDir(janitor.store.Directory())
	if err != nil {
		log.Emit(logger.ERROR, "Sweep failed, scratch directory unreadable: %v\n", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			path := filepath.Join(janitor.store.Directory(), entry.Name())
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Emit(logger.WARNING, "Failed to sweep expired artifact %s: %v\n", path, err)
				continue
			}

			removed++
			log.Emit(logger.REMOVE, "Swept expired scratch artifact %s\n", entry.Name())
		}
	}

	if removed > 0 {
		metrics.RecordScratchPurge(removed)
	}

	return removed
}
