package scratch_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/scratch"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

func writeArtifact(t *testing.T, store *scratch.Store, extension string, age time.Duration) string {
	t.Helper()

	path := store.Allocate(extension)
	assert.NilError(t, os.WriteFile(path, []byte("stale-bytes"), 0o644))
	if age > 0 {
		expired := time.Now().Add(-age)
		assert.NilError(t, os.Chtimes(path, expired, expired))
	}

	return path
}

func startJanitor(t *testing.T, janitor *scratch.Janitor) {
	t.Helper()

	wg := sync.WaitGroup{}
	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer wg.Done()
		assert.NilError(t, janitor.Run(ctx))
	}()

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func Test_Sweep_RemovesOnlyExpiredArtifacts(t *testing.T) {
	t.Parallel()

	store, err := scratch.NewStore(t.TempDir())
	assert.NilError(t, err)

	config := scratch.Config{Directory: store.Directory(), FileTTLSeconds: 60, SweepIntervalSeconds: 3600}
	janitor := scratch.NewJanitor(config, store)

	expired := writeArtifact(t, store, "mp4", time.Hour)
	fresh := writeArtifact(t, store, "mp3", 0)

	assert.Equal(t, 1, janitor.Sweep())

	_, err = os.Stat(expired)
	assert.Assert(t, errors.Is(err, os.ErrNotExist), "expired artifact survived the sweep")
	_, err = os.Stat(fresh)
	assert.NilError(t, err)

	// A repeat sweep has nothing left to do
	assert.Equal(t, 0, janitor.Sweep())
}

func Test_Run_SweepsOnStartup(t *testing.T) {
	t.Parallel()

	store, err := scratch.NewStore(t.TempDir())
	assert.NilError(t, err)

	expired := writeArtifact(t, store, "mp4", time.Hour)

	config := scratch.Config{Directory: store.Directory(), FileTTLSeconds: 60, SweepIntervalSeconds: 3600}
	startJanitor(t, scratch.NewJanitor(config, store))

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if _, err := os.Stat(expired); errors.Is(err, os.ErrNotExist) {
			return poll.Success()
		}

		return poll.Continue("expired artifact %s still present", expired)
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(50*time.Millisecond))
}

func Test_Run_SweepsWhenDirectorySeesActivity(t *testing.T) {
	t.Parallel()

	store, err := scratch.NewStore(t.TempDir())
	assert.NilError(t, err)

	// An interval this long means only the directory watch can explain
	// a removal inside the poll window below
	config := scratch.Config{Directory: store.Directory(), FileTTLSeconds: 1, SweepIntervalSeconds: 3600}
	startJanitor(t, scratch.NewJanitor(config, store))

	// Give the watcher a moment to establish before creating files
	time.Sleep(250 * time.Millisecond)

	stray := writeArtifact(t, store, "mp4", time.Hour)
	trigger := writeArtifact(t, store, "mp3", 0)

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if _, err := os.Stat(stray); errors.Is(err, os.ErrNotExist) {
			return poll.Success()
		}

		return poll.Continue("stray artifact %s still present", stray)
	}, poll.WithTimeout(3*time.Second), poll.WithDelay(50*time.Millisecond))

	// The young trigger file must have been left alone
	_, err = os.Stat(trigger)
	assert.NilError(t, err)
}
