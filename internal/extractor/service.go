package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/event"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/metrics"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/google/uuid"
)

var (
	log = logger.Get("Extractor")

	ErrJobNotFound = errors.New("no job found")
)

const (
	// Concluded jobs are retained for observability. Once this many are
	// tracked, the oldest concluded job is dropped to admit a new one.
	maxTrackedJobs = 64

	// Number of trailing stderr lines folded into a NONZERO_EXIT error.
	stderrTailLines = 5

	// Grace period after the child is killed before its inherited pipes
	// are forcibly closed. The tool spawns its own children which share
	// our stderr pipe; without this an orphan could hold Wait open.
	pipeWaitDelay = 5 * time.Second
)

// extractorService owns every invocation of the external extraction
// tool. It is responsible for:
//   - Bounding how many extractor processes run concurrently
//   - Enforcing a per-mode deadline on each invocation, killing the
//     child and surfacing a failure when it is exceeded
//   - Classifying failures so callers can log/report them precisely
//     while keeping their outward-facing messages generic
//   - Live-tracking of recent invocations over the event bus
type extractorService struct {
	*sync.Mutex
	config   *Config
	jobs     []*Job
	sem      chan struct{}
	eventBus event.EventCoordinator
}

// New creates a new extractorService. An error is returned if the
// configuration provided is not usable (e.g., no binary path).
func New(config Config, eventBus event.EventCoordinator) (*extractorService, error) {
	if config.BinaryPath == "" {
		return nil, errors.New("extractor binary path is not set")
	}

	if config.Parallelism < 1 {
		return nil, fmt.Errorf("extractor parallelism (%d) must be at least 1", config.Parallelism)
	}

	if config.MetadataTimeoutSeconds < 1 || config.DownloadTimeoutSeconds < 1 {
		return nil, errors.New("extractor invocation timeouts must be positive")
	}

	return &extractorService{
		Mutex:    &sync.Mutex{},
		config:   &config,
		jobs:     make([]*Job, 0),
		sem:      make(chan struct{}, config.Parallelism),
		eventBus: eventBus,
	}, nil
}

// ExtractMetadata invokes the tool in metadata-dump mode against the URL
// provided and parses the single JSON document it emits on stdout. The
// caller is expected to have validated the URL already; this method
// passes it to the child verbatim as one argument of the vector.
func (service *extractorService) ExtractMetadata(ctx context.Context, url string) (*RawMetadata, error) {
	output, err := service.execute(ctx, METADATA, url, "", service.config.MetadataTimeout())
	if err != nil {
		return nil, err
	}

	var metadata RawMetadata
	if err := json.Unmarshal(output, &metadata); err != nil {
		return nil, newError(PARSE_FAILURE, fmt.Errorf("malformed metadata document: %w", err))
	}

	return &metadata, nil
}

// Download invokes the tool in fetch-and-convert mode, blocking until the
// child has exited and the converted file exists at outputPath. Only the
// VIDEO and AUDIO modes are accepted.
func (service *extractorService) Download(ctx context.Context, mode Mode, url string, outputPath string) error {
	if mode != VIDEO && mode != AUDIO {
		return newError(VALIDATION_FAILURE, fmt.Errorf("mode %s is not downloadable", mode))
	}

	if _, err := service.execute(ctx, mode, url, outputPath, service.config.DownloadTimeout()); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return newError(IO_FAILURE, fmt.Errorf("extractor exited cleanly but output is unreadable: %w", err))
	}

	if info.Size() == 0 {
		return newError(IO_FAILURE, fmt.Errorf("extractor exited cleanly but output %s is empty", outputPath))
	}

	return nil
}

// AllJobs returns a snapshot of the jobs known to this service, oldest
// first. The jobs themselves are live and may change state after return.
func (service *extractorService) AllJobs() []*Job {
	service.Lock()
	defer service.Unlock()

	jobs := make([]*Job, len(service.jobs))
	copy(jobs, service.jobs)
	return jobs
}

// Job looks through all the jobs known to this service and returns the
// one with a matching ID, if it can be found. If no such job exists,
// nil is returned.
func (service *extractorService) Job(id uuid.UUID) *Job {
	service.Lock()
	defer service.Unlock()

	for _, j := range service.jobs {
		if j.ID() == id {
			return j
		}
	}

	return nil
}

// execute performs a single bounded invocation of the external tool.
// It blocks until a concurrency slot is free (giving up if the context
// is cancelled first), spawns the child with a deadline attached, and
// returns whatever the child wrote to stdout.
func (service *extractorService) execute(ctx context.Context, mode Mode, url string, outputPath string, timeout time.Duration) ([]byte, error) {
	select {
	case service.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, newError(SPAWN_FAILURE, fmt.Errorf("request abandoned before an invocation slot was free: %w", ctx.Err()))
	}
	defer func() { <-service.sem }()

	job := service.registerJob(mode, url)

	metrics.ActiveExtractions.Inc()
	started := time.Now()
	output, err := service.runCommand(ctx, job, outputPath, timeout)
	metrics.ActiveExtractions.Dec()

	service.concludeJob(job, err, time.Since(started))
	return output, err
}

func (service *extractorService) runCommand(ctx context.Context, job *Job, outputPath string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, service.config.BinaryPath, buildArgs(job.Mode(), job.URL(), outputPath)...)
	cmd.WaitDelay = pipeWaitDelay

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, newError(SPAWN_FAILURE, fmt.Errorf("failed to attach stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return nil, newError(SPAWN_FAILURE, fmt.Errorf("failed to spawn %s: %w", service.config.BinaryPath, err))
	}

	log.Emit(logger.DEBUG, "Spawned %s invocation %s (pid %d)\n", job.Mode(), job.ID(), cmd.Process.Pid)

	tail := make([]string, 0, stderrTailLines)
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		log.Emit(logger.DEBUG, "[%s] %s\n", job.ID(), line)

		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, newError(NONZERO_EXIT, fmt.Errorf("%s invocation %s killed: %w", job.Mode(), job.ID(), ctxErr))
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, newError(NONZERO_EXIT, fmt.Errorf("%s invocation %s exited with code %d (%s)", job.Mode(), job.ID(), exitErr.ExitCode(), strings.Join(tail, " | ")))
		}

		return nil, newError(IO_FAILURE, fmt.Errorf("%s invocation %s did not conclude cleanly: %w", job.Mode(), job.ID(), err))
	}

	return stdout.Bytes(), nil
}

// registerJob adds a new RUNNING job to the services queue, evicting the
// oldest concluded job if the queue is at capacity.
func (service *extractorService) registerJob(mode Mode, url string) *Job {
	service.Lock()

	job := newJob(mode, url)
	if len(service.jobs) >= maxTrackedJobs {
		for i, j := range service.jobs {
			if j.Status() != RUNNING {
				service.jobs = append(service.jobs[:i], service.jobs[i+1:]...)
				break
			}
		}
	}

	service.jobs = append(service.jobs, job)
	service.Unlock()

	service.eventBus.Dispatch(event.ExtractUpdateEvent, job.ID())
	return job
}

func (service *extractorService) concludeJob(job *Job, err error, elapsed time.Duration) {
	job.conclude(err)

	outcome := "success"
	if err != nil {
		outcome = "unknown"
		if kind, ok := KindOf(err); ok {
			outcome = strings.ToLower(kind.String())
		}

		log.Emit(logger.ERROR, "Job %s concluded with error: %v\n", job, err)
	}
	metrics.RecordExtraction(strings.ToLower(job.Mode().String()), outcome, elapsed.Seconds())

	service.eventBus.Dispatch(event.ExtractCompleteEvent, job.ID())
}
