package ideation

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	ErrEmptyPrompt      = errors.New("prompt must not be empty")
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	ErrNoOutputDir      = errors.New("output directory must be set")
	ErrJobReused        = errors.New("job has already been run")
)

// GenerationRequest is what every iteration of a job sends to the model.
type GenerationRequest struct {
	Prompt string
	System string
	// Model overrides the provider's configured model when non-empty.
	Model string
}

// Job is one batch run: a fixed request, a size and an output directory.
// A Job can be run once; start a new Job to run again.
type Job struct {
	id        string
	Request   GenerationRequest
	BatchSize int
	OutputDir string

	started   atomic.Bool
	cancelled atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewJob validates its input and returns a job with a fresh run ID.
func NewJob(req GenerationRequest, batchSize int, outputDir string) (*Job, error) {
	if err := validateJob(req.Prompt, batchSize, outputDir); err != nil {
		return nil, err
	}
	return &Job{
		id:        uuid.NewString(),
		Request:   req,
		BatchSize: batchSize,
		OutputDir: outputDir,
		stop:      make(chan struct{}),
	}, nil
}

func validateJob(prompt string, batchSize int, outputDir string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if batchSize < 1 {
		return ErrInvalidBatchSize
	}
	if outputDir == "" {
		return ErrNoOutputDir
	}
	return nil
}

// ID returns the run ID.
func (j *Job) ID() string {
	return j.id
}

// Cancel asks the job to stop at the next iteration boundary. An
// in-flight request is allowed to finish. Safe to call more than once
// and from any goroutine.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
	j.stopOnce.Do(func() { close(j.stop) })
}

// Cancelled reports whether Cancel has been called.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// claim marks the job as started; false means it already ran.
func (j *Job) claim() bool {
	return j.started.CompareAndSwap(false, true)
}
