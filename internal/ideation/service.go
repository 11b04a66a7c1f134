package ideation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ideate/internal/llm"
	"github.com/abhisek/ideate/internal/store"
)

// ErrJobActive is returned by Start while a previous run is still going.
var ErrJobActive = errors.New("a job is already running; wait for it to finish or cancel it")

// StartInput is what a front-end supplies to start a job.
type StartInput struct {
	Prompt    string
	BatchSize int
	OutputDir string
	// Model overrides the provider's model when non-empty.
	Model string
}

// Service is the inbound surface for front-ends. It probes the backend,
// starts at most one job at a time and records run history.
type Service struct {
	provider     llm.Provider
	worker       *Worker
	runs         store.RunRepo
	log          zerolog.Logger
	probeTimeout time.Duration
	host         string

	mu       sync.Mutex
	active   *Run
	starting bool // a Start call is between its checks and s.active
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRunRepo records every started run.
func WithRunRepo(repo store.RunRepo) ServiceOption {
	return func(s *Service) { s.runs = repo }
}

// WithServiceLogger sets the service's logger.
func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// WithProbeTimeout bounds the liveness probe. Default 5s.
func WithProbeTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.probeTimeout = d }
}

// WithHost names the backend in liveness errors raised by the service itself.
func WithHost(host string) ServiceOption {
	return func(s *Service) { s.host = host }
}

// NewService creates a Service. The worker should be built on the same
// provider.
func NewService(provider llm.Provider, worker *Worker, opts ...ServiceOption) *Service {
	s := &Service{
		provider:     provider,
		worker:       worker,
		log:          zerolog.Nop(),
		probeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping runs the liveness probe on its own.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	err := s.provider.Ping(ctx)
	if err == nil {
		return nil
	}
	var lc *llm.ErrLivenessCheckFailed
	if errors.As(err, &lc) {
		return err
	}
	return &llm.ErrLivenessCheckFailed{Host: s.host, Err: err}
}

// Start validates input, runs the liveness probe and, only if it passes,
// starts a job. Nothing is created on disk when Start returns an error.
func (s *Service) Start(ctx context.Context, in StartInput) (*Run, error) {
	if err := validateJob(in.Prompt, in.BatchSize, in.OutputDir); err != nil {
		return nil, err
	}

	// The slot is claimed under the lock; the probe runs without it.
	s.mu.Lock()
	if s.active != nil || s.starting {
		s.mu.Unlock()
		return nil, ErrJobActive
	}
	s.starting = true
	s.mu.Unlock()

	run, err := s.prepare(ctx, in)

	s.mu.Lock()
	s.starting = false
	if err == nil {
		s.active = run
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go s.relay(context.WithoutCancel(ctx), run, s.worker.Run(ctx, run.job))

	return run, nil
}

// prepare probes the backend, creates the job and records the run start.
func (s *Service) prepare(ctx context.Context, in StartInput) (*Run, error) {
	if err := s.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("liveness probe failed, job not started")
		return nil, err
	}

	job, err := NewJob(GenerationRequest{Prompt: in.Prompt, Model: in.Model}, in.BatchSize, in.OutputDir)
	if err != nil {
		return nil, err
	}

	model := in.Model
	if model == "" {
		model = s.provider.ModelID()
	}
	if s.runs != nil {
		rec := store.RunRecord{
			ID:        job.ID(),
			StartedAt: time.Now(),
			Prompt:    in.Prompt,
			Model:     model,
			BatchSize: in.BatchSize,
			OutputDir: in.OutputDir,
		}
		if err := s.runs.StartRun(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("run", job.ID()).Msg("failed to record run start")
		}
	}

	s.log.Info().
		Str("run", job.ID()).
		Str("model", model).
		Int("batch_size", in.BatchSize).
		Str("output_dir", in.OutputDir).
		Msg("starting job")

	return &Run{
		job:    job,
		events: make(chan Event, max(s.worker.config.EventBuffer, 0)),
		done:   make(chan struct{}),
	}, nil
}

// relay forwards worker events to the run's consumer and does the
// bookkeeping once the run finishes.
func (s *Service) relay(ctx context.Context, run *Run, in <-chan Event) {
	defer close(run.done)
	defer close(run.events)

	for ev := range in {
		if fin, ok := ev.(FinishedEvent); ok {
			s.finish(ctx, run, fin.Summary)
		}
		run.events <- ev
	}
}

func (s *Service) finish(ctx context.Context, run *Run, summary Summary) {
	if s.runs != nil {
		result := store.RunResult{
			Completed: summary.Completed,
			Failed:    summary.Failed,
			Cancelled: summary.Cancelled,
		}
		if summary.Err != nil {
			result.ErrorMessage = summary.Err.Error()
		}
		if err := s.runs.FinishRun(ctx, run.ID(), result); err != nil {
			s.log.Warn().Err(err).Str("run", run.ID()).Msg("failed to record run result")
		}
	}

	s.mu.Lock()
	if s.active == run {
		s.active = nil
	}
	s.mu.Unlock()
}

// Cancel cancels the active run, if any, and reports whether there was one.
func (s *Service) Cancel() bool {
	s.mu.Lock()
	run := s.active
	s.mu.Unlock()

	if run == nil {
		return false
	}
	run.Cancel()
	return true
}

// Shutdown cancels the active run, if any, and waits until its result is
// recorded. Events nobody consumed are discarded. It returns ctx.Err() if
// the run is still going when ctx ends.
func (s *Service) Shutdown(ctx context.Context) error {
	run := s.Active()
	if run == nil {
		return nil
	}
	run.Cancel()

	events := run.Events()
	for {
		select {
		case <-run.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Active returns the running job's handle, or nil.
func (s *Service) Active() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Run is a started job as seen by a front-end.
type Run struct {
	job    *Job
	events chan Event
	done   chan struct{}
}

// ID returns the run ID.
func (r *Run) ID() string { return r.job.ID() }

// Job returns the underlying job.
func (r *Run) Job() *Job { return r.job }

// Events returns the run's event stream. It must be drained until closed.
func (r *Run) Events() <-chan Event { return r.events }

// Cancel stops the run at the next iteration boundary.
func (r *Run) Cancel() { r.job.Cancel() }

// Done is closed once the run has finished and its events are delivered.
func (r *Run) Done() <-chan struct{} { return r.done }
