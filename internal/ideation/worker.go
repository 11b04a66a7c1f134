package ideation

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ideate/internal/llm"
	"github.com/abhisek/ideate/internal/metrics"
)

// Config controls the pacing of the batch loop.
type Config struct {
	// SystemPrompt is used when a job's request leaves System empty.
	SystemPrompt string

	// Backoff is the wait after a failed API call before the next iteration.
	Backoff time.Duration

	// Pace is the wait after every iteration, so the API is not saturated.
	Pace time.Duration

	// EventBuffer is the capacity of a run's event channel.
	EventBuffer int
}

// DefaultConfig returns the standard loop timings.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		Backoff:      2 * time.Second,
		Pace:         500 * time.Millisecond,
		EventBuffer:  64,
	}
}

// Worker runs batch generation jobs.
type Worker struct {
	provider llm.Provider
	config   Config
	log      zerolog.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Worker) { w.log = l }
}

// WithMetrics makes the worker count items, failures and runs.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Worker) { w.metrics = c }
}

// WithClock replaces time.Now for placeholder filenames.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// NewWorker creates a Worker backed by provider.
func NewWorker(provider llm.Provider, cfg Config, opts ...Option) *Worker {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	w := &Worker{
		provider: provider,
		config:   cfg,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts job on its own goroutine and returns its event stream.
// The stream always ends with exactly one FinishedEvent, after which the
// channel is closed. Callers must drain the channel until it closes.
//
// Cancelling ctx aborts the in-flight request; Job.Cancel does not.
func (w *Worker) Run(ctx context.Context, job *Job) <-chan Event {
	events := make(chan Event, max(w.config.EventBuffer, 0))

	go func() {
		defer close(events)
		emit := func(ev Event) { events <- ev }

		summary := Summary{RunID: job.ID(), Total: job.BatchSize}
		func() {
			defer func() {
				if r := recover(); r != nil {
					summary.Err = fmt.Errorf("panic: %v", r)
					w.log.Error().Str("run", job.ID()).Interface("panic", r).Msg("batch loop panicked")
					emit(ErrorEvent{Message: fmt.Sprintf("Error: %v", summary.Err), Err: summary.Err})
				}
			}()
			w.execute(ctx, job, &summary, emit)
		}()

		w.metrics.RunFinished(summary.Outcome())
		w.log.Info().
			Str("run", job.ID()).
			Int("completed", summary.Completed).
			Int("failed", summary.Failed).
			Bool("cancelled", summary.Cancelled).
			AnErr("error", summary.Err).
			Msg("run finished")
		emit(FinishedEvent{Summary: summary})
	}()

	return events
}

func (w *Worker) execute(ctx context.Context, job *Job, summary *Summary, emit func(Event)) {
	abort := func(err error) {
		summary.Err = err
		w.log.Error().Err(err).Str("run", job.ID()).Msg("run aborted")
		emit(ErrorEvent{Message: fmt.Sprintf("Error: %v", err), Err: err})
	}

	if !job.claim() {
		abort(ErrJobReused)
		return
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		abort(fmt.Errorf("creating output directory: %w", err))
		return
	}
	names, err := newNameIndex(job.OutputDir)
	if err != nil {
		abort(err)
		return
	}

	req := llm.Request{
		System: job.Request.System,
		Prompt: job.Request.Prompt,
		Model:  job.Request.Model,
	}
	if req.System == "" {
		req.System = w.config.SystemPrompt
	}
	reqCtx := llm.WithPurpose(ctx, llm.PurposeIdea)

	n := job.BatchSize
	for i := 0; i < n; i++ {
		if job.Cancelled() || ctx.Err() != nil {
			summary.Cancelled = true
			emit(LogEvent{Message: fmt.Sprintf("Stopped after %d of %d iterations.", i, n)})
			break
		}

		emit(LogEvent{Message: fmt.Sprintf("Generating idea %d/%d...", i+1, n)})

		resp, err := w.provider.Generate(reqCtx, req)
		switch {
		case err != nil && ctx.Err() != nil:
			abort(fmt.Errorf("generation interrupted: %w", err))
			return
		case err != nil && !llm.IsTransport(err):
			abort(err)
			return
		case err != nil:
			summary.Failed++
			w.metrics.IterationFailed()
			emit(ErrorEvent{Message: fmt.Sprintf("API Error: %v", err), Err: err})
			w.sleep(ctx, job, w.config.Backoff)
		default:
			idea, err := w.save(names, resp.Content)
			if err != nil {
				abort(err)
				return
			}
			summary.Completed++
			w.metrics.ItemSaved()
			emit(ItemCompletedEvent{
				Filename: idea.Filename,
				Path:     idea.Path,
				Title:    idea.Title,
				Content:  idea.Content,
			})
			emit(LogEvent{Message: "Saved idea to: " + idea.Path})
		}

		emit(ProgressEvent{Percent: percent(i+1, n), Done: i + 1, Total: n})
		w.sleep(ctx, job, w.config.Pace)
	}

	emit(LogEvent{Message: fmt.Sprintf("Completed generating %d ideas!", n)})
}

// Idea is one generated and persisted response.
type Idea struct {
	Content  string
	Title    string
	Filename string
	Path     string
}

func (w *Worker) save(names *nameIndex, content string) (Idea, error) {
	title := ExtractTitle(content)
	stem := SanitizeFilename(title, w.now())

	filename, path, err := names.create(stem, []byte(content))
	if err != nil {
		return Idea{}, err
	}
	return Idea{Content: content, Title: title, Filename: filename, Path: path}, nil
}

// sleep waits for d, returning early if the job is cancelled or ctx is done.
func (w *Worker) sleep(ctx context.Context, job *Job, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-job.stop:
	case <-ctx.Done():
	}
}

func percent(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}
