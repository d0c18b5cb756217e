package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-batch/internal/config"
	"github.com/ytget/yt-batch/internal/model"
	"github.com/ytget/yt-batch/internal/platform"
	"github.com/ytget/yt-batch/internal/progress"
)

// Job ID prefix
const JobIDPrefix = "job-"

// Service runs queued URLs strictly one at a time
type Service struct {
	resolver   Resolver
	transcoder Transcoder
	art        ArtFetcher
	logger     Logger
	trackerOpt []progress.Option

	mu         sync.RWMutex
	opts       config.Options
	configured bool
	queue      []string
	jobs       map[string]*model.Job
	order      []string
	running    bool
	stopped    bool
	cancelJob  context.CancelFunc
	done       chan struct{}
	onUpdate   func(*model.Job) // callback for job state changes
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTrackerOptions passes options to every job's progress tracker
func WithTrackerOptions(opts ...progress.Option) Option {
	return func(s *Service) {
		s.trackerOpt = append(s.trackerOpt, opts...)
	}
}

// NewService creates a new queue runner. art may be nil, which disables
// cover art regardless of the session options.
func NewService(resolver Resolver, transcoder Transcoder, art ArtFetcher, opts ...Option) *Service {
	s := &Service{
		resolver:   resolver,
		transcoder: transcoder,
		art:        art,
		logger:     log.Default(),
		jobs:       make(map[string]*model.Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetUpdateCallback sets the callback function for job updates
func (s *Service) SetUpdateCallback(callback func(*model.Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// Configure validates and stores the session options used by the next run
func (s *Service) Configure(opts config.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrQueueRunning
	}
	s.opts = opts
	s.configured = true
	return nil
}

// Enqueue appends URLs to the queue. URLs added while a run is active are
// picked up by that run.
func (s *Service) Enqueue(urls ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			s.queue = append(s.queue, url)
		}
	}
}

// Pending returns the number of URLs not yet dispatched
func (s *Service) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}

// Start begins draining the queue in the background
func (s *Service) Start(ctx context.Context, cb Callbacks) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrQueueRunning
	}
	if !s.configured {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	s.running = true
	s.stopped = false
	s.done = make(chan struct{})
	opts := s.opts
	s.mu.Unlock()

	go s.run(ctx, opts, cb)
	return nil
}

// Stop prevents further dispatch and cancels the active job
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.cancelJob != nil {
		s.cancelJob()
	}
}

// Wait blocks until the current run has fired OnComplete. It returns
// immediately when no run was started.
func (s *Service) Wait() {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()

	if done != nil {
		<-done
	}
}

// GetJob returns a job by ID
func (s *Service) GetJob(id string) (*model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[id]
	return job, exists
}

// GetAllJobs returns all jobs in dispatch order
func (s *Service) GetAllJobs() []*model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	return jobs
}

func (s *Service) run(ctx context.Context, opts config.Options, cb Callbacks) {
	for {
		job, jobCtx, ok := s.next(ctx, opts.Format)
		if !ok {
			break
		}
		s.runJob(jobCtx, job, opts, cb)
	}

	cb.complete()

	s.mu.Lock()
	s.running = false
	s.cancelJob = nil
	close(s.done)
	s.mu.Unlock()
}

// next dequeues the front URL into a new job
func (s *Service) next(ctx context.Context, format model.OutputFormat) (*model.Job, context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelJob != nil {
		s.cancelJob()
		s.cancelJob = nil
	}
	if s.stopped || ctx.Err() != nil || len(s.queue) == 0 {
		return nil, nil, false
	}

	url := s.queue[0]
	s.queue = s.queue[1:]

	job := &model.Job{
		ID:     generateJobID(),
		URL:    url,
		Format: format,
		Status: model.JobStatusPending,
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	jobCtx, cancel := context.WithCancel(ctx)
	s.cancelJob = cancel
	return job, jobCtx, true
}

// runJob executes one job and converts its result into exactly one outcome
func (s *Service) runJob(ctx context.Context, job *model.Job, opts config.Options, cb Callbacks) {
	s.update(job, func(j *model.Job) {
		j.StartedAt = time.Now()
	})

	var (
		data *model.DownloadedData
		err  error
	)
	if err = platform.CreateDirectoryIfNotExists(opts.DownloadPath); err == nil {
		switch opts.Format {
		case model.FormatMP3:
			data, err = s.runAudioJob(ctx, job, opts, cb)
		case model.FormatMP4:
			data, err = s.runVideoJob(ctx, job, opts, cb)
		default:
			err = fmt.Errorf("%w: %q", config.ErrInvalidFormat, opts.Format)
		}
	}

	if err != nil && ctx.Err() != nil {
		err = ErrCancelled
	}

	s.update(job, func(j *model.Job) {
		j.FinishedAt = time.Now()
		switch {
		case errors.Is(err, ErrCancelled):
			j.Status = model.JobStatusStopped
			j.LastError = err.Error()
		case err != nil:
			j.Status = model.JobStatusError
			j.LastError = err.Error()
		default:
			j.Status = model.JobStatusCompleted
			j.OutputPath = data.OutputPath
		}
	})

	if err != nil {
		s.logger.Printf("Job %s failed for %s: %v", job.ID, job.GetDisplayTitle(), err)
		cb.fail(job.URL, err.Error())
		return
	}
	s.logger.Printf("Job %s completed: %s -> %s", job.ID, job.GetDisplayTitle(), data.OutputPath)
	cb.itemEnd(*data)
}

// newTracker builds the progress tracker of a job
func (s *Service) newTracker(job *model.Job, title string, tracks []model.Track, cb Callbacks) *progress.Tracker {
	info := progress.Info{JobID: job.ID, Title: title, URL: job.URL}
	return progress.New(info, tracks, cb.progress, s.trackerOpt...)
}

// warn logs and reports a non-fatal notice
func (s *Service) warn(job *model.Job, cb Callbacks, message string) {
	s.logger.Printf("Job %s: %s", job.ID, message)
	cb.warning(message)
}

func (s *Service) setStatus(job *model.Job, status model.JobStatus) {
	s.update(job, func(j *model.Job) {
		j.Status = status
	})
}

// update mutates a job under the lock and notifies the update callback
func (s *Service) update(job *model.Job, fn func(*model.Job)) {
	s.mu.Lock()
	fn(job)
	snapshot := *job
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(&snapshot)
	}
}

// success builds the success record from the tracker totals
func success(job *model.Job, title, outputPath string, tracker *progress.Tracker) *model.DownloadedData {
	audio, video := tracker.Totals()
	return &model.DownloadedData{
		JobID:      job.ID,
		Started:    tracker.Started(),
		Ended:      time.Now(),
		Title:      title,
		URL:        job.URL,
		OutputPath: outputPath,
		Audio:      audio,
		Video:      video,
	}
}

// generateJobID generates a unique job ID using UUID v7 for time ordering
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
