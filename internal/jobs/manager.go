package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

// ManagerConfig configures a job manager.
type ManagerConfig struct {
	Store  RecordStore
	Logger *slog.Logger

	// MaxAttempts is the attempt budget per job, including the first run.
	// A retryable failure on the final attempt marks the job dead.
	// Default 3.
	MaxAttempts int

	// RetryDelay is the base delay between attempts; backoff doubles it per
	// retry with jitter. Default 2s.
	RetryDelay time.Duration

	// Retryable decides whether a failed attempt should be retried. Nil
	// retries every error.
	Retryable func(error) bool

	// ErrorText renders the error text persisted on a failed job record.
	// Returning "" falls back to err.Error(). Nil uses err.Error() always.
	// Lets callers persist a richer diagnostic block than the one-line
	// error message.
	ErrorText func(error) string

	// LaneQueueSize is the buffer per lane queue (default 100).
	LaneQueueSize int
}

// Manager executes jobs on per-lane goroutines. Jobs sharing a lane run one
// at a time in submission order; distinct lanes run concurrently. Each job
// gets a durable record that tracks attempts and terminal status.
type Manager struct {
	store         RecordStore
	logger        *slog.Logger
	maxAttempts   int
	retryDelay    time.Duration
	retryable     func(error) bool
	errorText     func(error) string
	laneQueueSize int

	mu     sync.Mutex
	lanes  map[string]chan laneItem
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type laneItem struct {
	id  string
	job Job
}

// NewManager creates a job manager. Call Start before submitting.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	queueSize := cfg.LaneQueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Manager{
		store:         cfg.Store,
		logger:        logger.With("component", "jobs"),
		maxAttempts:   maxAttempts,
		retryDelay:    retryDelay,
		retryable:     cfg.Retryable,
		errorText:     cfg.ErrorText,
		laneQueueSize: queueSize,
		lanes:         make(map[string]chan laneItem),
	}
}

// Start begins accepting jobs. Lane goroutines are spawned lazily on first
// submission to each lane and stop when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx != nil {
		return
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.logger.Info("job manager started", "max_attempts", m.maxAttempts)
}

// Stop cancels all lanes and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("job manager stopped")
}

// Submit creates a record for the job and queues it on its lane. Returns the
// job ID immediately; execution is asynchronous.
func (m *Manager) Submit(ctx context.Context, job Job, metadata map[string]string) (string, error) {
	m.mu.Lock()
	if m.ctx == nil {
		m.mu.Unlock()
		return "", fmt.Errorf("job manager not started")
	}
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("job manager stopped")
	}

	lane := job.Lane()
	if lane == "" {
		lane = "default"
	}
	queue, ok := m.lanes[lane]
	if !ok {
		queue = make(chan laneItem, m.laneQueueSize)
		m.lanes[lane] = queue
		m.wg.Add(1)
		go m.runLane(m.ctx, lane, queue)
	}
	m.mu.Unlock()

	record := &Record{
		ID:       uuid.New().String(),
		JobType:  job.Type(),
		Lane:     lane,
		Status:   StatusQueued,
		Metadata: metadata,
	}
	if err := m.store.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create job record: %w", err)
	}

	select {
	case queue <- laneItem{id: record.ID, job: job}:
	default:
		finishErr := m.store.MarkFinished(ctx, record.ID, StatusFailed, 0, "lane queue full")
		if finishErr != nil {
			m.logger.Error("failed to mark overflowed job", "id", record.ID, "error", finishErr)
		}
		return "", fmt.Errorf("lane %s queue full", lane)
	}

	m.logger.Info("job queued", "id", record.ID, "type", job.Type(), "lane", lane)
	return record.ID, nil
}

// Get returns a job record by ID.
func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	return m.store.Get(ctx, id)
}

// List returns job records matching the filter.
func (m *Manager) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return m.store.List(ctx, filter)
}

func (m *Manager) runLane(ctx context.Context, lane string, queue chan laneItem) {
	defer m.wg.Done()
	logger := m.logger.With("lane", lane)
	logger.Debug("lane started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("lane stopping")
			return
		case item := <-queue:
			m.execute(ctx, logger, item)
		}
	}
}

// execute runs one job through the retry policy and records the outcome.
// Panics in job code are recovered and treated as non-retryable failures.
func (m *Manager) execute(ctx context.Context, logger *slog.Logger, item laneItem) {
	attempts := 0

	err := retry.Do(
		func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = retry.Unrecoverable(fmt.Errorf("job panicked: %v", r))
				}
			}()
			attempts++
			if markErr := m.store.MarkRunning(ctx, item.id, attempts); markErr != nil {
				logger.Error("failed to mark job running", "id", item.id, "error", markErr)
			}
			return item.job.Execute(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(m.maxAttempts)),
		retry.Delay(m.retryDelay),
		retry.MaxJitter(m.retryDelay/2),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if m.retryable == nil {
				return true
			}
			return m.retryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("job attempt failed, retrying",
				"id", item.id, "attempt", n+1, "error", err)
		}),
	)

	if err == nil {
		if markErr := m.store.MarkFinished(ctx, item.id, StatusSucceeded, attempts, ""); markErr != nil {
			logger.Error("failed to mark job succeeded", "id", item.id, "error", markErr)
		}
		logger.Info("job succeeded", "id", item.id, "attempts", attempts)
		return
	}

	// Retryable errors that survive the full attempt budget move the job to
	// the dead letter status; non-retryable errors fail it outright.
	status := StatusFailed
	if m.retryable == nil || m.retryable(err) {
		if attempts >= m.maxAttempts {
			status = StatusDead
		}
	}
	errText := err.Error()
	if m.errorText != nil {
		if text := m.errorText(err); text != "" {
			errText = text
		}
	}
	if markErr := m.store.MarkFinished(ctx, item.id, status, attempts, errText); markErr != nil {
		logger.Error("failed to mark job finished", "id", item.id, "error", markErr)
	}
	logger.Error("job failed", "id", item.id, "status", string(status),
		"attempts", attempts, "error", err)
}
