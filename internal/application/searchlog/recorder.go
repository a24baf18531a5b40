package searchlog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one executed search to be recorded.
type Entry struct {
	Query      string
	Intent     string
	CityID     int64
	UserID     string
	SessionID  string
	Total      int64
	Page       int
	TookMillis int64
	CacheHit   bool
	At         time.Time
}

// Repository persists search log entries.
type Repository interface {
	SaveBatch(ctx context.Context, entries []Entry) error
}

const (
	flushInterval = 2 * time.Second
	maxBatch      = 100
)

// Recorder accepts search log entries on a bounded queue and writes them to
// the repository in batches from a background goroutine. When the queue is
// full, entries are dropped: logging must never slow a search down.
type Recorder struct {
	repo   Repository
	queue  chan Entry
	logger *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRecorder creates a new Recorder with the given queue capacity.
func NewRecorder(repo Repository, queueSize int, logger *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Recorder{
		repo:   repo,
		queue:  make(chan Entry, queueSize),
		logger: logger.Named("search-log"),
	}
}

// Record enqueues an entry without blocking. Returns false when the queue is
// full and the entry was dropped.
func (r *Recorder) Record(entry Entry) bool {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	select {
	case r.queue <- entry:
		return true
	default:
		r.logger.Warn("search log queue full, entry dropped", zap.String("query", entry.Query))
		return false
	}
}

// Start starts the background drain loop.
func (r *Recorder) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.drainLoop(ctx)

	r.logger.Info("search log recorder started", zap.Int("queue_size", cap(r.queue)))
}

// Stop flushes what is queued and stops the drain loop.
func (r *Recorder) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("search log recorder stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) drainLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Entry, 0, maxBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.repo.SaveBatch(context.Background(), batch); err != nil {
			r.logger.Error("failed to save search log batch",
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// drain whatever is still queued before exiting
			for {
				select {
				case entry := <-r.queue:
					batch = append(batch, entry)
					if len(batch) >= maxBatch {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case entry := <-r.queue:
			batch = append(batch, entry)
			if len(batch) >= maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
