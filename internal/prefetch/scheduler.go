package prefetch

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
	"photo-culler/internal/resize"
	"photo-culler/internal/workers"
)

// Defaults used when Config fields are zero.
const (
	DefaultWindow     = 5
	DefaultQueueSize  = 64
	defaultMaxWorkers = 4
)

// Producer creates the result for one index.
type Producer interface {
	Produce(index uint64) (*resize.Result, string, error)
}

// Store is the producing side of the result cache.
type Store interface {
	Contains(index uint64) bool
	Insert(index uint64, r *resize.Result)
}

// Throttler reports memory pressure.
type Throttler interface {
	ShouldThrottle() bool
}

// Config sizes the scheduler.
type Config struct {
	// Window is how many indices after the served one are warmed.
	Window int
	// Workers is the pool size; zero sizes it from the CPU budget.
	Workers int
	// QueueSize bounds pending jobs.
	QueueSize int
}

// Stats counts job outcomes since start.
type Stats struct {
	Workers       int    `json:"workers"`
	Window        int    `json:"window"`
	Queued        int    `json:"queued"`
	Scheduled     uint64 `json:"scheduled"`
	Produced      uint64 `json:"produced"`
	SkippedCached uint64 `json:"skippedCached"`
	SkippedMemory uint64 `json:"skippedMemory"`
	Failed        uint64 `json:"failed"`
	Dropped       uint64 `json:"dropped"`
}

// Scheduler runs read-ahead jobs on a bounded worker pool.
type Scheduler struct {
	producer  Producer
	store     Store
	throttler Throttler
	window    int
	workers   int

	jobs  chan uint64
	group singleflight.Group
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool

	scheduled     atomic.Uint64
	produced      atomic.Uint64
	skippedCached atomic.Uint64
	skippedMemory atomic.Uint64
	failed        atomic.Uint64
	dropped       atomic.Uint64
}

// New creates a scheduler. throttler may be nil.
func New(cfg Config, producer Producer, store Store, throttler Throttler) *Scheduler {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = workers.ForCPU(defaultMaxWorkers)
	}

	return &Scheduler{
		producer:  producer,
		store:     store,
		throttler: throttler,
		window:    cfg.Window,
		workers:   cfg.Workers,
		jobs:      make(chan uint64, cfg.QueueSize),
	}
}

// Start launches the workers. Calling it twice has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.closed {
		return
	}
	s.started = true

	metrics.PrefetchWorkers.Set(float64(s.workers))
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	logging.Info("Prefetch scheduler started: %d workers, window %d, queue %d", s.workers, s.window, cap(s.jobs))
}

// Stop closes the queue and waits for workers to finish the jobs already
// queued. Schedule calls after Stop are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
	metrics.PrefetchWorkers.Set(0)
	logging.Info("Prefetch scheduler stopped")
}

// Schedule queues from through from+window-1 without blocking.
func (s *Scheduler) Schedule(from uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	for i := 0; i < s.window; i++ {
		index := from + uint64(i)
		if index < from {
			break
		}

		select {
		case s.jobs <- index:
			s.scheduled.Add(1)
		default:
			s.dropped.Add(1)
			metrics.PrefetchJobsTotal.WithLabelValues("dropped").Inc()
			logging.Debug("Prefetch queue full, dropping index %d", index)
		}
	}

	metrics.PrefetchQueueDepth.Set(float64(len(s.jobs)))
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for index := range s.jobs {
		metrics.PrefetchQueueDepth.Set(float64(len(s.jobs)))
		s.run(index)
	}
}

func (s *Scheduler) run(index uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			metrics.PrefetchJobsTotal.WithLabelValues("failed").Inc()
			logging.Error("Prefetch of %d panicked: %v", index, r)
		}
	}()

	if s.store.Contains(index) {
		s.skippedCached.Add(1)
		metrics.PrefetchJobsTotal.WithLabelValues("skipped_cached").Inc()
		return
	}

	if s.throttler != nil && s.throttler.ShouldThrottle() {
		s.skippedMemory.Add(1)
		metrics.PrefetchJobsTotal.WithLabelValues("skipped_memory").Inc()
		return
	}

	// Duplicate jobs for the same index wait on the first one and record
	// nothing themselves.
	_, _, _ = s.group.Do(strconv.FormatUint(index, 10), func() (any, error) {
		if s.store.Contains(index) {
			s.skippedCached.Add(1)
			metrics.PrefetchJobsTotal.WithLabelValues("skipped_cached").Inc()
			return nil, nil
		}

		start := time.Now()
		result, name, err := s.producer.Produce(index)
		if err != nil {
			s.failed.Add(1)
			metrics.PrefetchJobsTotal.WithLabelValues("failed").Inc()
			logging.Debug("Prefetch of %d failed: %v", index, err)
			return nil, err
		}
		s.store.Insert(index, result)

		s.produced.Add(1)
		metrics.PrefetchJobsTotal.WithLabelValues("produced").Inc()
		metrics.PrefetchDuration.Observe(time.Since(start).Seconds())
		logging.Debug("Prefetched %s (index %d) in %v", name, index, time.Since(start))
		return nil, nil
	})
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Workers:       s.workers,
		Window:        s.window,
		Queued:        len(s.jobs),
		Scheduled:     s.scheduled.Load(),
		Produced:      s.produced.Load(),
		SkippedCached: s.skippedCached.Load(),
		SkippedMemory: s.skippedMemory.Load(),
		Failed:        s.failed.Load(),
		Dropped:       s.dropped.Load(),
	}
}

// Window returns the read-ahead depth.
func (s *Scheduler) Window() int {
	return s.window
}
