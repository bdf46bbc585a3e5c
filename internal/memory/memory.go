package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
)

// Config holds memory management configuration
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT or no limit)
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit at which prefetch is throttled
	HighWaterMark float64

	// LowWaterMark is the fraction below which throttling is lifted
	LowWaterMark float64

	// CheckInterval is how often to sample memory usage
	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for memory management
func DefaultConfig() Config {
	return Config{
		HighWaterMark: 0.8,
		LowWaterMark:  0.65,
		CheckInterval: 2 * time.Second,
	}
}

// Monitor tracks heap usage and reports when speculative work should stop.
type Monitor struct {
	config    Config
	limit     int64
	readAlloc func() uint64
	stopChan  chan struct{}
	stopOnce  sync.Once

	mu        sync.RWMutex
	current   uint64
	throttled bool
}

// NewMonitor creates a new memory monitor
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < math.MaxInt64 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %s", FormatBytes(limit))
		}
	}

	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, prefetch throttling disabled")
	}

	if config.LowWaterMark <= 0 || config.LowWaterMark > config.HighWaterMark {
		config.LowWaterMark = config.HighWaterMark
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		readAlloc: heapAlloc,
		stopChan:  make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins monitoring memory usage
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}

	m.checkMemory()
	go m.monitorLoop()
}

// Stop stops the memory monitor. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	alloc := m.readAlloc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	if m.limit <= 0 {
		return
	}

	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case !m.throttled && usage >= m.config.HighWaterMark:
		m.throttled = true
		metrics.MemoryThrottled.Set(1)
		logging.Warn("Memory high (%.1f%% of %s), pausing prefetch", usage*100, FormatBytes(m.limit))
	case m.throttled && usage < m.config.LowWaterMark:
		m.throttled = false
		metrics.MemoryThrottled.Set(0)
		logging.Info("Memory recovered (%.1f%% of %s), resuming prefetch", usage*100, FormatBytes(m.limit))
	}
}

// ShouldThrottle reports whether speculative work should be skipped.
func (m *Monitor) ShouldThrottle() bool {
	if m == nil || m.limit == 0 {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.throttled
}

// Stats is a point-in-time view of the monitor.
type Stats struct {
	Current   int64   `json:"currentBytes"`
	Limit     int64   `json:"limitBytes"`
	Usage     float64 `json:"usage"`
	Throttled bool    `json:"throttled"`
	Human     string  `json:"human"`
}

// GetStats returns current memory statistics
func (m *Monitor) GetStats() Stats {
	if m == nil {
		return Stats{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	current := int64(math.MaxInt64)
	if m.current <= math.MaxInt64 {
		current = int64(m.current)
	}

	stats := Stats{
		Current:   current,
		Limit:     m.limit,
		Throttled: m.throttled,
		Human:     FormatBytes(current),
	}
	if m.limit > 0 {
		stats.Usage = float64(m.current) / float64(m.limit)
		stats.Human += " / " + FormatBytes(m.limit)
	}
	return stats
}
