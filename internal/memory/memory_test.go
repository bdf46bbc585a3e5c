package memory

import (
	"testing"
	"time"
)

func newTestMonitor(limit int64, alloc *uint64) *Monitor {
	m := NewMonitor(Config{
		MemoryLimitBytes: limit,
		HighWaterMark:    0.8,
		LowWaterMark:     0.6,
		CheckInterval:    time.Hour,
	})
	m.readAlloc = func() uint64 { return *alloc }
	return m
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HighWaterMark <= cfg.LowWaterMark {
		t.Errorf("HighWaterMark %.2f should exceed LowWaterMark %.2f", cfg.HighWaterMark, cfg.LowWaterMark)
	}
	if cfg.CheckInterval <= 0 {
		t.Errorf("CheckInterval = %v, want positive", cfg.CheckInterval)
	}
}

func TestMonitorThrottleHysteresis(t *testing.T) {
	alloc := uint64(100)
	m := newTestMonitor(1000, &alloc)

	steps := []struct {
		alloc uint64
		want  bool
	}{
		{100, false},
		{790, false},
		{800, true},
		{700, true}, // still above the low water mark
		{599, false},
		{650, false},
		{950, true},
	}

	for _, step := range steps {
		alloc = step.alloc
		m.checkMemory()
		if got := m.ShouldThrottle(); got != step.want {
			t.Errorf("alloc=%d: ShouldThrottle() = %v, want %v", step.alloc, got, step.want)
		}
	}
}

func TestMonitorNoLimitNeverThrottles(t *testing.T) {
	alloc := uint64(1 << 40)
	m := newTestMonitor(0, &alloc)
	m.limit = 0
	m.checkMemory()

	if m.ShouldThrottle() {
		t.Error("monitor without a limit should never throttle")
	}
}

func TestNilMonitorShouldThrottle(t *testing.T) {
	var m *Monitor
	if m.ShouldThrottle() {
		t.Error("nil monitor should not throttle")
	}
}

func TestMonitorGetStats(t *testing.T) {
	alloc := uint64(512)
	m := newTestMonitor(1024, &alloc)
	m.checkMemory()

	stats := m.GetStats()
	if stats.Current != 512 || stats.Limit != 1024 {
		t.Errorf("stats = %+v, want current 512 limit 1024", stats)
	}
	if stats.Usage != 0.5 {
		t.Errorf("Usage = %v, want 0.5", stats.Usage)
	}
	if stats.Human != "512 B / 1.0 KiB" {
		t.Errorf("Human = %q", stats.Human)
	}
}

func TestMonitorStartStop(t *testing.T) {
	alloc := uint64(10)
	m := newTestMonitor(1000, &alloc)
	m.config.CheckInterval = time.Millisecond

	m.Start()
	time.Sleep(10 * time.Millisecond)
	m.Stop()
	m.Stop()

	if got := m.GetStats().Current; got != 10 {
		t.Errorf("Current = %d, want 10", got)
	}
}
