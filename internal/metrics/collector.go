package metrics

import (
	"time"

	"photo-culler/internal/logging"
)

// StatsProvider supplies the counts the collector exports.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current catalog and cache statistics
type Stats struct {
	TotalItems   int
	Pending      int
	Keep         int
	Delete       int
	CacheEntries int
	CacheBytes   int64
}

// Collector periodically collects and updates gauge metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogItems.WithLabelValues("pending").Set(float64(stats.Pending))
	CatalogItems.WithLabelValues("keep").Set(float64(stats.Keep))
	CatalogItems.WithLabelValues("delete").Set(float64(stats.Delete))
	CacheEntries.Set(float64(stats.CacheEntries))
	CacheBytes.Set(float64(stats.CacheBytes))

	logging.Debug("Metrics collected: items=%d, pending=%d, keep=%d, delete=%d, cached=%d",
		stats.TotalItems, stats.Pending, stats.Keep, stats.Delete, stats.CacheEntries)
}
