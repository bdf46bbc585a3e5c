package delivery

import (
	"context"
	"time"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
	"photo-culler/internal/resize"
)

// Cache is the consuming side of the result cache.
type Cache interface {
	GetAndRemove(index uint64) (*resize.Result, bool)
}

// Scheduler accepts read-ahead requests.
type Scheduler interface {
	Schedule(from uint64)
}

// ServedFunc is called after every successful delivery.
type ServedFunc func(index uint64, name string)

// Delivery is a successful response.
type Delivery struct {
	Index    uint64
	Name     string
	Result   *resize.Result
	CacheHit bool
	Duration time.Duration
}

// Orchestrator serves index requests.
type Orchestrator struct {
	producer  *Producer
	resolver  Resolver
	cache     Cache
	scheduler Scheduler
	onServed  ServedFunc
}

// NewOrchestrator wires an orchestrator. scheduler and onServed may be nil.
func NewOrchestrator(producer *Producer, cache Cache, scheduler Scheduler, onServed ServedFunc) *Orchestrator {
	return &Orchestrator{
		producer:  producer,
		resolver:  producer.resolver,
		cache:     cache,
		scheduler: scheduler,
		onServed:  onServed,
	}
}

// Deliver serves the image at the raw index string.
func (o *Orchestrator) Deliver(ctx context.Context, raw string) (*Delivery, error) {
	start := time.Now()

	index, err := ParseIndex(raw)
	if err != nil {
		o.record("invalid_index", "none", start)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Delivery{Index: index}

	if result, ok := o.cache.GetAndRemove(index); ok {
		d.Result = result
		d.CacheHit = true
		if _, name, err := o.resolver.Resolve(index); err == nil {
			d.Name = name
		}
	} else {
		result, name, err := o.producer.Produce(index)
		if err != nil {
			kind := KindOf(err)
			o.record(kind.String(), "produce", start)
			logging.Debug("Delivery of %d failed: %v", index, err)
			return nil, err
		}
		d.Result = result
		d.Name = name
	}

	d.Duration = time.Since(start)
	source := "produce"
	if d.CacheHit {
		source = "cache"
	}
	o.record("success", source, start)

	if o.scheduler != nil && index < ^uint64(0) {
		o.scheduler.Schedule(index + 1)
	}
	o.served(index, d.Name)

	return d, nil
}

func (o *Orchestrator) record(outcome, source string, start time.Time) {
	metrics.DeliveryRequestsTotal.WithLabelValues(outcome, source).Inc()
	if outcome == "success" {
		metrics.DeliveryDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
}

// served runs the hook, containing any panic.
func (o *Orchestrator) served(index uint64, name string) {
	if o.onServed == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Served hook panicked for index %d: %v", index, r)
		}
	}()
	o.onServed(index, name)
}
