// Package memory keeps the culler inside its container memory budget.
//
// Decoded photos are large: a 24 megapixel frame is roughly 96 MB of RGBA
// before it is scaled down. A few concurrent prefetch jobs can push the heap
// past a container limit long before the garbage collector notices.
//
// [ConfigureFromEnv] sets GOMEMLIMIT from the container limit so the runtime
// collects more aggressively as the heap approaches it:
//
//   - GOMEMLIMIT: standard Go variable, takes precedence when set.
//   - MEMORY_LIMIT: container limit, raw bytes or a size such as "2GiB".
//     Typically injected through the Kubernetes Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, 0.0-1.0,
//     default 0.85. Lower it when libvips is the resize backend since its
//     buffers live outside the Go heap.
//
// A [Monitor] samples heap usage against that limit. Once usage crosses the
// high water mark ShouldThrottle reports true and the prefetch scheduler
// stops producing speculative images until usage falls again. Foreground
// requests are never throttled.
package memory
