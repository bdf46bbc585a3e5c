// Package prefetch warms the result cache ahead of the viewer.
//
// After each successful delivery of index i the orchestrator calls
// Schedule(i+1). The scheduler queues i+1 through i+window on a bounded
// channel served by a fixed pool of workers. Scheduling never blocks: when
// the queue is full the remaining indices are dropped and counted.
//
// A worker skips an index that is already cached, skips everything while
// the memory monitor asks for throttling, and otherwise produces the image
// and inserts it into the cache. Concurrent jobs for the same index share
// one production through singleflight. Failures, including indices past
// the end of the catalog, are logged and counted but never reported to a
// client.
package prefetch
