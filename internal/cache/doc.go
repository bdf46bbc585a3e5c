// Package cache holds recently produced resize results keyed by catalog
// index.
//
// The cache exists to carry prefetched images to the request that asks for
// them, so reads consume entries: GetAndRemove hands the result out and
// forgets it in the same step. A photo viewed twice is produced twice.
// Capacity is small (five by default) and the least recently used entry is
// evicted when a new one arrives at capacity.
//
// Every operation takes a single mutex, so a result is delivered to at most
// one caller no matter how many request it concurrently.
package cache
