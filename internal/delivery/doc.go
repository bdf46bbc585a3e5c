/*
Package delivery turns an index request into display-ready pixels.

For each request the [Orchestrator]:

 1. parses the raw index (non-negative base-10 integer),
 2. takes a prefetched result out of the cache if one is waiting,
 3. otherwise resolves the index through the catalog, reads the file and
    resizes it to the current viewport (never larger than 1920x1080),
 4. on success asks the prefetch scheduler to warm the following images
    and notifies the served hook.

Failures are *Error values carrying a [Kind] that maps to an HTTP status.
A failed request never touches the cache and never schedules prefetch.

Foreground results are handed straight to the caller and are not cached,
so asking for the same index twice with no prefetch in between produces it
twice.
*/
package delivery
