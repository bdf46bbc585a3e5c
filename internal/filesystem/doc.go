/*
Package filesystem provides filesystem operations with retry logic for NFS
stale file handle errors.

Source folders are frequently network mounts. Reads, stats and directory
listings against them can fail transiently with ESTALE when the server side
changes underneath the client. The helpers here retry those errors with
exponential backoff and fail immediately on anything else.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

Metrics are reported through an Observer set with SetObserver, and each path
is labelled with a volume name resolved by a VolumeResolver. Both are
optional; with neither configured the helpers behave like their os
counterparts plus retries.
*/
package filesystem
