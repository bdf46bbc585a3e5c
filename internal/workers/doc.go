/*
Package workers sizes worker pools from the CPU budget the process actually
has.

Inside a container runtime.NumCPU reports the host's cores while GOMAXPROCS
follows the cgroup CPU limit. Pool sizes here are derived from GOMAXPROCS so
a culler limited to two cores does not spin up sixty-four resize workers.

	n := workers.ForCPU(8) // one per CPU, at most 8

Resizing is CPU-bound, so the prefetch pool uses ForCPU. The PREFETCH_WORKERS
environment variable overrides the computed value; the limit still applies.
*/
package workers
