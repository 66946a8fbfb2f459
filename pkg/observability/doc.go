/*
Package observability turns simulation lifecycle events into Prometheus metrics and
structured log lines.

Both are delivered as domain.LifecycleHooks, so they can be combined with Merge and passed
to the simulation with cellfate.WithLifecycleHooks.
*/
package observability
