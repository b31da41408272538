/*
Package observability provides tools for monitoring the fangraph engine.

Metrics exposes Prometheus collectors for ticks, skipped ticks, hardware failures and
forced Auto transitions. They are registered on a private registry and can be dumped
in the node-exporter textfile format, so no network listener is needed.

LogHooks builds domain.LifecycleHooks that trace every hardware write through slog.
*/
package observability
