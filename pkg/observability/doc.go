/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Both LogHooks and Metrics.Hooks return a domain.LifecycleHooks value, so they compose
with each other and with caller hooks through LifecycleHooks.Merge.
*/
package observability
