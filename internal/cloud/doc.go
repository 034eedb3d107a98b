// Package cloud implements the resilient cloud-resource loader: bounded
// HTTP fetches with a TTL cache, a per-URL circuit breaker with timed
// self-heal, fallback policies (placeholder, stale cache, none), concurrent
// prefetch, and cloud-side resource manifest loading.
package cloud
