// Package store manages the in-memory scenario state. It provides a
// thread-safe store of completed simulation runs keyed by scenario name,
// with TTL eviction of scenarios that have not been recomputed recently.
package store
