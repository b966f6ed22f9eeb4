// Package metrics exposes PumpSight's own operational counters in Prometheus
// text exposition format, built directly from client_model metric families.
package metrics
