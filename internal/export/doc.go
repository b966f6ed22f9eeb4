// Package export serializes simulated year series to CSV and parses them
// back. Float columns use the shortest exact representation, so a write/read
// round trip reproduces the original values bit for bit.
package export
