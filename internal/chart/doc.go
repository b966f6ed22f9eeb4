// Package chart renders simulation results as standalone SVG documents:
// a flow-rate line chart with the threshold rule and overhaul markers, and
// a horizontal bar chart of decay factor contributions.
package chart
