// Package output renders benchmark progress and results: console progress
// lines, per-suite text tables, JSON and YAML reports, and terminal charts.
package output
