// Package stats computes aggregate reports over workflows and cards:
// status counts, overdue and recency windows, completion averages, per-stage
// breakdowns, and per-assignee workload. Computation is pure and reads a
// consistent snapshot.
package stats
