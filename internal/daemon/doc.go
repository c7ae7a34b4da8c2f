// Package daemon ties the workflow engine, store, and preflight checks into
// a single long-running process guarded by a file lock.
package daemon
