// Package preflight verifies the environment before the daemon starts:
// directory permissions and free disk space for the workflow database.
package preflight
