// Package engine is the service layer over the workflow store: it resolves
// templates into card sets at creation, gates card mutations through the
// access package, and exposes board and statistics projections.
package engine
