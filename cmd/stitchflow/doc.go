// Command stitchflow is the CLI front end for the stitchflow daemon. It
// talks to the daemon over its unix socket and renders workflows, cards,
// board views, and statistics.
package main
