// Command stitchflowd runs the stitchflow daemon: it opens the workflow
// store, loads the stage template, and serves CLI requests over a unix
// socket until interrupted.
package main
