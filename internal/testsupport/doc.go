// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store lifecycle management, and workflow seeding.
package testsupport
