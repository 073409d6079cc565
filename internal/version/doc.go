// Package version exposes build metadata of the timer-toggle binary.
//
// Version, Commit and BuildTime are injected via ldflags and keep their
// defaults for local builds.
package version
