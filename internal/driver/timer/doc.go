// Package timer turns the switch off once it has been on for too long.
//
// The driver sleeps until the switch signals it was turned on, then samples
// the activation timer at a fixed cadence, reporting elapsed time, and
// dispatches a timer expiry once the timeout is reached.
package timer
