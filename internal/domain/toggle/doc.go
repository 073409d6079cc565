// Package toggle contains the timed switch automaton.
//
// It defines the events (Toggle, TimerExpired), the states (Off, On) and
// Switch, the single automaton instance the drivers share. On remembers
// when it was entered so the timer driver can turn it off after a timeout.
package toggle
