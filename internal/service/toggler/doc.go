// Package toggler runs the timed switch: it starts the automaton, launches
// the interaction and timer drivers against it and waits for both to stop.
package toggler
