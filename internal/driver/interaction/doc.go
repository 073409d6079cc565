// Package interaction reads single-character commands and turns them into
// switch events: 't' toggles the switch and 'q' asks every driver to stop.
package interaction
