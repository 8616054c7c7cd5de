// Package tui draws the progress of a collection run with bubbletea: a
// progress bar over all users, a per-user stage list and a short activity
// log. Work happens elsewhere and reports through Observe, Phase and
// Finish.
package tui
