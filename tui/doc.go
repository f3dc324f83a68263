// Package tui plays a game engine in the terminal with bubbletea.
//
// Sprites are drawn in their own colors through lipgloss. The clock ticks at
// the config's tick rate; arrows or WASD steer, p pauses, n single-steps while
// paused, r resets and q quits.
package tui
