// Package engine provides the core simulation for the Maze Chase game.
//
// The engine package implements the game mechanics including:
//   - Maze parsing into obstacle and traversable cells
//   - Sprite occupancy tracked per cell through a sprite arena
//   - Pluggable movement strategies (random, persistent, manual)
//   - Per-agent collision resolution tables
//   - A tick loop with victory and game over detection
//
// Core Types:
//
// Board owns the grid of Cells and every occupancy list. Sprites are Items,
// Players or Adversaries; the mobile ones implement Agent and carry a
// Strategy and a ResolutionTable. Board.Move runs the move protocol for one
// agent. GameEngine wires a GameConfig into a Board and drives ticks.
//
// Usage:
//
//	board, err := engine.Build(maze)
//	if err != nil {
//		log.Fatal(err)
//	}
//	board.SeedItems()
//
//	pos, _ := board.RandomTraversableCell()
//	steer := engine.NewManualWalk()
//	player := engine.NewPlayer("pc", pos, steer)
//	board.Place(player)
//
//	steer.SetHeading(engine.Right)
//	outcome, err := board.Move(player)
//
// Game Rules:
//
// The player collects one point per item it walks over. Adversaries take a
// life whenever the player and an adversary meet on a cell, whoever moved.
// At zero lives the player leaves the board and the game is over; when no
// item remains the player wins.
package engine
