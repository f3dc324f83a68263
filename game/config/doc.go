// Package config provides configuration management for the Maze Chase game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Maze layout rows plus a legend mapping characters to obstacle or traversable
//   - The player's name, lives and color
//   - Adversaries with their movement strategy (random or persistent)
//   - Tick rate and an optional random seed
//   - Messages for welcome, life lost, victory and game over
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When the directory holds no usable config, the default falls back to the
// built-in classic maze.
package config
