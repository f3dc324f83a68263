package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// AgentConfig describes one agent to spawn
type AgentConfig struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy,omitempty"`
	Color    *Color `json:"color,omitempty"`
}

// PlayerConfig describes the steered agent
type PlayerConfig struct {
	Name  string `json:"name"`
	Lives int    `json:"lives"`
	Color *Color `json:"color,omitempty"`
}

// Messages shown by drivers. Victory and GameOver take the final points via %d.
type Messages struct {
	Welcome  string `json:"welcome"`
	LifeLost string `json:"life_lost"`
	Victory  string `json:"victory"`
	GameOver string `json:"game_over"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Layout      []string          `json:"layout"`
	Legend      map[string]string `json:"legend,omitempty"`
	Player      PlayerConfig      `json:"player"`
	Adversaries []AgentConfig     `json:"adversaries"`
	TickMillis  int               `json:"tick_ms,omitempty"`
	Seed        uint64            `json:"seed,omitempty"`
	Messages    Messages          `json:"messages"`
}

// MazeLegend converts the config legend, falling back to DefaultLegend when empty
func (c *GameConfig) MazeLegend() (Legend, error) {
	if len(c.Legend) == 0 {
		return DefaultLegend(), nil
	}
	legend := make(Legend, len(c.Legend))
	for key, value := range c.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("legend key %q must be a single character", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		switch CellKind(value) {
		case CellObstacle, CellTraversable:
			legend[r] = CellKind(value)
		default:
			return nil, fmt.Errorf("legend['%s'] must be '%s' or '%s', got '%s'",
				key, CellObstacle, CellTraversable, value)
		}
	}
	return legend, nil
}

// Maze returns the layout joined into a maze description
func (c *GameConfig) Maze() string {
	return strings.Join(c.Layout, "\n")
}

// TickInterval returns the configured tick length in milliseconds, defaulted
func (c *GameConfig) TickInterval() int {
	if c.TickMillis == 0 {
		return DefaultTickMilli
	}
	return c.TickMillis
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	legend, err := config.MazeLegend()
	if err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	board, err := BuildWithLegend(config.Maze(), legend)
	if err != nil {
		return fmt.Errorf("config validation: layout: %w", err)
	}
	cells := board.Traversables()
	if len(cells) == 0 {
		return fmt.Errorf("config validation: layout: %w", ErrEmptyBoard)
	}

	if config.Player.Lives < MinLives || config.Player.Lives > MaxLives {
		return fmt.Errorf("config validation: player.lives must be between %d and %d, got %d",
			MinLives, MaxLives, config.Player.Lives)
	}

	if len(config.Adversaries) > MaxAdversaries {
		return fmt.Errorf("config validation: at most %d adversaries allowed, got %d",
			MaxAdversaries, len(config.Adversaries))
	}
	for i, adv := range config.Adversaries {
		switch adv.Strategy {
		case "", StrategyRandom, StrategyPersistent:
		default:
			return fmt.Errorf("config validation: adversaries[%d].strategy must be '%s' or '%s', got '%s'",
				i, StrategyRandom, StrategyPersistent, adv.Strategy)
		}
	}

	// Autonomous walkers need an exit from every cell they can be spawned on.
	if len(config.Adversaries) > 0 {
		for _, p := range cells {
			if len(board.TraversableNeighbors(p)) == 0 {
				return fmt.Errorf("config validation: traversable cell at row %d, col %d is enclosed",
					p.Row+1, p.Col+1)
			}
		}
	}

	if config.TickMillis != 0 && (config.TickMillis < MinTickMillis || config.TickMillis > MaxTickMillis) {
		return fmt.Errorf("config validation: tick_ms must be between %d and %d, got %d",
			MinTickMillis, MaxTickMillis, config.TickMillis)
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for points")
	}
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for points")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in maze used when no config is supplied
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "The original eleven-row maze with four adversaries",
		Layout: []string{
			"#################################",
			"#      ####                     #",
			"# #### #### #### #### #### #### #",
			"#                               #",
			"# #### #### #### #### #### #### #",
			"#                               #",
			"# #### #### #### #### #### #### #",
			"#                               #",
			"# ######### #### #### #### ######",
			"#                          ######",
			"#################################",
		},
		Legend: map[string]string{
			"#": string(CellObstacle),
			" ": string(CellTraversable),
		},
		Player: PlayerConfig{Name: "pc", Lives: DefaultLives},
		Adversaries: []AgentConfig{
			{Name: "g1", Strategy: StrategyRandom},
			{Name: "g2", Strategy: StrategyRandom},
			{Name: "g3", Strategy: StrategyPersistent},
			{Name: "g4", Strategy: StrategyPersistent},
		},
		TickMillis: DefaultTickMilli,
	}
	config.Messages.Welcome = "Collect every item and stay away from the ghosts!"
	config.Messages.LifeLost = "Ouch! A ghost caught you."
	config.Messages.Victory = "YOU WIN! Points: %d"
	config.Messages.GameOver = "Game Over! Points: %d"
	return config
}
