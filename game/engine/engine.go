package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() (*GameState, error)
	IsGameOver() bool
	IsVictory() bool
	GetPlayer() *Player
	GetBoard() *Board

	// Simulation
	Tick() (*TickResult, error)
	Steer(direction string) error

	// Configuration
	GetConfig() *GameConfig

	// History
	GetHistory() []TickRecord
	GetLastTick() *TickRecord
}

// TickResult reports one simulation step: one move per agent in creation order
type TickResult struct {
	Tick     int           `json:"tick"`
	Outcomes []MoveOutcome `json:"outcomes"`
	Events   []Event       `json:"events,omitempty"`
	GameOver bool          `json:"game_over"`
	Victory  bool          `json:"victory"`
}

// TickRecord is a compact history entry for one tick
type TickRecord struct {
	Tick      int      `json:"tick"`
	Heading   string   `json:"heading"`
	PlayerPos Position `json:"player_pos"`
	Lives     int      `json:"lives"`
	Points    int      `json:"points"`
	Events    []Event  `json:"events,omitempty"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	config  *GameConfig
	rng     *rand.Rand
	board   *Board
	agents  []Agent
	player  *Player
	steer   *ManualWalk
	tick    int
	total   int
	over    bool
	victory bool
	message string
	last    []Event
	history []TickRecord
}

// EngineOption configures a GameEngine
type EngineOption func(*GameEngine)

// WithEngineRand fixes the random source, mainly for tests
func WithEngineRand(r *rand.Rand) EngineOption {
	return func(e *GameEngine) {
		e.rng = r
	}
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig, opts ...EngineOption) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		if config.Seed != 0 {
			e.rng = rand.New(rand.NewPCG(config.Seed, config.Seed))
		} else {
			e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with DefaultGameConfig
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// setup builds the board, seeds items and spawns agents. The player is spawned last
// so that it moves last in every tick.
func (e *GameEngine) setup() error {
	legend, err := e.config.MazeLegend()
	if err != nil {
		return err
	}
	board, err := BuildWithLegend(e.config.Maze(), legend, WithRand(e.rng))
	if err != nil {
		return err
	}
	if _, err := board.SeedItems(); err != nil {
		return err
	}

	agents := make([]Agent, 0, len(e.config.Adversaries)+1)
	for i, ac := range e.config.Adversaries {
		strategy, err := NewStrategy(ac.Strategy)
		if err != nil {
			return err
		}
		pos, err := board.RandomTraversableCell()
		if err != nil {
			return err
		}
		name := ac.Name
		if name == "" {
			name = fmt.Sprintf("g%d", i+1)
		}
		adv := NewAdversary(name, pos, strategy)
		if ac.Color != nil {
			adv.SetColor(*ac.Color)
		}
		agents = append(agents, adv)
	}

	pos, err := board.RandomTraversableCell()
	if err != nil {
		return err
	}
	name := e.config.Player.Name
	if name == "" {
		name = "pc"
	}
	steer := NewManualWalk()
	player := NewPlayer(name, pos, steer)
	player.SetLives(e.config.Player.Lives)
	if e.config.Player.Color != nil {
		player.SetColor(*e.config.Player.Color)
	}
	agents = append(agents, player)

	for _, a := range agents {
		if err := board.Place(a); err != nil {
			return err
		}
	}

	e.board = board
	e.agents = agents
	e.player = player
	e.steer = steer
	e.tick = 0
	e.over = false
	e.victory = false
	e.message = e.config.Messages.Welcome
	e.last = nil
	return nil
}

// Tick advances the simulation one step. Each agent moves once in creation order;
// the round stops early when the player leaves the board.
func (e *GameEngine) Tick() (*TickResult, error) {
	if e.over {
		return &TickResult{Tick: e.tick, GameOver: true, Victory: e.victory}, nil
	}

	e.tick++
	e.total++
	result := &TickResult{Tick: e.tick}
	livesBefore := e.player.Lives()

	for _, a := range e.agents {
		out, err := e.board.Move(a)
		if err != nil {
			return result, fmt.Errorf("tick %d: %w", e.tick, err)
		}
		result.Outcomes = append(result.Outcomes, out)
		result.Events = append(result.Events, out.Events...)

		if e.board.CountByKind(KindPlayer) == 0 {
			e.over = true
			e.message = fmt.Sprintf(e.config.Messages.GameOver, e.player.Points())
			result.Events = append(result.Events, Event{
				Type: EventGameOver, Target: e.player.Name(), Position: e.player.Position(), Points: e.player.Points(),
			})
			break
		}
	}

	if !e.over && e.board.CountByKind(KindCollectible) == 0 {
		e.over = true
		e.victory = true
		e.message = fmt.Sprintf(e.config.Messages.Victory, e.player.Points())
		result.Events = append(result.Events, Event{
			Type: EventVictory, Target: e.player.Name(), Position: e.player.Position(), Points: e.player.Points(),
		})
	} else if !e.over && e.player.Lives() < livesBefore && e.config.Messages.LifeLost != "" {
		e.message = e.config.Messages.LifeLost
	}

	result.GameOver = e.over
	result.Victory = e.victory
	e.last = result.Events

	e.history = append(e.history, TickRecord{
		Tick:      e.total,
		Heading:   e.steer.Heading().String(),
		PlayerPos: e.player.Position(),
		Lives:     e.player.Lives(),
		Points:    e.player.Points(),
		Events:    result.Events,
	})

	return result, nil
}

// Steer sets the player's requested heading for the following ticks
func (e *GameEngine) Steer(direction string) error {
	d, err := ParseDirection(direction)
	if err != nil {
		return err
	}
	e.steer.SetHeading(d)
	return nil
}

// Heading returns the player's requested heading
func (e *GameEngine) Heading() Direction {
	return e.steer.Heading()
}

// Reset rebuilds the board from config. Tick history is cumulative across resets.
func (e *GameEngine) Reset() (*GameState, error) {
	if err := e.setup(); err != nil {
		return nil, err
	}
	e.last = []Event{{Type: EventReset, Position: e.player.Position()}}
	return e.GetState(), nil
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.over
}

// IsVictory returns whether the player has collected every item
func (e *GameEngine) IsVictory() bool {
	return e.victory
}

// GetPlayer returns the steered agent
func (e *GameEngine) GetPlayer() *Player {
	return e.player
}

// GetBoard returns the live board
func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// Agents returns agents in move order
func (e *GameEngine) Agents() []Agent {
	return e.agents
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// CurrentTick returns the tick count since the last reset
func (e *GameEngine) CurrentTick() int {
	return e.tick
}

// GetHistory returns the complete tick history
func (e *GameEngine) GetHistory() []TickRecord {
	return e.history
}

// GetLastTick returns the last tick record, or nil if none
func (e *GameEngine) GetLastTick() *TickRecord {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// RunTicks advances up to n ticks, stopping at game over
func (e *GameEngine) RunTicks(n int) ([]*TickResult, error) {
	results := make([]*TickResult, 0, n)
	for i := 0; i < n; i++ {
		if e.IsGameOver() {
			break
		}
		res, err := e.Tick()
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
