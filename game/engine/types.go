package engine

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MinLives       = 1
	MaxLives       = 9
	MaxAdversaries = 16
	MinTickMillis  = 20
	MaxTickMillis  = 5000
	MaxGridSize    = 100
	MaxStepTicks   = 500

	DefaultLives     = 3
	DefaultTickMilli = 200
)

// Position is a (row, column) coordinate on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position one step away in direction d
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is a unit offset on the grid
type Direction struct {
	DRow int `json:"drow"`
	DCol int `json:"dcol"`
}

var (
	None  = Direction{0, 0}
	Up    = Direction{-1, 0}
	Down  = Direction{1, 0}
	Left  = Direction{0, -1}
	Right = Direction{0, 1}
)

// Compass lists the four movement directions in neighbor-scan order
var Compass = []Direction{Right, Left, Down, Up}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case None:
		return "none"
	}
	return fmt.Sprintf("(%d,%d)", d.DRow, d.DCol)
}

// ParseDirection maps a driver direction name to a Direction.
// Accepts up/down/left/right (and w/s/a/d) plus none/stop.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "north":
		return Up, nil
	case "down", "s", "south":
		return Down, nil
	case "left", "a", "west":
		return Left, nil
	case "right", "d", "east":
		return Right, nil
	case "none", "stop", "":
		return None, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Kind is the closed set of sprite variants
type Kind int

const (
	KindCollectible Kind = iota
	KindPlayer
	KindAdversary

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindCollectible:
		return "collectible"
	case KindPlayer:
		return "player"
	case KindAdversary:
		return "adversary"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "collectible":
		*k = KindCollectible
	case "player":
		*k = KindPlayer
	case "adversary":
		*k = KindAdversary
	default:
		return fmt.Errorf("unknown sprite kind %q", string(b))
	}
	return nil
}

// Color is an RGB display color. It has no simulation meaning.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses #rrggbb
func ParseColor(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Default display attributes
var (
	ItemColor      = Color{147, 240, 250}
	PlayerColor    = Color{255, 239, 1}
	AdversaryColor = Color{250, 179, 250}
)

const (
	ItemSize  = 0.1
	AgentSize = 0.4
)

// EventType names a game-state change produced by collision resolution or the tick loop
type EventType string

const (
	EventItemConsumed  EventType = "item_consumed"
	EventLifeLost      EventType = "life_lost"
	EventPlayerRemoved EventType = "player_removed"
	EventVictory       EventType = "victory"
	EventGameOver      EventType = "game_over"
	EventReset         EventType = "reset"
)

// Event records one state change
type Event struct {
	Type     EventType `json:"type"`
	Agent    string    `json:"agent,omitempty"`
	Target   string    `json:"target,omitempty"`
	Position Position  `json:"position"`
	Lives    int       `json:"lives,omitempty"`
	Points   int       `json:"points,omitempty"`
}
